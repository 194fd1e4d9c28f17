// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package segcore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milvus-io/milvus-proto/go-api/v2/schemapb"

	"github.com/milvus-io/milvus/internal/core/common"
	"github.com/milvus-io/milvus/internal/core/storage"
)

func testSchema() (map[int64]common.FieldMeta, common.CollectionIndexMeta) {
	fieldMetas := map[int64]common.FieldMeta{
		100: common.NewFieldMeta(100, "vec", schemapb.DataType_FloatVector, testDim, "L2"),
		101: common.NewFieldMeta(101, "bin", schemapb.DataType_BinaryVector, 128, "HAMMING"),
		102: common.NewFieldMeta(102, "age", schemapb.DataType_Int64, 0, ""),
	}
	fieldIndexMetas := map[int64]common.FieldIndexMeta{
		100: common.NewFieldIndexMeta(100,
			map[string]string{common.IndexTypeKey: "IVF_FLAT", common.MetricTypeKey: "L2"},
			map[string]string{common.DimKey: "8"}),
	}
	collMeta := common.NewCollectionIndexMeta(226985, fieldIndexMetas)
	return fieldMetas, collMeta
}

// Scenario 5: binary vector rejection.
func TestIndexingRecord_SkipsBinaryVectorField(t *testing.T) {
	fieldMetas, collMeta := testSchema()
	record, err := NewIndexingRecord("test-collection", 1001, collMeta, fieldMetas, NewDefaultSegcoreConfig())
	require.NoError(t, err)
	defer record.Close()

	assert.True(t, record.IsIn(100))
	assert.False(t, record.IsIn(101))
	assert.True(t, record.IsIn(102))
}

// Scenario 6: downcast guard.
func TestIndexingRecord_DowncastGuard(t *testing.T) {
	fieldMetas, collMeta := testSchema()
	record, err := NewIndexingRecord("test-collection", 1001, collMeta, fieldMetas, NewDefaultSegcoreConfig())
	require.NoError(t, err)
	defer record.Close()

	_, err = record.GetVecFieldIndexing(102)
	assert.Error(t, err)

	_, err = GetScalarFieldIndexing[int64](record, 100)
	assert.Error(t, err)
}

func TestIndexingRecord_UnknownFieldLookup(t *testing.T) {
	fieldMetas, collMeta := testSchema()
	record, err := NewIndexingRecord("test-collection", 1001, collMeta, fieldMetas, NewDefaultSegcoreConfig())
	require.NoError(t, err)
	defer record.Close()

	_, err = record.GetFieldIndexing(999)
	assert.Error(t, err)
}

func TestIndexingRecord_AppendingIndexFansOutToVectorFields(t *testing.T) {
	fieldMetas, collMeta := testSchema()
	segcoreConfig := SegcoreConfig{ChunkRows: 1024, Nlist: 128, Nprobe: 4, EnableGrowingSegmentIndex: true}
	record, err := NewIndexingRecord("test-collection", 1001, collMeta, fieldMetas, segcoreConfig)
	require.NoError(t, err)
	defer record.Close()

	vecBase := storage.NewConcurrentVector(testDim, 1024)
	data := randomRows(50000, testDim, 42)
	vecBase.Append(0, 50000, data)

	err = record.AppendingIndex(context.Background(), 0, 50000, map[int64]AppendSource{
		100: {VecBase: vecBase, Data: nil},
	})
	require.NoError(t, err)

	vecEntry, err := record.GetVecFieldIndexing(100)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), vecEntry.GetIndexCursor())
	assert.Equal(t, int64(50000), record.GetFinishedAck())
}

func TestIndexingRecord_EnableGrowingSegmentIndexFalseBuildsNothing(t *testing.T) {
	fieldMetas, collMeta := testSchema()
	segcoreConfig := SegcoreConfig{ChunkRows: 1024, Nlist: 128, Nprobe: 4, EnableGrowingSegmentIndex: false}
	record, err := NewIndexingRecord("test-collection", 1001, collMeta, fieldMetas, segcoreConfig)
	require.NoError(t, err)
	defer record.Close()

	assert.False(t, record.IsIn(100))
	assert.False(t, record.IsIn(102))
}
