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

const testDim = int64(8)

func newTestVectorFieldIndexing(t *testing.T, maxSegmentRowCount, chunkRows int64) (*VectorFieldIndexing, *storage.ConcurrentVector) {
	t.Helper()
	fieldMeta := common.NewFieldMeta(100, "vec", schemapb.DataType_FloatVector, testDim, "L2")
	fieldIndexMeta := common.NewFieldIndexMeta(100,
		map[string]string{common.IndexTypeKey: "IVF_FLAT", common.MetricTypeKey: "L2"},
		map[string]string{common.DimKey: "8"})
	segcoreConfig := SegcoreConfig{ChunkRows: chunkRows, Nlist: 128, Nprobe: 4, EnableGrowingSegmentIndex: true}

	cfg, err := NewVecIndexConfig(maxSegmentRowCount, fieldIndexMeta, segcoreConfig)
	require.NoError(t, err)

	entry := NewVectorFieldIndexing(fieldMeta, cfg, "test-collection")
	vecBase := storage.NewConcurrentVector(testDim, chunkRows)
	return entry, vecBase
}

func randomRows(n, dim int64, seed int64) []float32 {
	out := make([]float32, n*dim)
	x := seed + 1
	for i := range out {
		x = (x*1103515245 + 12345) & 0x7fffffff
		out[i] = float32(x%1000) / 10
	}
	return out
}

// Scenario 1: threshold-respecting single batch.
func TestVectorFieldIndexing_ThresholdRespectingSingleBatch(t *testing.T) {
	entry, vecBase := newTestVectorFieldIndexing(t, 226985, 1024)
	assert.Equal(t, int64(22698), entry.config.BuildThreshold())

	data := randomRows(50000, testDim, 1)
	vecBase.Append(0, 50000, data)

	err := entry.AppendSegmentIndex(context.Background(), 0, 50000, vecBase, nil)
	require.NoError(t, err)

	assert.NotNil(t, entry.GetSegmentIndexing())
	assert.Equal(t, int64(50000), entry.GetIndexCursor())
	assert.True(t, entry.syncWithIndex.Load())
}

// Scenario 2: multi-batch, 20x50k.
func TestVectorFieldIndexing_MultiBatch20x50k(t *testing.T) {
	entry, vecBase := newTestVectorFieldIndexing(t, 226985, 1024)

	var reservedOffset int64
	for i := 0; i < 20; i++ {
		data := randomRows(50000, testDim, int64(i))
		vecBase.Append(reservedOffset, 50000, data)
		err := entry.AppendSegmentIndex(context.Background(), reservedOffset, 50000, vecBase, data)
		require.NoError(t, err)
		reservedOffset += 50000
	}

	assert.Equal(t, int64(1_000_000), entry.GetIndexCursor())
	assert.NotNil(t, entry.GetSegmentIndexing())
	assert.Equal(t, int64(1_000_000), entry.GetSegmentIndexing().Count())
}

// Scenario 3: below threshold.
func TestVectorFieldIndexing_BelowThreshold(t *testing.T) {
	entry, vecBase := newTestVectorFieldIndexing(t, 1_000_000, 1024)

	var reservedOffset int64
	for i := 0; i < 10; i++ {
		data := randomRows(100, testDim, int64(i))
		vecBase.Append(reservedOffset, 100, data)
		err := entry.AppendSegmentIndex(context.Background(), reservedOffset, 100, vecBase, data)
		require.NoError(t, err)
		reservedOffset += 100
	}

	assert.Nil(t, entry.GetSegmentIndexing())
	assert.Equal(t, int64(0), entry.GetIndexCursor())
}

// Scenario 4: straddled training gather.
func TestVectorFieldIndexing_StraddledTrainingGather(t *testing.T) {
	// maxSegmentRowCount chosen so build_threshold = floor(maxRows*0.1) == 3000.
	entry, vecBase := newTestVectorFieldIndexing(t, 30000, 1024)
	require.Equal(t, int64(3000), entry.config.BuildThreshold())

	data := randomRows(3001, testDim, 7)
	vecBase.Append(0, 3001, data)

	gathered := gatherTrainingData(vecBase, testDim, 1024, 3001)
	require.Len(t, gathered, int(3001*testDim))
	assert.Equal(t, data, gathered)

	err := entry.AppendSegmentIndex(context.Background(), 0, 3001, vecBase, nil)
	require.NoError(t, err)
	assert.NotNil(t, entry.GetSegmentIndexing())
	assert.Equal(t, int64(3001), entry.GetIndexCursor())
}

func TestVectorFieldIndexing_RejectsNonFloatVector(t *testing.T) {
	fieldMeta := common.NewFieldMeta(101, "bin", schemapb.DataType_BinaryVector, 128, "HAMMING")
	entry := NewVectorFieldIndexing(fieldMeta, &VecIndexConfig{}, "test-collection")
	vecBase := storage.NewConcurrentVector(128, 1024)
	err := entry.AppendSegmentIndex(context.Background(), 0, 1, vecBase, nil)
	assert.Error(t, err)
}

func TestVectorFieldIndexing_RejectsNonPositiveSize(t *testing.T) {
	entry, vecBase := newTestVectorFieldIndexing(t, 1_000_000, 1024)
	err := entry.AppendSegmentIndex(context.Background(), 0, 0, vecBase, nil)
	assert.Error(t, err)
}
