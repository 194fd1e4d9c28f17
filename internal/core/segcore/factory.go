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
	"github.com/milvus-io/milvus-proto/go-api/v2/schemapb"

	"github.com/milvus-io/milvus/internal/core/common"
	"github.com/milvus-io/milvus/pkg/v2/util/merr"
)

// CreateIndex (§4.5) builds the right FieldIndexing for one field: a
// VectorFieldIndexing for float vector fields, a ScalarFieldIndexing[T]
// for every scalar type the schema allows, and an error for anything
// else (binary vectors included — the growing-segment engine only
// knows how to index float vectors incrementally).
func CreateIndex(fieldMeta common.FieldMeta, fieldIndexMeta common.FieldIndexMeta, maxIndexRowCount int64, segcoreConfig SegcoreConfig, collectionName string) (FieldIndexing, error) {
	switch fieldMeta.DataType() {
	case schemapb.DataType_FloatVector:
		cfg, err := NewVecIndexConfig(maxIndexRowCount, fieldIndexMeta, segcoreConfig)
		if err != nil {
			return nil, err
		}
		return NewVectorFieldIndexing(fieldMeta, cfg, collectionName), nil
	case schemapb.DataType_BinaryVector:
		return nil, merr.WrapErrSegcoreUnsupported("binary vector fields do not support growing-segment indexing")
	case schemapb.DataType_Bool:
		return NewScalarFieldIndexing[bool](fieldMeta), nil
	case schemapb.DataType_Int8:
		return NewScalarFieldIndexing[int8](fieldMeta), nil
	case schemapb.DataType_Int16:
		return NewScalarFieldIndexing[int16](fieldMeta), nil
	case schemapb.DataType_Int32:
		return NewScalarFieldIndexing[int32](fieldMeta), nil
	case schemapb.DataType_Int64:
		return NewScalarFieldIndexing[int64](fieldMeta), nil
	case schemapb.DataType_Float:
		return NewScalarFieldIndexing[float32](fieldMeta), nil
	case schemapb.DataType_Double:
		return NewScalarFieldIndexing[float64](fieldMeta), nil
	case schemapb.DataType_VarChar, schemapb.DataType_String:
		return NewScalarFieldIndexing[string](fieldMeta), nil
	default:
		return nil, merr.WrapErrSegcoreUnsupported("unsupported field data type for growing-segment indexing")
	}
}
