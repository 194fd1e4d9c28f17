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

// Package common holds the schema-level value types shared by the
// growing-segment indexing core: field metadata, index metadata, and
// the collection-wide configuration they are read from.
package common

import (
	"github.com/milvus-io/milvus-proto/go-api/v2/schemapb"
)

// FieldMeta describes one field of a collection schema, the subset the
// indexing core needs: identity, type, dimensionality and metric.
//
// FieldMeta is immutable after construction and safe for concurrent
// reads from many goroutines, mirroring the read-only access pattern of
// segcore's FieldMeta.
type FieldMeta struct {
	fieldID    int64
	name       string
	dataType   schemapb.DataType
	dim        int64
	metricType string // empty => flat / no-index vector field
}

// NewFieldMeta constructs a FieldMeta for a scalar or vector field. dim
// is ignored for scalar fields.
func NewFieldMeta(fieldID int64, name string, dataType schemapb.DataType, dim int64, metricType string) FieldMeta {
	return FieldMeta{
		fieldID:    fieldID,
		name:       name,
		dataType:   dataType,
		dim:        dim,
		metricType: metricType,
	}
}

// FieldID returns the field's opaque identity.
func (m FieldMeta) FieldID() int64 { return m.fieldID }

// Name returns the field's schema name, used only for diagnostics.
func (m FieldMeta) Name() string { return m.name }

// DataType returns the field's declared data type.
func (m FieldMeta) DataType() schemapb.DataType { return m.dataType }

// Dim returns the vector dimensionality; meaningless for scalar fields.
func (m FieldMeta) Dim() int64 { return m.dim }

// MetricType returns the metric the field was configured with. An empty
// string means the field is a flat (no-index) vector field.
func (m FieldMeta) MetricType() string { return m.metricType }

// IsVector reports whether the field holds vector data.
func (m FieldMeta) IsVector() bool {
	return m.dataType == schemapb.DataType_FloatVector || m.dataType == schemapb.DataType_BinaryVector
}

// HasMetricType reports whether the field carries a metric type, i.e. is
// not a flat vector field.
func (m FieldMeta) HasMetricType() bool {
	return m.metricType != ""
}
