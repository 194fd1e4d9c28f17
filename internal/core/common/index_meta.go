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

package common

import (
	"strconv"

	"github.com/milvus-io/milvus-proto/go-api/v2/commonpb"

	"github.com/milvus-io/milvus/pkg/v2/util/merr"
)

const (
	// IndexTypeKey is the index_params/type_params key carrying the
	// requested index algorithm.
	IndexTypeKey = "index_type"
	// MetricTypeKey is the index_params key carrying the distance metric.
	MetricTypeKey = "metric_type"
	// DimKey is the type_params key carrying vector dimensionality.
	DimKey = "dim"
)

// FieldIndexMeta is the immutable, per-field index descriptor parsed
// either from a wire protobuf message or built directly for tests. It
// is read-only after construction and safe to share by reference.
type FieldIndexMeta struct {
	fieldID         int64
	indexParams     map[string]string
	typeParams      map[string]string
	userIndexParams map[string]string
}

// NewFieldIndexMeta builds a FieldIndexMeta directly, the path unit
// tests use. index_params must contain "index_type" and "metric_type";
// type_params must contain "dim" for vector fields.
func NewFieldIndexMeta(fieldID int64, indexParams, typeParams map[string]string) FieldIndexMeta {
	return FieldIndexMeta{
		fieldID:     fieldID,
		indexParams: cloneMap(indexParams),
		typeParams:  cloneMap(typeParams),
	}
}

// FieldIndexMetaFromProto builds a FieldIndexMeta from the wire
// representation: a field id plus three repeated key/value lists (I3).
func FieldIndexMetaFromProto(fieldID int64, indexParams, typeParams, userIndexParams []*commonpb.KeyValuePair) FieldIndexMeta {
	return FieldIndexMeta{
		fieldID:         fieldID,
		indexParams:     kvListToMap(indexParams),
		typeParams:      kvListToMap(typeParams),
		userIndexParams: kvListToMap(userIndexParams),
	}
}

// FieldID returns the field this index metadata describes.
func (m FieldIndexMeta) FieldID() int64 { return m.fieldID }

// IndexParams returns the raw index_params map; callers must not mutate it.
func (m FieldIndexMeta) IndexParams() map[string]string { return m.indexParams }

// TypeParams returns the raw type_params map; callers must not mutate it.
func (m FieldIndexMeta) TypeParams() map[string]string { return m.typeParams }

// UserIndexParams returns the opaque user-supplied index params.
func (m FieldIndexMeta) UserIndexParams() map[string]string { return m.userIndexParams }

// GetIndexParam returns the value of key in index_params, or ("", false)
// if absent — the explicit absent-value sentinel spec.md §9 calls for in
// place of the original's dead std::nullopt_t statement.
func (m FieldIndexMeta) GetIndexParam(key string) (string, bool) {
	v, ok := m.indexParams[key]
	return v, ok
}

// IndexType returns index_params["index_type"], or an error if absent.
func (m FieldIndexMeta) IndexType() (string, error) {
	v, ok := m.GetIndexParam(IndexTypeKey)
	if !ok {
		return "", merr.WrapErrParameterInvalid("index_params", IndexTypeKey)
	}
	return v, nil
}

// MetricType returns index_params["metric_type"], or an error if absent.
func (m FieldIndexMeta) MetricType() (string, error) {
	v, ok := m.GetIndexParam(MetricTypeKey)
	if !ok {
		return "", merr.WrapErrParameterInvalid("index_params", MetricTypeKey)
	}
	return v, nil
}

// Dim returns type_params["dim"] parsed as int64, or an error if absent
// or non-positive.
func (m FieldIndexMeta) Dim() (int64, error) {
	v, ok := m.typeParams[DimKey]
	if !ok {
		return 0, merr.WrapErrParameterInvalid("type_params", DimKey)
	}
	dim, err := strconv.ParseInt(v, 10, 64)
	if err != nil || dim <= 0 {
		return 0, merr.WrapErrParameterInvalid("type_params", DimKey)
	}
	return dim, nil
}

// CollectionIndexMeta carries the per-segment row cap and the index
// metadata for every field of a collection that wants growing-segment
// indexing. Read-only after construction, shared by reference.
type CollectionIndexMeta struct {
	CollectionName string

	maxSegmentRowCount int64
	fieldMetas         map[int64]FieldIndexMeta
}

// NewCollectionIndexMeta builds a CollectionIndexMeta directly.
func NewCollectionIndexMeta(maxSegmentRowCount int64, fieldMetas map[int64]FieldIndexMeta) CollectionIndexMeta {
	cp := make(map[int64]FieldIndexMeta, len(fieldMetas))
	for k, v := range fieldMetas {
		cp[k] = v
	}
	return CollectionIndexMeta{
		maxSegmentRowCount: maxSegmentRowCount,
		fieldMetas:         cp,
	}
}

// MaxSegmentRowCount returns the collection's per-segment row cap.
func (c CollectionIndexMeta) MaxSegmentRowCount() int64 { return c.maxSegmentRowCount }

// HasField reports whether fieldID carries index metadata.
func (c CollectionIndexMeta) HasField(fieldID int64) bool {
	_, ok := c.fieldMetas[fieldID]
	return ok
}

// GetFieldIndexMeta returns the FieldIndexMeta for fieldID, or
// merr.ErrFieldNotFound (spec.md §9 Open Question: the original C++
// fell off the end of the function without a return for an absent
// field; this is the fix).
func (c CollectionIndexMeta) GetFieldIndexMeta(fieldID int64) (FieldIndexMeta, error) {
	m, ok := c.fieldMetas[fieldID]
	if !ok {
		return FieldIndexMeta{}, merr.WrapErrFieldNotFound(fieldID)
	}
	return m, nil
}

func cloneMap(m map[string]string) map[string]string {
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

func kvListToMap(kvs []*commonpb.KeyValuePair) map[string]string {
	m := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		m[kv.GetKey()] = kv.GetValue()
	}
	return m
}
