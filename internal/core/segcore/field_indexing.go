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
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/milvus-io/milvus-proto/go-api/v2/schemapb"

	"github.com/milvus-io/milvus/internal/core/common"
	"github.com/milvus-io/milvus/internal/core/index"
	"github.com/milvus-io/milvus/internal/core/storage"
	"github.com/milvus-io/milvus/pkg/v2/log"
	"github.com/milvus-io/milvus/pkg/v2/metrics"
	"github.com/milvus-io/milvus/pkg/v2/util/hardware"
	"github.com/milvus-io/milvus/pkg/v2/util/merr"
)

const tracerName = "segcore.growing-index"

// FieldIndexing is the dispatch peer (C2/C3): one per indexable field
// of a schema. Vector fields additionally implement AppendSegmentIndex;
// scalar fields refuse it (§4.3).
type FieldIndexing interface {
	FieldMeta() common.FieldMeta
	GetIndexCursor() int64
	AppendSegmentIndex(ctx context.Context, reservedOffset, size int64, vecBase storage.VectorStore, dataSource []float32) error
}

// VectorFieldIndexing (C2) is the per-field growing-index state
// machine: it owns the (possibly absent) trained index and the
// indexed-prefix cursor, and implements build-once/append-rest.
type VectorFieldIndexing struct {
	fieldMeta      common.FieldMeta
	config         *VecIndexConfig
	collectionName string

	indexCur      atomic.Int64
	syncWithIndex atomic.Bool

	indexMu sync.RWMutex
	index   index.VectorIndex // nil until the first successful Build
}

var _ FieldIndexing = (*VectorFieldIndexing)(nil)

// NewVectorFieldIndexing constructs a VectorFieldIndexing for a float
// vector field. fieldMeta.DataType() must be FloatVector; binary
// vectors are rejected by the factory (§4.5), never here.
func NewVectorFieldIndexing(fieldMeta common.FieldMeta, config *VecIndexConfig, collectionName string) *VectorFieldIndexing {
	return &VectorFieldIndexing{
		fieldMeta:      fieldMeta,
		config:         config,
		collectionName: collectionName,
	}
}

// FieldMeta implements FieldIndexing.
func (v *VectorFieldIndexing) FieldMeta() common.FieldMeta { return v.fieldMeta }

// GetIndexCursor implements FieldIndexing: the prefix length readers
// may treat as searchable via GetSegmentIndexing(); rows at or beyond
// it must be served by brute-force scan.
func (v *VectorFieldIndexing) GetIndexCursor() int64 {
	return v.indexCur.Load()
}

// GetSegmentIndexing returns the trained index, or nil if training has
// not run yet.
func (v *VectorFieldIndexing) GetSegmentIndexing() index.VectorIndex {
	v.indexMu.RLock()
	defer v.indexMu.RUnlock()
	return v.index
}

// GetBuildParams returns the build parameter map with dim and
// num_build_thread (capped to 1 so the underlying library's internal
// parallelism doesn't compound with the caller's own, §5) folded in.
func (v *VectorFieldIndexing) GetBuildParams() index.Params {
	params := index.Params{}
	for k, val := range v.config.BuildParams() {
		params[k] = val
	}
	params["dim"] = strconv.FormatInt(v.fieldMeta.Dim(), 10)
	params["num_build_thread"] = "1"
	return params
}

// GetSearchParams delegates to the field's VecIndexConfig.
func (v *VectorFieldIndexing) GetSearchParams(info SearchInfo) SearchInfo {
	return v.config.SearchConf(info)
}

// AppendSegmentIndex implements FieldIndexing; see spec.md §4.2 for the
// two-phase train/append algorithm this follows exactly.
func (v *VectorFieldIndexing) AppendSegmentIndex(ctx context.Context, reservedOffset, size int64, vecBase storage.VectorStore, dataSource []float32) error {
	if v.fieldMeta.DataType() != schemapb.DataType_FloatVector {
		return merr.WrapErrSegcoreUnsupported("non-float vector field in VectorFieldIndexing")
	}
	if size <= 0 {
		return merr.WrapErrServiceInternal("AppendSegmentIndex: size must be positive")
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, fmt.Sprintf("AppendSegmentIndex-%s-%d", v.collectionName, v.fieldMeta.FieldID()))
	defer span.End()

	start := time.Now()
	dim := v.fieldMeta.Dim()
	buildParams := v.GetBuildParams()
	perChunk := vecBase.SizePerChunk()

	collLabel := v.collectionName
	fieldLabel := strconv.FormatInt(v.fieldMeta.FieldID(), 10)

	if v.GetSegmentIndexing() == nil && reservedOffset+size > v.config.BuildThreshold() {
		if err := v.trainPhase(ctx, vecBase, dim, perChunk, buildParams); err != nil {
			metrics.GrowingIndexBuildTotal.WithLabelValues(collLabel, fieldLabel, "fail").Inc()
			return err
		}
		metrics.GrowingIndexBuildTotal.WithLabelValues(collLabel, fieldLabel, "success").Inc()
	}

	if v.GetSegmentIndexing() != nil {
		if err := v.appendPhase(ctx, reservedOffset, size, vecBase, dataSource, dim, perChunk, buildParams); err != nil {
			return err
		}
	}

	metrics.GrowingIndexCursor.WithLabelValues(collLabel, fieldLabel).Set(float64(v.indexCur.Load()))
	metrics.GrowingIndexAppendLatency.WithLabelValues(collLabel, fieldLabel).Observe(time.Since(start).Seconds())
	return nil
}

// trainPhase is Phase A: train on [0, build_threshold] once size
// crosses the threshold for the first time.
func (v *VectorFieldIndexing) trainPhase(ctx context.Context, vecBase storage.VectorStore, dim, perChunk int64, buildParams index.Params) error {
	vectorIDBeg := v.indexCur.Load() // always 0 on this path
	vectorIDEnd := v.config.BuildThreshold()
	vecNum := vectorIDEnd - vectorIDBeg + 1

	data := gatherTrainingData(vecBase, dim, perChunk, vecNum)

	dataset := index.Dataset{NumRows: vecNum, Dim: dim, Data: data}
	built := index.NewFlatIndex(dim, v.config.MetricType())

	log.Ctx(ctx).Info("training growing-segment index",
		zap.String("collection", v.collectionName),
		zap.Int64("fieldID", v.fieldMeta.FieldID()),
		zap.String("indexType", v.config.IndexType()),
		zap.Int64("vecNum", vecNum))

	if err := built.Build(ctx, dataset, buildParams); err != nil {
		log.Ctx(ctx).Error("growing-segment index build failed",
			zap.String("collection", v.collectionName),
			zap.Int64("fieldID", v.fieldMeta.FieldID()),
			zap.Error(err))
		return merr.WrapErrIndexBuildFailed(err)
	}

	// cursor advances before the index handle is published, so a
	// reader that observes a non-nil index already sees the cursor
	// that covers it (spec.md §5 happens-after rule).
	v.indexCur.Add(vecNum)
	v.indexMu.Lock()
	v.index = built
	v.indexMu.Unlock()

	hardware.RecordIndexMemory(v.config.IndexType(), 0, uint64(len(data))*4)
	return nil
}

// gatherTrainingData implements the chunked gather procedure of §4.2
// step 4: zero-copy borrow when the whole training prefix lives in one
// chunk, otherwise a single contiguous copy assembled chunk by chunk.
// Training always starts at row 0, so the leading-chunk offset the
// original C++ carries as a dead general variable is simply absent
// here (spec.md §9 Open Question).
func gatherTrainingData(vecBase storage.VectorStore, dim, perChunk, vecNum int64) []float32 {
	chunkIDBeg := int64(0)
	chunkIDEnd := (vecNum - 1) / perChunk

	if chunkIDBeg == chunkIDEnd {
		return vecBase.ChunkData(chunkIDBeg)[:vecNum*dim]
	}

	buf := make([]float32, vecNum*dim)
	offset := int64(0)
	for chunkID := chunkIDBeg; chunkID <= chunkIDEnd; chunkID++ {
		var chunkCopySz int64
		if chunkID == chunkIDEnd {
			chunkCopySz = vecNum - chunkID*perChunk
		} else {
			chunkCopySz = perChunk
		}
		copy(buf[offset*dim:(offset+chunkCopySz)*dim], vecBase.ChunkData(chunkID)[:chunkCopySz*dim])
		offset += chunkCopySz
	}
	return buf
}

// appendPhase is Phase B: append everything from the cursor through
// reservedOffset+size-1, either via the caller's tightly-packed
// dataSource (fast path, once synced) or by walking chunks (first
// append after a train, or whenever not yet synced).
func (v *VectorFieldIndexing) appendPhase(ctx context.Context, reservedOffset, size int64, vecBase storage.VectorStore, dataSource []float32, dim, perChunk int64, buildParams index.Params) error {
	vectorIDBeg := v.indexCur.Load()
	vectorIDEnd := reservedOffset + size - 1
	vecNum := vectorIDEnd - vectorIDBeg + 1
	if vecNum <= 0 {
		return nil
	}

	idx := v.GetSegmentIndexing()

	if v.syncWithIndex.Load() {
		dataset := index.Dataset{NumRows: vecNum, Dim: dim, Data: dataSource}
		if err := idx.Append(ctx, dataset, buildParams); err != nil {
			return merr.WrapErrIndexAppendFailed(err)
		}
		v.indexCur.Add(vecNum)
		return nil
	}

	chunkIDBeg := vectorIDBeg / perChunk
	chunkIDEnd := vectorIDEnd / perChunk
	for chunkID := chunkIDBeg; chunkID <= chunkIDEnd; chunkID++ {
		var chunkOffset int64
		if chunkID == chunkIDBeg {
			chunkOffset = vectorIDBeg - chunkID*perChunk
		}
		var chunkSz int64
		switch {
		case chunkID == chunkIDEnd:
			chunkSz = vectorIDEnd%perChunk - chunkOffset + 1
		case chunkID == chunkIDBeg:
			chunkSz = perChunk - chunkOffset
		default:
			chunkSz = perChunk
		}

		chunkData := vecBase.ChunkData(chunkID)
		dataset := index.Dataset{
			NumRows: chunkSz,
			Dim:     dim,
			Data:    chunkData[chunkOffset*dim : (chunkOffset+chunkSz)*dim],
		}
		if err := idx.Append(ctx, dataset, buildParams); err != nil {
			return merr.WrapErrIndexAppendFailed(err)
		}
		v.indexCur.Add(chunkSz)
	}
	v.syncWithIndex.Store(true)
	return nil
}
