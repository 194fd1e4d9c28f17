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
	"sync"

	"github.com/milvus-io/milvus/internal/core/common"
	"github.com/milvus-io/milvus/internal/core/index"
	"github.com/milvus-io/milvus/internal/core/storage"
	"github.com/milvus-io/milvus/pkg/v2/util/merr"
)

// ScalarFieldIndexing (C3) is the dispatch peer for scalar fields. It
// never builds an ANN index: AppendSegmentIndex always fails, because
// the growing-index append path (§4.2) is a vector-index concept only.
// Instead it owns a set of per-chunk sorted indexes, each covering
// exactly one VectorStore-sized chunk once that chunk is sealed, used
// by range/point lookups outside the scope of this module.
type ScalarFieldIndexing[T index.Ordered] struct {
	fieldMeta common.FieldMeta

	mu     sync.RWMutex
	chunks []*index.ScalarIndexSort[T]
}

var _ FieldIndexing = (*ScalarFieldIndexing[int64])(nil)

// NewScalarFieldIndexing constructs an empty scalar indexer for fieldMeta.
func NewScalarFieldIndexing[T index.Ordered](fieldMeta common.FieldMeta) *ScalarFieldIndexing[T] {
	return &ScalarFieldIndexing[T]{fieldMeta: fieldMeta}
}

// FieldMeta implements FieldIndexing.
func (s *ScalarFieldIndexing[T]) FieldMeta() common.FieldMeta { return s.fieldMeta }

// GetIndexCursor implements FieldIndexing. Scalar chunk indexes are
// built eagerly per sealed chunk rather than tracked against a single
// advancing prefix cursor, so this always reports 0; callers that need
// per-chunk coverage should use NumChunk/ChunkIndex instead.
func (s *ScalarFieldIndexing[T]) GetIndexCursor() int64 { return 0 }

// AppendSegmentIndex implements FieldIndexing by refusing: growing,
// incremental vector-index append has no scalar analogue here.
func (s *ScalarFieldIndexing[T]) AppendSegmentIndex(_ context.Context, _, _ int64, _ storage.VectorStore, _ []float32) error {
	return merr.WrapErrSegcoreUnsupported("AppendSegmentIndex is not supported for scalar fields")
}

// NumChunk returns how many per-chunk sorted indexes have been built.
func (s *ScalarFieldIndexing[T]) NumChunk() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.chunks))
}

// ChunkIndex returns the sorted index covering chunkID, or nil if that
// chunk has not been indexed yet.
func (s *ScalarFieldIndexing[T]) ChunkIndex(chunkID int64) *index.ScalarIndexSort[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if chunkID < 0 || chunkID >= int64(len(s.chunks)) {
		return nil
	}
	return s.chunks[chunkID]
}

// BuildIndexRange builds one ScalarIndexSort per whole chunk covered by
// [ackBeg, ackEnd), skipping chunks already indexed. Chunks are sealed
// (never mutated again) before a caller indexes them, so each chunk's
// sort is built exactly once.
func (s *ScalarFieldIndexing[T]) BuildIndexRange(ackBeg, ackEnd int64, vecBase storage.ScalarChunkStore[T]) {
	if ackEnd <= ackBeg {
		return
	}
	perChunk := vecBase.SizePerChunk()
	chunkIDBeg := ackBeg / perChunk
	chunkIDEnd := (ackEnd - 1) / perChunk

	s.mu.Lock()
	defer s.mu.Unlock()
	for chunkID := chunkIDBeg; chunkID <= chunkIDEnd; chunkID++ {
		if chunkID < int64(len(s.chunks)) {
			continue
		}
		data := vecBase.Chunk(chunkID)
		s.chunks = append(s.chunks, index.BuildScalarIndexSort(data))
	}
}
