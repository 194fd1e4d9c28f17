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
	"runtime"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/milvus-io/milvus-proto/go-api/v2/schemapb"

	"github.com/milvus-io/milvus/internal/core/common"
	"github.com/milvus-io/milvus/internal/core/index"
	"github.com/milvus-io/milvus/internal/core/storage"
	"github.com/milvus-io/milvus/pkg/v2/log"
	"github.com/milvus-io/milvus/pkg/v2/util/hardware"
	"github.com/milvus-io/milvus/pkg/v2/util/merr"
)

// IndexingRecord (C4) owns one FieldIndexing per indexable field of a
// collection's schema, and fans out AppendingIndex calls across them.
// It is the host segment's indexing handle, so it also owns that
// segment's memory-monitoring lifecycle.
type IndexingRecord struct {
	collectionName string
	segmentID      int64

	pool *ants.Pool
	sem  *semaphore.Weighted

	memMonitor *hardware.MemoryMonitor

	mu             sync.RWMutex
	fieldIndexings map[int64]FieldIndexing
}

// NewIndexingRecord builds an IndexingRecord from a collection's index
// metadata (§4.4): binary vector fields and vector fields with no
// metric_type configured (the flat/no-index case) are skipped, as are
// vector fields with no entry in schema and fields whose type CreateIndex
// reports as unsupported; every other field gets a FieldIndexing via
// CreateIndex. It also starts a
// MemoryMonitor for the segment's lifetime, stopped by Close.
func NewIndexingRecord(collectionName string, segmentID int64, schema common.CollectionIndexMeta, fieldMetas map[int64]common.FieldMeta, segcoreConfig SegcoreConfig) (*IndexingRecord, error) {
	poolSize := runtime.NumCPU()
	pool, err := ants.NewPool(poolSize, ants.WithPreAlloc(true))
	if err != nil {
		return nil, merr.WrapErrServiceInternal(fmt.Sprintf("failed to create indexing worker pool: %v", err))
	}

	memMonitor := hardware.NewMemoryMonitor()
	memMonitor.Start()

	record := &IndexingRecord{
		collectionName: collectionName,
		segmentID:      segmentID,
		pool:           pool,
		sem:            semaphore.NewWeighted(int64(poolSize)),
		memMonitor:     memMonitor,
		fieldIndexings: make(map[int64]FieldIndexing),
	}

	if !segcoreConfig.EnableGrowingSegmentIndex {
		return record, nil
	}

	for fieldID, fieldMeta := range fieldMetas {
		if fieldMeta.DataType() == schemapb.DataType_BinaryVector {
			continue
		}
		if fieldMeta.IsVector() && !fieldMeta.HasMetricType() {
			continue
		}

		// Only vector fields need index metadata (index_type/metric_type);
		// scalar fields build their chunk-sort index straight off fieldMeta.
		var fieldIndexMeta common.FieldIndexMeta
		if fieldMeta.IsVector() {
			var err error
			fieldIndexMeta, err = schema.GetFieldIndexMeta(fieldID)
			if err != nil {
				continue
			}
		}

		indexing, err := CreateIndex(fieldMeta, fieldIndexMeta, schema.MaxSegmentRowCount(), segcoreConfig, collectionName)
		if err != nil {
			if merrIsUnsupported(err) {
				log.Info("skipping growing-segment indexing for unsupported field",
					zap.String("collection", collectionName),
					zap.Int64("fieldID", fieldID),
					zap.Error(err))
				continue
			}
			pool.Release()
			memMonitor.Stop()
			return nil, err
		}
		record.fieldIndexings[fieldID] = indexing
	}

	return record, nil
}

// AppendSource bundles what AppendingIndex needs per vector field: the
// segment's chunked store (for the initial, not-yet-synced chunk walk)
// and this batch's tightly-packed row data in insertion order (for the
// fast path once a field is synced with its index, spec.md §4.2).
type AppendSource struct {
	VecBase storage.VectorStore
	Data    []float32
}

// AppendingIndex (§4.4) fans AppendSegmentIndex out across every vector
// field, one task per field, bounded by the record's worker pool.
// Scalar entries are skipped: they have no append path.
func (r *IndexingRecord) AppendingIndex(ctx context.Context, reservedOffset, size int64, sources map[int64]AppendSource) error {
	r.mu.RLock()
	vecEntries := make(map[int64]*VectorFieldIndexing, len(r.fieldIndexings))
	for fieldID, entry := range r.fieldIndexings {
		if vecEntry, ok := entry.(*VectorFieldIndexing); ok {
			vecEntries[fieldID] = vecEntry
		}
	}
	r.mu.RUnlock()

	if len(vecEntries) == 0 {
		return nil
	}

	errCh := make(chan error, len(vecEntries))
	var wg sync.WaitGroup

	for fieldID, entry := range vecEntries {
		fieldID, entry := fieldID, entry
		source, ok := sources[fieldID]
		if !ok {
			continue
		}

		wg.Add(1)
		submitErr := r.pool.Submit(func() {
			defer wg.Done()
			if err := r.sem.Acquire(ctx, 1); err != nil {
				errCh <- fmt.Errorf("field %d: %w", fieldID, err)
				return
			}
			defer r.sem.Release(1)

			if err := entry.AppendSegmentIndex(ctx, reservedOffset, size, source.VecBase, source.Data); err != nil {
				errCh <- fmt.Errorf("field %d: %w", fieldID, err)
			}
		})
		if submitErr != nil {
			wg.Done()
			errCh <- fmt.Errorf("field %d: submit failed: %w", fieldID, submitErr)
		}
	}

	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			return err
		}
	}

	var appendedBytes uint64
	for fieldID, entry := range vecEntries {
		if _, ok := sources[fieldID]; ok {
			appendedBytes += uint64(size) * uint64(entry.FieldMeta().Dim()) * 4
		}
	}
	hardware.RecordSegmentMemory(r.segmentID, 0, appendedBytes)

	return nil
}

// GetFieldIndexing returns the FieldIndexing owned for fieldID.
func (r *IndexingRecord) GetFieldIndexing(fieldID int64) (FieldIndexing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.fieldIndexings[fieldID]
	if !ok {
		return nil, merr.WrapErrFieldNotFound(fieldID)
	}
	return entry, nil
}

// GetVecFieldIndexing downcasts fieldID's entry to *VectorFieldIndexing.
// A downcast failure is a programming error (the caller asked a scalar
// field for a vector indexer), not a missing-field condition: it is
// reported as INVALID_INDEXING.
func (r *IndexingRecord) GetVecFieldIndexing(fieldID int64) (*VectorFieldIndexing, error) {
	entry, err := r.GetFieldIndexing(fieldID)
	if err != nil {
		return nil, err
	}
	vecEntry, ok := entry.(*VectorFieldIndexing)
	if !ok {
		return nil, merr.WrapErrServiceInternal(fmt.Sprintf("field %d is not a vector field indexing", fieldID))
	}
	return vecEntry, nil
}

// GetScalarFieldIndexing downcasts fieldID's entry to
// *ScalarFieldIndexing[T]; see GetVecFieldIndexing for the downcast
// failure contract.
func GetScalarFieldIndexing[T index.Ordered](r *IndexingRecord, fieldID int64) (*ScalarFieldIndexing[T], error) {
	entry, err := r.GetFieldIndexing(fieldID)
	if err != nil {
		return nil, err
	}
	scalarEntry, ok := entry.(*ScalarFieldIndexing[T])
	if !ok {
		return nil, merr.WrapErrServiceInternal(fmt.Sprintf("field %d is not a scalar field indexing of the requested type", fieldID))
	}
	return scalarEntry, nil
}

// IsIn reports whether fieldID has an owned FieldIndexing.
func (r *IndexingRecord) IsIn(fieldID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.fieldIndexings[fieldID]
	return ok
}

// GetFinishedAck returns the minimum index cursor across every vector
// field indexing, the prefix every vector field has finished indexing
// up through. Segments with no vector fields report 0. This stands in
// for the external AckResponder the original couples IndexingRecord to
// (spec.md §9): the information it exposes — a safe-to-search prefix —
// is exactly the minimum of the per-field cursors, computed directly.
func (r *IndexingRecord) GetFinishedAck() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cursors := lo.FilterMap(lo.Values(r.fieldIndexings), func(entry FieldIndexing, _ int) (int64, bool) {
		vecEntry, ok := entry.(*VectorFieldIndexing)
		if !ok {
			return 0, false
		}
		return vecEntry.GetIndexCursor(), true
	})
	if len(cursors) == 0 {
		return 0
	}
	return lo.Min(cursors)
}

// Close releases the worker pool and stops the segment's memory monitor.
func (r *IndexingRecord) Close() {
	if r.pool != nil {
		r.pool.Release()
	}
	if r.memMonitor != nil {
		r.memMonitor.Stop()
	}
}

func merrIsUnsupported(err error) bool {
	return errors.Is(err, merr.ErrSegcoreUnsupported)
}
