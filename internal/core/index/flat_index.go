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

package index

import (
	"context"
	"sort"
	"sync"

	"github.com/milvus-io/milvus/pkg/v2/util/merr"
)

// FlatIndex is a pure-Go, exact-search VectorIndex. It is the reference
// implementation this module uses for the IVF_FLAT_CC growing-segment
// index named throughout spec.md: the real system binds that name to a
// cgo ANN library (out of scope here, §1), but the growing-segment
// indexer only needs something that satisfies VectorIndex with
// single-writer/many-reader semantics and perfect self-recall on
// training data (spec.md §8's cursor-visibility property), which an
// exact search trivially provides.
//
// FlatIndex never reorders or drops rows: row i of the n-th call to
// Build/Append becomes global id (previously-seen-count + i), matching
// index_cur's row-id discipline.
type FlatIndex struct {
	dim        int64
	metricType string

	mu      sync.RWMutex
	built   bool
	vectors []float32 // row-major, len == count*dim
	count   int64
}

// NewFlatIndex constructs an untrained FlatIndex for the given
// dimensionality and metric ("L2" or "IP").
func NewFlatIndex(dim int64, metricType string) *FlatIndex {
	return &FlatIndex{dim: dim, metricType: metricType}
}

// Count implements IndexBase.
func (f *FlatIndex) Count() int64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.count
}

// Build implements VectorIndex. Calling Build twice is a programming
// error and returns merr.ErrServiceInternal.
func (f *FlatIndex) Build(ctx context.Context, ds Dataset, params Params) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.built {
		return merr.WrapErrServiceInternal("flat index built twice")
	}
	if ds.Dim != f.dim {
		return merr.WrapErrServiceInternal("flat index build: dimension mismatch")
	}
	f.vectors = append(f.vectors[:0:0], ds.Data...)
	f.count = ds.NumRows
	f.built = true
	return nil
}

// Append implements VectorIndex.
func (f *FlatIndex) Append(ctx context.Context, ds Dataset, params Params) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.built {
		return merr.WrapErrServiceInternal("flat index append before build")
	}
	if ds.Dim != f.dim {
		return merr.WrapErrServiceInternal("flat index append: dimension mismatch")
	}
	f.vectors = append(f.vectors, ds.Data...)
	f.count += ds.NumRows
	return nil
}

// Search implements VectorIndex with an exhaustive scan under the
// configured metric. Safe to call concurrently with Append: it takes a
// read lock, so it observes either the pre- or post-append snapshot,
// never a torn one.
func (f *FlatIndex) Search(ctx context.Context, queries Dataset, topK int, params Params) (SearchResult, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if topK <= 0 {
		return SearchResult{}, merr.WrapErrServiceInternal("flat index search: topK must be positive")
	}

	result := SearchResult{TopK: topK}
	result.Ids = make([]int64, 0, int(queries.NumRows)*topK)
	result.Dist = make([]float32, 0, int(queries.NumRows)*topK)

	type cand struct {
		id   int64
		dist float32
	}

	higherIsBetter := f.metricType == "IP"

	for q := int64(0); q < queries.NumRows; q++ {
		query := queries.Data[q*f.dim : (q+1)*f.dim]
		cands := make([]cand, 0, f.count)
		for row := int64(0); row < f.count; row++ {
			vec := f.vectors[row*f.dim : (row+1)*f.dim]
			cands = append(cands, cand{id: row, dist: distance(query, vec, f.metricType)})
		}
		sort.Slice(cands, func(i, j int) bool {
			if higherIsBetter {
				return cands[i].dist > cands[j].dist
			}
			return cands[i].dist < cands[j].dist
		})
		n := topK
		if n > len(cands) {
			n = len(cands)
		}
		for i := 0; i < n; i++ {
			result.Ids = append(result.Ids, cands[i].id)
			result.Dist = append(result.Dist, cands[i].dist)
		}
		for i := n; i < topK; i++ {
			result.Ids = append(result.Ids, -1)
			result.Dist = append(result.Dist, 0)
		}
	}
	return result, nil
}

func distance(a, b []float32, metricType string) float32 {
	if metricType == "IP" {
		var dot float32
		for i := range a {
			dot += a[i] * b[i]
		}
		return dot
	}
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
