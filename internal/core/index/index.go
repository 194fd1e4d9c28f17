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

// Package index defines the ANN index handle contract (I2) the
// growing-segment indexer builds against, plus a small in-process
// reference implementation so the module is self-contained and
// testable without a cgo binding to a real ANN library.
package index

import "context"

// Dataset is a non-owning view over n rows of dim-dimensional float32
// vectors, mirroring knowhere::GenDataSet's (n_rows, dim, raw_pointer)
// contract (I2).
type Dataset struct {
	NumRows int64
	Dim     int64
	Data    []float32
}

// Params is the string->string build/search parameter map threaded
// across the boundary (metric_type, nlist, nprobe, ssize, topk, ...).
type Params map[string]string

// IndexBase is the minimal handle contract every index kind — vector or
// scalar — satisfies.
type IndexBase interface {
	// Count returns the number of rows the index has incorporated.
	Count() int64
}

// VectorIndex is the (I2) contract: build once, append thereafter,
// search concurrently with append. Implementations must support
// single-writer/many-reader concurrency: a Search call racing an
// Append observes a consistent snapshot of at least the rows present
// before Append started.
type VectorIndex interface {
	IndexBase

	// Build trains the index from scratch. Must be called at most once
	// per handle; a second call is a programming error.
	Build(ctx context.Context, ds Dataset, params Params) error

	// Append incrementally adds rows without retraining.
	Append(ctx context.Context, ds Dataset, params Params) error

	// Search returns, for every query vector, the topK nearest row ids
	// and their distances under the index's configured metric.
	Search(ctx context.Context, queries Dataset, topK int, params Params) (SearchResult, error)
}

// SearchResult holds per-query neighbor ids and distances, row-major:
// Ids[q*TopK:(q+1)*TopK] are the neighbors of query q.
type SearchResult struct {
	TopK int
	Ids  []int64
	Dist []float32
}
