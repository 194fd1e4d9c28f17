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

// Package segcore implements the growing-segment vector indexing
// engine: per-field index configuration derivation, the build-once/
// append-rest state machine, and the per-collection coordination
// object that owns one indexer per indexable field.
package segcore

// SegcoreConfig carries the knobs the growing-segment indexer needs.
// spec.md §9 notes that the original C++ keeps this behind a mutable
// process-wide singleton purely as a concession to its cross-language
// boundary; it is not load-bearing, so this module makes it an
// explicit, caller-constructed value instead — there is no package
// level default() singleton here.
type SegcoreConfig struct {
	// ChunkRows is the fixed row capacity of one VectorStore chunk.
	ChunkRows int64
	// Nlist is the IVF coarse-partition count.
	Nlist int64
	// Nprobe is the number of partitions probed at query time.
	Nprobe int64
	// EnableGrowingSegmentIndex gates whether IndexingRecord
	// constructs any vector indexers at all.
	EnableGrowingSegmentIndex bool
}

// NewDefaultSegcoreConfig returns the documented defaults (I4):
// chunk_rows=32Ki, nlist=100, nprobe=4, growing-segment indexing on.
func NewDefaultSegcoreConfig() SegcoreConfig {
	return SegcoreConfig{
		ChunkRows:                 32 * 1024,
		Nlist:                     100,
		Nprobe:                    4,
		EnableGrowingSegmentIndex: true,
	}
}
