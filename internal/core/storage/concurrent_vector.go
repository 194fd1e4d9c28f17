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

// Package storage implements the chunked, append-only concurrent vector
// buffer (I1) that backs one field of a growing segment. Rows are
// written in fixed-size chunks; once a chunk is sealed (full) it is
// never mutated again, so readers may hold a chunk pointer without
// locking while a writer appends to later chunks.
package storage

// VectorStore is the (I1) contract the indexing core consumes: a
// chunked, append-only buffer of dim-wide float32 rows.
type VectorStore interface {
	// SizePerChunk returns the fixed row capacity of one chunk.
	SizePerChunk() int64
	// NumChunk returns the number of chunks allocated so far.
	NumChunk() int64
	// ChunkData returns a zero-copy view of chunkID's
	// SizePerChunk()*Dim contiguous float32 elements.
	ChunkData(chunkID int64) []float32
	// Dim returns the vector dimensionality.
	Dim() int64
}

// ConcurrentVector is a VectorStore implementation: a growable list of
// fixed-size chunks, written by a single producer and read by many.
// Chunk slices, once allocated, are never reallocated or resized, so a
// []float32 returned by ChunkData remains valid for the life of the
// store even while later chunks are being written.
type ConcurrentVector struct {
	dim          int64
	sizePerChunk int64

	chunks [][]float32 // append-only; index i is chunk i
	numRow int64       // rows actually written so far
}

// NewConcurrentVector constructs an empty store for vectors of the
// given dimensionality, chunked at sizePerChunk rows.
func NewConcurrentVector(dim, sizePerChunk int64) *ConcurrentVector {
	return &ConcurrentVector{dim: dim, sizePerChunk: sizePerChunk}
}

// Dim implements VectorStore.
func (c *ConcurrentVector) Dim() int64 { return c.dim }

// SizePerChunk implements VectorStore.
func (c *ConcurrentVector) SizePerChunk() int64 { return c.sizePerChunk }

// NumChunk implements VectorStore.
func (c *ConcurrentVector) NumChunk() int64 { return int64(len(c.chunks)) }

// ChunkData implements VectorStore.
func (c *ConcurrentVector) ChunkData(chunkID int64) []float32 {
	return c.chunks[chunkID]
}

// NumRow returns the number of rows written so far.
func (c *ConcurrentVector) NumRow() int64 { return c.numRow }

// Append writes size rows starting at reservedOffset. The host segment
// is responsible for reserving offsets so concurrent writers (there is
// at most one in practice, per spec.md §5) never overlap; Append itself
// grows chunks as needed and is not safe to call concurrently with
// itself, only with readers of already-sealed chunks.
func (c *ConcurrentVector) Append(reservedOffset, size int64, data []float32) {
	end := reservedOffset + size
	for end > int64(len(c.chunks))*c.sizePerChunk {
		c.chunks = append(c.chunks, make([]float32, c.sizePerChunk*c.dim))
	}

	written := int64(0)
	for row := reservedOffset; row < end; {
		chunkID := row / c.sizePerChunk
		chunkOffset := row % c.sizePerChunk
		chunkCap := c.sizePerChunk - chunkOffset
		remaining := end - row
		n := chunkCap
		if remaining < n {
			n = remaining
		}
		copy(c.chunks[chunkID][chunkOffset*c.dim:(chunkOffset+n)*c.dim], data[written*c.dim:(written+n)*c.dim])
		row += n
		written += n
	}
	if end > c.numRow {
		c.numRow = end
	}
}
