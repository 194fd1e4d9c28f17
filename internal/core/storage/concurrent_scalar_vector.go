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

package storage

// ScalarChunkStore is the scalar analogue of VectorStore: the same
// chunked, append-only buffer shape, generic over the scalar Go type a
// field was declared with. Scalar per-chunk indexing (§4.3) reads from
// this contract instead of VectorStore.
type ScalarChunkStore[T any] interface {
	SizePerChunk() int64
	NumChunk() int64
	Chunk(chunkID int64) []T
}

// ConcurrentScalarVector is a ScalarChunkStore implementation, the
// generic sibling of ConcurrentVector for non-vector fields.
type ConcurrentScalarVector[T any] struct {
	sizePerChunk int64
	chunks       [][]T
	numRow       int64
}

// NewConcurrentScalarVector constructs an empty store chunked at
// sizePerChunk rows.
func NewConcurrentScalarVector[T any](sizePerChunk int64) *ConcurrentScalarVector[T] {
	return &ConcurrentScalarVector[T]{sizePerChunk: sizePerChunk}
}

// SizePerChunk implements ScalarChunkStore.
func (c *ConcurrentScalarVector[T]) SizePerChunk() int64 { return c.sizePerChunk }

// NumChunk implements ScalarChunkStore.
func (c *ConcurrentScalarVector[T]) NumChunk() int64 { return int64(len(c.chunks)) }

// Chunk implements ScalarChunkStore.
func (c *ConcurrentScalarVector[T]) Chunk(chunkID int64) []T { return c.chunks[chunkID] }

// NumRow returns the number of rows written so far.
func (c *ConcurrentScalarVector[T]) NumRow() int64 { return c.numRow }

// Append writes size rows starting at reservedOffset.
func (c *ConcurrentScalarVector[T]) Append(reservedOffset, size int64, data []T) {
	end := reservedOffset + size
	for end > int64(len(c.chunks))*c.sizePerChunk {
		c.chunks = append(c.chunks, make([]T, c.sizePerChunk))
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
		copy(c.chunks[chunkID][chunkOffset:chunkOffset+n], data[written:written+n])
		row += n
		written += n
	}
	if end > c.numRow {
		c.numRow = end
	}
}
