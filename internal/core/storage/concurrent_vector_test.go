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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConcurrentVector_AppendWithinOneChunk(t *testing.T) {
	v := NewConcurrentVector(2, 4)
	v.Append(0, 2, []float32{1, 1, 2, 2})
	assert.Equal(t, int64(1), v.NumChunk())
	assert.Equal(t, int64(2), v.NumRow())
	assert.Equal(t, []float32{1, 1, 2, 2, 0, 0, 0, 0}, v.ChunkData(0))
}

func TestConcurrentVector_AppendAcrossChunkBoundary(t *testing.T) {
	v := NewConcurrentVector(1, 2)
	// rows 0,1 fill chunk 0; rows 2,3 spill into a fresh chunk 1.
	v.Append(0, 4, []float32{10, 20, 30, 40})
	assert.Equal(t, int64(2), v.NumChunk())
	assert.Equal(t, []float32{10, 20}, v.ChunkData(0))
	assert.Equal(t, []float32{30, 40}, v.ChunkData(1))
}

func TestConcurrentVector_SequentialAppendsPreserveEarlierChunks(t *testing.T) {
	v := NewConcurrentVector(1, 2)
	v.Append(0, 2, []float32{1, 2})
	first := v.ChunkData(0)

	v.Append(2, 2, []float32{3, 4})
	assert.Equal(t, []float32{1, 2}, first, "earlier chunk slice must stay valid after later appends")
	assert.Equal(t, []float32{3, 4}, v.ChunkData(1))
	assert.Equal(t, int64(4), v.NumRow())
}

func TestConcurrentScalarVector_AppendAcrossChunkBoundary(t *testing.T) {
	v := NewConcurrentScalarVector[int64](2)
	v.Append(0, 3, []int64{7, 8, 9})
	assert.Equal(t, int64(2), v.NumChunk())
	assert.Equal(t, []int64{7, 8}, v.Chunk(0))
	assert.Equal(t, []int64{9, 0}, v.Chunk(1))
	assert.Equal(t, int64(3), v.NumRow())
}
