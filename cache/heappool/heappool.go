// Copyright 2024 CloudWeGo Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package heappool pools ready-to-use *heap.Heap contexts bucketed by
// power-of-two arena capacity (the largest bucket is capped at
// arena.Limit), for harnesses (tests, fuzzers,
// benchmarks) that construct many short-lived heaps and would
// otherwise pay heap.New's arena reservation cost every time.
package heappool

import (
	"math/bits"
	"sync"

	"github.com/jdbrandon/cmu/heap"
	"github.com/jdbrandon/cmu/heap/arena"
)

const (
	minPoolCap = 64 * 1024    // smallest bucket
	maxPoolCap = arena.Limit  // largest bucket, the allocator's hard cap
)

type bucket struct {
	sync.Pool
	capacity int
}

var buckets []*bucket

// bits2idx maps bits.Len(capacity) to the index of `buckets`.
var bits2idx [64]int

func init() {
	i := 0
	for c := minPoolCap; ; c <<= 1 {
		capacity := c
		if capacity > maxPoolCap {
			// maxPoolCap is not a power of two: the last bucket is capped at it.
			capacity = maxPoolCap
		}
		b := &bucket{capacity: capacity}
		b.New = func() interface{} {
			a := arena.NewWithLimit(capacity)
			h, err := heap.New(a)
			if err != nil {
				// capacity >= minPoolCap is always >= sentinelBytes.
				panic(err)
			}
			return h
		}
		buckets = append(buckets, b)
		if capacity == c {
			bits2idx[bits.Len(uint(capacity))] = i
		}
		i++
		if capacity == maxPoolCap {
			break
		}
	}
}

func bucketIndex(capHint int) int {
	if capHint <= minPoolCap {
		return 0
	}
	if capHint > maxPoolCap {
		capHint = maxPoolCap
	}
	i := bits2idx[bits.Len(uint(capHint))]
	if uint(capHint)&(uint(capHint)-1) == 0 {
		return i
	}
	return i + 1
}

// Get returns a *heap.Heap whose arena has capacity at least capHint,
// either freshly constructed or recycled from a prior Put. A capHint
// above arena.Limit is treated as arena.Limit.
func Get(capHint int) *heap.Heap {
	b := buckets[bucketIndex(capHint)]
	return b.Get().(*heap.Heap)
}

// Put resets h and returns it to the pool for reuse. capHint must match
// the value originally passed to Get so the heap lands back in the same
// bucket it was drawn from.
func Put(capHint int, h *heap.Heap) {
	h.Reset()
	buckets[bucketIndex(capHint)].Put(h)
}
