//go:build heapdebug

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

package heap

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdbrandon/cmu/heap/arena"
)

func newCheckedHeap(t *testing.T) *Heap {
	t.Helper()
	h, err := New(arena.New(), WithDebugChecker())
	require.NoError(t, err)
	return h
}

func TestCheckPassesThroughAllocFreeCycle(t *testing.T) {
	h := newCheckedHeap(t)
	assert.NotPanics(t, func() {
		a := h.Alloc(32)
		b := h.Alloc(64)
		h.Free(a)
		h.Free(b)
		h.Alloc(16)
	})
}

func TestCheckNoopWithoutDebugChecker(t *testing.T) {
	h, err := New(arena.New())
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		h.check("manual")
	})
}

func TestCheckDetectsCorruptedFreeList(t *testing.T) {
	h := newCheckedHeap(t)
	p := h.Alloc(32)
	h.Free(p)

	// Corrupt the free list directly: redirect the sole free block's
	// next offset to the epilog sentinel (a valid in-arena address so
	// the checker's read stays memory-safe, but one whose prev_off word
	// can never equal this block's own offset), breaking
	// prev(next(b)) == b.
	b := h.lists[classOf(sizeOf(toBlock(h, p)))].head
	blk := h.toAddr(b)
	h.setNextOffOf(blk, h.epilogOff)

	assert.Panics(t, func() {
		h.check("manual")
	})
}

func toBlock(h *Heap, p unsafe.Pointer) unsafe.Pointer {
	return unsafe.Add(p, -headerSize)
}
