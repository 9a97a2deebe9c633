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

func TestWalkForwardVisitsEveryLiveBlockInOrder(t *testing.T) {
	h, err := New(arena.New())
	require.NoError(t, err)

	a := h.Alloc(16)
	b := h.Alloc(32)
	c := h.Alloc(64)

	var seen []unsafe.Pointer
	h.walkForward(func(blk unsafe.Pointer) {
		seen = append(seen, unsafe.Add(blk, headerSize))
	})

	assert.Equal(t, []unsafe.Pointer{a, b, c}, seen)
}

func TestBlockPrevNextAtSentinels(t *testing.T) {
	h, err := New(arena.New())
	require.NoError(t, err)

	assert.Nil(t, h.blockPrev(h.prologAddr()))
	assert.Nil(t, h.blockNext(h.epilogAddr()))
}

func TestBlockPrevUsesFooterForGeneralClass(t *testing.T) {
	h, err := New(arena.New())
	require.NoError(t, err)

	p := h.Alloc(64) // class >= 2, has a footer
	q := h.Alloc(32)

	bp := unsafe.Add(p, -headerSize)
	bq := unsafe.Add(q, -headerSize)
	assert.Equal(t, bp, h.blockPrev(bq))
	assert.Equal(t, bq, h.blockNext(bp))
}

func TestBlockPrevUsesHintBitsForFixedClass(t *testing.T) {
	h, err := New(arena.New())
	require.NoError(t, err)

	p := h.Alloc(16) // footer-less class
	q := h.Alloc(32)

	bp := unsafe.Add(p, -headerSize)
	bq := unsafe.Add(q, -headerSize)
	assert.Equal(t, bp, h.blockPrev(bq))
}
