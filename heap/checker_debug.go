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
	"fmt"
	"unsafe"

	"github.com/jdbrandon/cmu/hash/xfnv"
	"github.com/jdbrandon/cmu/heap/snapshot"
	"github.com/jdbrandon/cmu/internal/hack"
)

// check runs the full consistency checker on entry and exit of every
// public operation, when the binary is built with -tags heapdebug and
// WithDebugChecker was requested. It verifies, in one forward pass,
// payload alignment and walker chaining in both directions while
// tallying the number of free blocks; it then walks each of the 13 free
// lists, verifying circularity and that every member is actually free
// and belongs to that list's class, decrementing the tally as it goes.
// A nonzero tally at the end means some free block is unreachable from
// any list, or some list member isn't actually free. Any violation
// panics with a snapshot of every block's layout and an xfnv
// fingerprint of that snapshot attached, so a failure can be reproduced
// without a debugger.
func (h *Heap) check(tag string) {
	if !h.debugChecker {
		return
	}
	freeCount := 0
	h.walkForward(func(b unsafe.Pointer) {
		payload := unsafe.Add(b, headerSize)
		if uintptr(payload)%8 != 0 {
			h.fail(tag, fmt.Sprintf("payload at offset %d not 8-aligned", h.toOff(b)))
		}
		if prev := h.blockPrev(b); prev != nil {
			if n := h.blockNext(prev); n != b {
				h.fail(tag, fmt.Sprintf("block_next(block_prev(%d)) != %d", h.toOff(b), h.toOff(b)))
			}
		}
		if next := h.blockNext(b); next != nil {
			if p := h.blockPrev(next); p != b {
				h.fail(tag, fmt.Sprintf("block_prev(block_next(%d)) != %d", h.toOff(b), h.toOff(b)))
			}
		}
		if isFree(b) {
			freeCount++
		}
	})

	for class := 0; class < numClasses; class++ {
		list := &h.lists[class]
		if list.head == nullOffset {
			continue
		}
		head := h.toAddr(list.head)
		cur := head
		for {
			if !isFree(cur) {
				h.fail(tag, fmt.Sprintf("block at offset %d is on list %d but not free", h.toOff(cur), class))
			}
			if classOf(sizeOf(cur)) != class {
				h.fail(tag, fmt.Sprintf("block at offset %d belongs to class %d, found on list %d", h.toOff(cur), classOf(sizeOf(cur)), class))
			}
			next := h.toAddr(h.nextOffOf(cur))
			if h.prevOffOf(next) != h.toOff(cur) {
				h.fail(tag, fmt.Sprintf("prev(next) mismatch at offset %d", h.toOff(cur)))
			}
			freeCount--
			cur = next
			if cur == head {
				break
			}
		}
	}

	if freeCount != 0 {
		h.fail(tag, fmt.Sprintf("%d free block(s) unaccounted for across all lists", freeCount))
	}
}

func (h *Heap) fail(tag, reason string) {
	var blocks []snapshot.BlockInfo
	h.walkForward(func(b unsafe.Pointer) {
		blocks = append(blocks, snapshot.BlockInfo{
			Offset:  uint32(h.toOff(b)),
			Size:    uint32(sizeOf(b)),
			Alloc:   !isFree(b),
			PFixed:  isPFixed(b),
			SzClass: szClassBit(b) == 1,
		})
	})
	dump := snapshot.Dump(blocks)
	fingerprint := xfnv.Hash(dump)
	panic(fmt.Sprintf("heap: consistency check failed at %s: %s (heap fingerprint %x, %s)",
		tag, reason, fingerprint, hack.ByteSliceToString(dump)))
}
