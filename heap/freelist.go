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

import "unsafe"

// freeList is one of the 13 size-class buckets: a circular doubly
// linked list threaded through the prev_off/next_off words stored in
// each member's free payload. head is the offset of the list's header
// word, or nullOffset when empty.
//
// Deliberately not built on container/ring.Ring[V]: Ring is a fixed,
// slice-backed structure, while this list is intrusive over blocks that
// already live in the arena -- there is no separate backing slice to
// hand it.
type freeList struct {
	head offset
}

func (h *Heap) prevOffOf(b unsafe.Pointer) offset {
	return offset(*(*uint32)(unsafe.Add(b, headerSize)))
}

func (h *Heap) nextOffOf(b unsafe.Pointer) offset {
	return offset(*(*uint32)(unsafe.Add(b, headerSize+4)))
}

func (h *Heap) setPrevOffOf(b unsafe.Pointer, off offset) {
	*(*uint32)(unsafe.Add(b, headerSize)) = uint32(off)
}

func (h *Heap) setNextOffOf(b unsafe.Pointer, off offset) {
	*(*uint32)(unsafe.Add(b, headerSize+4)) = uint32(off)
}

// listInsert splices b in as the new head of list, LIFO-style.
func (h *Heap) listInsert(class int, b unsafe.Pointer) {
	list := &h.lists[class]
	bOff := h.toOff(b)
	if list.head == nullOffset {
		h.setPrevOffOf(b, bOff)
		h.setNextOffOf(b, bOff)
		list.head = bOff
		return
	}
	head := h.toAddr(list.head)
	tail := h.toAddr(h.prevOffOf(head))
	h.setNextOffOf(tail, bOff)
	h.setPrevOffOf(b, h.toOff(tail))
	h.setNextOffOf(b, list.head)
	h.setPrevOffOf(head, bOff)
	list.head = bOff
}

// listRemove unlinks b from class's list. b must currently be a member.
func (h *Heap) listRemove(class int, b unsafe.Pointer) {
	list := &h.lists[class]
	bOff := h.toOff(b)
	prevOff := h.prevOffOf(b)
	nextOff := h.nextOffOf(b)
	if prevOff == bOff && nextOff == bOff {
		list.head = nullOffset
		return
	}
	prev := h.toAddr(prevOff)
	next := h.toAddr(nextOff)
	h.setNextOffOf(prev, nextOff)
	h.setPrevOffOf(next, prevOff)
	if list.head == bOff {
		list.head = nextOff
	}
}

// add inserts a free block into the list matching its own size class.
func (h *Heap) add(b unsafe.Pointer) {
	h.listInsert(classOf(sizeOf(b)), b)
}

// remove deletes a free block from the list matching its own size class.
func (h *Heap) remove(b unsafe.Pointer) {
	h.listRemove(classOf(sizeOf(b)), b)
}
