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
	"math"
	"unsafe"

	"github.com/jdbrandon/cmu/heap/arena"
	"github.com/jdbrandon/cmu/internal/diagstats"
)

// Heap is the placement engine: size-class selection, bounded best-fit
// search, split on oversize, three-way coalesce on free, and in-place
// grow on realloc. A Heap owns exactly one Arena and must not be shared
// across goroutines without external synchronization.
type Heap struct {
	arena *arena.Arena
	base  unsafe.Pointer

	prologOff offset
	epilogOff offset

	lists [numClasses]freeList

	stats        *diagstats.Recorder
	debugChecker bool
}

// sentinelBytes is the size reserved for the prolog+epilog pair at init:
// a 4-byte alignment pad, the prolog header, its reserved footer slot,
// and the epilog header.
const sentinelBytes = 16

// New arms a Heap over a, installing the prolog and epilog sentinels in
// its first 16 bytes.
func New(a *arena.Arena, opts ...Option) (*Heap, error) {
	if a == nil {
		return nil, ErrNilArena
	}
	if a.Size() != 0 {
		return nil, ErrArenaNotEmpty
	}
	if _, ok := a.Extend(sentinelBytes); !ok {
		return nil, ErrInit
	}
	h := &Heap{arena: a, base: a.Lo()}
	h.initSentinels()
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

func (h *Heap) initSentinels() {
	// [0,4) pad, [4,8) prolog header, [8,12) reserved slot, [12,16) epilog.
	h.prologOff = 4
	h.epilogOff = 12
	setHeaderAt(h.toAddr(0), 0)
	setHeaderAt(h.prologAddr(), maskAlloc)
	setHeaderAt(unsafe.Add(h.prologAddr(), headerSize), 0)
	setHeaderAt(h.epilogAddr(), maskAlloc)
}

// Reset returns the Heap to its just-initialized state, reusing the same
// arena and backing storage. Intended for cache/heappool.
func (h *Heap) Reset() {
	h.arena.Reset()
	h.lists = [numClasses]freeList{}
	if _, ok := h.arena.Extend(sentinelBytes); !ok {
		panic("heap: Reset: arena too small to reinitialize")
	}
	h.initSentinels()
}

// Alloc returns an 8-aligned payload of at least n bytes, or nil on an
// invalid request or OOM.
func (h *Heap) Alloc(n int) unsafe.Pointer {
	h.check("Alloc:enter")
	defer h.check("Alloc:exit")

	if h.stats != nil {
		h.stats.Observe(n)
	}

	size := normalizeSize(n)
	if size == 0 {
		return nil
	}

	class := classOf(size)
	if b := h.searchlist(class, size); b != nil {
		return b
	}
	if class != catchAllClass {
		if b := h.searchlist(catchAllClass, size); b != nil {
			return b
		}
	}
	return h.extend(size)
}

// extend grows the arena by size+8 bytes and carves the new block out of
// the freshly committed space.
func (h *Heap) extend(size int) unsafe.Pointer {
	oldEpilog := h.epilogAddr()
	if _, ok := h.arena.Extend(size + 8); !ok {
		return nil
	}

	preserve := hintBits(oldEpilog)
	setHeaderAt(oldEpilog, uint32(size)|maskAlloc|preserve)

	newEpilog := unsafe.Add(oldEpilog, size+2*headerSize)
	setHeaderAt(newEpilog, maskAlloc)
	h.epilogOff = h.toOff(newEpilog)

	h.mark(oldEpilog)
	return unsafe.Add(oldEpilog, headerSize)
}

// searchlist: classes below bestFitClassFloor are immediate-hit (every
// member already fits), classes at or above it
// use bounded best-fit with lookahead. A fit that leaves at least 16
// spare bytes is split via carve; otherwise the whole block is returned.
func (h *Heap) searchlist(class int, size int) unsafe.Pointer {
	list := &h.lists[class]
	if list.head == nullOffset {
		return nil
	}

	var victim unsafe.Pointer
	if class < bestFitClassFloor {
		victim = h.toAddr(list.head)
	} else {
		victim = h.bestFit(list, size)
		if victim == nil {
			return nil
		}
	}

	if sizeOf(victim)-size >= 16 {
		return h.carve(class, victim, size)
	}
	return h.found(class, victim)
}

// bestFit walks list starting at its head. The first member whose size
// fits becomes the current best; up to lookahead further members are
// then examined, and any strictly smaller fit replaces it. Ties are
// broken by encounter order. Stops early on wrap-around.
func (h *Heap) bestFit(list *freeList, size int) unsafe.Pointer {
	head := h.toAddr(list.head)
	cur := head

	var best unsafe.Pointer
	foundAt := -1
	steps := 0
	for {
		sz := sizeOf(cur)
		if sz >= size && (best == nil || sz < sizeOf(best)) {
			best = cur
			if foundAt == -1 {
				foundAt = steps
			}
		}

		nextOff := h.nextOffOf(cur)
		steps++
		if foundAt != -1 && steps-foundAt > lookahead {
			break
		}
		if nextOff == h.toOff(head) {
			break
		}
		cur = h.toAddr(nextOff)
	}
	return best
}

// carve splits victim into a low part sized exactly request (returned to
// the caller, allocated) and a high part (freed, reinserted). Both
// headers are written before the low part is mark()ed, so mark's
// hint-bit side effects on the high part land on a valid header rather
// than leftover payload bytes; the high part is then mark()ed in turn
// so its own successor's hints stay correct.
func (h *Heap) carve(class int, victim unsafe.Pointer, request int) unsafe.Pointer {
	h.listRemove(class, victim)

	victimSize := sizeOf(victim)
	lowPreserve := hintBits(victim)
	setHeaderAt(victim, uint32(request)|maskAlloc|lowPreserve)

	high := unsafe.Add(victim, request+2*headerSize)
	highSize := victimSize - request - 8
	setHeaderAt(high, uint32(highSize))

	h.mark(victim)
	h.mark(high)

	h.add(high)
	return unsafe.Add(victim, headerSize)
}

// found removes victim from its list and returns it whole, with no split.
func (h *Heap) found(class int, victim unsafe.Pointer) unsafe.Pointer {
	h.listRemove(class, victim)
	setHeaderAt(victim, headerAt(victim)|maskAlloc)
	h.mark(victim)
	return unsafe.Add(victim, headerSize)
}

// Free returns p to the allocator. p must be nil or a pointer previously
// returned by Alloc/Calloc/Realloc and not yet freed; nil is a no-op.
func (h *Heap) Free(p unsafe.Pointer) {
	h.check("Free:enter")
	defer h.check("Free:exit")

	if p == nil {
		return
	}
	b := unsafe.Add(p, -headerSize)
	prev := h.blockPrev(b)
	next := h.blockNext(b)

	setHeaderAt(b, headerAt(b)&^maskAlloc)

	pFree := isFree(prev)
	nFree := isFree(next)
	switch {
	case !pFree && !nFree:
		h.add(b)
	case !pFree && nFree:
		h.remove(next)
		merged := sizeOf(b) + sizeOf(next) + 8
		setHeaderAt(b, uint32(merged)|hintBits(b))
		h.mark(b)
		h.add(b)
	case pFree && !nFree:
		h.remove(prev)
		merged := sizeOf(prev) + sizeOf(b) + 8
		setHeaderAt(prev, uint32(merged)|hintBits(prev))
		h.mark(prev)
		h.add(prev)
	default: // both neighbors free
		h.remove(prev)
		h.remove(next)
		merged := sizeOf(prev) + sizeOf(b) + sizeOf(next) + 16
		setHeaderAt(prev, uint32(merged)|hintBits(prev))
		h.mark(prev)
		h.add(prev)
	}
}

// Realloc: n<=0 frees p and returns nil, a nil p allocates fresh, a
// same-size request is a no-op, and otherwise an in-place grow is
// attempted against up to both physical neighbors before falling back
// to allocate-copy-free.
func (h *Heap) Realloc(p unsafe.Pointer, n int) unsafe.Pointer {
	h.check("Realloc:enter")
	defer h.check("Realloc:exit")

	if n <= 0 {
		h.Free(p)
		return nil
	}
	if p == nil {
		return h.Alloc(n)
	}

	b := unsafe.Add(p, -headerSize)
	oldSize := sizeOf(b)
	newSize := normalizeSize(n)
	if newSize == oldSize {
		return p
	}

	next := h.blockNext(b)
	prev := h.blockPrev(b)
	nFree := isFree(next)
	pFree := isFree(prev)

	if nFree && oldSize+sizeOf(next)+8 >= newSize {
		h.remove(next)
		grown := oldSize + sizeOf(next) + 8
		setHeaderAt(b, uint32(grown)|maskAlloc|hintBits(b))
		h.mark(b)
		return p
	}
	if nFree && pFree && sizeOf(prev)+oldSize+sizeOf(next)+16 >= newSize {
		h.remove(next)
		h.remove(prev)
		grown := sizeOf(prev) + oldSize + sizeOf(next) + 16
		setHeaderAt(prev, uint32(grown)|maskAlloc|hintBits(prev))
		h.mark(prev)
		dst := unsafe.Add(prev, headerSize)
		copyBytes(dst, p, minInt(oldSize, n))
		return dst
	}
	if pFree && sizeOf(prev)+oldSize+8 >= newSize {
		h.remove(prev)
		grown := sizeOf(prev) + oldSize + 8
		setHeaderAt(prev, uint32(grown)|maskAlloc|hintBits(prev))
		h.mark(prev)
		dst := unsafe.Add(prev, headerSize)
		copyBytes(dst, p, minInt(oldSize, n))
		return dst
	}

	np := h.Alloc(n)
	if np == nil {
		return nil
	}
	copyBytes(np, p, minInt(oldSize, n))
	h.Free(p)
	return np
}

// Calloc allocates room for count objects of size bytes each and zeroes
// the payload. It rejects a count*size overflow rather than relying on
// callers to guard it (see DESIGN.md).
func (h *Heap) Calloc(count, size int) unsafe.Pointer {
	if count <= 0 || size <= 0 {
		return nil
	}
	if count > math.MaxInt/size {
		return nil
	}
	p := h.Alloc(count * size)
	if p == nil {
		return nil
	}
	b := unsafe.Add(p, -headerSize)
	clear(unsafe.Slice((*byte)(p), sizeOf(b)))
	return p
}

// copyBytes moves n bytes from src to dst. Go's builtin copy on byte
// slices behaves like memmove -- safe for the overlapping case that
// arises when Realloc absorbs a physical predecessor and must shift the
// payload to a lower address.
func copyBytes(dst, src unsafe.Pointer, n int) {
	if n <= 0 {
		return
	}
	copy(unsafe.Slice((*byte)(dst), n), unsafe.Slice((*byte)(src), n))
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Stats returns the diagnostics recorder enabled via WithDiagnostics, or
// nil if none was requested.
func (h *Heap) Stats() *diagstats.Recorder {
	return h.stats
}
