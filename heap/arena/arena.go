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

// Package arena implements a monotone arena-growth primitive: a single
// contiguous byte range that grows by Extend(n) and never shrinks.
//
// Go has no sbrk/mmap-style "grow this region in place" primitive that
// guarantees already-committed bytes keep their address, so Arena
// reserves its full capacity up front (from a single mcache.Malloc call)
// and Extend only ever advances a logical size cursor within it. This
// keeps the allocator's base address fixed for the arena's lifetime
// without any pointer-fixup machinery.
package arena

import (
	"unsafe"

	"github.com/bytedance/gopkg/lang/mcache"
)

// Limit is the hard cap on arena size (100 MiB).
const Limit = 0x6400000

// Arena is a single contiguous, monotonically growing byte range.
type Arena struct {
	buf  []byte
	size int
}

// New creates an Arena capped at Limit.
func New() *Arena {
	return NewWithLimit(Limit)
}

// NewWithLimit creates an Arena capped at limit bytes, or at Limit if
// limit is larger. Smaller limits are mainly useful for exercising OOM
// behavior in tests without reserving a full 100 MiB per case.
func NewWithLimit(limit int) *Arena {
	if limit > Limit {
		limit = Limit
	}
	return &Arena{buf: mcache.Malloc(limit)}
}

// Extend grows the arena's logical size by n bytes and returns the
// address of the first new byte, or ok=false if doing so would exceed
// the arena's capacity.
func (a *Arena) Extend(n int) (addr unsafe.Pointer, ok bool) {
	if n <= 0 || a.size+n > len(a.buf) {
		return nil, false
	}
	addr = unsafe.Pointer(&a.buf[a.size])
	a.size += n
	return addr, true
}

// Lo returns the arena's base address.
func (a *Arena) Lo() unsafe.Pointer {
	return unsafe.Pointer(&a.buf[0])
}

// Hi returns the arena's current exclusive upper bound (Lo() + Size()),
// one past the last committed byte.
func (a *Arena) Hi() unsafe.Pointer {
	return unsafe.Add(a.Lo(), a.size)
}

// Size returns the current logical byte count.
func (a *Arena) Size() int {
	return a.size
}

// Cap returns the arena's fixed capacity (the limit passed to
// NewWithLimit, at most Limit, or Limit for New).
func (a *Arena) Cap() int {
	return len(a.buf)
}

// Reset returns the arena to its just-constructed state without
// releasing the backing buffer, so a pooled Arena can back a fresh Heap.
// See cache/heappool.
func (a *Arena) Reset() {
	a.size = 0
}

// Release returns the backing buffer to the mcache pool. The Arena must
// not be used after calling Release.
func (a *Arena) Release() {
	mcache.Free(a.buf)
	a.buf = nil
}
