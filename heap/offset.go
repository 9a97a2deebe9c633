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

// offset is a 32-bit displacement from a Heap's base address. offset(0)
// always means "null" -- the arena's first 4 bytes are an unused
// alignment pad, so no live header ever sits at offset 0.
type offset uint32

const nullOffset offset = 0

// toOff converts an absolute address within the arena to an offset from
// base. The address/offset conversion lives only here; the stored link
// words themselves are read and written as uint32 at fixed payload
// positions in freelist.go, so the link width is not confined to this
// file.
func (h *Heap) toOff(addr unsafe.Pointer) offset {
	return offset(uintptr(addr) - uintptr(h.base))
}

// toAddr converts an offset back to an absolute address. Callers must not
// pass nullOffset; offsets are only dereferenced after a non-null check.
func (h *Heap) toAddr(off offset) unsafe.Pointer {
	return unsafe.Add(h.base, uintptr(off))
}
