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

// Header bit layout (little-endian, as stored in the 4-byte word at a
// block's address):
//
//	0xFFFFFFF8  payload size in bytes, a multiple of 8
//	0x1         ALLOC: 1 if allocated, 0 if free
//	0x2         PFIXED: 1 iff the physical predecessor is a footer-less
//	            fixed-size block (class 0 or 1)
//	0x4         SZCLASS: when PFIXED=1, 0 selects the 16-byte class,
//	            1 selects the 24-byte class
const (
	maskSize    = 0xFFFFFFF8
	maskAlloc   = 0x1
	maskPFixed  = 0x2
	maskSzClass = 0x4
	maskHints   = maskPFixed | maskSzClass

	// headerSize is the width of both a header and a footer word.
	headerSize = 4
)

// fixedBlockSpan is the total physical span (header + payload + reserved
// footer slot) of the two footer-less classes, keyed by SZCLASS.
var fixedBlockSpan = [2]uintptr{16, 24}

func headerAt(b unsafe.Pointer) uint32 {
	return *(*uint32)(b)
}

func setHeaderAt(b unsafe.Pointer, v uint32) {
	*(*uint32)(b) = v
}

func sizeOf(b unsafe.Pointer) int {
	return int(headerAt(b) & maskSize)
}

func isFree(b unsafe.Pointer) bool {
	return headerAt(b)&maskAlloc == 0
}

func isPFixed(b unsafe.Pointer) bool {
	return headerAt(b)&maskPFixed != 0
}

// szClassBit returns 0 or 1, only meaningful when isPFixed(b).
func szClassBit(b unsafe.Pointer) int {
	if headerAt(b)&maskSzClass != 0 {
		return 1
	}
	return 0
}

func hintBits(b unsafe.Pointer) uint32 {
	return headerAt(b) & maskHints
}

// hasFooter reports whether blocks of the given class carry a real
// footer word. Classes 0 and 1 elide it; the footer slot still exists
// physically (block_next always adds size+8) but is left unwritten.
func hasFooter(class int) bool {
	return class >= 2
}

// mark writes the bookkeeping that depends on b's *successor* after b's
// own header has been set to its final size/alloc/hint bits. It must be
// called after every header mutation, and only after that mutation, so
// the successor never observes a half-written header.
func (h *Heap) mark(b unsafe.Pointer) {
	class := classOf(sizeOf(b))
	next := unsafe.Add(b, sizeOf(b)+2*headerSize)
	if !hasFooter(class) {
		v := headerAt(next) &^ maskHints
		v |= maskPFixed
		if class == classFixed16 {
			v |= maskSzClass
		}
		setHeaderAt(next, v)
		return
	}
	// Write the footer, a verbatim copy of the header, then clear the
	// hint bits the successor may have inherited from a smaller block
	// that used to occupy this slot.
	setHeaderAt(unsafe.Add(b, headerSize+sizeOf(b)), headerAt(b))
	setHeaderAt(next, headerAt(next)&^maskHints)
}

// fixedBucketOffset returns the physical span of the footer-less class
// selected by szClass (0 -> class 0, 1 -> class 1). Any other value is
// unreachable: PFIXED is only ever set by mark() for classes 0 or 1, so
// szClass is always 0 or 1 when PFIXED is set. Panic unconditionally
// (not just in debug builds) since silently returning 0 here would
// corrupt blockPrev.
func fixedBucketOffset(szClass int) uintptr {
	if szClass != 0 && szClass != 1 {
		panic("heap: fixedBucketOffset: szClass must be 0 or 1")
	}
	return fixedBlockSpan[szClass]
}
