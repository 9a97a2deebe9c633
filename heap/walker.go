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

// blockNext returns the address of the block physically following b, or
// nil if b is the epilog sentinel. Every block -- allocated, free, or a
// sentinel -- spans exactly size(b)+8 bytes: a 4-byte header, the
// payload, and a reserved 4-byte footer slot (written only when
// hasFooter(class(b))).
func (h *Heap) blockNext(b unsafe.Pointer) unsafe.Pointer {
	if b == h.epilogAddr() {
		return nil
	}
	return unsafe.Add(b, sizeOf(b)+2*headerSize)
}

// blockPrev returns the address of the block physically preceding b, or
// nil if b is the prolog sentinel. It reconstructs the predecessor's
// size either from b's own PFIXED/SZCLASS hint bits (footer-less
// classes) or from the 4-byte footer word immediately preceding b.
func (h *Heap) blockPrev(b unsafe.Pointer) unsafe.Pointer {
	if b == h.prologAddr() {
		return nil
	}
	if isPFixed(b) {
		return unsafe.Add(b, -int(fixedBucketOffset(szClassBit(b))))
	}
	footer := *(*uint32)(unsafe.Add(b, -headerSize))
	size := int(footer & maskSize)
	return unsafe.Add(b, -(size + 8))
}

func (h *Heap) prologAddr() unsafe.Pointer {
	return h.toAddr(h.prologOff)
}

func (h *Heap) epilogAddr() unsafe.Pointer {
	return h.toAddr(h.epilogOff)
}

// walkForward calls f for every non-sentinel block from prolog to
// epilog, in physical order. Used by the debug checker, which also uses
// it to build the heap/snapshot records it attaches to a failure.
func (h *Heap) walkForward(f func(b unsafe.Pointer)) {
	b := h.blockNext(h.prologAddr())
	for b != h.epilogAddr() {
		f(b)
		b = h.blockNext(b)
	}
}
