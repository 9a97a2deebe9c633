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

// Package snapshot serializes a heap's block layout to a flat binary
// format, used by the debug consistency checker to attach reproducible
// state to a failure report.
//
// It depends only on a plain []BlockInfo, not on package heap, so heap's
// debug checker can import it without an import cycle.
package snapshot

import (
	"encoding/binary"

	"github.com/jdbrandon/cmu/xbuf"
)

// BlockInfo describes one physical block for dump/restore purposes.
type BlockInfo struct {
	Offset  uint32
	Size    uint32
	Alloc   bool
	PFixed  bool
	SzClass bool
}

const recordLen = 12 // offset(4) + size(4) + flags(4)

const (
	flagAlloc   = 1 << 0
	flagPFixed  = 1 << 1
	flagSzClass = 1 << 2
)

// Dump encodes blocks as a sequence of fixed-width records, using a
// pooled xbuf.XWriteBuffer for the scratch space (offset/size are still
// plain encoding/binary fields -- the pooling is what's worth reusing,
// not a hand-rolled int codec).
func Dump(blocks []BlockInfo) []byte {
	wb := xbuf.NewXWriteBuffer()
	defer wb.Free()

	for _, blk := range blocks {
		rec := wb.MallocN(recordLen)
		binary.LittleEndian.PutUint32(rec[0:4], blk.Offset)
		binary.LittleEndian.PutUint32(rec[4:8], blk.Size)
		var flags uint32
		if blk.Alloc {
			flags |= flagAlloc
		}
		if blk.PFixed {
			flags |= flagPFixed
		}
		if blk.SzClass {
			flags |= flagSzClass
		}
		binary.LittleEndian.PutUint32(rec[8:12], flags)
	}

	bufs := wb.Bytes()
	out := make([]byte, 0, len(bufs)*recordLen)
	for _, b := range bufs {
		out = append(out, b...)
	}
	return out
}

// Load decodes a buffer produced by Dump back into []BlockInfo.
func Load(b []byte) []BlockInfo {
	if len(b) == 0 {
		return nil
	}
	rb := xbuf.NewXReadBuffer([][]byte{b})
	defer rb.Free()

	n := len(b) / recordLen
	out := make([]BlockInfo, 0, n)
	for i := 0; i < n; i++ {
		rec := rb.ReadN(recordLen)
		flags := binary.LittleEndian.Uint32(rec[8:12])
		out = append(out, BlockInfo{
			Offset:  binary.LittleEndian.Uint32(rec[0:4]),
			Size:    binary.LittleEndian.Uint32(rec[4:8]),
			Alloc:   flags&flagAlloc != 0,
			PFixed:  flags&flagPFixed != 0,
			SzClass: flags&flagSzClass != 0,
		})
	}
	return out
}
