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

// Thirteen size classes, indexed 0..12. classBounds[i] is the largest
// payload size (in bytes) that belongs to class i; class 12 is the
// catch-all and has no upper bound. Grounded on the "compute once, index
// by lookup table" shape of runtime/msize.go's class_to_size, though the
// class boundaries themselves are this allocator's own.
var classBounds = [numClasses - 1]int{
	8,    // class 0
	16,   // class 1
	24,   // class 2
	36,   // class 3
	40,   // class 4
	48,   // class 5
	56,   // class 6
	72,   // class 7
	104,  // class 8
	304,  // class 9
	504,  // class 10
	1000, // class 11
}

const (
	numClasses = 13

	classFixed8  = 0
	classFixed16 = 1
	classFixed24 = 2
	catchAllClass = numClasses - 1

	// bestFitClassFloor is the first class searched with bounded
	// best-fit; below it every list holds only exact-size blocks, so
	// the head is an immediate hit.
	bestFitClassFloor = 7

	// lookahead bounds how many extra candidates searchlist examines
	// past the first fit in a best-fit class. Two values show up across
	// known implementations of this scheme, 10 and 5, with neither
	// canonical; 10 is used here since the public API exposes no other
	// tuning knob to keep it consistent with.
	lookahead = 10
)

// classOf returns the size class for an already 8-aligned payload size.
func classOf(size int) int {
	for i, bound := range classBounds {
		if size <= bound {
			return i
		}
	}
	return catchAllClass
}

// normalizeSize rounds a request up to a multiple of 8, with two remaps
// for the smallest requests so every block has room for the free-list
// prev/next offsets (minimum 8-byte payload).
func normalizeSize(n int) int {
	switch {
	case n <= 0:
		return 0
	case n <= 12:
		return 8
	case n <= 20:
		return 16
	default:
		return (n + 7) &^ 7
	}
}
