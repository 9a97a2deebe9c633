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

// Package heap implements a segregated-fit dynamic memory allocator over
// a single contiguous, monotonically growing arena.
//
// The allocator's data structures are:
//
//	Arena:     the backing byte range, grown via arena.Arena.Extend.
//	Header:    a 4-byte word encoding payload size, the alloc bit, and
//	           two hint bits describing the physical predecessor.
//	Free list: 13 size-class buckets, each a circular doubly linked list
//	           threaded through prev/next offsets stored in free payloads.
//
// Allocating proceeds by size-class lookup, a bounded best-fit search of
// the matching list (falling back to the catch-all class), and, on a
// miss, extending the arena. Freeing reclassifies and coalesces with up
// to two physical neighbors before reinserting into the appropriate list.
//
// The allocator is single-threaded: no operation yields, blocks, or
// reenters. Callers needing concurrent access must serialize externally.
package heap
