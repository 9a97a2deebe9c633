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

import "errors"

// ErrNilArena is returned by New when given a nil arena.
var ErrNilArena = errors.New("heap: arena must not be nil")

// ErrArenaNotEmpty is returned by New when the arena already has bytes
// committed; a Heap must own its arena from offset 0.
var ErrArenaNotEmpty = errors.New("heap: arena must be empty")

// ErrInit is returned by New when the initial sentinel reservation
// (extend by 16 bytes) fails, e.g. because the arena's limit is smaller
// than 16 bytes.
var ErrInit = errors.New("heap: failed to reserve sentinel blocks")
