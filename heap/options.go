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

import "github.com/jdbrandon/cmu/internal/diagstats"

// Option configures a Heap at construction time. Kept to a plain
// functional-option closure over two knobs -- there is no larger config
// struct anywhere else in this module to justify one.
type Option func(*Heap)

// WithDiagnostics enables a rolling window of recent allocation-request
// sizes, retrievable via Heap.Stats. Disabled by default so a Heap built
// without this option pays no recording overhead.
func WithDiagnostics() Option {
	return func(h *Heap) {
		h.stats = diagstats.New(diagstats.DefaultWindow)
	}
}

// WithDebugChecker requests that the consistency checker run on entry
// and exit of every public operation. It only has an effect in binaries
// built with -tags heapdebug; elsewhere it is a documented no-op rather
// than a silently-ignored flag.
func WithDebugChecker() Option {
	return func(h *Heap) {
		h.debugChecker = true
	}
}
