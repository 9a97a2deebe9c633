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

// Package diagstats keeps a rolling window of recent allocation-request
// sizes for diagnostics and benchmarking harnesses. It is ambient test
// tooling, not part of the allocator's core contract: a *Recorder is
// nil by default (see heap.WithDiagnostics) and every method tolerates
// a nil receiver so call sites never need a guard.
package diagstats

import (
	"sort"

	"github.com/jdbrandon/cmu/container/ring"
)

// DefaultWindow is the number of most-recent samples retained.
const DefaultWindow = 256

// Recorder tracks up to a fixed number of the most recent observed
// sizes, overwriting the oldest once full. Grounded on container/ring's
// fixed, GC-friendly Ring[V]: the window never grows or shrinks, so a
// slice-backed ring is a better fit than an intrusive list.
type Recorder struct {
	window *ring.Ring[uint64]
	cursor int
	filled int
}

// New creates a Recorder retaining up to n samples.
func New(n int) *Recorder {
	if n <= 0 {
		n = DefaultWindow
	}
	return &Recorder{window: ring.NewFromSlice(make([]uint64, n))}
}

// Observe records a single allocation request size.
func (r *Recorder) Observe(size int) {
	if r == nil {
		return
	}
	item, _ := r.window.Get(r.cursor)
	*item.Pointer() = uint64(size)
	r.cursor = (r.cursor + 1) % r.window.Len()
	if r.filled < r.window.Len() {
		r.filled++
	}
}

// Count returns the number of samples currently retained (<= window size).
func (r *Recorder) Count() int {
	if r == nil {
		return 0
	}
	return r.filled
}

// Mean returns the average of the retained samples, or 0 if empty.
func (r *Recorder) Mean() float64 {
	if r == nil || r.filled == 0 {
		return 0
	}
	var sum uint64
	n := 0
	r.window.Do(func(v *uint64) {
		if n < r.filled {
			sum += *v
		}
		n++
	})
	return float64(sum) / float64(r.filled)
}

// P99 returns the 99th percentile of the retained samples, or 0 if
// empty. It sorts a copy; not meant for a hot path.
func (r *Recorder) P99() uint64 {
	if r == nil || r.filled == 0 {
		return 0
	}
	samples := make([]uint64, 0, r.filled)
	n := 0
	r.window.Do(func(v *uint64) {
		if n < r.filled {
			samples = append(samples, *v)
		}
		n++
	})
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	idx := (len(samples) * 99) / 100
	if idx >= len(samples) {
		idx = len(samples) - 1
	}
	return samples[idx]
}
