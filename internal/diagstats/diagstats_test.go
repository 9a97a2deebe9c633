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

package diagstats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveAndCount(t *testing.T) {
	r := New(4)
	assert.Equal(t, 0, r.Count())

	r.Observe(8)
	r.Observe(16)
	assert.Equal(t, 2, r.Count())
}

func TestWindowOverwritesOldest(t *testing.T) {
	r := New(3)
	r.Observe(1)
	r.Observe(2)
	r.Observe(3)
	r.Observe(4) // overwrites the sample of 1

	require.Equal(t, 3, r.Count())
	assert.InDelta(t, (2.0+3.0+4.0)/3.0, r.Mean(), 0.001)
}

func TestMeanOfEmptyIsZero(t *testing.T) {
	r := New(4)
	assert.Equal(t, float64(0), r.Mean())
	assert.Equal(t, uint64(0), r.P99())
}

func TestP99(t *testing.T) {
	r := New(100)
	for i := 1; i <= 100; i++ {
		r.Observe(i)
	}
	assert.Equal(t, uint64(100), r.P99())
}

func TestNilRecorderToleratesAllMethods(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.Observe(8)
		_ = r.Count()
		_ = r.Mean()
		_ = r.P99()
	})
}

func TestNewDefaultsNonPositiveWindow(t *testing.T) {
	r := New(0)
	for i := 0; i < DefaultWindow+10; i++ {
		r.Observe(i)
	}
	assert.Equal(t, DefaultWindow, r.Count())
}
