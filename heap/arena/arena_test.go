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

package arena

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintptrDiff(hi, lo unsafe.Pointer) uintptr {
	return uintptr(hi) - uintptr(lo)
}

func TestExtendAdvancesSizeAndReturnsAddress(t *testing.T) {
	a := NewWithLimit(64)
	require.Equal(t, 0, a.Size())

	p1, ok := a.Extend(16)
	require.True(t, ok)
	require.Equal(t, a.Lo(), p1)
	assert.Equal(t, 16, a.Size())

	p2, ok := a.Extend(8)
	require.True(t, ok)
	assert.Equal(t, 24, a.Size())
	assert.NotEqual(t, p1, p2)
}

func TestExtendFailsPastLimit(t *testing.T) {
	a := NewWithLimit(16)
	_, ok := a.Extend(20)
	assert.False(t, ok)
	assert.Equal(t, 0, a.Size())

	_, ok = a.Extend(16)
	assert.True(t, ok)
	_, ok = a.Extend(1)
	assert.False(t, ok)
}

func TestExtendRejectsNonPositive(t *testing.T) {
	a := NewWithLimit(16)
	_, ok := a.Extend(0)
	assert.False(t, ok)
	_, ok = a.Extend(-1)
	assert.False(t, ok)
}

func TestBaseStaysFixedAcrossExtend(t *testing.T) {
	a := NewWithLimit(128)
	base := a.Lo()
	for i := 0; i < 8; i++ {
		_, ok := a.Extend(8)
		require.True(t, ok)
		assert.Equal(t, base, a.Lo())
	}
}

func TestHiTracksSize(t *testing.T) {
	a := NewWithLimit(32)
	a.Extend(10)
	assert.Equal(t, uintptr(10), uintptrDiff(a.Hi(), a.Lo()))
}

func TestResetReturnsToEmpty(t *testing.T) {
	a := NewWithLimit(32)
	a.Extend(16)
	a.Reset()
	assert.Equal(t, 0, a.Size())

	p, ok := a.Extend(8)
	require.True(t, ok)
	assert.Equal(t, a.Lo(), p)
}

func TestCapReflectsLimit(t *testing.T) {
	a := NewWithLimit(4096)
	assert.Equal(t, 4096, a.Cap())
}
