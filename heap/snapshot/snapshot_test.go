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

package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpLoadRoundTrip(t *testing.T) {
	blocks := []BlockInfo{
		{Offset: 4, Size: 0, Alloc: true, PFixed: false, SzClass: false},
		{Offset: 12, Size: 16, Alloc: false, PFixed: false, SzClass: false},
		{Offset: 36, Size: 32, Alloc: true, PFixed: true, SzClass: false},
		{Offset: 76, Size: 24, Alloc: true, PFixed: true, SzClass: true},
	}

	dump := Dump(blocks)
	require.Len(t, dump, len(blocks)*recordLen)

	got := Load(dump)
	assert.Equal(t, blocks, got)
}

func TestLoadEmpty(t *testing.T) {
	assert.Nil(t, Load(nil))
	assert.Nil(t, Load([]byte{}))
}

func TestDumpEmpty(t *testing.T) {
	dump := Dump(nil)
	assert.Empty(t, dump)
}
