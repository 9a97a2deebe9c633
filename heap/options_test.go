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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdbrandon/cmu/heap/arena"
)

func TestWithDiagnosticsInstallsRecorder(t *testing.T) {
	h, err := New(arena.New(), WithDiagnostics())
	require.NoError(t, err)
	assert.NotNil(t, h.Stats())
}

func TestWithDebugCheckerSetsFlag(t *testing.T) {
	h, err := New(arena.New(), WithDebugChecker())
	require.NoError(t, err)
	assert.True(t, h.debugChecker)
}

func TestNoOptionsLeavesDefaults(t *testing.T) {
	h, err := New(arena.New())
	require.NoError(t, err)
	assert.Nil(t, h.Stats())
	assert.False(t, h.debugChecker)
}
