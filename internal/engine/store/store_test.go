// Copyright 2025 Foundry Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

func TestFileStoreRoundTrip(t *testing.T) {
	home := t.TempDir()
	s := NewFileStore(home)

	assert.False(t, s.Exists())
	assert.Equal(t, filepath.Join(home, "teams", "teams.json"), s.Path())

	in := payload{Name: "dev", Items: []string{"a", "b"}}
	require.NoError(t, s.Write(in))
	assert.True(t, s.Exists())

	var out payload
	require.NoError(t, s.Read(&out))
	assert.Equal(t, in, out)
}

func TestFileStoreOverwrite(t *testing.T) {
	s := NewFileStore(t.TempDir())
	require.NoError(t, s.Write(payload{Name: "one"}))
	require.NoError(t, s.Write(payload{Name: "two"}))

	var out payload
	require.NoError(t, s.Read(&out))
	assert.Equal(t, "two", out.Name)
}

func TestFileStoreReadMissing(t *testing.T) {
	s := NewFileStore(t.TempDir())
	var out payload
	assert.Error(t, s.Read(&out))
}
