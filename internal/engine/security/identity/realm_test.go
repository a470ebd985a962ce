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

package identity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func writeRealm(t *testing.T, users []realmUser) string {
	t.Helper()
	data, err := sonic.Marshal(realmFile{Users: users})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "realm.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestFileRealmAuthenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	path := writeRealm(t, []realmUser{
		{Name: "Alice", PasswordHash: string(hash), Roles: []string{"devs"}},
	})

	realm, err := NewFileRealm(path)
	require.NoError(t, err)

	user, err := realm.Authenticate("alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, []string{"devs"}, user.Roles)

	_, err = realm.Authenticate("alice", "wrong")
	assert.ErrorIs(t, err, ErrIncorrectPassword)

	_, err = realm.Authenticate("bob", "secret")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFileRealmMissingFile(t *testing.T) {
	_, err := NewFileRealm(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestUserSids(t *testing.T) {
	u := User{Name: "alice", Roles: []string{"devs", "ops"}}
	assert.Equal(t, []string{"alice", "devs", "ops"}, u.Sids())

	assert.True(t, Anonymous.IsAnonymous())
	assert.True(t, User{}.IsAnonymous())
	assert.False(t, u.IsAnonymous())
}
