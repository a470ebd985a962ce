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
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound      = errors.New("user does not exist")
	ErrIncorrectPassword = errors.New("incorrect password")
)

type realmUser struct {
	Name         string   `json:"name"`
	PasswordHash string   `json:"passwordHash"`
	Roles        []string `json:"roles,omitempty"`
}

type realmFile struct {
	Users []realmUser `json:"users"`
}

// FileRealm authenticates users against a local JSON file with bcrypt
// password hashes. Names match case-insensitively, like team membership.
type FileRealm struct {
	mu    sync.RWMutex
	users map[string]realmUser
}

func NewFileRealm(path string) (*FileRealm, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read realm file: %w", err)
	}
	var rf realmFile
	if err := sonic.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse realm file %s: %w", path, err)
	}
	users := make(map[string]realmUser, len(rf.Users))
	for _, u := range rf.Users {
		users[strings.ToLower(u.Name)] = u
	}
	return &FileRealm{users: users}, nil
}

// Authenticate verifies the password and returns the principal with its roles.
func (r *FileRealm) Authenticate(name, password string) (User, error) {
	r.mu.RLock()
	u, ok := r.users[strings.ToLower(name)]
	r.mu.RUnlock()
	if !ok {
		return User{}, ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrIncorrectPassword
	}
	return User{Name: u.Name, Roles: u.Roles}, nil
}
