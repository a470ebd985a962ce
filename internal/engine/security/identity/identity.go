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
	"context"
)

// User is an authenticated principal. Roles are treated as additional
// identities when matching team membership, so a role string can itself
// be a team member.
type User struct {
	Name  string
	Roles []string
}

// Anonymous is the principal used for unauthenticated requests.
var Anonymous = User{Name: "anonymous"}

// Sids returns the principal name followed by every role name.
func (u User) Sids() []string {
	sids := make([]string, 0, len(u.Roles)+1)
	sids = append(sids, u.Name)
	sids = append(sids, u.Roles...)
	return sids
}

func (u User) IsAnonymous() bool {
	return u.Name == Anonymous.Name || u.Name == ""
}

// Provider resolves the principal attached to a request.
type Provider interface {
	CurrentUser(ctx context.Context) User
}
