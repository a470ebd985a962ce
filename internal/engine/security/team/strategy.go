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

package team

import "github.com/go-foundry/foundry/internal/engine/security/identity"

// AuthorizationStrategy hands out the ACL for each kind of protected
// object. Handlers never build ACLs themselves.
type AuthorizationStrategy interface {
	RootACL() *ACL
	TeamManagementACL() *ACL
	ACLForTeam(t *Team) *ACL
	ACLForJob(jobName string) *ACL
	ACLForView(viewName string) *ACL
	ACLForNode(nodeName string) *ACL
}

// TeamBasedAuthorizationStrategy derives every ACL from team membership
// and item ownership.
type TeamBasedAuthorizationStrategy struct {
	mgr *Manager
}

func NewTeamBasedAuthorizationStrategy(mgr *Manager) *TeamBasedAuthorizationStrategy {
	return &TeamBasedAuthorizationStrategy{mgr: mgr}
}

func (s *TeamBasedAuthorizationStrategy) Manager() *Manager {
	return s.mgr
}

func (s *TeamBasedAuthorizationStrategy) RootACL() *ACL {
	return NewACL(s.mgr, GlobalScope{})
}

func (s *TeamBasedAuthorizationStrategy) TeamManagementACL() *ACL {
	return NewACL(s.mgr, TeamManagementScope{})
}

func (s *TeamBasedAuthorizationStrategy) ACLForTeam(t *Team) *ACL {
	return NewACL(s.mgr, TeamScope{Team: t})
}

func (s *TeamBasedAuthorizationStrategy) ACLForJob(jobName string) *ACL {
	return NewACL(s.mgr, JobScope{JobName: jobName})
}

func (s *TeamBasedAuthorizationStrategy) ACLForView(viewName string) *ACL {
	return NewACL(s.mgr, ViewScope{ViewName: viewName})
}

func (s *TeamBasedAuthorizationStrategy) ACLForNode(nodeName string) *ACL {
	return NewACL(s.mgr, NodeScope{NodeName: nodeName})
}

// CanManageTeams is the single gate on the team administration surface.
func (s *TeamBasedAuthorizationStrategy) CanManageTeams(user identity.User) bool {
	return s.TeamManagementACL().HasPermission(user, Read)
}

// DenyAllStrategy is the ACL source teams fall back to when the active
// authorization strategy is not team-based: every check is denied.
type DenyAllStrategy struct{}

type denyAllScope struct{}

func (denyAllScope) name() string { return "denyAll" }

func (denyAllScope) evaluate(*Manager, identity.User, string, *Permission) Decision {
	return Deny
}

func denyAllACL() *ACL { return NewACL(nil, denyAllScope{}) }

func (DenyAllStrategy) RootACL() *ACL                 { return denyAllACL() }
func (DenyAllStrategy) TeamManagementACL() *ACL       { return denyAllACL() }
func (DenyAllStrategy) ACLForTeam(*Team) *ACL         { return denyAllACL() }
func (DenyAllStrategy) ACLForJob(string) *ACL         { return denyAllACL() }
func (DenyAllStrategy) ACLForView(string) *ACL        { return denyAllACL() }
func (DenyAllStrategy) ACLForNode(string) *ACL        { return denyAllACL() }
