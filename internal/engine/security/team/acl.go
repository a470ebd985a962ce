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

import (
	"github.com/go-foundry/foundry/internal/engine/security/identity"
	"github.com/go-foundry/foundry/pkg/metrics"
)

// Decision is the three-valued outcome of an access check. Abstain means
// this layer has no opinion and the caller's fallback applies.
type Decision int

const (
	Abstain Decision = iota
	Allow
	Deny
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	}
	return "abstain"
}

// Granted collapses the decision for callers without a fallback layer:
// only an explicit Allow grants.
func (d Decision) Granted() bool {
	return d == Allow
}

// Scope selects which branch of the access decision applies. Each scope
// evaluates one principal sid at a time; the ACL iterates the user's
// name and roles and the first non-Abstain answer wins.
type Scope interface {
	name() string
	evaluate(mgr *Manager, user identity.User, sid string, p *Permission) Decision
}

// GlobalScope covers checks not tied to a particular item or team, such
// as whether the new-job button shows at all.
type GlobalScope struct{}

// TeamManagementScope guards team administration itself; only system
// administrators pass.
type TeamManagementScope struct{}

// TeamScope covers a team's own page and listings.
type TeamScope struct{ Team *Team }

// JobScope resolves the job's owner team and applies the membership and
// visibility rules.
type JobScope struct{ JobName string }

// ViewScope is JobScope for views; only the exact read permission gets
// the visibility treatment.
type ViewScope struct{ ViewName string }

// NodeScope is JobScope for nodes.
type NodeScope struct{ NodeName string }

// ACL answers permission checks for one user against one scope.
type ACL struct {
	mgr   *Manager
	scope Scope
}

func NewACL(mgr *Manager, scope Scope) *ACL {
	return &ACL{mgr: mgr, scope: scope}
}

// Evaluate walks the user's sids through the scope. System
// administrators are allowed everything before any scope logic runs.
func (a *ACL) Evaluate(user identity.User, p *Permission) Decision {
	decision := a.evaluate(user, p)
	metrics.AclDecisionTotal.WithLabelValues(a.scope.name(), decision.String()).Inc()
	return decision
}

func (a *ACL) evaluate(user identity.User, p *Permission) Decision {
	if a.mgr != nil && a.mgr.IsUserSysAdmin(user) {
		return Allow
	}
	for _, sid := range user.Sids() {
		if d := a.scope.evaluate(a.mgr, user, sid, p); d != Abstain {
			return d
		}
	}
	return Abstain
}

// HasPermission is Evaluate collapsed to a bool.
func (a *ACL) HasPermission(user identity.User, p *Permission) bool {
	return a.Evaluate(user, p).Granted()
}

func (GlobalScope) name() string { return "global" }

func (GlobalScope) evaluate(mgr *Manager, user identity.User, sid string, p *Permission) Decision {
	// Everyone can browse; what they see is filtered per item.
	if p.IsReadClass() {
		return Allow
	}
	switch p {
	case ItemCreate, ViewCreate, ComputerCreate:
		if len(mgr.UserTeamsWithPermission(user, p)) > 0 {
			return Allow
		}
	}
	return Abstain
}

func (TeamManagementScope) name() string { return "teamManagement" }

func (TeamManagementScope) evaluate(mgr *Manager, user identity.User, sid string, p *Permission) Decision {
	return Abstain
}

func (TeamScope) name() string { return "team" }

func (s TeamScope) evaluate(mgr *Manager, user identity.User, sid string, p *Permission) Decision {
	if s.Team == nil {
		return Abstain
	}
	if s.Team.IsAdmin(sid) {
		return Allow
	}
	if s.Team.IsMember(sid) && p.IsReadClass() {
		return Allow
	}
	return Abstain
}

func (JobScope) name() string { return "job" }

func (s JobScope) evaluate(mgr *Manager, user identity.User, sid string, p *Permission) Decision {
	team := mgr.FindJobOwnerTeam(s.JobName)
	if team == nil {
		return Abstain
	}
	if member := team.FindMember(sid); member != nil {
		if p.IsReadClass() {
			return Allow
		}
		// Members get an explicit answer either way; a missing grant is
		// a denial, not an abstention.
		if member.HasPermission(p) {
			return Allow
		}
		return Deny
	}
	job := team.FindJob(s.JobName)
	if job == nil {
		return Abstain
	}
	if p.IsReadClass() && jobReadableByOutsider(mgr, user, team, job) {
		return Allow
	}
	if p == ItemExtendedRead && job.AllowConfigView() && jobReadableByOutsider(mgr, user, team, job) {
		return Allow
	}
	return Abstain
}

// jobReadableByOutsider: public jobs are world-readable; otherwise the
// job must be visible to public or to one of the user's teams.
func jobReadableByOutsider(mgr *Manager, user identity.User, owner *Team, job *Job) bool {
	if owner.IsPublic() || job.IsVisible(PublicTeamName) {
		return true
	}
	for _, t := range mgr.UserTeams(user) {
		if job.IsVisible(t.Name()) {
			return true
		}
	}
	return false
}

func (ViewScope) name() string { return "view" }

func (s ViewScope) evaluate(mgr *Manager, user identity.User, sid string, p *Permission) Decision {
	// Views host the new-job and new-node buttons, so the create checks
	// for all three kinds resolve here.
	switch p {
	case ViewCreate, ItemCreate, ComputerCreate:
		if len(mgr.UserTeamsWithPermission(user, p)) > 0 {
			return Allow
		}
	}
	team := mgr.FindViewOwnerTeam(s.ViewName)
	if team == nil {
		return Abstain
	}
	if member := team.FindMember(sid); member != nil {
		if p == ViewRead {
			return Allow
		}
		if member.HasPermission(p) {
			return Allow
		}
		return Deny
	}
	view := team.FindView(s.ViewName)
	if view == nil {
		return Abstain
	}
	if p == ViewRead && itemReadableByOutsider(mgr, user, team, &view.Item) {
		return Allow
	}
	return Abstain
}

func (NodeScope) name() string { return "node" }

func (s NodeScope) evaluate(mgr *Manager, user identity.User, sid string, p *Permission) Decision {
	if p == ComputerCreate && len(mgr.UserTeamsWithPermission(user, ComputerCreate)) > 0 {
		return Allow
	}
	team := mgr.FindNodeOwnerTeam(s.NodeName)
	if team == nil {
		return Abstain
	}
	if member := team.FindMember(sid); member != nil {
		if p == ComputerRead {
			return Allow
		}
		if member.HasPermission(p) {
			return Allow
		}
		return Deny
	}
	node := team.FindNode(s.NodeName)
	if node == nil {
		return Abstain
	}
	if p == ComputerRead && itemReadableByOutsider(mgr, user, team, &node.Item) {
		return Allow
	}
	return Abstain
}

func itemReadableByOutsider(mgr *Manager, user identity.User, owner *Team, item *Item) bool {
	if owner.IsPublic() || item.IsVisible(PublicTeamName) {
		return true
	}
	for _, t := range mgr.UserTeams(user) {
		if item.IsVisible(t.Name()) {
			return true
		}
	}
	return false
}
