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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-foundry/foundry/internal/engine/security/identity"
)

func aclFixture(t *testing.T) (*Manager, *TeamBasedAuthorizationStrategy) {
	t.Helper()
	mgr, registry, _ := newTestManager(t)
	require.NoError(t, mgr.AddSysAdmin("root"))

	dev, err := mgr.CreateTeam("dev", "", "")
	require.NoError(t, err)
	require.NoError(t, dev.AddMember("alice", MemberPermissions{TeamAdmin: true}))
	require.NoError(t, dev.AddMember("bob", MemberPermissions{Create: true}))
	require.NoError(t, dev.AddMember("dave", MemberPermissions{}))

	name, err := mgr.AddJob(dev, "app")
	require.NoError(t, err)
	registry.AddJob(name)

	return mgr, NewTeamBasedAuthorizationStrategy(mgr)
}

func TestSysAdminAllowedEverywhere(t *testing.T) {
	_, strategy := aclFixture(t)
	root := identity.User{Name: "root"}

	assert.Equal(t, Allow, strategy.RootACL().Evaluate(root, ItemCreate))
	assert.Equal(t, Allow, strategy.TeamManagementACL().Evaluate(root, Read))
	assert.Equal(t, Allow, strategy.ACLForJob("dev.app").Evaluate(root, ItemWipeout))
	assert.True(t, strategy.CanManageTeams(root))
}

func TestTeamManagementDeniedToOthers(t *testing.T) {
	_, strategy := aclFixture(t)

	assert.Equal(t, Abstain, strategy.TeamManagementACL().Evaluate(identity.User{Name: "alice"}, Read))
	assert.False(t, strategy.CanManageTeams(identity.User{Name: "alice"}))
	assert.False(t, strategy.CanManageTeams(identity.Anonymous))
}

func TestGlobalScope(t *testing.T) {
	_, strategy := aclFixture(t)
	acl := strategy.RootACL()

	// Read-class checks pass for everyone, even anonymous.
	assert.Equal(t, Allow, acl.Evaluate(identity.Anonymous, ItemRead))
	assert.Equal(t, Allow, acl.Evaluate(identity.Anonymous, ViewRead))

	// Item create needs a team with the grant.
	assert.Equal(t, Allow, acl.Evaluate(identity.User{Name: "bob"}, ItemCreate))
	assert.Equal(t, Abstain, acl.Evaluate(identity.User{Name: "carol"}, ItemCreate))
	assert.Equal(t, Abstain, acl.Evaluate(identity.Anonymous, ItemBuild))
}

func TestJobScopeMemberDecisions(t *testing.T) {
	_, strategy := aclFixture(t)
	acl := strategy.ACLForJob("dev.app")

	// Members read regardless of grants.
	assert.Equal(t, Allow, acl.Evaluate(identity.User{Name: "dave"}, ItemRead))

	// Non-read checks answer explicitly either way.
	assert.Equal(t, Allow, acl.Evaluate(identity.User{Name: "bob"}, ItemConfigure))
	assert.Equal(t, Deny, acl.Evaluate(identity.User{Name: "dave"}, ItemBuild))
	assert.Equal(t, Deny, acl.Evaluate(identity.User{Name: "bob"}, ItemDelete))

	// Team admins hold the full superset.
	assert.Equal(t, Allow, acl.Evaluate(identity.User{Name: "alice"}, ItemWipeout))
}

func TestJobScopeVisibility(t *testing.T) {
	mgr, strategy := aclFixture(t)
	acl := strategy.ACLForJob("dev.app")
	carol := identity.User{Name: "carol"}

	// No visibility: outsiders get nothing.
	assert.Equal(t, Abstain, acl.Evaluate(carol, ItemRead))

	// Visibility to public makes the job world-readable but not writable.
	job := mgr.FindJob("dev.app")
	job.AddVisibility(PublicTeamName)
	assert.Equal(t, Allow, acl.Evaluate(carol, ItemRead))
	assert.Equal(t, Abstain, acl.Evaluate(carol, ItemConfigure))
	assert.Equal(t, Abstain, acl.Evaluate(carol, ItemBuild))

	// Extended read additionally needs the config-view flag.
	assert.Equal(t, Abstain, acl.Evaluate(carol, ItemExtendedRead))
	job.SetAllowConfigView(true)
	assert.Equal(t, Allow, acl.Evaluate(carol, ItemExtendedRead))
}

func TestJobScopeTeamVisibility(t *testing.T) {
	mgr, strategy := aclFixture(t)
	qa, err := mgr.CreateTeam("qa", "", "")
	require.NoError(t, err)
	require.NoError(t, qa.AddMember("carol", MemberPermissions{}))

	acl := strategy.ACLForJob("dev.app")
	carol := identity.User{Name: "carol"}
	assert.Equal(t, Abstain, acl.Evaluate(carol, ItemRead))

	mgr.FindJob("dev.app").AddVisibility("qa")
	assert.Equal(t, Allow, acl.Evaluate(carol, ItemRead))
}

func TestPublicJobReadableByAnyone(t *testing.T) {
	mgr, strategy := aclFixture(t)
	require.NoError(t, mgr.PublicTeam().AddJob(NewJob("open")))

	acl := strategy.ACLForJob("open")
	assert.Equal(t, Allow, acl.Evaluate(identity.Anonymous, ItemRead))
	assert.Equal(t, Abstain, acl.Evaluate(identity.Anonymous, ItemBuild))
}

func TestTeamScope(t *testing.T) {
	mgr, strategy := aclFixture(t)
	dev, err := mgr.FindTeam("dev")
	require.NoError(t, err)
	acl := strategy.ACLForTeam(dev)

	assert.Equal(t, Allow, acl.Evaluate(identity.User{Name: "alice"}, ItemConfigure))
	assert.Equal(t, Allow, acl.Evaluate(identity.User{Name: "dave"}, ItemRead))
	assert.Equal(t, Abstain, acl.Evaluate(identity.User{Name: "dave"}, ItemConfigure))
	assert.Equal(t, Abstain, acl.Evaluate(identity.User{Name: "carol"}, ItemRead))
}

func TestNodeScope(t *testing.T) {
	mgr, strategy := aclFixture(t)
	dev, err := mgr.FindTeam("dev")
	require.NoError(t, err)
	require.NoError(t, dev.AddNode(NewNode("builder")))

	acl := strategy.ACLForNode("builder")
	assert.Equal(t, Allow, acl.Evaluate(identity.User{Name: "dave"}, ComputerRead))
	assert.Equal(t, Deny, acl.Evaluate(identity.User{Name: "dave"}, ComputerConfigure))
	assert.Equal(t, Abstain, acl.Evaluate(identity.User{Name: "carol"}, ComputerRead))

	// Master is public, readable by anyone.
	masterACL := strategy.ACLForNode(MasterNodeName)
	assert.Equal(t, Allow, masterACL.Evaluate(identity.Anonymous, ComputerRead))
}

func TestViewScope(t *testing.T) {
	mgr, strategy := aclFixture(t)
	dev, err := mgr.FindTeam("dev")
	require.NoError(t, err)
	require.NoError(t, dev.AddView(NewView("pipeline")))

	acl := strategy.ACLForView("pipeline")
	assert.Equal(t, Allow, acl.Evaluate(identity.User{Name: "dave"}, ViewRead))
	assert.Equal(t, Deny, acl.Evaluate(identity.User{Name: "dave"}, ViewDelete))
	assert.Equal(t, Abstain, acl.Evaluate(identity.User{Name: "carol"}, ViewRead))

	dev.FindView("pipeline").AddVisibility(PublicTeamName)
	assert.Equal(t, Allow, acl.Evaluate(identity.User{Name: "carol"}, ViewRead))
}

func TestViewScopeCreateChecks(t *testing.T) {
	mgr, strategy := aclFixture(t)
	dev, err := mgr.FindTeam("dev")
	require.NoError(t, err)
	require.NoError(t, dev.AddMember("frank", MemberPermissions{CreateNode: true}))
	acl := strategy.ACLForView(AllViewName)

	// Item and node creation checks issued from a view page resolve
	// against the principal's team grants.
	assert.Equal(t, Allow, acl.Evaluate(identity.User{Name: "bob"}, ItemCreate))
	assert.Equal(t, Allow, acl.Evaluate(identity.User{Name: "frank"}, ComputerCreate))
	assert.Equal(t, Abstain, acl.Evaluate(identity.User{Name: "bob"}, ComputerCreate))

	carol := identity.User{Name: "carol"}
	assert.Equal(t, Abstain, acl.Evaluate(carol, ItemCreate))
	assert.Equal(t, Abstain, acl.Evaluate(carol, ComputerCreate))
}

func TestRoleSidEvaluated(t *testing.T) {
	mgr, strategy := aclFixture(t)
	dev, err := mgr.FindTeam("dev")
	require.NoError(t, err)
	require.NoError(t, dev.AddMember("devs", MemberPermissions{Build: true}))

	// eve is on the roster only through the devs role.
	eve := identity.User{Name: "eve", Roles: []string{"devs"}}
	acl := strategy.ACLForJob("dev.app")
	assert.Equal(t, Allow, acl.Evaluate(eve, ItemRead))
	assert.Equal(t, Allow, acl.Evaluate(eve, ItemBuild))
	assert.Equal(t, Deny, acl.Evaluate(eve, ItemConfigure))
}

func TestDenyAllStrategy(t *testing.T) {
	strategy := DenyAllStrategy{}
	root := identity.User{Name: "root"}

	assert.Equal(t, Deny, strategy.RootACL().Evaluate(root, ItemRead))
	assert.Equal(t, Deny, strategy.ACLForJob("dev.app").Evaluate(root, ItemRead))
	assert.False(t, strategy.TeamManagementACL().HasPermission(root, Read))
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "deny", Deny.String())
	assert.Equal(t, "abstain", Abstain.String())
	assert.True(t, Allow.Granted())
	assert.False(t, Deny.Granted())
	assert.False(t, Abstain.Granted())
}
