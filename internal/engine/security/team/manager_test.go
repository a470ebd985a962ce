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
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-foundry/foundry/internal/engine/security/identity"
)

// memStore keeps the configuration in memory for tests.
type memStore struct {
	data   []byte
	writes int
}

func (s *memStore) Exists() bool { return len(s.data) > 0 }

func (s *memStore) Read(v any) error { return sonic.Unmarshal(s.data, v) }

func (s *memStore) Write(v any) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return err
	}
	s.data = data
	s.writes++
	return nil
}

func newTestManager(t *testing.T) (*Manager, *MemoryRegistry, *memStore) {
	t.Helper()
	st := &memStore{}
	registry := NewMemoryRegistry()
	mgr, err := NewManager(st, registry)
	require.NoError(t, err)
	return mgr, registry, st
}

func TestPublicTeamBootstrap(t *testing.T) {
	registry := NewMemoryRegistry()
	registry.AddJob("orphan")
	mgr, err := NewManager(&memStore{}, registry)
	require.NoError(t, err)

	public := mgr.PublicTeam()
	require.NotNil(t, public)
	assert.True(t, public.IsPublic())

	// Unowned registry items land in the public team.
	assert.True(t, public.IsJobOwner("orphan"))
	assert.True(t, public.IsViewOwner(AllViewName))
	assert.True(t, public.IsNodeOwner(MasterNodeName))

	// Built-in items are pinned.
	assert.False(t, public.FindView(AllViewName).IsMoveAllowed())
	assert.False(t, public.FindNode(MasterNodeName).IsMoveAllowed())
}

func TestCreateTeamValidation(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	_, err := mgr.CreateTeam("", "", "")
	require.EqualError(t, err, "Team name required.")

	_, err = mgr.CreateTeam(strings.Repeat("a", 65), "", "")
	require.EqualError(t, err, "Team name cannot exceed 64 characters.")

	_, err = mgr.CreateTeam("bad.name", "", "")
	require.Error(t, err)

	_, err = mgr.CreateTeam("dev", "dev team", "")
	require.NoError(t, err)

	_, err = mgr.CreateTeam("dev", "", "")
	require.EqualError(t, err, "Team dev already exists.")
}

func TestCreateTeamTrimsName(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	t1, err := mgr.CreateTeam("  qa  ", "", "")
	require.NoError(t, err)
	assert.Equal(t, "qa", t1.Name())

	// The trimmed name is the registered one, so a padded duplicate
	// collides with it.
	_, err = mgr.CreateTeam(" qa", "", "")
	require.EqualError(t, err, "Team qa already exists.")

	_, err = mgr.CreateTeam("   ", "", "")
	require.EqualError(t, err, "Team name required.")
}

func TestFindTeam(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	_, err := mgr.FindTeam("ghost")
	require.EqualError(t, err, "Team ghost does not exist.")

	var notFound *TeamNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "ghost", notFound.Name)
}

func TestSingleOwnership(t *testing.T) {
	mgr, registry, _ := newTestManager(t)
	dev, err := mgr.CreateTeam("dev", "", "")
	require.NoError(t, err)

	name, err := mgr.AddJob(dev, "app")
	require.NoError(t, err)
	registry.AddJob(name)
	assert.Equal(t, "dev.app", name)

	assert.Same(t, dev, mgr.FindJobOwnerTeam("dev.app"))
	assert.Nil(t, mgr.FindJobOwnerTeam("app"))
	assert.NotNil(t, mgr.FindJob("dev.app"))
}

func TestJobNameQualification(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	dev, err := mgr.CreateTeam("dev", "", "")
	require.NoError(t, err)

	// Public job names stay unqualified.
	assert.Equal(t, "app", mgr.TeamQualifiedJobName(mgr.PublicTeam(), "app"))

	require.NoError(t, dev.AddJob(NewJob("dev.app")))
	assert.Equal(t, "dev.app_2", mgr.TeamQualifiedJobName(dev, "app"))

	assert.Equal(t, "app", mgr.UnqualifiedJobName(dev, "dev.app"))
	assert.True(t, mgr.IsQualifiedJobName(dev, "dev.app"))
	assert.False(t, mgr.IsQualifiedJobName(dev, "app"))
	assert.True(t, mgr.IsQualifiedJobName(mgr.PublicTeam(), "app"))
}

func TestMoveJob(t *testing.T) {
	mgr, registry, _ := newTestManager(t)
	dev, err := mgr.CreateTeam("dev", "", "")
	require.NoError(t, err)
	qa, err := mgr.CreateTeam("qa", "", "")
	require.NoError(t, err)

	name, err := mgr.AddJob(dev, "app")
	require.NoError(t, err)
	registry.AddJob(name)
	dev.FindJob(name).AddVisibility("qa")

	moved, err := mgr.MoveJob(name, dev, qa, "")
	require.NoError(t, err)
	assert.Equal(t, "qa.app", moved)

	assert.Same(t, qa, mgr.FindJobOwnerTeam("qa.app"))
	assert.Nil(t, mgr.FindJobOwnerTeam("dev.app"))
	assert.True(t, registry.JobExists("qa.app"))
	assert.False(t, registry.JobExists("dev.app"))

	// Visibility survives the move.
	assert.True(t, qa.FindJob("qa.app").IsVisible("qa"))
}

func TestMoveJobFromPublicSanitizesName(t *testing.T) {
	mgr, registry, _ := newTestManager(t)
	dev, err := mgr.CreateTeam("dev", "", "")
	require.NoError(t, err)

	public := mgr.PublicTeam()
	require.NoError(t, public.AddJob(NewJob("my.app")))
	registry.AddJob("my.app")

	moved, err := mgr.MoveJob("my.app", public, dev, "")
	require.NoError(t, err)
	assert.Equal(t, "dev.my_app", moved)

	long := strings.Repeat("x", JobNameLimitTeam+8)
	require.NoError(t, public.AddJob(NewJob(long)))
	registry.AddJob(long)
	moved, err = mgr.MoveJob(long, public, dev, "")
	require.NoError(t, err)
	assert.Equal(t, "dev."+long[:JobNameLimitTeam], moved)
}

func TestDeleteTeam(t *testing.T) {
	mgr, registry, _ := newTestManager(t)
	dev, err := mgr.CreateTeam("dev", "", "")
	require.NoError(t, err)

	name, err := mgr.AddJob(dev, "app")
	require.NoError(t, err)
	registry.AddJob(name)

	require.EqualError(t, mgr.DeleteTeam(PublicTeamName, false), "Cannot delete public team")

	// Jobs move to public when not deleted with the team.
	require.NoError(t, mgr.DeleteTeam("dev", false))
	_, err = mgr.FindTeam("dev")
	require.Error(t, err)
	assert.True(t, mgr.PublicTeam().IsJobOwner("app"))
	assert.True(t, registry.JobExists("app"))

	qa, err := mgr.CreateTeam("qa", "", "")
	require.NoError(t, err)
	name, err = mgr.AddJob(qa, "suite")
	require.NoError(t, err)
	registry.AddJob(name)
	require.NoError(t, mgr.DeleteTeam("qa", true))
	assert.Nil(t, mgr.FindJobOwnerTeam("qa.suite"))
	assert.False(t, registry.JobExists("qa.suite"))
}

func TestMoveView(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	dev, err := mgr.CreateTeam("dev", "", "")
	require.NoError(t, err)
	qa, err := mgr.CreateTeam("qa", "", "")
	require.NoError(t, err)

	require.NoError(t, dev.AddView(NewView("pipeline")))
	require.NoError(t, mgr.MoveView(dev, qa, "pipeline"))
	assert.Same(t, qa, mgr.FindViewOwnerTeam("pipeline"))

	err = mgr.MoveView(dev, qa, "missing")
	require.EqualError(t, err, "View missing is not a member of team dev")
}

func TestSysAdmins(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	require.NoError(t, mgr.AddSysAdmin("root"))
	require.NoError(t, mgr.AddSysAdmin("root"))
	assert.Len(t, mgr.SysAdmins(), 1)

	assert.True(t, mgr.IsSysAdmin("ROOT"))
	assert.True(t, mgr.IsUserSysAdmin(identity.User{Name: "root"}))
	assert.True(t, mgr.IsUserSysAdmin(identity.User{Name: "eve", Roles: []string{"root"}}))
	assert.False(t, mgr.IsUserSysAdmin(identity.User{Name: "eve"}))

	require.NoError(t, mgr.RemoveSysAdmin("root"))
	assert.False(t, mgr.IsSysAdmin("root"))
}

func TestUserTeamsAndAdmin(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	dev, err := mgr.CreateTeam("dev", "", "")
	require.NoError(t, err)
	require.NoError(t, dev.AddMember("alice", MemberPermissions{TeamAdmin: true}))
	require.NoError(t, dev.AddMember("devs", MemberPermissions{Build: true}))

	alice := identity.User{Name: "alice"}
	bob := identity.User{Name: "bob", Roles: []string{"devs"}}

	assert.Equal(t, []string{"dev"}, mgr.UserTeamNames(alice))
	// Role membership counts as team membership.
	assert.Equal(t, []string{"dev"}, mgr.UserTeamNames(bob))

	assert.True(t, mgr.IsUserTeamAdmin(alice, "dev"))
	assert.False(t, mgr.IsUserTeamAdmin(bob, "dev"))
	assert.Equal(t, []string{"dev"}, mgr.UserAdminTeams(alice))

	assert.Equal(t, []string{"dev", PublicTeamName}, mgr.UserVisibleTeams(alice))
}

func TestFindUserTeamForNewJob(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	dev, err := mgr.CreateTeam("dev", "", "")
	require.NoError(t, err)
	require.NoError(t, dev.AddMember("bob", MemberPermissions{Create: true}))
	require.NoError(t, mgr.AddSysAdmin("root"))

	team, err := mgr.FindUserTeamForNewJob(identity.User{Name: "bob"})
	require.NoError(t, err)
	assert.Same(t, dev, team)

	// Sys admins without membership fall back to public.
	team, err = mgr.FindUserTeamForNewJob(identity.User{Name: "root"})
	require.NoError(t, err)
	assert.True(t, team.IsPublic())

	_, err = mgr.FindUserTeamForNewJob(identity.User{Name: "carol"})
	require.EqualError(t, err, "User does not have Job create permission in any team")

	_, err = mgr.FindUserTeamForNewView(identity.User{Name: "carol"})
	require.EqualError(t, err, "User does not have View create permission in any team")

	_, err = mgr.FindUserTeamForNewNode(identity.User{Name: "carol"})
	require.EqualError(t, err, "User does not have Node create permission in any team")
}

func TestUserTeamPermissions(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	dev, err := mgr.CreateTeam("dev", "", "")
	require.NoError(t, err)
	require.NoError(t, dev.AddMember("alice", MemberPermissions{TeamAdmin: true}))
	require.NoError(t, dev.AddMember("bob", MemberPermissions{Build: true}))
	require.NoError(t, mgr.AddSysAdmin("root"))

	perms, err := mgr.UserTeamPermissions(identity.User{Name: "root"}, "dev")
	require.NoError(t, err)
	assert.Equal(t, AllTeamPermissions, perms)

	perms, err = mgr.UserTeamPermissions(identity.User{Name: "alice"}, "dev")
	require.NoError(t, err)
	assert.Contains(t, perms, AdminPseudoPermission)

	perms, err = mgr.UserTeamPermissions(identity.User{Name: "bob"}, "dev")
	require.NoError(t, err)
	assert.Contains(t, perms, "Build")
	assert.NotContains(t, perms, AdminPseudoPermission)

	// Public team grants read to everyone.
	perms, err = mgr.UserTeamPermissions(identity.User{Name: "carol"}, PublicTeamName)
	require.NoError(t, err)
	assert.Equal(t, []string{"Read"}, perms)

	perms, err = mgr.UserTeamPermissions(identity.User{Name: "carol"}, "dev")
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestCanNodeExecuteJob(t *testing.T) {
	mgr, registry, _ := newTestManager(t)
	dev, err := mgr.CreateTeam("dev", "", "")
	require.NoError(t, err)
	qa, err := mgr.CreateTeam("qa", "", "")
	require.NoError(t, err)

	name, err := mgr.AddJob(dev, "app")
	require.NoError(t, err)
	registry.AddJob(name)
	require.NoError(t, qa.AddNode(NewNode("builder")))

	// Public nodes are enabled by default.
	assert.True(t, mgr.CanNodeExecuteJob(MasterNodeName, "dev.app"))
	require.NoError(t, dev.RemoveFromEnabledVisibleNodes(MasterNodeName))
	assert.False(t, mgr.CanNodeExecuteJob(MasterNodeName, "dev.app"))

	// Another team's node needs visibility and an explicit enable.
	assert.False(t, mgr.CanNodeExecuteJob("builder", "dev.app"))
	qa.FindNode("builder").AddVisibility("dev")
	assert.False(t, mgr.CanNodeExecuteJob("builder", "dev.app"))
	require.NoError(t, dev.AddToEnabledVisibleNodes("builder"))
	assert.True(t, mgr.CanNodeExecuteJob("builder", "dev.app"))

	// Same-team nodes always qualify.
	require.NoError(t, dev.AddNode(NewNode("own")))
	assert.True(t, mgr.CanNodeExecuteJob("own", "dev.app"))
}

func TestBulkSaveSuppression(t *testing.T) {
	mgr, _, st := newTestManager(t)
	dev, err := mgr.CreateTeam("dev", "", "")
	require.NoError(t, err)

	before := st.writes
	mgr.SuspendSave()
	require.NoError(t, dev.AddMember("alice", MemberPermissions{}))
	require.NoError(t, dev.AddMember("bob", MemberPermissions{}))
	assert.Equal(t, before, st.writes)
	require.NoError(t, mgr.ResumeSave())
	assert.Equal(t, before+1, st.writes)
}
