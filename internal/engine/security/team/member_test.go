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
)

func TestNewMemberSeedGrants(t *testing.T) {
	m := NewMember("alice")

	assert.True(t, m.HasPermission(ItemRead))
	assert.True(t, m.HasPermission(ItemWorkspace))
	assert.True(t, m.HasPermission(ComputerRead))
	assert.True(t, m.HasPermission(ViewRead))

	assert.False(t, m.HasPermission(ItemCreate))
	assert.False(t, m.HasPermission(ItemBuild))
	assert.False(t, m.CanConfigure())
}

func TestMemberNameMatchesCaseInsensitive(t *testing.T) {
	m := NewMember("Alice")
	assert.True(t, m.Is("alice"))
	assert.True(t, m.Is("ALICE"))
	assert.False(t, m.Is("bob"))
}

func TestTeamAdminSuperset(t *testing.T) {
	m := NewMember("alice")
	m.applyGrants(MemberPermissions{TeamAdmin: true})

	for _, p := range []*Permission{
		ItemRead, ItemExtendedRead, ItemCreate, ItemDelete, ItemWipeout,
		ItemConfigure, ItemBuild, ItemWorkspace,
		ViewRead, ViewCreate, ViewConfigure, ViewDelete,
		ComputerRead, ComputerCreate, ComputerDelete, ComputerConfigure,
		ScmTag,
	} {
		assert.True(t, m.HasPermission(p), p.ID())
	}
	assert.True(t, m.CanConfigureView())
	assert.True(t, m.CanDeleteNode())
}

func TestCompositePermissions(t *testing.T) {
	creator := NewMember("bob")
	creator.applyGrants(MemberPermissions{Create: true})

	// A create grant carries configure, run update and run delete.
	assert.True(t, creator.HasPermission(ItemCreate))
	assert.True(t, creator.HasPermission(ItemConfigure))
	assert.True(t, creator.HasPermission(RunUpdate))
	assert.True(t, creator.HasPermission(RunDelete))
	assert.True(t, creator.HasPermission(ItemExtendedRead))
	assert.False(t, creator.HasPermission(ItemDelete))

	deleter := NewMember("carol")
	deleter.applyGrants(MemberPermissions{Delete: true})
	assert.True(t, deleter.HasPermission(RunDelete))
	assert.False(t, deleter.HasPermission(RunUpdate))
	assert.True(t, deleter.HasPermission(ItemWipeout))

	nodeCreator := NewMember("dan")
	nodeCreator.applyGrants(MemberPermissions{CreateNode: true})
	assert.True(t, nodeCreator.HasPermission(ComputerConfigure))
	assert.False(t, nodeCreator.HasPermission(ComputerDelete))
}

func TestUpdateGrantsExtendedReadInterplay(t *testing.T) {
	m := NewMember("bob")
	m.applyGrants(MemberPermissions{Create: true, Configure: true})
	require.True(t, m.HasPermission(ItemExtendedRead))

	// Dropping configure alone keeps extended read via the create grant.
	m.updateGrants(MemberPermissions{Create: true})
	assert.True(t, m.HasPermission(ItemExtendedRead))

	// Dropping both removes it.
	m.updateGrants(MemberPermissions{})
	assert.False(t, m.HasPermission(ItemExtendedRead))
	assert.False(t, m.HasPermission(ItemCreate))
	assert.False(t, m.HasPermission(ItemConfigure))

	// Delete off removes wipeout with it.
	m.updateGrants(MemberPermissions{Delete: true})
	require.True(t, m.HasPermission(ItemWipeout))
	m.updateGrants(MemberPermissions{})
	assert.False(t, m.HasPermission(ItemWipeout))
}

func TestFlagsString(t *testing.T) {
	m := NewMember("bob")
	m.applyGrants(MemberPermissions{Create: true, Build: true})

	// create implies configure, so both serialize.
	assert.Equal(t, "create,configure,build", m.flagsString())

	admin := NewMember("alice")
	admin.applyGrants(MemberPermissions{TeamAdmin: true})
	assert.Equal(t,
		"admin,create,delete,configure,build,createView,deleteView,configureView,createNode,deleteNode,configureNode",
		admin.flagsString())

	assert.Equal(t, "", NewMember("carol").flagsString())
}

func TestGrantFlagRoundTrip(t *testing.T) {
	m := NewMember("bob")
	for _, flag := range []string{"create", "build"} {
		m.grantFlag(flag)
	}
	assert.True(t, m.HasPermission(ItemCreate))
	assert.True(t, m.HasPermission(ItemBuild))
	assert.True(t, m.HasPermission(ScmTag))

	n := NewMember("dan")
	n.grantFlag("createNode")
	assert.True(t, n.HasPermission(ComputerCreate))
	assert.True(t, n.HasPermission(ComputerConfigure))

	v := NewMember("eve")
	v.grantFlag("createView")
	assert.True(t, v.HasPermission(ViewCreate))
	assert.False(t, v.HasPermission(ComputerConfigure))

	a := NewMember("alice")
	a.grantFlag("admin")
	assert.True(t, a.IsTeamAdmin())
}

func TestPermissionNamesSorted(t *testing.T) {
	m := NewMember("bob")
	m.applyGrants(MemberPermissions{Build: true})
	names := m.PermissionNames()
	assert.Contains(t, names, "Build")
	assert.Contains(t, names, "Read")
	assert.Contains(t, names, "Workspace")
	for i := 1; i < len(names); i++ {
		assert.LessOrEqual(t, names[i-1], names[i])
	}
}
