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
	"sort"
	"strings"
	"sync"
)

// MemberPermissions is the flag form of a member's grants, as exposed to
// the command surface and the durable store.
type MemberPermissions struct {
	TeamAdmin     bool
	Create        bool
	Delete        bool
	Configure     bool
	Build         bool
	CreateNode    bool
	DeleteNode    bool
	ConfigureNode bool
	CreateView    bool
	DeleteView    bool
	ConfigureView bool
}

// teamAdminGranted is the fixed superset a team admin holds regardless of
// individually granted flags.
var teamAdminGranted = permissionSet(
	ItemRead, ItemExtendedRead, ItemCreate, ItemDelete, ItemWipeout,
	ItemConfigure, ItemBuild, ItemWorkspace,
	ViewRead, ViewCreate, ViewConfigure, ViewDelete,
	ComputerRead, ComputerCreate, ComputerDelete, ComputerConfigure,
	ScmTag,
)

func permissionSet(perms ...*Permission) map[*Permission]struct{} {
	set := make(map[*Permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// Member is a principal (or role) on one team's roster with its granted
// permission set. Names match case-insensitively.
type Member struct {
	mu        sync.RWMutex
	name      string
	teamAdmin bool
	granted   map[*Permission]struct{}
}

// NewMember seeds the grants every member holds: item read, workspace,
// node read and view read.
func NewMember(name string) *Member {
	return &Member{
		name:    name,
		granted: permissionSet(ItemRead, ItemWorkspace, ComputerRead, ViewRead),
	}
}

func (m *Member) Name() string {
	return m.name
}

func (m *Member) Is(sid string) bool {
	return strings.EqualFold(m.name, sid)
}

func (m *Member) IsTeamAdmin() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.teamAdmin
}

func (m *Member) setTeamAdmin(admin bool) {
	m.mu.Lock()
	m.teamAdmin = admin
	m.mu.Unlock()
}

func (m *Member) addPermission(p *Permission) {
	m.mu.Lock()
	m.granted[p] = struct{}{}
	m.mu.Unlock()
}

func (m *Member) removePermission(p *Permission) {
	m.mu.Lock()
	delete(m.granted, p)
	m.mu.Unlock()
}

func (m *Member) has(p *Permission) bool {
	_, ok := m.granted[p]
	return ok
}

// HasPermission resolves the member's effective permission. Team admins
// hold the fixed admin superset. Run and Configure class checks are
// composite: a Create grant satisfies them too.
func (m *Member) HasPermission(p *Permission) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.teamAdmin {
		_, ok := teamAdminGranted[p]
		return ok
	}
	switch p {
	case RunUpdate:
		return m.has(ItemConfigure) || m.has(ItemCreate)
	case RunDelete:
		return m.has(ItemConfigure) || m.has(ItemCreate) || m.has(ItemDelete)
	case ItemConfigure:
		return m.has(p) || m.has(ItemCreate)
	case ViewConfigure:
		return m.has(p) || m.has(ViewCreate)
	case ComputerConfigure:
		return m.has(p) || m.has(ComputerCreate)
	}
	return m.has(p)
}

func (m *Member) CanCreate() bool {
	return m.IsTeamAdmin() || m.HasPermission(ItemCreate)
}

func (m *Member) CanDelete() bool {
	return m.IsTeamAdmin() || m.HasPermission(ItemDelete)
}

func (m *Member) CanConfigure() bool {
	return m.IsTeamAdmin() || m.CanCreate() || m.HasPermission(ItemConfigure)
}

func (m *Member) CanBuild() bool {
	return m.IsTeamAdmin() || m.HasPermission(ItemBuild)
}

func (m *Member) CanCreateNode() bool {
	return m.IsTeamAdmin() || m.HasPermission(ComputerCreate)
}

func (m *Member) CanDeleteNode() bool {
	return m.IsTeamAdmin() || m.HasPermission(ComputerDelete)
}

func (m *Member) CanConfigureNode() bool {
	return m.IsTeamAdmin() || m.CanCreateNode() || m.HasPermission(ComputerConfigure)
}

func (m *Member) CanCreateView() bool {
	return m.IsTeamAdmin() || m.HasPermission(ViewCreate)
}

func (m *Member) CanDeleteView() bool {
	return m.IsTeamAdmin() || m.HasPermission(ViewDelete)
}

func (m *Member) CanConfigureView() bool {
	return m.IsTeamAdmin() || m.CanCreateView() || m.HasPermission(ViewConfigure)
}

// applyGrants applies the permission flags to a fresh member, mirroring
// the grants each flag fans out to.
func (m *Member) applyGrants(perms MemberPermissions) {
	m.setTeamAdmin(perms.TeamAdmin)
	if perms.Create {
		m.addPermission(ItemCreate)
		m.addPermission(ItemExtendedRead)
	}
	if perms.Delete {
		m.addPermission(ItemDelete)
		m.addPermission(ItemWipeout)
	}
	if perms.Configure {
		m.addPermission(ItemConfigure)
		m.addPermission(ItemExtendedRead)
	}
	if perms.Build {
		m.addPermission(ItemBuild)
	}
	if perms.CreateNode {
		m.addPermission(ComputerCreate)
	}
	if perms.DeleteNode {
		m.addPermission(ComputerDelete)
	}
	if perms.ConfigureNode {
		m.addPermission(ComputerConfigure)
	}
	if perms.CreateView {
		m.addPermission(ViewCreate)
	}
	if perms.DeleteView {
		m.addPermission(ViewDelete)
	}
	if perms.ConfigureView {
		m.addPermission(ViewConfigure)
	}
}

// updateGrants rewrites the member's grants from the flags. ExtendedRead
// is shared between the create and configure flags, so it is only removed
// when both are off.
func (m *Member) updateGrants(perms MemberPermissions) {
	m.setTeamAdmin(perms.TeamAdmin)
	if perms.Create {
		m.addPermission(ItemCreate)
		m.addPermission(ItemExtendedRead)
	} else {
		m.removePermission(ItemCreate)
		if !perms.Configure {
			m.removePermission(ItemExtendedRead)
		}
	}
	if perms.Delete {
		m.addPermission(ItemDelete)
		m.addPermission(ItemWipeout)
	} else {
		m.removePermission(ItemDelete)
		m.removePermission(ItemWipeout)
	}
	if perms.Configure {
		m.addPermission(ItemConfigure)
		m.addPermission(ItemExtendedRead)
	} else {
		m.removePermission(ItemConfigure)
		if !perms.Create {
			m.removePermission(ItemExtendedRead)
		}
	}
	if perms.Build {
		m.addPermission(ItemBuild)
	} else {
		m.removePermission(ItemBuild)
	}
	if perms.CreateNode {
		m.addPermission(ComputerCreate)
	} else {
		m.removePermission(ComputerCreate)
	}
	if perms.DeleteNode {
		m.addPermission(ComputerDelete)
	} else {
		m.removePermission(ComputerDelete)
	}
	if perms.ConfigureNode {
		m.addPermission(ComputerConfigure)
	} else {
		m.removePermission(ComputerConfigure)
	}
	if perms.CreateView {
		m.addPermission(ViewCreate)
	} else {
		m.removePermission(ViewCreate)
	}
	if perms.DeleteView {
		m.addPermission(ViewDelete)
	} else {
		m.removePermission(ViewDelete)
	}
	if perms.ConfigureView {
		m.addPermission(ViewConfigure)
	} else {
		m.removePermission(ViewConfigure)
	}
}

// Flags folds the effective grants back into flag form.
func (m *Member) Flags() MemberPermissions {
	return MemberPermissions{
		TeamAdmin:     m.IsTeamAdmin(),
		Create:        m.CanCreate(),
		Delete:        m.CanDelete(),
		Configure:     m.CanConfigure(),
		Build:         m.CanBuild(),
		CreateNode:    m.CanCreateNode(),
		DeleteNode:    m.CanDeleteNode(),
		ConfigureNode: m.CanConfigureNode(),
		CreateView:    m.CanCreateView(),
		DeleteView:    m.CanDeleteView(),
		ConfigureView: m.CanConfigureView(),
	}
}

// flagsString serializes the effective grants as the comma-joined flag
// list the store round-trips.
func (m *Member) flagsString() string {
	var parts []string
	if m.IsTeamAdmin() {
		parts = append(parts, "admin")
	}
	flags := m.Flags()
	add := func(on bool, name string) {
		if on {
			parts = append(parts, name)
		}
	}
	add(flags.Create, "create")
	add(flags.Delete, "delete")
	add(flags.Configure, "configure")
	add(flags.Build, "build")
	add(flags.CreateView, "createView")
	add(flags.DeleteView, "deleteView")
	add(flags.ConfigureView, "configureView")
	add(flags.CreateNode, "createNode")
	add(flags.DeleteNode, "deleteNode")
	add(flags.ConfigureNode, "configureNode")
	return strings.Join(parts, ",")
}

// grantFlag applies one serialized flag name while loading from the store.
func (m *Member) grantFlag(flag string) {
	switch flag {
	case "admin":
		m.setTeamAdmin(true)
	case "create":
		m.addPermission(ItemCreate)
		m.addPermission(ItemExtendedRead)
		m.addPermission(ScmTag)
	case "delete":
		m.addPermission(ItemDelete)
		m.addPermission(ItemWipeout)
	case "configure":
		m.addPermission(ItemConfigure)
		m.addPermission(ScmTag)
	case "build":
		m.addPermission(ItemBuild)
	case "createNode":
		m.addPermission(ComputerCreate)
		m.addPermission(ComputerConfigure)
	case "deleteNode":
		m.addPermission(ComputerDelete)
	case "configureNode":
		m.addPermission(ComputerConfigure)
	case "createView":
		m.addPermission(ViewCreate)
	case "deleteView":
		m.addPermission(ViewDelete)
	case "configureView":
		m.addPermission(ViewConfigure)
	}
}

// PermissionNames lists the short names of the member's effective grants,
// sorted, for the permission listing surface.
func (m *Member) PermissionNames() []string {
	m.mu.RLock()
	source := m.granted
	if m.teamAdmin {
		source = teamAdminGranted
	}
	// Short names collapse across groups; Item.Read and View.Read both
	// list as "Read".
	set := make(map[string]struct{}, len(source))
	for p := range source {
		set[p.Name()] = struct{}{}
	}
	m.mu.RUnlock()
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
