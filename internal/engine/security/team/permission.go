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

// Permission is an atomic capability that may be implied by a coarser one.
// The implication graph is a flat chain; permissions are compared by
// identity, so every permission is a package-level singleton.
type Permission struct {
	group     string
	name      string
	impliedBy *Permission
	enabled   bool
}

func newPermission(group, name string, impliedBy *Permission) *Permission {
	return &Permission{group: group, name: name, impliedBy: impliedBy, enabled: true}
}

// Name is the short name used in user-facing permission listings.
func (p *Permission) Name() string {
	return p.name
}

// ID is the group-qualified identifier, unique across the registry.
func (p *Permission) ID() string {
	return p.group + "." + p.name
}

func (p *Permission) ImpliedBy() *Permission {
	return p.impliedBy
}

func (p *Permission) Enabled() bool {
	return p.enabled
}

// IsReadClass reports whether p hangs directly off the generic Read root.
// Only those permissions are handed out by ownership-independent read
// grants (public items, cross-team visibility).
func (p *Permission) IsReadClass() bool {
	return p.impliedBy == Read
}

var (
	// Read is the generic read root.
	Read = newPermission("Generic", "Read", nil)

	ItemRead         = newPermission("Item", "Read", Read)
	ItemWorkspace    = newPermission("Item", "Workspace", ItemRead)
	ItemExtendedRead = newPermission("Item", "ExtendedRead", ItemConfigure)
	ItemCreate       = newPermission("Item", "Create", nil)
	ItemDelete       = newPermission("Item", "Delete", nil)
	ItemWipeout      = newPermission("Item", "Wipeout", ItemDelete)
	ItemConfigure    = newPermission("Item", "Configure", nil)
	ItemBuild        = newPermission("Item", "Build", nil)

	RunUpdate = newPermission("Run", "Update", nil)
	RunDelete = newPermission("Run", "Delete", nil)

	ScmTag = newPermission("SCM", "Tag", nil)

	ViewRead      = newPermission("View", "Read", Read)
	ViewCreate    = newPermission("View", "Create", nil)
	ViewDelete    = newPermission("View", "Delete", nil)
	ViewConfigure = newPermission("View", "Configure", nil)

	ComputerRead      = newPermission("Computer", "Read", Read)
	ComputerCreate    = newPermission("Computer", "Create", nil)
	ComputerDelete    = newPermission("Computer", "Delete", nil)
	ComputerConfigure = newPermission("Computer", "Configure", nil)
)

// AdminPseudoPermission is not a real permission; it marks team admins in
// permission listings.
const AdminPseudoPermission = "Admin"

// AllTeamPermissions lists every job-scope permission name, sorted, plus
// the admin pseudo-permission. Sys admins report exactly this set.
var AllTeamPermissions = []string{
	AdminPseudoPermission,
	ItemBuild.Name(),
	ItemConfigure.Name(),
	ItemCreate.Name(),
	ItemDelete.Name(),
	ItemExtendedRead.Name(),
	ItemRead.Name(),
	ItemWipeout.Name(),
	ItemWorkspace.Name(),
}
