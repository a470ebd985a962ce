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

import "strings"

// The document types are the durable form of the whole team
// configuration. Member grants and node lists round-trip as the
// comma-joined flag strings the command surface also displays.

type managerDocument struct {
	SysAdmins []string       `json:"sysAdmins,omitempty"`
	Teams     []teamDocument `json:"teams"`
}

type teamDocument struct {
	Name                string           `json:"name"`
	Description         string           `json:"description,omitempty"`
	CustomFolderName    string           `json:"customFolderName,omitempty"`
	PrimaryView         string           `json:"primaryView,omitempty"`
	Members             []memberDocument `json:"members,omitempty"`
	Jobs                []jobDocument    `json:"jobs,omitempty"`
	Views               []itemDocument   `json:"views,omitempty"`
	Nodes               []itemDocument   `json:"nodes,omitempty"`
	EnabledVisibleNodes string           `json:"enabledVisibleNodes,omitempty"`
	DisabledPublicNodes string           `json:"disabledPublicNodes,omitempty"`
}

type memberDocument struct {
	Name        string `json:"name"`
	Permissions string `json:"permissions,omitempty"`
}

type jobDocument struct {
	ID              string `json:"id"`
	Visibility      string `json:"visibility,omitempty"`
	AllowConfigView bool   `json:"allowConfigView,omitempty"`
	MoveAllowed     *bool  `json:"moveAllowed,omitempty"`
}

type itemDocument struct {
	ID          string `json:"id"`
	Visibility  string `json:"visibility,omitempty"`
	MoveAllowed *bool  `json:"moveAllowed,omitempty"`
}

func joinNames(set map[string]struct{}) string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	return strings.Join(names, ",")
}

func splitNames(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, ",")
}

// snapshot captures the whole configuration under the manager lock.
func (m *Manager) snapshot() *managerDocument {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc := &managerDocument{Teams: make([]teamDocument, 0, len(m.teams))}
	doc.SysAdmins = append(doc.SysAdmins, m.sysAdmins...)
	for _, t := range m.teams {
		doc.Teams = append(doc.Teams, t.document())
	}
	return doc
}

func (t *Team) document() teamDocument {
	t.mu.RLock()
	defer t.mu.RUnlock()
	doc := teamDocument{
		Name:                t.name,
		Description:         t.description,
		CustomFolderName:    t.customFolderName,
		PrimaryView:         t.primaryView,
		EnabledVisibleNodes: joinNames(t.enabledVisibleNodes),
		DisabledPublicNodes: joinNames(t.disabledPublicNodes),
	}
	for _, member := range t.members {
		doc.Members = append(doc.Members, memberDocument{
			Name:        member.Name(),
			Permissions: member.flagsString(),
		})
	}
	for _, job := range t.jobs {
		doc.Jobs = append(doc.Jobs, jobDocument{
			ID:              job.ID(),
			Visibility:      strings.Join(job.Visibilities(), ":"),
			AllowConfigView: job.AllowConfigView(),
			MoveAllowed:     moveAllowedDoc(&job.Item),
		})
	}
	for _, view := range t.views {
		doc.Views = append(doc.Views, itemDocument{
			ID:          view.ID(),
			Visibility:  strings.Join(view.Visibilities(), ":"),
			MoveAllowed: moveAllowedDoc(&view.Item),
		})
	}
	for _, node := range t.nodes {
		doc.Nodes = append(doc.Nodes, itemDocument{
			ID:          node.ID(),
			Visibility:  strings.Join(node.Visibilities(), ":"),
			MoveAllowed: moveAllowedDoc(&node.Item),
		})
	}
	return doc
}

// moveAllowedDoc only records the unusual pinned state.
func moveAllowedDoc(item *Item) *bool {
	if item.IsMoveAllowed() {
		return nil
	}
	pinned := false
	return &pinned
}

// restore rebuilds the in-memory registry from the document. Member
// grants are re-derived flag by flag.
func (m *Manager) restore(doc *managerDocument) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sysAdmins = append([]string(nil), doc.SysAdmins...)
	m.teams = make([]*Team, 0, len(doc.Teams))
	for idx := range doc.Teams {
		m.teams = append(m.teams, m.restoreTeam(&doc.Teams[idx]))
	}
}

func (m *Manager) restoreTeam(doc *teamDocument) *Team {
	t := newTeam(doc.Name, doc.Description, doc.CustomFolderName, m)
	t.primaryView = doc.PrimaryView
	for _, md := range doc.Members {
		member := NewMember(md.Name)
		for _, flag := range splitNames(md.Permissions) {
			member.grantFlag(strings.TrimSpace(flag))
		}
		t.members = append(t.members, member)
	}
	for _, jd := range doc.Jobs {
		job := NewJob(jd.ID)
		restoreItem(&job.Item, jd.Visibility, jd.MoveAllowed)
		job.SetAllowConfigView(jd.AllowConfigView)
		t.jobs = append(t.jobs, job)
	}
	for _, vd := range doc.Views {
		view := NewView(vd.ID)
		restoreItem(&view.Item, vd.Visibility, vd.MoveAllowed)
		t.views = append(t.views, view)
	}
	for _, nd := range doc.Nodes {
		node := NewNode(nd.ID)
		restoreItem(&node.Item, nd.Visibility, nd.MoveAllowed)
		t.nodes = append(t.nodes, node)
	}
	for _, name := range splitNames(doc.EnabledVisibleNodes) {
		t.enabledVisibleNodes[name] = struct{}{}
	}
	for _, name := range splitNames(doc.DisabledPublicNodes) {
		t.disabledPublicNodes[name] = struct{}{}
	}
	return t
}

func restoreItem(item *Item, visibility string, moveAllowed *bool) {
	if visibility != "" {
		for _, name := range strings.Split(visibility, ":") {
			item.AddVisibility(name)
		}
	}
	if moveAllowed != nil {
		item.SetMoveAllowed(*moveAllowed)
	}
}
