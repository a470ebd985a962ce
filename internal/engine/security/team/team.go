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
	"sync"

	"github.com/go-foundry/foundry/pkg/log"
)

// PublicTeamName is the reserved name of the team holding unclaimed items.
const PublicTeamName = "public"

// Team is a named partition of ownership over jobs, views and nodes plus
// a member roster. The name is immutable once created. Every mutator
// persists the whole configuration through the manager on success.
type Team struct {
	name             string
	description      string
	customFolderName string

	mu          sync.RWMutex
	members     []*Member
	jobs        []*Job
	views       []*View
	nodes       []*Node
	primaryView string

	// Visible nodes of other teams are disabled by default and must be
	// enabled explicitly. Public nodes are enabled by default and are
	// disabled explicitly instead.
	enabledVisibleNodes map[string]struct{}
	disabledPublicNodes map[string]struct{}

	mgr *Manager
}

func newTeam(name, description, customFolderName string, mgr *Manager) *Team {
	return &Team{
		name:                name,
		description:         description,
		customFolderName:    customFolderName,
		enabledVisibleNodes: make(map[string]struct{}),
		disabledPublicNodes: make(map[string]struct{}),
		mgr:                 mgr,
	}
}

func (t *Team) Name() string {
	return t.name
}

func (t *Team) IsPublic() bool {
	return t.name == PublicTeamName
}

func (t *Team) Description() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.description
}

func (t *Team) SetDescription(description string) error {
	t.mu.Lock()
	t.description = description
	t.mu.Unlock()
	return t.mgr.save()
}

func (t *Team) CustomFolderName() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.customFolderName
}

// Members returns a copy of the roster.
func (t *Team) Members() []*Member {
	t.mu.RLock()
	defer t.mu.RUnlock()
	members := make([]*Member, len(t.members))
	copy(members, t.members)
	return members
}

// FindMember matches the sid case-insensitively; nil when absent.
func (t *Team) FindMember(sid string) *Member {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, m := range t.members {
		if m.Is(sid) {
			return m
		}
	}
	return nil
}

func (t *Team) IsMember(sid string) bool {
	return t.FindMember(sid) != nil
}

// IsAdmin reports whether sid is on the roster with the team admin flag.
func (t *Team) IsAdmin(sid string) bool {
	if m := t.FindMember(sid); m != nil {
		return m.IsTeamAdmin()
	}
	return false
}

// AddMember creates a member with the given flags. No-op when the sid is
// already on the roster.
func (t *Team) AddMember(sid string, perms MemberPermissions) error {
	if t.FindMember(sid) != nil {
		return nil
	}
	member := NewMember(sid)
	member.applyGrants(perms)
	t.mu.Lock()
	t.members = append(t.members, member)
	t.mu.Unlock()
	return t.mgr.save()
}

// UpdateMember rewrites an existing member's flags. No-op when absent.
func (t *Team) UpdateMember(sid string, perms MemberPermissions) error {
	member := t.FindMember(sid)
	if member == nil {
		return nil
	}
	member.updateGrants(perms)
	return t.mgr.save()
}

func (t *Team) RemoveMember(sid string) error {
	t.mu.Lock()
	removed := false
	for idx, m := range t.members {
		if m.Is(sid) {
			t.members = append(t.members[:idx], t.members[idx+1:]...)
			removed = true
			break
		}
	}
	t.mu.Unlock()
	if !removed {
		return nil
	}
	return t.mgr.save()
}

func (t *Team) Jobs() []*Job {
	t.mu.RLock()
	defer t.mu.RUnlock()
	jobs := make([]*Job, len(t.jobs))
	copy(jobs, t.jobs)
	return jobs
}

func (t *Team) Views() []*View {
	t.mu.RLock()
	defer t.mu.RUnlock()
	views := make([]*View, len(t.views))
	copy(views, t.views)
	return views
}

func (t *Team) Nodes() []*Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	nodes := make([]*Node, len(t.nodes))
	copy(nodes, t.nodes)
	return nodes
}

func (t *Team) JobNames() []string {
	jobs := t.Jobs()
	names := make([]string, 0, len(jobs))
	for _, j := range jobs {
		names = append(names, j.ID())
	}
	sort.Strings(names)
	return names
}

func (t *Team) ViewNames() []string {
	views := t.Views()
	names := make([]string, 0, len(views))
	for _, v := range views {
		names = append(names, v.ID())
	}
	sort.Strings(names)
	return names
}

func (t *Team) NodeNames() []string {
	nodes := t.Nodes()
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		names = append(names, n.ID())
	}
	sort.Strings(names)
	return names
}

// FindJob returns nil when this team does not own the job.
func (t *Team) FindJob(jobName string) *Job {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, j := range t.jobs {
		if j.ID() == jobName {
			return j
		}
	}
	return nil
}

func (t *Team) IsJobOwner(jobName string) bool {
	return t.FindJob(jobName) != nil
}

func (t *Team) AddJob(job *Job) error {
	return t.addJob(job, true)
}

func (t *Team) addJob(job *Job, save bool) error {
	if t.FindJob(job.ID()) != nil {
		return nil
	}
	t.mu.Lock()
	t.jobs = append(t.jobs, job)
	t.mu.Unlock()
	if save {
		return t.mgr.save()
	}
	return nil
}

func (t *Team) RemoveJob(jobName string) (bool, error) {
	t.mu.Lock()
	removed := false
	for idx, j := range t.jobs {
		if j.ID() == jobName {
			t.jobs = append(t.jobs[:idx], t.jobs[idx+1:]...)
			removed = true
			break
		}
	}
	t.mu.Unlock()
	if !removed {
		return false, nil
	}
	return true, t.mgr.save()
}

// RenameJob updates the id in place; the visibility set is preserved.
func (t *Team) RenameJob(oldJobName, newJobName string) error {
	job := t.FindJob(oldJobName)
	if job == nil {
		return nil
	}
	job.setID(newJobName)
	return t.mgr.save()
}

func (t *Team) FindView(viewName string) *View {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, v := range t.views {
		if v.ID() == viewName {
			return v
		}
	}
	return nil
}

func (t *Team) IsViewOwner(viewName string) bool {
	return t.FindView(viewName) != nil
}

func (t *Team) AddView(view *View) error {
	if t.FindView(view.ID()) != nil {
		return nil
	}
	t.mu.Lock()
	t.views = append(t.views, view)
	t.mu.Unlock()
	return t.mgr.save()
}

func (t *Team) RemoveView(viewName string) (bool, error) {
	t.mu.Lock()
	removed := false
	for idx, v := range t.views {
		if v.ID() == viewName {
			t.views = append(t.views[:idx], t.views[idx+1:]...)
			removed = true
			break
		}
	}
	t.mu.Unlock()
	if !removed {
		return false, nil
	}
	return true, t.mgr.save()
}

func (t *Team) RenameView(oldViewName, newViewName string) error {
	view := t.FindView(oldViewName)
	if view == nil {
		return nil
	}
	view.setID(newViewName)
	return t.mgr.save()
}

func (t *Team) FindNode(nodeName string) *Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, n := range t.nodes {
		if n.ID() == nodeName {
			return n
		}
	}
	return nil
}

func (t *Team) IsNodeOwner(nodeName string) bool {
	return t.FindNode(nodeName) != nil
}

func (t *Team) AddNode(node *Node) error {
	if t.FindNode(node.ID()) != nil {
		return nil
	}
	t.mu.Lock()
	t.nodes = append(t.nodes, node)
	t.mu.Unlock()
	return t.mgr.save()
}

func (t *Team) RemoveNode(nodeName string) (bool, error) {
	t.mu.Lock()
	removed := false
	for idx, n := range t.nodes {
		if n.ID() == nodeName {
			t.nodes = append(t.nodes[:idx], t.nodes[idx+1:]...)
			removed = true
			break
		}
	}
	t.mu.Unlock()
	if !removed {
		return false, nil
	}
	return true, t.mgr.save()
}

func (t *Team) RenameNode(oldNodeName, newNodeName string) error {
	node := t.FindNode(oldNodeName)
	if node == nil {
		return nil
	}
	node.setID(newNodeName)
	return t.mgr.save()
}

// AddToEnabledVisibleNodes enables a node for this team's jobs. For
// public nodes, which are enabled by default, the explicit disable mark
// is lifted instead.
func (t *Team) AddToEnabledVisibleNodes(nodeName string) error {
	public := t.mgr.PublicTeam()
	publicNode := public != nil && public.IsNodeOwner(nodeName)
	t.mu.Lock()
	if publicNode {
		delete(t.disabledPublicNodes, nodeName)
	} else {
		t.enabledVisibleNodes[nodeName] = struct{}{}
	}
	t.mu.Unlock()
	return t.mgr.save()
}

// RemoveFromEnabledVisibleNodes disables a node for this team's jobs.
func (t *Team) RemoveFromEnabledVisibleNodes(nodeName string) error {
	public := t.mgr.PublicTeam()
	publicNode := public != nil && public.IsNodeOwner(nodeName)
	t.mu.Lock()
	if publicNode {
		t.disabledPublicNodes[nodeName] = struct{}{}
	} else {
		delete(t.enabledVisibleNodes, nodeName)
	}
	t.mu.Unlock()
	return t.mgr.save()
}

// IsVisibleNodeEnabled is default-allow for public nodes and default-deny
// for other teams' nodes.
func (t *Team) IsVisibleNodeEnabled(nodeName string) bool {
	t.mu.RLock()
	if _, ok := t.enabledVisibleNodes[nodeName]; ok {
		t.mu.RUnlock()
		return true
	}
	_, disabled := t.disabledPublicNodes[nodeName]
	t.mu.RUnlock()
	if public := t.mgr.PublicTeam(); public != nil && public.IsNodeOwner(nodeName) {
		return !disabled
	}
	return false
}

// VisibleJobs returns every job, from any team, visible to this team:
// explicitly granted or owned by public.
func (t *Team) VisibleJobs() []*Job {
	var visible []*Job
	for _, other := range t.mgr.Teams() {
		for _, job := range other.Jobs() {
			if job.IsVisible(t.name) || other.IsPublic() {
				visible = append(visible, job)
			}
		}
	}
	return visible
}

func (t *Team) VisibleViews() []*View {
	var visible []*View
	for _, other := range t.mgr.Teams() {
		for _, view := range other.Views() {
			if view.IsVisible(t.name) || other.IsPublic() {
				visible = append(visible, view)
			}
		}
	}
	return visible
}

func (t *Team) VisibleNodes() []*Node {
	var visible []*Node
	for _, other := range t.mgr.Teams() {
		for _, node := range other.Nodes() {
			if node.IsVisible(t.name) || other.IsPublic() {
				visible = append(visible, node)
			}
		}
	}
	return visible
}

// AllViewNames lists the views visible to this team plus its own.
func (t *Team) AllViewNames() []string {
	var names []string
	for _, view := range t.VisibleViews() {
		names = append(names, view.ID())
	}
	for _, view := range t.Views() {
		names = append(names, view.ID())
	}
	return names
}

// PrimaryView self-heals: a primary view that is no longer owned by or
// visible to the team is cleared.
func (t *Team) PrimaryView() string {
	t.mu.RLock()
	primary := t.primaryView
	t.mu.RUnlock()
	if primary == "" {
		return ""
	}
	if t.FindView(primary) != nil {
		return primary
	}
	for _, view := range t.VisibleViews() {
		if view.ID() == primary {
			return primary
		}
	}
	t.mu.Lock()
	t.primaryView = ""
	t.mu.Unlock()
	if err := t.mgr.save(); err != nil {
		log.Errorf("failed to save after clearing primary view of team %s: %v", t.name, err)
	}
	return ""
}

func (t *Team) SetPrimaryView(viewName string) error {
	t.mu.Lock()
	t.primaryView = viewName
	t.mu.Unlock()
	return t.mgr.save()
}
