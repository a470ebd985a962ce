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
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-foundry/foundry/internal/engine/security/identity"
	"github.com/go-foundry/foundry/internal/engine/store"
	"github.com/go-foundry/foundry/pkg/log"
	"github.com/go-foundry/foundry/pkg/metrics"
)

const (
	// TeamSeparator joins a team name and a job base name into the
	// qualified job id.
	TeamSeparator = "."
	// TeamNameLimit bounds the length of a team name.
	TeamNameLimit = 64
	// JobNameLimitTeam bounds the unqualified part of a job name when a
	// public job, created while team management was off, moves into a team.
	JobNameLimitTeam = 32
)

// unsafe characters in a team name; the separator is also reserved.
const unsafeTeamNameChars = "?*/\\%!@#$^&|<>[]:;" + TeamSeparator

// Manager is the authoritative registry of all teams, including exactly
// one public team, and of the system administrators. Every ownership
// query and mutation goes through it so there is one place enforcing the
// at-most-one-owner invariant. One instance per process, constructed at
// startup from the durable store.
type Manager struct {
	mu        sync.RWMutex
	sysAdmins []string
	teams     []*Team
	public    *Team

	store    store.Store
	registry ItemRegistry

	// save suppression used to coalesce bulk mutations into one write.
	bulkMu sync.Mutex
	bulk   bool
	dirty  bool
}

// NewManager loads the configuration from the store, re-binds the public
// team and adopts any unowned items from the registry.
func NewManager(st store.Store, registry ItemRegistry) (*Manager, error) {
	m := &Manager{store: st, registry: registry}
	if err := m.load(); err != nil {
		return nil, err
	}
	if err := m.ensurePublicTeam(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) load() error {
	if !m.store.Exists() {
		return nil
	}
	var doc managerDocument
	if err := m.store.Read(&doc); err != nil {
		return fmt.Errorf("failed to load team configuration: %w", err)
	}
	m.restore(&doc)
	return nil
}

// ensurePublicTeam re-creates the public team (dropping any persisted
// one, whose items it keeps) and adopts every job, view and node the
// registry knows that no team owns. The built-in all view and master
// node are pinned.
func (m *Manager) ensurePublicTeam() error {
	m.mu.Lock()
	var persisted *Team
	for idx, t := range m.teams {
		if t.IsPublic() {
			persisted = t
			m.teams = append(m.teams[:idx], m.teams[idx+1:]...)
			break
		}
	}
	public := newTeam(PublicTeamName, "Public team", "", m)
	if persisted != nil {
		public.members = persisted.members
		public.jobs = persisted.jobs
		public.views = persisted.views
		public.nodes = persisted.nodes
		public.enabledVisibleNodes = persisted.enabledVisibleNodes
		public.disabledPublicNodes = persisted.disabledPublicNodes
	}
	m.public = public
	m.teams = append(m.teams, public)
	m.mu.Unlock()

	if m.registry == nil {
		return nil
	}
	m.suspendSave()
	if err := m.adoptUnowned(public); err != nil {
		m.resumeSave()
		return err
	}
	return m.resumeSave()
}

func (m *Manager) adoptUnowned(public *Team) error {
	for _, jobName := range m.registry.JobNames() {
		if m.FindJobOwnerTeam(jobName) == nil {
			if err := public.AddJob(NewJob(jobName)); err != nil {
				return err
			}
		}
	}
	for _, viewName := range m.registry.ViewNames() {
		if viewName == AllViewName {
			view := public.FindView(viewName)
			if view == nil {
				view = NewView(viewName)
				if err := public.AddView(view); err != nil {
					return err
				}
			}
			view.SetMoveAllowed(false)
		} else if m.FindViewOwnerTeam(viewName) == nil {
			if err := public.AddView(NewView(viewName)); err != nil {
				return err
			}
		}
	}
	for _, nodeName := range m.registry.NodeNames() {
		if nodeName == MasterNodeName {
			node := public.FindNode(nodeName)
			if node == nil {
				node = NewNode(nodeName)
				if err := public.AddNode(node); err != nil {
					return err
				}
			}
			node.SetMoveAllowed(false)
		} else if m.FindNodeOwnerTeam(nodeName) == nil {
			if err := public.AddNode(NewNode(nodeName)); err != nil {
				return err
			}
		}
	}
	return nil
}

// PublicTeam never returns nil after construction.
func (m *Manager) PublicTeam() *Team {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.public
}

// Teams returns a copy of the registry in registration order.
func (m *Manager) Teams() []*Team {
	m.mu.RLock()
	defer m.mu.RUnlock()
	teams := make([]*Team, len(m.teams))
	copy(teams, m.teams)
	return teams
}

func (m *Manager) TeamNames() []string {
	teams := m.Teams()
	names := make([]string, 0, len(teams))
	for _, t := range teams {
		names = append(names, t.Name())
	}
	return names
}

// FindTeam is an exact-name lookup; missing names are an error, unlike
// the item finders.
func (m *Manager) FindTeam(teamName string) (*Team, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.teams {
		if t.Name() == teamName {
			return t, nil
		}
	}
	return nil, newTeamNotFoundError(teamName)
}

func checkTeamName(teamName string) error {
	if teamName == "" {
		return fmt.Errorf("Team name required.")
	}
	if idx := strings.IndexAny(teamName, unsafeTeamNameChars); idx >= 0 {
		return fmt.Errorf("%q is an unsafe character", teamName[idx])
	}
	if len(teamName) > TeamNameLimit {
		return fmt.Errorf("Team name cannot exceed %d characters.", TeamNameLimit)
	}
	return nil
}

// CreateTeam validates the name and registers a new team. The name is
// trimmed before validation so the registered name is the validated one.
func (m *Manager) CreateTeam(teamName, description, customFolder string) (*Team, error) {
	teamName = strings.TrimSpace(teamName)
	if err := checkTeamName(teamName); err != nil {
		metrics.TeamOperationTotal.WithLabelValues("create", "error").Inc()
		return nil, err
	}
	team, err := m.internalCreateTeam(teamName, description, customFolder)
	if err != nil {
		metrics.TeamOperationTotal.WithLabelValues("create", "error").Inc()
		return nil, err
	}
	metrics.TeamOperationTotal.WithLabelValues("create", "ok").Inc()
	return team, nil
}

func (m *Manager) internalCreateTeam(teamName, description, customFolder string) (*Team, error) {
	m.mu.Lock()
	for _, t := range m.teams {
		if t.Name() == teamName {
			m.mu.Unlock()
			return nil, &TeamAlreadyExistsError{Name: teamName}
		}
	}
	team := newTeam(teamName, description, customFolder, m)
	m.teams = append(m.teams, team)
	m.mu.Unlock()
	if err := m.save(); err != nil {
		return nil, err
	}
	return team, nil
}

// DeleteTeam removes a team. Its jobs are either deleted with it or
// moved to the public team first; a team is never deleted while silently
// orphaning jobs. The public team cannot be deleted.
func (m *Manager) DeleteTeam(teamName string, deleteJobs bool) error {
	team, err := m.FindTeam(teamName)
	if err != nil {
		metrics.TeamOperationTotal.WithLabelValues("delete", "error").Inc()
		return err
	}
	if team.IsPublic() {
		metrics.TeamOperationTotal.WithLabelValues("delete", "error").Inc()
		return fmt.Errorf("Cannot delete public team")
	}
	for _, job := range team.Jobs() {
		if deleteJobs {
			if m.registry != nil {
				if err := m.registry.DeleteJob(job.ID()); err != nil {
					return fmt.Errorf("failed to delete job %s: %w", job.ID(), err)
				}
			}
			if _, err := team.RemoveJob(job.ID()); err != nil {
				return err
			}
		} else {
			if _, err := m.MoveJob(job.ID(), team, m.PublicTeam(), ""); err != nil {
				return err
			}
		}
	}
	m.mu.Lock()
	for idx, t := range m.teams {
		if t == team {
			m.teams = append(m.teams[:idx], m.teams[idx+1:]...)
			break
		}
	}
	m.mu.Unlock()
	metrics.TeamOperationTotal.WithLabelValues("delete", "ok").Inc()
	return m.save()
}

// FindJobOwnerTeam scans all teams; nil when no team owns the job.
func (m *Manager) FindJobOwnerTeam(jobName string) *Team {
	for _, t := range m.Teams() {
		if t.IsJobOwner(jobName) {
			return t
		}
	}
	return nil
}

func (m *Manager) FindViewOwnerTeam(viewName string) *Team {
	for _, t := range m.Teams() {
		if t.IsViewOwner(viewName) {
			return t
		}
	}
	return nil
}

func (m *Manager) FindNodeOwnerTeam(nodeName string) *Team {
	for _, t := range m.Teams() {
		if t.IsNodeOwner(nodeName) {
			return t
		}
	}
	return nil
}

func (m *Manager) FindJob(jobName string) *Job {
	if t := m.FindJobOwnerTeam(jobName); t != nil {
		return t.FindJob(jobName)
	}
	return nil
}

func (m *Manager) FindView(viewName string) *View {
	if t := m.FindViewOwnerTeam(viewName); t != nil {
		return t.FindView(viewName)
	}
	return nil
}

func (m *Manager) FindNode(nodeName string) *Node {
	if t := m.FindNodeOwnerTeam(nodeName); t != nil {
		return t.FindNode(nodeName)
	}
	return nil
}

// MoveJob transfers a job between teams. The new ownership record is
// added before the rename and the old one removed after, so an ownership
// lookup during the move finds the job's folder through the destination
// team. The steps are not transactional; the reconciliation pass repairs
// an interrupted move.
func (m *Manager) MoveJob(jobName string, oldTeam, newTeam *Team, originalName string) (string, error) {
	unqualified := strings.TrimSpace(originalName)
	if unqualified == "" {
		unqualified = m.UnqualifiedJobName(oldTeam, jobName)
	}
	// A public job created while team management was off may be too long
	// or contain the separator.
	if oldTeam.IsPublic() {
		if len(unqualified) > JobNameLimitTeam {
			unqualified = unqualified[:JobNameLimitTeam]
		}
		unqualified = strings.ReplaceAll(unqualified, TeamSeparator, "_")
	}
	qualified := m.TeamQualifiedJobName(newTeam, unqualified)

	existing := oldTeam.FindJob(jobName)
	newJob := NewJob(qualified)
	if existing != nil {
		for _, v := range existing.Visibilities() {
			newJob.AddVisibility(v)
		}
		newJob.SetAllowConfigView(existing.AllowConfigView())
	}
	if err := newTeam.AddJob(newJob); err != nil {
		metrics.TeamOperationTotal.WithLabelValues("moveJob", "error").Inc()
		return "", err
	}
	if m.registry != nil && m.registry.JobExists(jobName) {
		if err := m.registry.RenameJob(jobName, qualified); err != nil {
			metrics.TeamOperationTotal.WithLabelValues("moveJob", "error").Inc()
			return "", fmt.Errorf("failed to move job %s: %w", jobName, err)
		}
	}
	if _, err := oldTeam.RemoveJob(jobName); err != nil {
		metrics.TeamOperationTotal.WithLabelValues("moveJob", "error").Inc()
		return "", err
	}
	if m.registry != nil {
		m.registry.ReplaceItem(jobName, qualified)
	}
	metrics.TeamOperationTotal.WithLabelValues("moveJob", "ok").Inc()
	return qualified, nil
}

// MoveView transfers a view; views keep their id across teams.
func (m *Manager) MoveView(oldTeam, newTeam *Team, viewName string) error {
	removed, err := oldTeam.RemoveView(viewName)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("View %s is not a member of team %s", viewName, oldTeam.Name())
	}
	return newTeam.AddView(NewView(viewName))
}

// MoveNode transfers a node; nodes keep their id across teams.
func (m *Manager) MoveNode(oldTeam, newTeam *Team, nodeName string) error {
	removed, err := oldTeam.RemoveNode(nodeName)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("Node %s is not a member of team %s", nodeName, oldTeam.Name())
	}
	return newTeam.AddNode(NewNode(nodeName))
}

// RawTeamQualifiedJobName qualifies without the uniqueness suffix; used
// for duplicate checks before create.
func (m *Manager) RawTeamQualifiedJobName(team *Team, jobName string) string {
	if team.IsPublic() {
		return jobName
	}
	return team.Name() + TeamSeparator + jobName
}

// TeamQualifiedJobName qualifies a base name for the team and suffixes
// `_2`, `_3`, ... until no team owns the result. Public job names stay
// unqualified.
func (m *Manager) TeamQualifiedJobName(team *Team, jobName string) string {
	base := jobName
	if !team.IsPublic() {
		base = team.Name() + TeamSeparator + jobName
	}
	qualified := base
	for postfix := 2; m.FindJobOwnerTeam(qualified) != nil; postfix++ {
		qualified = fmt.Sprintf("%s_%d", base, postfix)
	}
	return qualified
}

// UnqualifiedJobName strips the team prefix. Public job names carry none.
func (m *Manager) UnqualifiedJobName(team *Team, jobName string) string {
	if !team.IsPublic() && strings.HasPrefix(jobName, team.Name()+TeamSeparator) {
		return jobName[len(team.Name())+1:]
	}
	return jobName
}

// IsQualifiedJobName checks the name matches the team's qualification
// convention: unqualified for public, `<team>.` prefixed otherwise.
func (m *Manager) IsQualifiedJobName(team *Team, jobName string) bool {
	if team.IsPublic() {
		return !strings.Contains(jobName, TeamSeparator)
	}
	return strings.HasPrefix(jobName, team.Name()+TeamSeparator)
}

// AddJob registers a job with the team, qualifying the name first, and
// returns the qualified name the job must be created under.
func (m *Manager) AddJob(team *Team, unqualifiedJobName string) (string, error) {
	qualified := m.TeamQualifiedJobName(team, unqualifiedJobName)
	if err := team.AddJob(NewJob(qualified)); err != nil {
		return "", err
	}
	return qualified, nil
}

// sysAdmins

func (m *Manager) AddSysAdmin(adminName string) error {
	m.mu.Lock()
	for _, admin := range m.sysAdmins {
		if admin == adminName {
			m.mu.Unlock()
			return nil
		}
	}
	m.sysAdmins = append(m.sysAdmins, adminName)
	m.mu.Unlock()
	return m.save()
}

func (m *Manager) RemoveSysAdmin(adminName string) error {
	m.mu.Lock()
	removed := false
	for idx, admin := range m.sysAdmins {
		if admin == adminName {
			m.sysAdmins = append(m.sysAdmins[:idx], m.sysAdmins[idx+1:]...)
			removed = true
			break
		}
	}
	m.mu.Unlock()
	if !removed {
		return nil
	}
	return m.save()
}

func (m *Manager) SysAdmins() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	admins := make([]string, len(m.sysAdmins))
	copy(admins, m.sysAdmins)
	return admins
}

// IsSysAdmin matches one sid, case-insensitively.
func (m *Manager) IsSysAdmin(sid string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, admin := range m.sysAdmins {
		if strings.EqualFold(sid, admin) {
			return true
		}
	}
	return false
}

// IsUserSysAdmin checks the principal name and every role.
func (m *Manager) IsUserSysAdmin(user identity.User) bool {
	for _, sid := range user.Sids() {
		if m.IsSysAdmin(sid) {
			return true
		}
	}
	return false
}

// IsUserTeamAdmin is true for sys admins and for principals whose name
// or role is a team-admin member of the team.
func (m *Manager) IsUserTeamAdmin(user identity.User, teamName string) bool {
	if m.IsUserSysAdmin(user) {
		return true
	}
	team, err := m.FindTeam(teamName)
	if err != nil {
		log.Debugf("team admin check: %v", err)
		return false
	}
	for _, sid := range user.Sids() {
		if team.IsAdmin(sid) {
			return true
		}
	}
	return false
}

// FindUserTeams returns every team where the sid is on the roster.
func (m *Manager) FindUserTeams(sid string) []*Team {
	var userTeams []*Team
	for _, t := range m.Teams() {
		if t.IsMember(sid) {
			userTeams = append(userTeams, t)
		}
	}
	return userTeams
}

// UserTeams returns the teams the principal or any of its roles belongs
// to; sys admins belong to all teams.
func (m *Manager) UserTeams(user identity.User) []*Team {
	if m.IsUserSysAdmin(user) {
		return m.Teams()
	}
	var userTeams []*Team
	seen := make(map[*Team]struct{})
	for _, sid := range user.Sids() {
		for _, t := range m.FindUserTeams(sid) {
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				userTeams = append(userTeams, t)
			}
		}
	}
	return userTeams
}

func (m *Manager) UserTeamNames(user identity.User) []string {
	teams := m.UserTeams(user)
	names := make([]string, 0, len(teams))
	for _, t := range teams {
		names = append(names, t.Name())
	}
	sort.Strings(names)
	return names
}

// UserAdminTeams lists the teams the user administers, sorted. A sys
// admin administers every team.
func (m *Manager) UserAdminTeams(user identity.User) []string {
	var names []string
	for _, t := range m.Teams() {
		if m.IsUserTeamAdmin(user, t.Name()) {
			names = append(names, t.Name())
		}
	}
	sort.Strings(names)
	return names
}

// UserVisibleTeams is the user's teams plus public, which everyone sees.
func (m *Manager) UserVisibleTeams(user identity.User) []string {
	names := m.UserTeamNames(user)
	for _, name := range names {
		if name == PublicTeamName {
			return names
		}
	}
	return append(names, PublicTeamName)
}

// UserTeamsWithPermission lists the user's teams where the name or a
// role holds the permission.
func (m *Manager) UserTeamsWithPermission(user identity.User, p *Permission) []*Team {
	var withPermission []*Team
	for _, t := range m.userMemberTeams(user) {
		for _, sid := range user.Sids() {
			if member := t.FindMember(sid); member != nil && member.HasPermission(p) {
				withPermission = append(withPermission, t)
				break
			}
		}
	}
	return withPermission
}

// userMemberTeams is UserTeams without the sys-admin expansion.
func (m *Manager) userMemberTeams(user identity.User) []*Team {
	var userTeams []*Team
	seen := make(map[*Team]struct{})
	for _, sid := range user.Sids() {
		for _, t := range m.FindUserTeams(sid) {
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				userTeams = append(userTeams, t)
			}
		}
	}
	return userTeams
}

// FindUserTeamForNewJob resolves the implicit destination team for a new
// job: the first team granting the user Create, then public for sys
// admins.
func (m *Manager) FindUserTeamForNewJob(user identity.User) (*Team, error) {
	if teams := m.UserTeamsWithPermission(user, ItemCreate); len(teams) > 0 {
		return teams[0], nil
	}
	if m.IsUserSysAdmin(user) {
		return m.PublicTeam(), nil
	}
	return nil, newTeamNotFoundErrorMsg("User does not have Job create permission in any team")
}

func (m *Manager) FindUserTeamForNewView(user identity.User) (*Team, error) {
	if teams := m.UserTeamsWithPermission(user, ViewCreate); len(teams) > 0 {
		return teams[0], nil
	}
	if m.IsUserSysAdmin(user) {
		return m.PublicTeam(), nil
	}
	return nil, newTeamNotFoundErrorMsg("User does not have View create permission in any team")
}

func (m *Manager) FindUserTeamForNewNode(user identity.User) (*Team, error) {
	if teams := m.UserTeamsWithPermission(user, ComputerCreate); len(teams) > 0 {
		return teams[0], nil
	}
	if m.IsUserSysAdmin(user) {
		return m.PublicTeam(), nil
	}
	return nil, newTeamNotFoundErrorMsg("User does not have Node create permission in any team")
}

// FindUserTeamForItem is the fallback destination for items created by
// listeners: the user's first team, else public.
func (m *Manager) FindUserTeamForItem(sid string) *Team {
	if teams := m.FindUserTeams(sid); len(teams) > 0 {
		return teams[0]
	}
	return m.PublicTeam()
}

// UserTeamPermissions lists the user's permission names in a team. Sys
// admins report the full set; in the public team even anonymous can read.
func (m *Manager) UserTeamPermissions(user identity.User, teamName string) ([]string, error) {
	team, err := m.FindTeam(teamName)
	if err != nil {
		return nil, err
	}
	if m.IsUserSysAdmin(user) {
		out := make([]string, len(AllTeamPermissions))
		copy(out, AllTeamPermissions)
		return out, nil
	}
	for _, sid := range user.Sids() {
		member := team.FindMember(sid)
		if member == nil {
			continue
		}
		names := member.PermissionNames()
		if member.IsTeamAdmin() {
			names = append(names, AdminPseudoPermission)
		}
		sort.Strings(names)
		return names, nil
	}
	if team.IsPublic() {
		return []string{ItemRead.Name()}, nil
	}
	return []string{}, nil
}

// CanNodeExecuteJob is the scheduling gate: same team, or an enabled
// public node, or a node made visible to the job's team and enabled.
func (m *Manager) CanNodeExecuteJob(nodeName, jobName string) bool {
	nodeTeam := m.FindNodeOwnerTeam(nodeName)
	jobTeam := m.FindJobOwnerTeam(jobName)
	if nodeTeam == nil || jobTeam == nil {
		return false
	}
	if nodeTeam.IsPublic() && jobTeam.IsVisibleNodeEnabled(nodeName) {
		return true
	}
	if nodeTeam == jobTeam {
		return true
	}
	if node := nodeTeam.FindNode(nodeName); node != nil {
		return node.IsVisible(jobTeam.Name()) && jobTeam.IsVisibleNodeEnabled(nodeName)
	}
	return false
}

// SuspendSave enters bulk-change mode: saves are coalesced until
// ResumeSave, which writes once if anything changed.
func (m *Manager) SuspendSave() {
	m.suspendSave()
}

func (m *Manager) ResumeSave() error {
	return m.resumeSave()
}

func (m *Manager) suspendSave() {
	m.bulkMu.Lock()
	m.bulk = true
	m.dirty = false
	m.bulkMu.Unlock()
}

func (m *Manager) resumeSave() error {
	m.bulkMu.Lock()
	m.bulk = false
	dirty := m.dirty
	m.dirty = false
	m.bulkMu.Unlock()
	if dirty {
		return m.save()
	}
	return nil
}

// Save persists the current configuration; used after mutating items
// directly, which do not save on their own.
func (m *Manager) Save() error {
	return m.save()
}

// save writes the whole configuration as one unit.
func (m *Manager) save() error {
	m.bulkMu.Lock()
	if m.bulk {
		m.dirty = true
		m.bulkMu.Unlock()
		return nil
	}
	m.bulkMu.Unlock()

	start := time.Now()
	doc := m.snapshot()
	err := m.store.Write(doc)
	metrics.SaveDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("failed to save team configuration: %w", err)
	}
	return nil
}
