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
	"github.com/go-foundry/foundry/pkg/log"
)

// ItemListener keeps ownership records in step with the item lifecycle
// of the surrounding system. The registry creates, renames and deletes
// the real items; these hooks mirror those events into the teams.
type ItemListener struct {
	mgr *Manager
}

func NewItemListener(mgr *Manager) *ItemListener {
	return &ItemListener{mgr: mgr}
}

// OnJobCreated claims a freshly created job for the creating user's
// team. A job created under its team-qualified name is recorded as is;
// an unqualified one keeps public ownership.
func (l *ItemListener) OnJobCreated(user identity.User, jobName string) error {
	if l.mgr.FindJobOwnerTeam(jobName) != nil {
		return nil
	}
	team, err := l.mgr.FindUserTeamForNewJob(user)
	if err != nil {
		team = l.mgr.PublicTeam()
	}
	if !l.mgr.IsQualifiedJobName(team, jobName) {
		team = l.mgr.PublicTeam()
	}
	log.Debugf("job %s claimed by team %s", jobName, team.Name())
	return team.AddJob(NewJob(jobName))
}

// OnJobRenamed updates the owner team's record in place, preserving the
// visibility set.
func (l *ItemListener) OnJobRenamed(oldName, newName string) error {
	team := l.mgr.FindJobOwnerTeam(oldName)
	if team == nil {
		return nil
	}
	return team.RenameJob(oldName, newName)
}

// OnJobDeleted drops the ownership record.
func (l *ItemListener) OnJobDeleted(jobName string) error {
	team := l.mgr.FindJobOwnerTeam(jobName)
	if team == nil {
		return nil
	}
	_, err := team.RemoveJob(jobName)
	return err
}

// OnNodeCreated claims a new node for the creating user's team.
func (l *ItemListener) OnNodeCreated(user identity.User, nodeName string) error {
	if l.mgr.FindNodeOwnerTeam(nodeName) != nil {
		return nil
	}
	team, err := l.mgr.FindUserTeamForNewNode(user)
	if err != nil {
		team = l.mgr.PublicTeam()
	}
	return team.AddNode(NewNode(nodeName))
}

// OnNodeDeleted drops the ownership record.
func (l *ItemListener) OnNodeDeleted(nodeName string) error {
	team := l.mgr.FindNodeOwnerTeam(nodeName)
	if team == nil {
		return nil
	}
	_, err := team.RemoveNode(nodeName)
	return err
}

// OnViewCreated claims a new view for the creating user's team.
func (l *ItemListener) OnViewCreated(user identity.User, viewName string) error {
	if l.mgr.FindViewOwnerTeam(viewName) != nil {
		return nil
	}
	team, err := l.mgr.FindUserTeamForNewView(user)
	if err != nil {
		team = l.mgr.PublicTeam()
	}
	return team.AddView(NewView(viewName))
}

// OnViewDeleted drops the ownership record.
func (l *ItemListener) OnViewDeleted(viewName string) error {
	team := l.mgr.FindViewOwnerTeam(viewName)
	if team == nil {
		return nil
	}
	_, err := team.RemoveView(viewName)
	return err
}
