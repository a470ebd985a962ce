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

package model

import "github.com/go-foundry/foundry/internal/engine/security/team"

type CreateTeamReq struct {
	TeamName         string `json:"teamName"`
	Description      string `json:"description"`
	CustomFolderName string `json:"customFolderName"`
}

type DeleteTeamReq struct {
	TeamName string `json:"teamName"`
	// DeleteJobs removes the team's jobs instead of moving them to the
	// public team.
	DeleteJobs bool `json:"deleteJobs"`
}

type UpdateTeamReq struct {
	TeamName    string `json:"teamName"`
	Description string `json:"description"`
}

// MemberPermissionsReq is the wire form of a member's grant flags.
type MemberPermissionsReq struct {
	TeamAdmin     bool `json:"isTeamAdmin"`
	Create        bool `json:"canCreate"`
	Delete        bool `json:"canDelete"`
	Configure     bool `json:"canConfigure"`
	Build         bool `json:"canBuild"`
	CreateNode    bool `json:"canCreateNode"`
	DeleteNode    bool `json:"canDeleteNode"`
	ConfigureNode bool `json:"canConfigureNode"`
	CreateView    bool `json:"canCreateView"`
	DeleteView    bool `json:"canDeleteView"`
	ConfigureView bool `json:"canConfigureView"`
}

func (r MemberPermissionsReq) Flags() team.MemberPermissions {
	return team.MemberPermissions{
		TeamAdmin:     r.TeamAdmin,
		Create:        r.Create,
		Delete:        r.Delete,
		Configure:     r.Configure,
		Build:         r.Build,
		CreateNode:    r.CreateNode,
		DeleteNode:    r.DeleteNode,
		ConfigureNode: r.ConfigureNode,
		CreateView:    r.CreateView,
		DeleteView:    r.DeleteView,
		ConfigureView: r.ConfigureView,
	}
}

type TeamMemberReq struct {
	TeamName   string `json:"teamName"`
	MemberName string `json:"teamMemberSid"`
	MemberPermissionsReq
}

type RemoveMemberReq struct {
	TeamName   string `json:"teamName"`
	MemberName string `json:"teamMemberSid"`
}

type MoveJobReq struct {
	JobName  string `json:"jobId"`
	TeamName string `json:"teamName"`
}

type MoveViewReq struct {
	ViewName string `json:"viewName"`
	TeamName string `json:"teamName"`
}

type MoveNodeReq struct {
	NodeName string `json:"nodeName"`
	TeamName string `json:"teamName"`
}

type JobVisibilityReq struct {
	JobName string `json:"jobName"`
	// Visibility is a ":"-separated list of team names.
	Visibility      string `json:"visibility"`
	AllowConfigView bool   `json:"allowConfigView"`
}

type ItemVisibilityReq struct {
	ItemName string `json:"itemName"`
	// Visibility is a ":"-separated list of team names.
	Visibility string `json:"visibility"`
}

type NodeEnabledReq struct {
	TeamName string `json:"teamName"`
	NodeName string `json:"nodeName"`
	Enabled  bool   `json:"enabled"`
}

type PrimaryViewReq struct {
	TeamName string `json:"teamName"`
	ViewName string `json:"viewName"`
}

type SysAdminReq struct {
	Name string `json:"name"`
}

type TeamMemberRep struct {
	Name        string `json:"name"`
	TeamAdmin   bool   `json:"isTeamAdmin"`
	Permissions string `json:"permissions"`
}

type TeamRep struct {
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	CustomFolderName string          `json:"customFolderName,omitempty"`
	PrimaryView      string          `json:"primaryView,omitempty"`
	Members          []TeamMemberRep `json:"members"`
	Jobs             []string        `json:"jobs"`
	Views            []string        `json:"views"`
	Nodes            []string        `json:"nodes"`
}
