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

package router

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/go-foundry/foundry/internal/engine/model"
	"github.com/go-foundry/foundry/internal/engine/security/team"
	"github.com/go-foundry/foundry/pkg/httpx"
	"github.com/go-foundry/foundry/pkg/log"
)

func (rt *Router) teamRouter(r fiber.Router, auth fiber.Handler) {
	teamGroup := r.Group("/team")
	{
		teamGroup.Post("/create", auth, rt.createTeam)
		teamGroup.Delete("/delete", auth, rt.deleteTeam)
		teamGroup.Post("/update", auth, rt.updateTeam)

		teamGroup.Get("/list", auth, rt.listTeams)
		teamGroup.Get("/mine", auth, rt.myTeams)
		teamGroup.Get("/admin", auth, rt.adminTeams)

		teamGroup.Post("/member/add", auth, rt.addTeamMember)
		teamGroup.Post("/member/update", auth, rt.updateTeamMember)
		teamGroup.Post("/member/remove", auth, rt.removeTeamMember)

		teamGroup.Post("/job/move", auth, rt.moveJob)
		teamGroup.Post("/job/visibility", auth, rt.setJobVisibility)
		teamGroup.Post("/view/move", auth, rt.moveView)
		teamGroup.Post("/view/visibility", auth, rt.setViewVisibility)
		teamGroup.Post("/view/primary", auth, rt.setPrimaryView)
		teamGroup.Post("/node/move", auth, rt.moveNode)
		teamGroup.Post("/node/visibility", auth, rt.setNodeVisibility)
		teamGroup.Post("/node/enabled", auth, rt.setNodeEnabled)

		teamGroup.Post("/sysadmin/add", auth, rt.addSysAdmin)
		teamGroup.Post("/sysadmin/remove", auth, rt.removeSysAdmin)

		teamGroup.Get("/:teamName", auth, rt.getTeam)
		teamGroup.Get("/:teamName/permissions", auth, rt.getTeamPermissions)
		teamGroup.Get("/:teamName/views", auth, rt.getTeamViews)
	}
}

func teamRep(t *team.Team) model.TeamRep {
	rep := model.TeamRep{
		Name:             t.Name(),
		Description:      t.Description(),
		CustomFolderName: t.CustomFolderName(),
		PrimaryView:      t.PrimaryView(),
		Jobs:             t.JobNames(),
		Views:            t.ViewNames(),
		Nodes:            t.NodeNames(),
	}
	for _, m := range t.Members() {
		rep.Members = append(rep.Members, model.TeamMemberRep{
			Name:        m.Name(),
			TeamAdmin:   m.IsTeamAdmin(),
			Permissions: strings.Join(m.PermissionNames(), ","),
		})
	}
	return rep
}

func (rt *Router) createTeam(c *fiber.Ctx) error {
	var req model.CreateTeamReq
	if err := c.BodyParser(&req); err != nil {
		return httpx.WithRepErrMsg(c, httpx.RequestParameterParsingFailed.Code, httpx.RequestParameterParsingFailed.Msg, c.Path())
	}
	if !rt.Mgr.IsUserSysAdmin(rt.currentUser(c)) {
		return httpx.WithRepErrMsg(c, httpx.PermissionDenied.Code, "No permission to create team.", c.Path())
	}
	if strings.TrimSpace(req.TeamName) == "" {
		return httpx.WithRepErrMsg(c, httpx.TeamNameRequired.Code, httpx.TeamNameRequired.Msg, c.Path())
	}

	t, err := rt.Mgr.CreateTeam(strings.TrimSpace(req.TeamName), req.Description, req.CustomFolderName)
	if err != nil {
		var exists *team.TeamAlreadyExistsError
		if errors.As(err, &exists) {
			return httpx.WithRepErrMsg(c, httpx.TeamAlreadyExists.Code, err.Error(), c.Path())
		}
		return httpx.WithRepErrMsg(c, httpx.BadRequest.Code, err.Error(), c.Path())
	}
	return httpx.WithRepJSON(c, teamRep(t))
}

func (rt *Router) deleteTeam(c *fiber.Ctx) error {
	var req model.DeleteTeamReq
	if err := c.BodyParser(&req); err != nil {
		return httpx.WithRepErrMsg(c, httpx.RequestParameterParsingFailed.Code, httpx.RequestParameterParsingFailed.Msg, c.Path())
	}
	if !rt.Mgr.IsUserSysAdmin(rt.currentUser(c)) {
		return httpx.WithRepErrMsg(c, httpx.PermissionDenied.Code, "No permission to delete team.", c.Path())
	}
	if strings.TrimSpace(req.TeamName) == "" {
		return httpx.WithRepErrMsg(c, httpx.TeamNameRequired.Code, httpx.TeamNameRequired.Msg, c.Path())
	}

	if err := rt.Mgr.DeleteTeam(req.TeamName, req.DeleteJobs); err != nil {
		var notFound *team.TeamNotFoundError
		if errors.As(err, &notFound) {
			return httpx.WithRepErrMsg(c, httpx.TeamNotFound.Code, err.Error(), c.Path())
		}
		return httpx.WithRepErrMsg(c, httpx.BadRequest.Code, err.Error(), c.Path())
	}
	return httpx.WithRepNotDetail(c)
}

func (rt *Router) updateTeam(c *fiber.Ctx) error {
	var req model.UpdateTeamReq
	if err := c.BodyParser(&req); err != nil {
		return httpx.WithRepErrMsg(c, httpx.RequestParameterParsingFailed.Code, httpx.RequestParameterParsingFailed.Msg, c.Path())
	}
	if strings.TrimSpace(req.TeamName) == "" {
		return httpx.WithRepErrMsg(c, httpx.TeamNameRequired.Code, httpx.TeamNameRequired.Msg, c.Path())
	}
	if !rt.Mgr.IsUserTeamAdmin(rt.currentUser(c), req.TeamName) {
		return httpx.WithRepErrMsg(c, httpx.PermissionDenied.Code, httpx.PermissionDenied.Msg, c.Path())
	}

	t, err := rt.Mgr.FindTeam(req.TeamName)
	if err != nil {
		return httpx.WithRepErrMsg(c, httpx.TeamNotFound.Code, err.Error(), c.Path())
	}
	if err := t.SetDescription(req.Description); err != nil {
		log.Errorf("update team failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.InternalError.Code, httpx.InternalError.Msg, c.Path())
	}
	return httpx.WithRepJSON(c, teamRep(t))
}

func (rt *Router) listTeams(c *fiber.Ctx) error {
	return httpx.WithRepJSON(c, rt.Mgr.UserVisibleTeams(rt.currentUser(c)))
}

func (rt *Router) myTeams(c *fiber.Ctx) error {
	return httpx.WithRepJSON(c, rt.Mgr.UserTeamNames(rt.currentUser(c)))
}

func (rt *Router) adminTeams(c *fiber.Ctx) error {
	return httpx.WithRepJSON(c, rt.Mgr.UserAdminTeams(rt.currentUser(c)))
}

func (rt *Router) getTeam(c *fiber.Ctx) error {
	teamName := c.Params("teamName")
	t, err := rt.Mgr.FindTeam(teamName)
	if err != nil {
		return httpx.WithRepErrMsg(c, httpx.TeamNotFound.Code, err.Error(), c.Path())
	}
	user := rt.currentUser(c)
	if !rt.Strategy.ACLForTeam(t).HasPermission(user, team.Read) && !t.IsPublic() {
		return httpx.WithRepErrMsg(c, httpx.PermissionDenied.Code, httpx.PermissionDenied.Msg, c.Path())
	}
	return httpx.WithRepJSON(c, teamRep(t))
}

func (rt *Router) getTeamPermissions(c *fiber.Ctx) error {
	teamName := c.Params("teamName")
	perms, err := rt.Mgr.UserTeamPermissions(rt.currentUser(c), teamName)
	if err != nil {
		return httpx.WithRepErrMsg(c, httpx.TeamNotFound.Code, err.Error(), c.Path())
	}
	return httpx.WithRepJSON(c, perms)
}

func (rt *Router) getTeamViews(c *fiber.Ctx) error {
	teamName := c.Params("teamName")
	t, err := rt.Mgr.FindTeam(teamName)
	if err != nil {
		return httpx.WithRepErrMsg(c, httpx.TeamNotFound.Code, err.Error(), c.Path())
	}
	return httpx.WithRepJSON(c, t.AllViewNames())
}

func (rt *Router) addTeamMember(c *fiber.Ctx) error {
	var req model.TeamMemberReq
	if err := c.BodyParser(&req); err != nil {
		return httpx.WithRepErrMsg(c, httpx.RequestParameterParsingFailed.Code, httpx.RequestParameterParsingFailed.Msg, c.Path())
	}
	if strings.TrimSpace(req.TeamName) == "" {
		return httpx.WithRepErrMsg(c, httpx.TeamNameRequired.Code, httpx.TeamNameRequired.Msg, c.Path())
	}
	if strings.TrimSpace(req.MemberName) == "" {
		return httpx.WithRepErrMsg(c, httpx.MemberNameRequired.Code, "Team member name required.", c.Path())
	}
	if !rt.Mgr.IsUserTeamAdmin(rt.currentUser(c), req.TeamName) {
		return httpx.WithRepErrMsg(c, httpx.PermissionDenied.Code, "No permission to add team member.", c.Path())
	}

	t, err := rt.Mgr.FindTeam(req.TeamName)
	if err != nil {
		return httpx.WithRepErrMsg(c, httpx.TeamNotFound.Code, err.Error(), c.Path())
	}
	if t.IsMember(req.MemberName) {
		return httpx.WithRepErrMsg(c, httpx.BadRequest.Code,
			fmt.Sprintf("%s is already a team member.", req.MemberName), c.Path())
	}
	if err := t.AddMember(req.MemberName, req.Flags()); err != nil {
		log.Errorf("add team member failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.InternalError.Code, httpx.InternalError.Msg, c.Path())
	}
	return httpx.WithRepNotDetail(c)
}

func (rt *Router) updateTeamMember(c *fiber.Ctx) error {
	var req model.TeamMemberReq
	if err := c.BodyParser(&req); err != nil {
		return httpx.WithRepErrMsg(c, httpx.RequestParameterParsingFailed.Code, httpx.RequestParameterParsingFailed.Msg, c.Path())
	}
	if strings.TrimSpace(req.TeamName) == "" {
		return httpx.WithRepErrMsg(c, httpx.TeamNameRequired.Code, httpx.TeamNameRequired.Msg, c.Path())
	}
	if strings.TrimSpace(req.MemberName) == "" {
		return httpx.WithRepErrMsg(c, httpx.MemberNameRequired.Code, "Team member name required.", c.Path())
	}
	if !rt.Mgr.IsUserTeamAdmin(rt.currentUser(c), req.TeamName) {
		return httpx.WithRepErrMsg(c, httpx.PermissionDenied.Code, "No permission to add team member.", c.Path())
	}

	t, err := rt.Mgr.FindTeam(req.TeamName)
	if err != nil {
		return httpx.WithRepErrMsg(c, httpx.TeamNotFound.Code, err.Error(), c.Path())
	}
	if !t.IsMember(req.MemberName) {
		return httpx.WithRepErrMsg(c, httpx.BadRequest.Code,
			fmt.Sprintf("%s is not a team member.", req.MemberName), c.Path())
	}
	if err := t.UpdateMember(req.MemberName, req.Flags()); err != nil {
		log.Errorf("update team member failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.InternalError.Code, httpx.InternalError.Msg, c.Path())
	}
	return httpx.WithRepNotDetail(c)
}

func (rt *Router) removeTeamMember(c *fiber.Ctx) error {
	var req model.RemoveMemberReq
	if err := c.BodyParser(&req); err != nil {
		return httpx.WithRepErrMsg(c, httpx.RequestParameterParsingFailed.Code, httpx.RequestParameterParsingFailed.Msg, c.Path())
	}
	if strings.TrimSpace(req.TeamName) == "" {
		return httpx.WithRepErrMsg(c, httpx.TeamNameRequired.Code, httpx.TeamNameRequired.Msg, c.Path())
	}
	if strings.TrimSpace(req.MemberName) == "" {
		return httpx.WithRepErrMsg(c, httpx.MemberNameRequired.Code, "Team member name required.", c.Path())
	}
	if !rt.Mgr.IsUserTeamAdmin(rt.currentUser(c), req.TeamName) {
		return httpx.WithRepErrMsg(c, httpx.PermissionDenied.Code, "No permission to remove team member", c.Path())
	}

	t, err := rt.Mgr.FindTeam(req.TeamName)
	if err != nil {
		return httpx.WithRepErrMsg(c, httpx.TeamNotFound.Code, err.Error(), c.Path())
	}
	if !t.IsMember(req.MemberName) {
		return httpx.WithRepErrMsg(c, httpx.BadRequest.Code,
			fmt.Sprintf("%s is not a team member.", req.MemberName), c.Path())
	}
	if err := t.RemoveMember(req.MemberName); err != nil {
		log.Errorf("remove team member failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.InternalError.Code, httpx.InternalError.Msg, c.Path())
	}
	return httpx.WithRepNotDetail(c)
}

func (rt *Router) moveJob(c *fiber.Ctx) error {
	var req model.MoveJobReq
	if err := c.BodyParser(&req); err != nil {
		return httpx.WithRepErrMsg(c, httpx.RequestParameterParsingFailed.Code, httpx.RequestParameterParsingFailed.Msg, c.Path())
	}
	if strings.TrimSpace(req.JobName) == "" {
		return httpx.WithRepErrMsg(c, httpx.ItemNameRequired.Code, "Job id required.", c.Path())
	}
	if strings.TrimSpace(req.TeamName) == "" {
		return httpx.WithRepErrMsg(c, httpx.TeamNameRequired.Code, httpx.TeamNameRequired.Msg, c.Path())
	}

	newTeam, err := rt.Mgr.FindTeam(req.TeamName)
	if err != nil {
		return httpx.WithRepErrMsg(c, httpx.TeamNotFound.Code,
			fmt.Sprintf("%s is not a valid team.", req.TeamName), c.Path())
	}
	oldTeam := rt.Mgr.FindJobOwnerTeam(req.JobName)
	if oldTeam == nil {
		return httpx.WithRepErrMsg(c, httpx.NotFound.Code,
			fmt.Sprintf("%s does not belong to any team.", req.JobName), c.Path())
	}
	if oldTeam == newTeam {
		return httpx.WithRepErrMsg(c, httpx.BadRequest.Code,
			fmt.Sprintf("%s is already in team %s", req.JobName, newTeam.Name()), c.Path())
	}
	job := oldTeam.FindJob(req.JobName)
	if job != nil && !job.IsMoveAllowed() {
		return httpx.WithRepErrMsg(c, httpx.BadRequest.Code,
			fmt.Sprintf("%s cannot be moved.", req.JobName), c.Path())
	}

	user := rt.currentUser(c)
	if !rt.Mgr.IsUserTeamAdmin(user, oldTeam.Name()) {
		return httpx.WithRepErrMsg(c, httpx.PermissionDenied.Code,
			fmt.Sprintf("No permission to move job from team - %s", oldTeam.Name()), c.Path())
	}
	if !rt.Mgr.IsUserTeamAdmin(user, newTeam.Name()) {
		return httpx.WithRepErrMsg(c, httpx.PermissionDenied.Code,
			fmt.Sprintf("No permission to move job to team - %s", newTeam.Name()), c.Path())
	}

	newName, err := rt.Mgr.MoveJob(req.JobName, oldTeam, newTeam, "")
	if err != nil {
		log.Errorf("move job failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.InternalError.Code, err.Error(), c.Path())
	}
	return httpx.WithRepJSON(c, fiber.Map{"jobId": newName, "teamName": newTeam.Name()})
}

func (rt *Router) moveView(c *fiber.Ctx) error {
	var req model.MoveViewReq
	if err := c.BodyParser(&req); err != nil {
		return httpx.WithRepErrMsg(c, httpx.RequestParameterParsingFailed.Code, httpx.RequestParameterParsingFailed.Msg, c.Path())
	}
	if strings.TrimSpace(req.ViewName) == "" {
		return httpx.WithRepErrMsg(c, httpx.ItemNameRequired.Code, "View name required.", c.Path())
	}
	if strings.TrimSpace(req.TeamName) == "" {
		return httpx.WithRepErrMsg(c, httpx.TeamNameRequired.Code, httpx.TeamNameRequired.Msg, c.Path())
	}

	newTeam, err := rt.Mgr.FindTeam(req.TeamName)
	if err != nil {
		return httpx.WithRepErrMsg(c, httpx.TeamNotFound.Code,
			fmt.Sprintf("%s is not a valid team.", req.TeamName), c.Path())
	}
	oldTeam := rt.Mgr.FindViewOwnerTeam(req.ViewName)
	if oldTeam == nil {
		return httpx.WithRepErrMsg(c, httpx.NotFound.Code,
			fmt.Sprintf("%s does not belong to any team.", req.ViewName), c.Path())
	}
	if oldTeam == newTeam {
		return httpx.WithRepErrMsg(c, httpx.BadRequest.Code,
			fmt.Sprintf("%s is already in team %s", req.ViewName, newTeam.Name()), c.Path())
	}
	view := oldTeam.FindView(req.ViewName)
	if view != nil && !view.IsMoveAllowed() {
		return httpx.WithRepErrMsg(c, httpx.BadRequest.Code,
			fmt.Sprintf("%s cannot be moved.", req.ViewName), c.Path())
	}

	user := rt.currentUser(c)
	if !rt.Mgr.IsUserTeamAdmin(user, oldTeam.Name()) || !rt.Mgr.IsUserTeamAdmin(user, newTeam.Name()) {
		return httpx.WithRepErrMsg(c, httpx.PermissionDenied.Code, httpx.PermissionDenied.Msg, c.Path())
	}

	if err := rt.Mgr.MoveView(oldTeam, newTeam, req.ViewName); err != nil {
		log.Errorf("move view failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.InternalError.Code, err.Error(), c.Path())
	}
	return httpx.WithRepNotDetail(c)
}

func (rt *Router) moveNode(c *fiber.Ctx) error {
	var req model.MoveNodeReq
	if err := c.BodyParser(&req); err != nil {
		return httpx.WithRepErrMsg(c, httpx.RequestParameterParsingFailed.Code, httpx.RequestParameterParsingFailed.Msg, c.Path())
	}
	if strings.TrimSpace(req.NodeName) == "" {
		return httpx.WithRepErrMsg(c, httpx.ItemNameRequired.Code, "Node name required.", c.Path())
	}
	if strings.TrimSpace(req.TeamName) == "" {
		return httpx.WithRepErrMsg(c, httpx.TeamNameRequired.Code, httpx.TeamNameRequired.Msg, c.Path())
	}

	newTeam, err := rt.Mgr.FindTeam(req.TeamName)
	if err != nil {
		return httpx.WithRepErrMsg(c, httpx.TeamNotFound.Code,
			fmt.Sprintf("%s is not a valid team.", req.TeamName), c.Path())
	}
	oldTeam := rt.Mgr.FindNodeOwnerTeam(req.NodeName)
	if oldTeam == nil {
		return httpx.WithRepErrMsg(c, httpx.NotFound.Code,
			fmt.Sprintf("%s does not belong to any team.", req.NodeName), c.Path())
	}
	if oldTeam == newTeam {
		return httpx.WithRepErrMsg(c, httpx.BadRequest.Code,
			fmt.Sprintf("%s is already in team %s", req.NodeName, newTeam.Name()), c.Path())
	}
	node := oldTeam.FindNode(req.NodeName)
	if node != nil && !node.IsMoveAllowed() {
		return httpx.WithRepErrMsg(c, httpx.BadRequest.Code,
			fmt.Sprintf("%s cannot be moved.", req.NodeName), c.Path())
	}

	user := rt.currentUser(c)
	if !rt.Mgr.IsUserTeamAdmin(user, oldTeam.Name()) || !rt.Mgr.IsUserTeamAdmin(user, newTeam.Name()) {
		return httpx.WithRepErrMsg(c, httpx.PermissionDenied.Code, httpx.PermissionDenied.Msg, c.Path())
	}

	if err := rt.Mgr.MoveNode(oldTeam, newTeam, req.NodeName); err != nil {
		log.Errorf("move node failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.InternalError.Code, err.Error(), c.Path())
	}
	return httpx.WithRepNotDetail(c)
}

// setJobVisibility replaces the whole visibility set of a job and its
// config-view flag in one call.
func (rt *Router) setJobVisibility(c *fiber.Ctx) error {
	var req model.JobVisibilityReq
	if err := c.BodyParser(&req); err != nil {
		return httpx.WithRepErrMsg(c, httpx.RequestParameterParsingFailed.Code, httpx.RequestParameterParsingFailed.Msg, c.Path())
	}
	if strings.TrimSpace(req.JobName) == "" {
		return httpx.WithRepErrMsg(c, httpx.ItemNameRequired.Code, "Job name required.", c.Path())
	}

	owner := rt.Mgr.FindJobOwnerTeam(req.JobName)
	if owner == nil {
		return httpx.WithRepErrMsg(c, httpx.NotFound.Code,
			fmt.Sprintf("%s does not belong to any team.", req.JobName), c.Path())
	}
	if !rt.Mgr.IsUserTeamAdmin(rt.currentUser(c), owner.Name()) {
		return httpx.WithRepErrMsg(c, httpx.PermissionDenied.Code,
			fmt.Sprintf("No permission to set job visibility. Job name - %s Team Name - %s", req.JobName, owner.Name()), c.Path())
	}

	job := owner.FindJob(req.JobName)
	job.RemoveAllVisibilities()
	for _, name := range splitVisibility(req.Visibility) {
		job.AddVisibility(name)
	}
	job.SetAllowConfigView(req.AllowConfigView)
	if err := rt.Mgr.Save(); err != nil {
		log.Errorf("set job visibility failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.InternalError.Code, httpx.InternalError.Msg, c.Path())
	}
	return httpx.WithRepNotDetail(c)
}

func (rt *Router) setViewVisibility(c *fiber.Ctx) error {
	var req model.ItemVisibilityReq
	if err := c.BodyParser(&req); err != nil {
		return httpx.WithRepErrMsg(c, httpx.RequestParameterParsingFailed.Code, httpx.RequestParameterParsingFailed.Msg, c.Path())
	}
	if strings.TrimSpace(req.ItemName) == "" {
		return httpx.WithRepErrMsg(c, httpx.ItemNameRequired.Code, "View name required.", c.Path())
	}

	owner := rt.Mgr.FindViewOwnerTeam(req.ItemName)
	if owner == nil {
		return httpx.WithRepErrMsg(c, httpx.NotFound.Code,
			fmt.Sprintf("%s does not belong to any team.", req.ItemName), c.Path())
	}
	if !rt.Mgr.IsUserTeamAdmin(rt.currentUser(c), owner.Name()) {
		return httpx.WithRepErrMsg(c, httpx.PermissionDenied.Code, httpx.PermissionDenied.Msg, c.Path())
	}

	view := owner.FindView(req.ItemName)
	view.RemoveAllVisibilities()
	for _, name := range splitVisibility(req.Visibility) {
		view.AddVisibility(name)
	}
	if err := rt.Mgr.Save(); err != nil {
		log.Errorf("set view visibility failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.InternalError.Code, httpx.InternalError.Msg, c.Path())
	}
	return httpx.WithRepNotDetail(c)
}

func (rt *Router) setNodeVisibility(c *fiber.Ctx) error {
	var req model.ItemVisibilityReq
	if err := c.BodyParser(&req); err != nil {
		return httpx.WithRepErrMsg(c, httpx.RequestParameterParsingFailed.Code, httpx.RequestParameterParsingFailed.Msg, c.Path())
	}
	if strings.TrimSpace(req.ItemName) == "" {
		return httpx.WithRepErrMsg(c, httpx.ItemNameRequired.Code, "Node name required.", c.Path())
	}

	owner := rt.Mgr.FindNodeOwnerTeam(req.ItemName)
	if owner == nil {
		return httpx.WithRepErrMsg(c, httpx.NotFound.Code,
			fmt.Sprintf("%s does not belong to any team.", req.ItemName), c.Path())
	}
	if !rt.Mgr.IsUserTeamAdmin(rt.currentUser(c), owner.Name()) {
		return httpx.WithRepErrMsg(c, httpx.PermissionDenied.Code, httpx.PermissionDenied.Msg, c.Path())
	}

	node := owner.FindNode(req.ItemName)
	node.RemoveAllVisibilities()
	for _, name := range splitVisibility(req.Visibility) {
		node.AddVisibility(name)
	}
	if err := rt.Mgr.Save(); err != nil {
		log.Errorf("set node visibility failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.InternalError.Code, httpx.InternalError.Msg, c.Path())
	}
	return httpx.WithRepNotDetail(c)
}

// setNodeEnabled toggles whether a team's jobs may run on a node owned
// elsewhere.
func (rt *Router) setNodeEnabled(c *fiber.Ctx) error {
	var req model.NodeEnabledReq
	if err := c.BodyParser(&req); err != nil {
		return httpx.WithRepErrMsg(c, httpx.RequestParameterParsingFailed.Code, httpx.RequestParameterParsingFailed.Msg, c.Path())
	}
	if strings.TrimSpace(req.TeamName) == "" {
		return httpx.WithRepErrMsg(c, httpx.TeamNameRequired.Code, httpx.TeamNameRequired.Msg, c.Path())
	}
	if strings.TrimSpace(req.NodeName) == "" {
		return httpx.WithRepErrMsg(c, httpx.ItemNameRequired.Code, "Node name required.", c.Path())
	}
	if !rt.Mgr.IsUserTeamAdmin(rt.currentUser(c), req.TeamName) {
		return httpx.WithRepErrMsg(c, httpx.PermissionDenied.Code,
			fmt.Sprintf("No permission to enable node. Node name - %s Team Name - %s", req.NodeName, req.TeamName), c.Path())
	}

	t, err := rt.Mgr.FindTeam(req.TeamName)
	if err != nil {
		return httpx.WithRepErrMsg(c, httpx.TeamNotFound.Code, err.Error(), c.Path())
	}
	if req.Enabled {
		err = t.AddToEnabledVisibleNodes(req.NodeName)
	} else {
		err = t.RemoveFromEnabledVisibleNodes(req.NodeName)
	}
	if err != nil {
		log.Errorf("set node enabled failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.InternalError.Code, httpx.InternalError.Msg, c.Path())
	}
	return httpx.WithRepNotDetail(c)
}

func (rt *Router) setPrimaryView(c *fiber.Ctx) error {
	var req model.PrimaryViewReq
	if err := c.BodyParser(&req); err != nil {
		return httpx.WithRepErrMsg(c, httpx.RequestParameterParsingFailed.Code, httpx.RequestParameterParsingFailed.Msg, c.Path())
	}
	if strings.TrimSpace(req.TeamName) == "" {
		return httpx.WithRepErrMsg(c, httpx.TeamNameRequired.Code, httpx.TeamNameRequired.Msg, c.Path())
	}
	if strings.TrimSpace(req.ViewName) == "" {
		return httpx.WithRepErrMsg(c, httpx.ItemNameRequired.Code, "View name required.", c.Path())
	}
	if !rt.Mgr.IsUserTeamAdmin(rt.currentUser(c), req.TeamName) {
		return httpx.WithRepErrMsg(c, httpx.PermissionDenied.Code, httpx.PermissionDenied.Msg, c.Path())
	}

	t, err := rt.Mgr.FindTeam(req.TeamName)
	if err != nil {
		return httpx.WithRepErrMsg(c, httpx.TeamNotFound.Code, err.Error(), c.Path())
	}
	if err := t.SetPrimaryView(req.ViewName); err != nil {
		log.Errorf("set primary view failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.InternalError.Code, httpx.InternalError.Msg, c.Path())
	}
	return httpx.WithRepNotDetail(c)
}

func (rt *Router) addSysAdmin(c *fiber.Ctx) error {
	var req model.SysAdminReq
	if err := c.BodyParser(&req); err != nil {
		return httpx.WithRepErrMsg(c, httpx.RequestParameterParsingFailed.Code, httpx.RequestParameterParsingFailed.Msg, c.Path())
	}
	if !rt.Mgr.IsUserSysAdmin(rt.currentUser(c)) {
		return httpx.WithRepErrMsg(c, httpx.PermissionDenied.Code, httpx.PermissionDenied.Msg, c.Path())
	}
	if strings.TrimSpace(req.Name) == "" {
		return httpx.WithRepErrMsg(c, httpx.MemberNameRequired.Code, httpx.MemberNameRequired.Msg, c.Path())
	}
	if err := rt.Mgr.AddSysAdmin(req.Name); err != nil {
		log.Errorf("add sys admin failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.InternalError.Code, httpx.InternalError.Msg, c.Path())
	}
	return httpx.WithRepNotDetail(c)
}

func (rt *Router) removeSysAdmin(c *fiber.Ctx) error {
	var req model.SysAdminReq
	if err := c.BodyParser(&req); err != nil {
		return httpx.WithRepErrMsg(c, httpx.RequestParameterParsingFailed.Code, httpx.RequestParameterParsingFailed.Msg, c.Path())
	}
	if !rt.Mgr.IsUserSysAdmin(rt.currentUser(c)) {
		return httpx.WithRepErrMsg(c, httpx.PermissionDenied.Code, httpx.PermissionDenied.Msg, c.Path())
	}
	if strings.TrimSpace(req.Name) == "" {
		return httpx.WithRepErrMsg(c, httpx.MemberNameRequired.Code, httpx.MemberNameRequired.Msg, c.Path())
	}
	if err := rt.Mgr.RemoveSysAdmin(req.Name); err != nil {
		log.Errorf("remove sys admin failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.InternalError.Code, httpx.InternalError.Msg, c.Path())
	}
	return httpx.WithRepNotDetail(c)
}

func splitVisibility(joined string) []string {
	if joined == "" {
		return nil
	}
	var names []string
	for _, name := range strings.Split(joined, ":") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}
