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

	"github.com/go-foundry/foundry/internal/engine/security/identity"
)

func TestListenerClaimsNewJob(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	dev, err := mgr.CreateTeam("dev", "", "")
	require.NoError(t, err)
	require.NoError(t, dev.AddMember("bob", MemberPermissions{Create: true}))
	listener := NewItemListener(mgr)

	// A job created under the team's qualified name goes to the team.
	require.NoError(t, listener.OnJobCreated(identity.User{Name: "bob"}, "dev.app"))
	assert.Same(t, dev, mgr.FindJobOwnerTeam("dev.app"))

	// An unqualified name stays public.
	require.NoError(t, listener.OnJobCreated(identity.User{Name: "bob"}, "loose"))
	assert.True(t, mgr.PublicTeam().IsJobOwner("loose"))

	// A user with no create team defaults to public.
	require.NoError(t, listener.OnJobCreated(identity.User{Name: "carol"}, "other"))
	assert.True(t, mgr.PublicTeam().IsJobOwner("other"))

	// An already-owned job is left alone.
	require.NoError(t, listener.OnJobCreated(identity.User{Name: "carol"}, "dev.app"))
	assert.Same(t, dev, mgr.FindJobOwnerTeam("dev.app"))
}

func TestListenerRenameAndDelete(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	dev, err := mgr.CreateTeam("dev", "", "")
	require.NoError(t, err)
	require.NoError(t, dev.AddJob(NewJob("dev.app")))
	listener := NewItemListener(mgr)

	require.NoError(t, listener.OnJobRenamed("dev.app", "dev.web"))
	assert.True(t, dev.IsJobOwner("dev.web"))
	assert.False(t, dev.IsJobOwner("dev.app"))

	require.NoError(t, listener.OnJobDeleted("dev.web"))
	assert.Nil(t, mgr.FindJobOwnerTeam("dev.web"))

	// Unknown names are ignored.
	require.NoError(t, listener.OnJobRenamed("ghost", "ghost2"))
	require.NoError(t, listener.OnJobDeleted("ghost"))
}

func TestListenerNodeAndView(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	dev, err := mgr.CreateTeam("dev", "", "")
	require.NoError(t, err)
	require.NoError(t, dev.AddMember("dan", MemberPermissions{CreateNode: true, CreateView: true}))
	listener := NewItemListener(mgr)

	require.NoError(t, listener.OnNodeCreated(identity.User{Name: "dan"}, "builder"))
	assert.Same(t, dev, mgr.FindNodeOwnerTeam("builder"))

	require.NoError(t, listener.OnViewCreated(identity.User{Name: "dan"}, "pipeline"))
	assert.Same(t, dev, mgr.FindViewOwnerTeam("pipeline"))

	require.NoError(t, listener.OnNodeDeleted("builder"))
	assert.Nil(t, mgr.FindNodeOwnerTeam("builder"))

	require.NoError(t, listener.OnViewDeleted("pipeline"))
	assert.Nil(t, mgr.FindViewOwnerTeam("pipeline"))
}
