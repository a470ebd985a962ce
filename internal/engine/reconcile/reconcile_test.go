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

package reconcile

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-foundry/foundry/internal/engine/security/team"
)

type memStore struct {
	data []byte
}

func (s *memStore) Exists() bool { return len(s.data) > 0 }

func (s *memStore) Read(v any) error { return sonic.Unmarshal(s.data, v) }

func (s *memStore) Write(v any) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return err
	}
	s.data = data
	return nil
}

func TestPassDropsStaleJobRecords(t *testing.T) {
	registry := team.NewMemoryRegistry()
	mgr, err := team.NewManager(&memStore{}, registry)
	require.NoError(t, err)
	dev, err := mgr.CreateTeam("dev", "", "")
	require.NoError(t, err)

	// A move renames the real job before the old record is removed; a
	// crash in between leaves dev pointing at a name the registry lost.
	require.NoError(t, dev.AddJob(team.NewJob("dev.app")))

	r := NewReconciler(mgr, registry, "@hourly")
	r.Run()

	assert.Nil(t, mgr.FindJobOwnerTeam("dev.app"))
}

func TestPassAdoptsUnownedItems(t *testing.T) {
	registry := team.NewMemoryRegistry()
	mgr, err := team.NewManager(&memStore{}, registry)
	require.NoError(t, err)

	// Items that appear in the registry after bootstrap have no owner
	// until a pass runs.
	registry.AddJob("stray")
	registry.AddNode("lathe")
	require.Nil(t, mgr.FindJobOwnerTeam("stray"))

	r := NewReconciler(mgr, registry, "@hourly")
	r.Run()

	assert.True(t, mgr.PublicTeam().IsJobOwner("stray"))
	assert.True(t, mgr.PublicTeam().IsNodeOwner("lathe"))
}

func TestPassDropsDuplicateOwners(t *testing.T) {
	registry := team.NewMemoryRegistry()
	mgr, err := team.NewManager(&memStore{}, registry)
	require.NoError(t, err)
	dev, err := mgr.CreateTeam("dev", "", "")
	require.NoError(t, err)
	qa, err := mgr.CreateTeam("qa", "", "")
	require.NoError(t, err)

	// An interrupted view move can leave both teams claiming the id.
	require.NoError(t, dev.AddView(team.NewView("pipeline")))
	require.NoError(t, qa.AddView(team.NewView("pipeline")))

	r := NewReconciler(mgr, registry, "@hourly")
	r.Run()

	assert.True(t, dev.IsViewOwner("pipeline"))
	assert.False(t, qa.IsViewOwner("pipeline"))
}
