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
	"sync"
)

const (
	// MasterNodeName is the fixed id of the built-in node; it can never
	// be moved out of the public team.
	MasterNodeName = "Master"
	// AllViewName is the fixed id of the built-in all-jobs view.
	AllViewName = "All"
)

// ItemRegistry is the surrounding system that actually holds the jobs,
// views and nodes. The manager enumerates it at public-team bootstrap,
// renames jobs through it during moves, and notifies it after a move.
type ItemRegistry interface {
	JobNames() []string
	ViewNames() []string
	NodeNames() []string

	JobExists(name string) bool
	RenameJob(oldName, newName string) error
	DeleteJob(name string) error
	// ReplaceItem tells the registry a job changed identity so any
	// references it holds can be re-linked.
	ReplaceItem(oldName, newName string)
}

// MemoryRegistry is the in-process registry used by tests and by
// standalone deployments without a surrounding system.
type MemoryRegistry struct {
	mu    sync.RWMutex
	jobs  map[string]struct{}
	views map[string]struct{}
	nodes map[string]struct{}
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		jobs:  make(map[string]struct{}),
		views: map[string]struct{}{AllViewName: {}},
		nodes: map[string]struct{}{MasterNodeName: {}},
	}
}

func (r *MemoryRegistry) AddJob(name string) {
	r.mu.Lock()
	r.jobs[name] = struct{}{}
	r.mu.Unlock()
}

func (r *MemoryRegistry) AddView(name string) {
	r.mu.Lock()
	r.views[name] = struct{}{}
	r.mu.Unlock()
}

func (r *MemoryRegistry) AddNode(name string) {
	r.mu.Lock()
	r.nodes[name] = struct{}{}
	r.mu.Unlock()
}

func (r *MemoryRegistry) JobNames() []string {
	return r.names(r.jobs)
}

func (r *MemoryRegistry) ViewNames() []string {
	return r.names(r.views)
}

func (r *MemoryRegistry) NodeNames() []string {
	return r.names(r.nodes)
}

func (r *MemoryRegistry) names(set map[string]struct{}) []string {
	r.mu.RLock()
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}

func (r *MemoryRegistry) JobExists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.jobs[name]
	return ok
}

func (r *MemoryRegistry) RenameJob(oldName, newName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[oldName]; !ok {
		return fmt.Errorf("job %s does not exist", oldName)
	}
	if _, ok := r.jobs[newName]; ok {
		return fmt.Errorf("job %s already exists", newName)
	}
	delete(r.jobs, oldName)
	r.jobs[newName] = struct{}{}
	return nil
}

func (r *MemoryRegistry) DeleteJob(name string) error {
	r.mu.Lock()
	delete(r.jobs, name)
	r.mu.Unlock()
	return nil
}

func (r *MemoryRegistry) ReplaceItem(oldName, newName string) {
}
