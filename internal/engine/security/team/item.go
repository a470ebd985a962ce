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
	"strings"
	"sync"
)

// Item links a job, view or node to its owning team, with the set of
// other teams the item is visible to. Ownership itself is never stored on
// the item; it is discovered by scanning the teams.
type Item struct {
	mu          sync.RWMutex
	id          string
	visibility  map[string]struct{}
	moveAllowed bool
}

func newItem(id string) Item {
	return Item{
		id:          id,
		visibility:  make(map[string]struct{}),
		moveAllowed: true,
	}
}

func (i *Item) ID() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.id
}

func (i *Item) setID(id string) {
	i.mu.Lock()
	i.id = id
	i.mu.Unlock()
}

func (i *Item) AddVisibility(teamName string) {
	i.mu.Lock()
	i.visibility[teamName] = struct{}{}
	i.mu.Unlock()
}

func (i *Item) RemoveVisibility(teamName string) {
	i.mu.Lock()
	delete(i.visibility, teamName)
	i.mu.Unlock()
}

func (i *Item) RemoveAllVisibilities() {
	i.mu.Lock()
	i.visibility = make(map[string]struct{})
	i.mu.Unlock()
}

// IsVisible reports whether the named team was granted read access.
func (i *Item) IsVisible(teamName string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.visibility[teamName]
	return ok
}

// Visibilities returns the granted team names, sorted.
func (i *Item) Visibilities() []string {
	i.mu.RLock()
	names := make([]string, 0, len(i.visibility))
	for name := range i.visibility {
		names = append(names, name)
	}
	i.mu.RUnlock()
	sort.Strings(names)
	return names
}

// VisibilitiesString joins the granted team names with ':' for display.
func (i *Item) VisibilitiesString() string {
	return strings.Join(i.Visibilities(), ":")
}

func (i *Item) IsMoveAllowed() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.moveAllowed
}

func (i *Item) SetMoveAllowed(allowed bool) {
	i.mu.Lock()
	i.moveAllowed = allowed
	i.mu.Unlock()
}

// Job is the ownership record of a job, with the extra flag that lets
// non-members with visibility read its configuration.
type Job struct {
	Item
	allowConfigView bool
}

func NewJob(id string) *Job {
	return &Job{Item: newItem(id)}
}

func (j *Job) AllowConfigView() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.allowConfigView
}

func (j *Job) SetAllowConfigView(allow bool) {
	j.mu.Lock()
	j.allowConfigView = allow
	j.mu.Unlock()
}

// View is the ownership record of a view.
type View struct {
	Item
}

func NewView(id string) *View {
	return &View{Item: newItem(id)}
}

// Node is the ownership record of a compute node.
type Node struct {
	Item
}

func NewNode(id string) *Node {
	return &Node{Item: newItem(id)}
}
