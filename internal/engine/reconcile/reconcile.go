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
	"github.com/robfig/cron"

	"github.com/go-foundry/foundry/internal/engine/security/team"
	"github.com/go-foundry/foundry/pkg/log"
	"github.com/go-foundry/foundry/pkg/metrics"
)

// Reconciler periodically repairs ownership records left inconsistent by
// an interrupted move: records pointing at jobs the registry no longer
// knows, registry items no team owns, and ids owned by more than one
// team. The move sequence orders its steps so a crash leaves one of
// exactly these states.
type Reconciler struct {
	mgr      *team.Manager
	registry team.ItemRegistry
	cron     *cron.Cron
	spec     string
}

func NewReconciler(mgr *team.Manager, registry team.ItemRegistry, spec string) *Reconciler {
	return &Reconciler{
		mgr:      mgr,
		registry: registry,
		cron:     cron.New(),
		spec:     spec,
	}
}

// Start schedules the pass; one run happens immediately so a crash is
// repaired at boot rather than at the first tick.
func (r *Reconciler) Start() error {
	r.Run()
	if err := r.cron.AddFunc(r.spec, r.Run); err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

func (r *Reconciler) Stop() {
	r.cron.Stop()
}

// Run executes one reconciliation pass. All repairs are coalesced into a
// single save.
func (r *Reconciler) Run() {
	r.mgr.SuspendSave()
	repaired, err := r.pass()
	if resumeErr := r.mgr.ResumeSave(); resumeErr != nil && err == nil {
		err = resumeErr
	}
	if err != nil {
		log.Errorf("ownership reconciliation failed: %v", err)
		metrics.ReconcileRunTotal.WithLabelValues("error").Inc()
		return
	}
	if repaired > 0 {
		log.Infof("ownership reconciliation repaired %d records", repaired)
	}
	metrics.ReconcileRunTotal.WithLabelValues("ok").Inc()
}

func (r *Reconciler) pass() (int, error) {
	repaired := 0

	// Drop duplicate owners; the first registered team keeps the record.
	seenJobs := make(map[string]struct{})
	seenViews := make(map[string]struct{})
	seenNodes := make(map[string]struct{})
	for _, t := range r.mgr.Teams() {
		for _, job := range t.Jobs() {
			if _, dup := seenJobs[job.ID()]; dup {
				log.Warnf("job %s owned by more than one team, dropping record in %s", job.ID(), t.Name())
				if _, err := t.RemoveJob(job.ID()); err != nil {
					return repaired, err
				}
				repaired++
				continue
			}
			seenJobs[job.ID()] = struct{}{}
		}
		for _, view := range t.Views() {
			if _, dup := seenViews[view.ID()]; dup {
				if _, err := t.RemoveView(view.ID()); err != nil {
					return repaired, err
				}
				repaired++
				continue
			}
			seenViews[view.ID()] = struct{}{}
		}
		for _, node := range t.Nodes() {
			if _, dup := seenNodes[node.ID()]; dup {
				if _, err := t.RemoveNode(node.ID()); err != nil {
					return repaired, err
				}
				repaired++
				continue
			}
			seenNodes[node.ID()] = struct{}{}
		}
	}

	if r.registry == nil {
		return repaired, nil
	}

	// Drop job records the registry no longer knows. A move renames the
	// real job before the source record is removed, so a crash in between
	// strands the old name here.
	registryJobs := make(map[string]struct{})
	for _, name := range r.registry.JobNames() {
		registryJobs[name] = struct{}{}
	}
	for _, t := range r.mgr.Teams() {
		for _, job := range t.Jobs() {
			if _, ok := registryJobs[job.ID()]; !ok {
				log.Warnf("job %s no longer exists, dropping record in team %s", job.ID(), t.Name())
				if _, err := t.RemoveJob(job.ID()); err != nil {
					return repaired, err
				}
				repaired++
			}
		}
	}

	// Adopt unowned registry items into the public team.
	public := r.mgr.PublicTeam()
	for _, name := range r.registry.JobNames() {
		if r.mgr.FindJobOwnerTeam(name) == nil {
			if err := public.AddJob(team.NewJob(name)); err != nil {
				return repaired, err
			}
			repaired++
		}
	}
	for _, name := range r.registry.ViewNames() {
		if r.mgr.FindViewOwnerTeam(name) == nil {
			if err := public.AddView(team.NewView(name)); err != nil {
				return repaired, err
			}
			repaired++
		}
	}
	for _, name := range r.registry.NodeNames() {
		if r.mgr.FindNodeOwnerTeam(name) == nil {
			if err := public.AddNode(team.NewNode(name)); err != nil {
				return repaired, err
			}
			repaired++
		}
	}
	return repaired, nil
}
