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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// AclDecisionTotal counts authorization decisions by scope and outcome.
	AclDecisionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foundry",
			Subsystem: "acl",
			Name:      "decision_total",
			Help:      "Authorization decisions by scope and outcome.",
		},
		[]string{"scope", "outcome"},
	)

	// TeamOperationTotal counts team mutations by operation and result.
	TeamOperationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foundry",
			Subsystem: "team",
			Name:      "operation_total",
			Help:      "Team mutations by operation and result.",
		},
		[]string{"operation", "result"},
	)

	// SaveDuration observes how long a persistence pass takes.
	SaveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "foundry",
			Subsystem: "team",
			Name:      "save_duration_seconds",
			Help:      "Duration of team configuration saves.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// ReconcileRunTotal counts ownership reconciliation passes by result.
	ReconcileRunTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foundry",
			Subsystem: "reconcile",
			Name:      "run_total",
			Help:      "Ownership reconciliation passes by result.",
		},
		[]string{"result"},
	)
)

// SetupAuthorizationMetrics registers the engine collectors.
func SetupAuthorizationMetrics(registry *prometheus.Registry) {
	registry.MustRegister(AclDecisionTotal)
	registry.MustRegister(TeamOperationTotal)
	registry.MustRegister(SaveDuration)
	registry.MustRegister(ReconcileRunTotal)
}
