/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

// Result labels shared by the engine counters
const (
	ResultSuccess            = "success"
	ResultEmptyName          = "empty_name"
	ResultSelfDependency     = "self_dependency"
	ResultUnknownTask        = "unknown_task"
	ResultCycle              = "cycle"
	ResultInvariantViolation = "invariant_violation"
	ResultError              = "error"
)

// ScenarioUnknown labels loads of scenario names that did not resolve
const ScenarioUnknown = "unknown"

var (
	// Mutation metrics
	tasksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ordinal_add_task_total",
		Help: "Total number of AddTask calls",
	}, []string{"result"})

	dependenciesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ordinal_add_dependency_total",
		Help: "Total number of AddDependency calls",
	}, []string{"result"})

	// Query metrics
	orderTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ordinal_execution_order_total",
		Help: "Total number of execution order computations",
	}, []string{"result"})

	orderDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ordinal_execution_order_duration_seconds",
		Help:    "Duration of execution order computations",
		Buckets: prometheus.ExponentialBuckets(0.00001, 2, 14), // 10us to ~80ms
	})

	orderSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ordinal_execution_order_tasks",
		Help:    "Number of tasks in computed execution orders",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1 to 2048
	})

	// Session metrics
	sessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ordinal_sessions_active",
		Help: "Number of sessions currently holding a graph",
	})

	scenarioLoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ordinal_scenario_loads_total",
		Help: "Total number of scenario loads into a graph",
	}, []string{"scenario", "result"})
)

func init() {
	// Register engine metrics with controller-runtime's registry
	metrics.Registry.MustRegister(
		tasksTotal,
		dependenciesTotal,
		orderTotal,
		orderDuration,
		orderSize,
		sessionsActive,
		scenarioLoadsTotal,
	)
}

// RecordAddTask records an AddTask call
func RecordAddTask(result string) {
	tasksTotal.WithLabelValues(result).Inc()
}

// RecordAddDependency records an AddDependency call
func RecordAddDependency(result string) {
	dependenciesTotal.WithLabelValues(result).Inc()
}

// RecordExecutionOrder records an execution order computation
// size is only observed for successful computations
func RecordExecutionOrder(result string, size int, durationSeconds float64) {
	orderTotal.WithLabelValues(result).Inc()
	orderDuration.Observe(durationSeconds)
	if result == ResultSuccess {
		orderSize.Observe(float64(size))
	}
}

// RecordScenarioLoad records a scenario being replayed into a graph.
// scenario must come from a bounded set; use ScenarioUnknown for names
// that did not resolve.
func RecordScenarioLoad(scenario, result string) {
	scenarioLoadsTotal.WithLabelValues(scenario, result).Inc()
}

// IncrementSessions increments the active sessions gauge
func IncrementSessions() {
	sessionsActive.Inc()
}

// DecrementSessions decrements the active sessions gauge
func DecrementSessions() {
	sessionsActive.Dec()
}
