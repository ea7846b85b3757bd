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

package session

import (
	"context"
	"io"
	"sync"
	"time"

	logf "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/chazu/ordinal/pkg/graph"
	"github.com/chazu/ordinal/pkg/metrics"
)

// Session owns one dependency graph and serializes access to it
type Session struct {
	// ID uniquely identifies the session within its store
	ID string

	// Scenario is the embedded scenario the session was seeded with, if any
	Scenario string

	// CreatedAt is when the session was created
	CreatedAt time.Time

	mu    sync.Mutex
	graph *graph.DependencyGraph
}

// AddTask registers a task in the session's graph
func (s *Session) AddTask(ctx context.Context, name string) error {
	logger := logf.FromContext(ctx).WithValues("session", s.ID)

	s.mu.Lock()
	err := s.graph.AddTask(name)
	s.mu.Unlock()

	metrics.RecordAddTask(metrics.ResultFor(err))
	if err != nil {
		logger.V(1).Info("Rejected task", "task", name, "reason", err.Error())
		return err
	}
	logger.V(1).Info("Added task", "task", name)
	return nil
}

// AddDependency records that prerequisite must run before dependent
func (s *Session) AddDependency(ctx context.Context, prerequisite, dependent string) error {
	logger := logf.FromContext(ctx).WithValues("session", s.ID)

	s.mu.Lock()
	err := s.graph.AddDependency(prerequisite, dependent)
	s.mu.Unlock()

	metrics.RecordAddDependency(metrics.ResultFor(err))
	if err != nil {
		logger.V(1).Info("Rejected dependency",
			"prerequisite", prerequisite, "dependent", dependent, "reason", err.Error())
		return err
	}
	logger.V(1).Info("Added dependency", "prerequisite", prerequisite, "dependent", dependent)
	return nil
}

// ExecutionOrder computes a topological order of the session's tasks
func (s *Session) ExecutionOrder(ctx context.Context) ([]string, error) {
	logger := logf.FromContext(ctx).WithValues("session", s.ID)

	start := time.Now()
	s.mu.Lock()
	order, err := s.graph.ExecutionOrder()
	s.mu.Unlock()
	elapsed := time.Since(start)

	metrics.RecordExecutionOrder(metrics.ResultFor(err), len(order), elapsed.Seconds())
	if err != nil {
		// The engine rejects every cycle-forming edge, so this is a bug
		logger.Error(err, "Failed to compute execution order")
		return nil, err
	}
	logger.V(1).Info("Computed execution order", "tasks", len(order), "duration", elapsed)
	return order, nil
}

// Strict reports whether the session's graph rejects unregistered task names
func (s *Session) Strict() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Strict()
}

// Snapshot returns a copy of the session's graph state
func (s *Session) Snapshot() graph.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Snapshot()
}

// WriteDOT renders the session's graph in Graphviz DOT format
func (s *Session) WriteDOT(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.WriteDOT(w)
}
