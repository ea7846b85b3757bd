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
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/chazu/ordinal/pkg/graph"
	"github.com/chazu/ordinal/pkg/metrics"
	"github.com/chazu/ordinal/pkg/scenario"
)

// ErrNotFound is returned when a session ID is not in the store
var ErrNotFound = errors.New("session not found")

// ScenarioSource resolves embedded scenarios by name
type ScenarioSource interface {
	LoadEmbedded(name string) (*scenario.Scenario, error)
}

// Store holds the live sessions of a process
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	scenarios ScenarioSource
	options   []graph.Option
}

// NewStore creates an empty store. scenarios may be nil, in which case
// sessions cannot be seeded. options apply to every session's graph.
func NewStore(scenarios ScenarioSource, options ...graph.Option) *Store {
	return &Store{
		sessions:  make(map[string]*Session),
		scenarios: scenarios,
		options:   options,
	}
}

// Create starts a new session, optionally seeded with an embedded scenario.
// A scenario that fails to apply leaves no session behind.
func (st *Store) Create(ctx context.Context, scenarioName string) (*Session, error) {
	logger := logf.FromContext(ctx)

	g := graph.New(st.options...)
	if scenarioName != "" {
		if err := st.seed(g, scenarioName); err != nil {
			if errors.Is(err, scenario.ErrNotFound) {
				logger.V(1).Info("Rejected unknown scenario", "scenario", scenarioName)
			} else {
				logger.Error(err, "Failed to seed session", "scenario", scenarioName)
			}
			return nil, err
		}
	}

	s := &Session{
		ID:        uuid.NewString(),
		Scenario:  scenarioName,
		CreatedAt: time.Now(),
		graph:     g,
	}

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()

	metrics.IncrementSessions()
	logger.Info("Created session", "session", s.ID, "scenario", scenarioName, "tasks", g.Len())
	return s, nil
}

// seed applies an embedded scenario to g. The scenario metric label is only
// taken from names that resolved, so client input cannot add series.
func (st *Store) seed(g *graph.DependencyGraph, name string) error {
	if st.scenarios == nil {
		metrics.RecordScenarioLoad(metrics.ScenarioUnknown, metrics.ResultError)
		return fmt.Errorf("no scenario source configured: %w", scenario.ErrNotFound)
	}

	sc, err := st.scenarios.LoadEmbedded(name)
	if err != nil {
		metrics.RecordScenarioLoad(metrics.ScenarioUnknown, metrics.ResultError)
		return err
	}

	err = sc.Apply(g)
	metrics.RecordScenarioLoad(name, metrics.ResultFor(err))
	return err
}

// Get returns the session with the given ID
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Delete ends a session and drops its graph
func (st *Store) Delete(ctx context.Context, id string) error {
	st.mu.Lock()
	_, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	metrics.DecrementSessions()
	logf.FromContext(ctx).Info("Deleted session", "session", id)
	return nil
}

// IDs returns the IDs of all live sessions, sorted
func (st *Store) IDs() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()

	ids := make([]string, 0, len(st.sessions))
	for id := range st.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of live sessions
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
