package scenario

import (
	"errors"
	"fmt"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
)

// ErrNotFound is returned when a named embedded scenario does not exist
var ErrNotFound = errors.New("scenario not found")

// Scenario is a named dataset replayed into a graph
type Scenario struct {
	// Name identifies the scenario
	Name string `json:"name"`

	// Description is a human-readable summary
	Description string `json:"description,omitempty"`

	// Tasks are registered first, in order
	Tasks []string `json:"tasks"`

	// Dependencies are recorded after all tasks, in order
	Dependencies []Dependency `json:"dependencies"`

	// Source describes where the scenario was loaded from
	Source string `json:"-"`

	// Digest is a content hash of the scenario source
	Digest string `json:"-"`
}

// Dependency is a single prerequisite/dependent pair
type Dependency struct {
	Prerequisite string `json:"prerequisite"`
	Dependent    string `json:"dependent"`
}

// Builder is the subset of graph operations a scenario needs
type Builder interface {
	AddTask(name string) error
	AddDependency(prerequisite, dependent string) error
}

// Validate checks that every task and dependency endpoint is named.
// All problems are reported together.
func (s *Scenario) Validate() error {
	var errs []error
	for i, name := range s.Tasks {
		if name == "" {
			errs = append(errs, fmt.Errorf("tasks[%d]: name is required", i))
		}
	}
	for i, dep := range s.Dependencies {
		if dep.Prerequisite == "" {
			errs = append(errs, fmt.Errorf("dependencies[%d]: prerequisite is required", i))
		}
		if dep.Dependent == "" {
			errs = append(errs, fmt.Errorf("dependencies[%d]: dependent is required", i))
		}
	}
	return utilerrors.NewAggregate(errs)
}

// Apply registers the scenario's tasks and then its dependencies, stopping at
// the first rejected operation. Earlier operations are not rolled back, so
// callers that need all-or-nothing semantics should apply to a fresh graph.
func (s *Scenario) Apply(b Builder) error {
	for i, name := range s.Tasks {
		if err := b.AddTask(name); err != nil {
			return fmt.Errorf("scenario %s: tasks[%d] %q: %w", s.Name, i, name, err)
		}
	}
	for i, dep := range s.Dependencies {
		if err := b.AddDependency(dep.Prerequisite, dep.Dependent); err != nil {
			return fmt.Errorf("scenario %s: dependencies[%d]: %w", s.Name, i, err)
		}
	}
	return nil
}

// DeepCopy returns an independent copy of the scenario
func (s *Scenario) DeepCopy() *Scenario {
	if s == nil {
		return nil
	}
	out := *s
	out.Tasks = append([]string(nil), s.Tasks...)
	out.Dependencies = append([]Dependency(nil), s.Dependencies...)
	return &out
}
