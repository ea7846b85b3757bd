package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyTaskName is returned when a task name is the empty string.
	ErrEmptyTaskName = errors.New("task name cannot be empty")

	// ErrSelfDependency is returned when a task is declared as its own prerequisite.
	ErrSelfDependency = errors.New("self-dependency")

	// ErrUnknownTask is returned by a strict graph when an edge names a task
	// that was never registered.
	ErrUnknownTask = errors.New("unknown task")

	// ErrCycleDetected is returned when an edge would close a cycle.
	ErrCycleDetected = errors.New("cycle detected")

	// ErrInvariantViolation is returned when the execution order cannot cover
	// every task. Cycles are rejected on insertion, so this indicates a bug.
	ErrInvariantViolation = errors.New("invariant violation")
)

// DependencyError describes a rejected AddDependency call.
type DependencyError struct {
	// Kind is one of the package sentinel errors
	Kind error

	Prerequisite string
	Dependent    string

	// Path is the existing route from Dependent back to Prerequisite that the
	// rejected edge would have closed. Set only for ErrCycleDetected.
	Path []string

	// Missing names the unregistered task for ErrUnknownTask.
	Missing string
}

func (e *DependencyError) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case errors.Is(e.Kind, ErrCycleDetected) && len(e.Path) > 0:
		cycle := append(append([]string{}, e.Path...), e.Dependent)
		return fmt.Sprintf("%s: adding %q -> %q would close %s",
			e.Kind, e.Prerequisite, e.Dependent, strings.Join(cycle, " -> "))
	case errors.Is(e.Kind, ErrUnknownTask):
		return fmt.Sprintf("%s: %q (edge %q -> %q)", e.Kind, e.Missing, e.Prerequisite, e.Dependent)
	default:
		return fmt.Sprintf("%s: %q -> %q", e.Kind, e.Prerequisite, e.Dependent)
	}
}

func (e *DependencyError) Unwrap() error { return e.Kind }

// InvariantError reports an execution order that did not cover every task.
type InvariantError struct {
	Ordered int
	Total   int
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: ordered %d of %d tasks; the graph contains a cycle",
		ErrInvariantViolation, e.Ordered, e.Total)
}

func (e *InvariantError) Unwrap() error { return ErrInvariantViolation }
