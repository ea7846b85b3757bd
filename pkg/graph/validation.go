package graph

import (
	"fmt"

	"k8s.io/apimachinery/pkg/util/sets"
)

// pathBetween searches depth-first from start along existing edges and returns
// the first path that reaches target, start and target included. It returns
// nil when target is unreachable or either task is unknown.
func (g *DependencyGraph) pathBetween(start, target string) []string {
	if !g.Has(start) || !g.Has(target) {
		return nil
	}

	visited := sets.New[string](start)
	parent := make(map[string]string)
	stack := []string{start}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if current == target {
			return tracePath(parent, start, target)
		}

		// Push in reverse so dependents are explored in insertion order
		next := g.adjacency[current]
		for i := len(next) - 1; i >= 0; i-- {
			if visited.Has(next[i]) {
				continue
			}
			visited.Insert(next[i])
			parent[next[i]] = current
			stack = append(stack, next[i])
		}
	}
	return nil
}

func tracePath(parent map[string]string, start, target string) []string {
	path := []string{target}
	for current := target; current != start; {
		current = parent[current]
		path = append(path, current)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Validate checks the structural invariants of the graph: matching key sets,
// in-degrees consistent with the recorded edges, and a complete execution
// order. It returns nil for a healthy graph.
func (g *DependencyGraph) Validate() error {
	if len(g.adjacency) != len(g.inDegree) || len(g.order) != len(g.adjacency) {
		return fmt.Errorf("%w: %d adjacency entries, %d in-degree entries, %d registered tasks",
			ErrInvariantViolation, len(g.adjacency), len(g.inDegree), len(g.order))
	}

	counted := make(map[string]int, len(g.inDegree))
	for name, dependents := range g.adjacency {
		if _, found := g.inDegree[name]; !found {
			return fmt.Errorf("%w: task %q has no in-degree entry", ErrInvariantViolation, name)
		}
		for _, dependent := range dependents {
			counted[dependent]++
		}
	}
	for name, degree := range g.inDegree {
		if counted[name] != degree {
			return fmt.Errorf("%w: task %q records in-degree %d but has %d incoming edges",
				ErrInvariantViolation, name, degree, counted[name])
		}
	}

	_, err := g.ExecutionOrder()
	return err
}
