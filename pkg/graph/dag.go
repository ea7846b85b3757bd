package graph

// Option configures a DependencyGraph
type Option func(*DependencyGraph)

// WithStrictTasks makes AddDependency reject names that were not registered
// with AddTask beforehand. By default unknown endpoints are registered
// automatically once the edge has passed validation.
func WithStrictTasks() Option {
	return func(g *DependencyGraph) {
		g.strict = true
	}
}

// DependencyGraph stores tasks and prerequisite -> dependent edges and
// computes a sequential execution order.
type DependencyGraph struct {
	// adjacency maps each task to its dependents in insertion order
	adjacency map[string][]string

	// inDegree counts recorded edges ending at each task.
	// Its key set always matches adjacency.
	inDegree map[string]int

	// order records tasks in registration order; it seeds the frontier
	order []string

	// edges is the total number of recorded edges, duplicates included
	edges int

	strict bool
}

// New creates an empty DependencyGraph
func New(opts ...Option) *DependencyGraph {
	g := &DependencyGraph{
		adjacency: make(map[string][]string),
		inDegree:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Strict reports whether the graph rejects unknown task names in AddDependency
func (g *DependencyGraph) Strict() bool {
	return g.strict
}

// AddTask registers a task. Registering an existing task is a no-op.
func (g *DependencyGraph) AddTask(name string) error {
	if name == "" {
		return ErrEmptyTaskName
	}
	g.register(name)
	return nil
}

func (g *DependencyGraph) register(name string) {
	if _, found := g.adjacency[name]; found {
		return
	}
	g.adjacency[name] = nil
	g.inDegree[name] = 0
	g.order = append(g.order, name)
}

// AddDependency records that prerequisite must run before dependent.
//
// Checks run in order and the first failure wins: empty names, self-dependency,
// unknown tasks (strict graphs only), then cycle detection. A rejected call
// leaves the graph unchanged. Repeating an existing edge records it again.
func (g *DependencyGraph) AddDependency(prerequisite, dependent string) error {
	if prerequisite == "" || dependent == "" {
		return &DependencyError{Kind: ErrEmptyTaskName, Prerequisite: prerequisite, Dependent: dependent}
	}

	if prerequisite == dependent {
		return &DependencyError{Kind: ErrSelfDependency, Prerequisite: prerequisite, Dependent: dependent}
	}

	if g.strict {
		for _, name := range []string{prerequisite, dependent} {
			if !g.Has(name) {
				return &DependencyError{
					Kind:         ErrUnknownTask,
					Prerequisite: prerequisite,
					Dependent:    dependent,
					Missing:      name,
				}
			}
		}
	}

	if path := g.pathBetween(dependent, prerequisite); path != nil {
		return &DependencyError{
			Kind:         ErrCycleDetected,
			Prerequisite: prerequisite,
			Dependent:    dependent,
			Path:         path,
		}
	}

	g.register(prerequisite)
	g.register(dependent)
	g.adjacency[prerequisite] = append(g.adjacency[prerequisite], dependent)
	g.inDegree[dependent]++
	g.edges++
	return nil
}

// ExecutionOrder returns every task exactly once, each prerequisite strictly
// before its dependents.
//
// Tasks that become ready together keep the order in which their defining
// edges were processed, so the result is deterministic for a given sequence
// of insertions. An empty graph yields an empty order. The graph itself is
// not modified.
func (g *DependencyGraph) ExecutionOrder() ([]string, error) {
	remaining := make(map[string]int, len(g.inDegree))
	for name, degree := range g.inDegree {
		remaining[name] = degree
	}

	queue := make([]string, 0, len(g.order))
	for _, name := range g.order {
		if remaining[name] == 0 {
			queue = append(queue, name)
		}
	}

	result := make([]string, 0, len(g.order))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		result = append(result, current)

		for _, next := range g.adjacency[current] {
			remaining[next]--
			if remaining[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(result) != len(g.order) {
		return nil, &InvariantError{Ordered: len(result), Total: len(g.order)}
	}
	return result, nil
}

// Has reports whether name is a registered task
func (g *DependencyGraph) Has(name string) bool {
	_, found := g.adjacency[name]
	return found
}

// Len returns the number of registered tasks
func (g *DependencyGraph) Len() int {
	return len(g.order)
}

// EdgeCount returns the number of recorded edges, duplicates included
func (g *DependencyGraph) EdgeCount() int {
	return g.edges
}

// Tasks returns the registered tasks in registration order
func (g *DependencyGraph) Tasks() []string {
	return append([]string{}, g.order...)
}

// Dependents returns the direct dependents of name in insertion order
func (g *DependencyGraph) Dependents(name string) ([]string, bool) {
	deps, found := g.adjacency[name]
	if !found {
		return nil, false
	}
	return append([]string{}, deps...), true
}

// InDegree returns the number of recorded edges ending at name
func (g *DependencyGraph) InDegree(name string) (int, bool) {
	degree, found := g.inDegree[name]
	return degree, found
}

// Edges returns every recorded edge, grouped by prerequisite in registration
// order and then in insertion order
func (g *DependencyGraph) Edges() []Edge {
	edges := make([]Edge, 0, g.edges)
	for _, prerequisite := range g.order {
		for _, dependent := range g.adjacency[prerequisite] {
			edges = append(edges, Edge{Prerequisite: prerequisite, Dependent: dependent})
		}
	}
	return edges
}

// Snapshot returns a copy of the current tasks, edges and in-degrees
func (g *DependencyGraph) Snapshot() Snapshot {
	inDegree := make(map[string]int, len(g.inDegree))
	for name, degree := range g.inDegree {
		inDegree[name] = degree
	}
	return Snapshot{
		Tasks:    g.Tasks(),
		Edges:    g.Edges(),
		InDegree: inDegree,
	}
}

// Fingerprint returns the snapshot fingerprint of the current graph
func (g *DependencyGraph) Fingerprint() string {
	return g.Snapshot().Fingerprint()
}
