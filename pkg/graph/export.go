package graph

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
)

// Mirror copies the graph into a dominikbraun/graph directed graph with cycle
// prevention enabled. Repeated edges collapse into one edge whose weight is
// the number of times it was recorded.
func (g *DependencyGraph) Mirror() (graph.Graph[string, string], error) {
	dg := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())

	for _, name := range g.order {
		if err := dg.AddVertex(name, graph.VertexAttribute("shape", "box")); err != nil {
			return nil, fmt.Errorf("failed to add vertex %s: %w", name, err)
		}
	}

	type pair struct{ from, to string }
	counts := make(map[pair]int, g.edges)
	edges := g.Edges()
	for _, e := range edges {
		counts[pair{e.Prerequisite, e.Dependent}]++
	}

	for _, e := range edges {
		key := pair{e.Prerequisite, e.Dependent}
		n, pending := counts[key]
		if !pending {
			continue
		}
		delete(counts, key)

		opts := []func(*graph.EdgeProperties){graph.EdgeWeight(n)}
		if n > 1 {
			opts = append(opts, graph.EdgeAttribute("label", "x"+strconv.Itoa(n)))
		}
		if err := dg.AddEdge(e.Prerequisite, e.Dependent, opts...); err != nil {
			return nil, fmt.Errorf("failed to add edge %s: %w", e, err)
		}
	}

	return dg, nil
}

// WriteDOT renders the graph in Graphviz DOT format
func (g *DependencyGraph) WriteDOT(w io.Writer) error {
	dg, err := g.Mirror()
	if err != nil {
		return err
	}
	return draw.DOT(dg, w, draw.GraphAttribute("rankdir", "LR"))
}
