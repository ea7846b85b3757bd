package graph

import (
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Edge is a single recorded dependency: Prerequisite must run before Dependent.
type Edge struct {
	Prerequisite string `json:"prerequisite"`
	Dependent    string `json:"dependent"`
}

// String renders the edge the way the order display joins tasks.
func (e Edge) String() string {
	return e.Prerequisite + " -> " + e.Dependent
}

// Snapshot is a read-only copy of a graph's current tasks and edges
type Snapshot struct {
	// Tasks lists every registered task in registration order
	Tasks []string `json:"tasks"`

	// Edges lists every recorded edge, grouped by prerequisite in
	// registration order and then in insertion order
	Edges []Edge `json:"edges"`

	// InDegree is the number of recorded edges ending at each task
	InDegree map[string]int `json:"inDegree"`
}

// Fingerprint computes a stable digest of the snapshot for change detection.
// Two snapshots built from the same sequence of insertions share a fingerprint.
func (s Snapshot) Fingerprint() string {
	// InDegree is derived from Edges, so only tasks and edges are hashed
	type hashable struct {
		Tasks []string `json:"tasks"`
		Edges []Edge   `json:"edges"`
	}

	data, err := json.Marshal(hashable{Tasks: s.Tasks, Edges: s.Edges})
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}
