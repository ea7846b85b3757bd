// Package graph provides the in-memory dependency graph engine: task and edge
// storage, cycle rejection at insertion time, and a deterministic topological
// execution order computed with Kahn's algorithm.
//
// A DependencyGraph is owned by its caller and performs no internal
// synchronization. Callers sharing one graph across goroutines must serialize
// access themselves.
package graph
