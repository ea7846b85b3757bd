// Package scenario loads demonstration datasets of tasks and dependencies,
// written in CUE (or JSON, which CUE accepts), and replays them verbatim into
// a dependency graph. Scenarios ship embedded in the binary and can also be
// read from disk.
package scenario
