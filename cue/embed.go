// Package cue provides the embedded scenario schema and demonstration datasets.
package cue

import "embed"

// ScenarioFS contains the embedded demonstration scenarios.
//
//go:embed scenarios/*.cue
var ScenarioFS embed.FS

// ScenarioDir is the root directory of the scenarios within ScenarioFS.
const ScenarioDir = "scenarios"

// Schema is the CUE schema every scenario is unified with before decoding.
//
//go:embed schema.cue
var Schema string
