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

package metrics

import (
	"errors"

	"github.com/chazu/ordinal/pkg/graph"
)

// ResultFor maps an engine error to its result label
func ResultFor(err error) string {
	switch {
	case err == nil:
		return ResultSuccess
	case errors.Is(err, graph.ErrEmptyTaskName):
		return ResultEmptyName
	case errors.Is(err, graph.ErrSelfDependency):
		return ResultSelfDependency
	case errors.Is(err, graph.ErrUnknownTask):
		return ResultUnknownTask
	case errors.Is(err, graph.ErrCycleDetected):
		return ResultCycle
	case errors.Is(err, graph.ErrInvariantViolation):
		return ResultInvariantViolation
	default:
		return ResultError
	}
}
