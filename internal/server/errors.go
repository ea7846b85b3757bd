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

package server

import (
	"errors"
	"net/http"

	"github.com/chazu/ordinal/internal/session"
	"github.com/chazu/ordinal/pkg/graph"
	"github.com/chazu/ordinal/pkg/scenario"
)

// Error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeEmptyTaskName      = "EMPTY_TASK_NAME"
	CodeSelfDependency     = "SELF_DEPENDENCY"
	CodeUnknownTask        = "UNKNOWN_TASK"
	CodeCycleDetected      = "CYCLE_DETECTED"
	CodeInvariantViolation = "INVARIANT_VIOLATION"
	CodeSessionNotFound    = "SESSION_NOT_FOUND"
	CodeScenarioNotFound   = "SCENARIO_NOT_FOUND"
	CodeInternal           = "INTERNAL"
)

// errorResponse maps an error to its HTTP status and response body
func errorResponse(err error) (int, ErrorResponse) {
	resp := ErrorResponse{Error: err.Error()}

	var depErr *graph.DependencyError
	if errors.As(err, &depErr) && len(depErr.Path) > 0 {
		resp.Path = append([]string(nil), depErr.Path...)
	}

	switch {
	case errors.Is(err, graph.ErrEmptyTaskName):
		resp.Code = CodeEmptyTaskName
		return http.StatusUnprocessableEntity, resp
	case errors.Is(err, graph.ErrSelfDependency):
		resp.Code = CodeSelfDependency
		return http.StatusUnprocessableEntity, resp
	case errors.Is(err, graph.ErrUnknownTask):
		resp.Code = CodeUnknownTask
		return http.StatusNotFound, resp
	case errors.Is(err, graph.ErrCycleDetected):
		resp.Code = CodeCycleDetected
		return http.StatusConflict, resp
	case errors.Is(err, graph.ErrInvariantViolation):
		resp.Code = CodeInvariantViolation
		return http.StatusInternalServerError, resp
	case errors.Is(err, session.ErrNotFound):
		resp.Code = CodeSessionNotFound
		return http.StatusNotFound, resp
	case errors.Is(err, scenario.ErrNotFound):
		resp.Code = CodeScenarioNotFound
		return http.StatusNotFound, resp
	default:
		resp.Code = CodeInternal
		return http.StatusInternalServerError, resp
	}
}
