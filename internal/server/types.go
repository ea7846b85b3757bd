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

import "github.com/chazu/ordinal/pkg/graph"

// CreateSessionRequest is the body of POST /v1/sessions
type CreateSessionRequest struct {
	// Scenario optionally seeds the session with an embedded scenario
	Scenario string `json:"scenario"`
}

// CreateSessionResponse is returned when a session is created
type CreateSessionResponse struct {
	ID       string `json:"id"`
	Scenario string `json:"scenario,omitempty"`
	Tasks    int    `json:"tasks"`
}

// AddTaskRequest is the body of POST /v1/sessions/:id/tasks
type AddTaskRequest struct {
	Name *string `json:"name" binding:"required"`
}

// AddDependencyRequest is the body of POST /v1/sessions/:id/dependencies
type AddDependencyRequest struct {
	Prerequisite *string `json:"prerequisite" binding:"required"`
	Dependent    *string `json:"dependent" binding:"required"`
}

// ListSessionsResponse lists the live session IDs, sorted
type ListSessionsResponse struct {
	Sessions []string `json:"sessions"`
}

// SessionResponse describes the current state of a session's graph
type SessionResponse struct {
	ID          string         `json:"id"`
	Scenario    string         `json:"scenario,omitempty"`
	Strict      bool           `json:"strict"`
	Fingerprint string         `json:"fingerprint"`
	Graph       graph.Snapshot `json:"graph"`
}

// OrderResponse is a computed execution order
type OrderResponse struct {
	Order []string `json:"order"`

	// Display joins the order with " -> "
	Display string `json:"display"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	// Error is the error message
	Error string `json:"error"`

	// Code is a stable machine-readable error code
	Code string `json:"code"`

	// Path is the existing dependency chain a rejected edge would close
	Path []string `json:"path,omitempty"`
}
