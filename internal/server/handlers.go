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
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/chazu/ordinal/internal/session"
)

const dotContentType = "text/vnd.graphviz; charset=utf-8"

// handleCreateSession handles POST /v1/sessions. An empty body creates an
// empty session.
func (s *Server) handleCreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		s.badRequest(c, err)
		return
	}

	sess, err := s.store.Create(c.Request.Context(), req.Scenario)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateSessionResponse{
		ID:       sess.ID,
		Scenario: sess.Scenario,
		Tasks:    len(sess.Snapshot().Tasks),
	})
}

// handleListSessions handles GET /v1/sessions
func (s *Server) handleListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, ListSessionsResponse{Sessions: s.store.IDs()})
}

// handleGetSession handles GET /v1/sessions/:id. The fingerprint is served
// as a strong ETag and If-None-Match is evaluated per RFC 9110.
func (s *Server) handleGetSession(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}

	snap := sess.Snapshot()
	etag := fmt.Sprintf("%q", snap.Fingerprint())
	c.Header("ETag", etag)
	if etagMatches(c.GetHeader("If-None-Match"), etag) {
		c.Status(http.StatusNotModified)
		return
	}

	c.JSON(http.StatusOK, SessionResponse{
		ID:          sess.ID,
		Scenario:    sess.Scenario,
		Strict:      sess.Strict(),
		Fingerprint: snap.Fingerprint(),
		Graph:       snap,
	})
}

// handleDeleteSession handles DELETE /v1/sessions/:id
func (s *Server) handleDeleteSession(c *gin.Context) {
	if err := s.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleAddTask handles POST /v1/sessions/:id/tasks
func (s *Server) handleAddTask(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}

	var req AddTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	if err := sess.AddTask(c.Request.Context(), *req.Name); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"name": *req.Name})
}

// handleAddDependency handles POST /v1/sessions/:id/dependencies
func (s *Server) handleAddDependency(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}

	var req AddDependencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	if err := sess.AddDependency(c.Request.Context(), *req.Prerequisite, *req.Dependent); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"prerequisite": *req.Prerequisite,
		"dependent":    *req.Dependent,
	})
}

// handleExecutionOrder handles GET /v1/sessions/:id/order
func (s *Server) handleExecutionOrder(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}

	order, err := sess.ExecutionOrder(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, OrderResponse{
		Order:   order,
		Display: strings.Join(order, " -> "),
	})
}

// handleGraphDOT handles GET /v1/sessions/:id/graph.dot
func (s *Server) handleGraphDOT(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := sess.WriteDOT(&buf); err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, dotContentType, buf.Bytes())
}

// etagMatches reports whether an If-None-Match header value matches etag.
// The header may be "*" or a comma-separated list; comparison is weak, so
// W/ prefixes are ignored.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == want {
			return true
		}
	}
	return false
}

// session resolves the :id parameter, writing a 404 when it is unknown
func (s *Server) session(c *gin.Context) (*session.Session, bool) {
	sess, err := s.store.Get(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) badRequest(c *gin.Context, err error) {
	logf.FromContext(c.Request.Context()).V(1).Info("Invalid request body", "error", err.Error())
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: fmt.Sprintf("invalid request body: %v", err),
		Code:  CodeInvalidRequest,
	})
}

func (s *Server) fail(c *gin.Context, err error) {
	status, resp := errorResponse(err)
	logger := logf.FromContext(c.Request.Context())
	if status >= http.StatusInternalServerError {
		logger.Error(err, "Request failed", "code", resp.Code)
	} else {
		logger.V(1).Info("Request rejected", "code", resp.Code, "error", err.Error())
	}
	c.JSON(status, resp)
}
