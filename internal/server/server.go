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
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/chazu/ordinal/internal/session"
)

// Server exposes sessions over a JSON HTTP API
type Server struct {
	store  *session.Store
	logger logr.Logger
	engine *gin.Engine
}

// New creates a server backed by store
func New(store *session.Store, logger logr.Logger) *Server {
	s := &Server{
		store:  store,
		logger: logger,
		engine: gin.New(),
	}
	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.routes()
	return s
}

// Handler returns the server's HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	v1 := s.engine.Group("/v1")
	v1.GET("/sessions", s.handleListSessions)
	v1.POST("/sessions", s.handleCreateSession)
	v1.GET("/sessions/:id", s.handleGetSession)
	v1.DELETE("/sessions/:id", s.handleDeleteSession)
	v1.POST("/sessions/:id/tasks", s.handleAddTask)
	v1.POST("/sessions/:id/dependencies", s.handleAddDependency)
	v1.GET("/sessions/:id/order", s.handleExecutionOrder)
	v1.GET("/sessions/:id/graph.dot", s.handleGraphDOT)

	s.engine.GET("/healthz", gin.WrapH(healthz.CheckHandler{Checker: healthz.Ping}))
	s.engine.GET("/readyz", gin.WrapH(healthz.CheckHandler{Checker: s.readyCheck}))
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(ctrlmetrics.Registry, promhttp.HandlerOpts{})))
}

// readyCheck fails until the server has a session store
func (s *Server) readyCheck(_ *http.Request) error {
	if s.store == nil {
		return errors.New("session store not configured")
	}
	return nil
}

// requestLogger attaches a request-scoped logger to the request context and
// logs each completed request
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		logger := s.logger.WithValues("method", c.Request.Method, "path", c.Request.URL.Path)
		c.Request = c.Request.WithContext(logf.IntoContext(c.Request.Context(), logger))

		c.Next()

		logger.V(1).Info("Handled request",
			"status", c.Writer.Status(), "duration", time.Since(start))
	}
}
