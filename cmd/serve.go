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

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/chazu/ordinal/internal/server"
	"github.com/chazu/ordinal/internal/session"
	"github.com/chazu/ordinal/pkg/scenario"
)

// ServeConfig holds flags for the serve command
type ServeConfig struct {
	BindAddress     string
	ShutdownTimeout time.Duration
}

func newServeCmd(cfg *Config) *cobra.Command {
	serveCfg := &ServeConfig{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the session API over HTTP",
		Long: `Serve a JSON API where each session owns its own dependency graph.

Endpoints:
  GET    /v1/sessions                     List session IDs
  POST   /v1/sessions                     Create a session
  GET    /v1/sessions/:id                 Snapshot and fingerprint
  DELETE /v1/sessions/:id                 End a session
  POST   /v1/sessions/:id/tasks           Add a task
  POST   /v1/sessions/:id/dependencies    Add a dependency
  GET    /v1/sessions/:id/order           Execution order
  GET    /v1/sessions/:id/graph.dot       Graphviz rendering
  GET    /healthz, /readyz, /metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			listener, err := net.Listen("tcp", serveCfg.BindAddress)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", serveCfg.BindAddress, err)
			}
			return serve(cmd.Context(), cfg, *serveCfg, listener)
		},
	}

	cmd.Flags().StringVar(&serveCfg.BindAddress, "bind-address", ":8080", "The address the API binds to.")
	cmd.Flags().DurationVar(&serveCfg.ShutdownTimeout, "shutdown-timeout", 5*time.Second,
		"How long to wait for in-flight requests on shutdown.")
	return cmd
}

// serve runs the API on listener until ctx is cancelled
func serve(ctx context.Context, cfg *Config, serveCfg ServeConfig, listener net.Listener) error {
	logger := logf.Log.WithName("serve")
	gin.SetMode(gin.ReleaseMode)

	loader, err := scenario.NewLoader()
	if err != nil {
		return err
	}
	store := session.NewStore(loader, cfg.graphOptions()...)

	srv := &http.Server{
		Handler:           server.New(store, logf.Log.WithName("server")).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(context.Context) error {
		logger.Info("Starting server", "address", listener.Addr().String())
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		<-ctx.Done()
		logger.Info("Shutting down server", "timeout", serveCfg.ShutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), serveCfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return p.Wait()
}
