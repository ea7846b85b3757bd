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
	"flag"
	"io"
	"os"

	"github.com/spf13/cobra"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	"sigs.k8s.io/controller-runtime/pkg/manager/signals"

	"github.com/chazu/ordinal/pkg/graph"
)

var setupLog = logf.Log.WithName("setup")

// Config holds flags shared by every command
type Config struct {
	// Strict rejects dependencies that name unregistered tasks
	Strict bool

	zapOpts zap.Options
}

// graphOptions returns the graph options selected by the flags
func (c *Config) graphOptions() []graph.Option {
	if c.Strict {
		return []graph.Option{graph.WithStrictTasks()}
	}
	return nil
}

// newRootCmd builds the command tree writing results to out
func newRootCmd(out io.Writer) *cobra.Command {
	cfg := &Config{zapOpts: zap.Options{Development: true}}

	root := &cobra.Command{
		Use:   "ordinal",
		Short: "Order tasks by their dependencies",
		Long: `ordinal records tasks and prerequisite -> dependent edges between them,
rejects any edge that would form a cycle, and prints a valid execution order.

Examples:
  ordinal order --scenario software
  ordinal order plan.cue --output lines
  ordinal dot plan.cue | dot -Tsvg > plan.svg
  ordinal serve --bind-address :8080`,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logf.SetLogger(zap.New(zap.UseFlagOptions(&cfg.zapOpts)))
		},
	}
	root.SetOut(out)

	goFlags := flag.NewFlagSet("zap", flag.ContinueOnError)
	cfg.zapOpts.BindFlags(goFlags)
	root.PersistentFlags().AddGoFlagSet(goFlags)
	root.PersistentFlags().BoolVar(&cfg.Strict, "strict", false,
		"Reject dependencies naming tasks that were not registered first.")

	root.AddCommand(
		newOrderCmd(cfg),
		newDotCmd(cfg),
		newScenariosCmd(),
		newServeCmd(cfg),
	)
	return root
}

func main() {
	ctx := signals.SetupSignalHandler()
	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		setupLog.Error(err, "Command failed")
		os.Exit(1)
	}
}
