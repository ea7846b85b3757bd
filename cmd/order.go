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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/chazu/ordinal/pkg/graph"
	"github.com/chazu/ordinal/pkg/scenario"
)

// Output formats for the order command
const (
	OutputText  = "text"
	OutputLines = "lines"
	OutputJSON  = "json"
)

// InputConfig selects the scenarios replayed into a graph
type InputConfig struct {
	// Scenarios names embedded scenarios, applied before Files
	Scenarios []string

	// Files are CUE or JSON scenario files, applied in order
	Files []string
}

// OrderConfig holds flags for the order command
type OrderConfig struct {
	InputConfig
	Output string
}

// orderResult is the JSON form of the order command's output
type orderResult struct {
	Order       []string `json:"order"`
	Display     string   `json:"display"`
	Fingerprint string   `json:"fingerprint"`
}

func newOrderCmd(cfg *Config) *cobra.Command {
	orderCfg := &OrderConfig{}

	cmd := &cobra.Command{
		Use:   "order [FILE...]",
		Short: "Print a valid execution order",
		Long: `Replay scenarios into a graph and print a valid execution order.

Embedded scenarios given with --scenario are applied first, then FILE
arguments in order. Loading stops at the first rejected task or dependency.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(orderCfg.Output); err != nil {
				return err
			}
			orderCfg.Files = args
			g, err := buildGraph(cmd, cfg, orderCfg.InputConfig)
			if err != nil {
				return err
			}

			order, err := g.ExecutionOrder()
			if err != nil {
				return err
			}
			return writeOrder(cmd.OutOrStdout(), orderCfg.Output, order, g.Fingerprint())
		},
	}

	cmd.Flags().StringArrayVar(&orderCfg.Scenarios, "scenario", nil,
		"Embedded scenario to load. May be repeated.")
	cmd.Flags().StringVarP(&orderCfg.Output, "output", "o", OutputText,
		"Output format: text, lines or json.")
	return cmd
}

func newDotCmd(cfg *Config) *cobra.Command {
	input := &InputConfig{}

	cmd := &cobra.Command{
		Use:   "dot [FILE...]",
		Short: "Render the dependency graph in Graphviz DOT format",
		RunE: func(cmd *cobra.Command, args []string) error {
			input.Files = args
			g, err := buildGraph(cmd, cfg, *input)
			if err != nil {
				return err
			}
			return g.WriteDOT(cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringArrayVar(&input.Scenarios, "scenario", nil,
		"Embedded scenario to load. May be repeated.")
	return cmd
}

func newScenariosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List the embedded scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loader, err := scenario.NewLoader()
			if err != nil {
				return err
			}
			names, err := loader.Names()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, name := range names {
				s, err := loader.LoadEmbedded(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\t%d tasks\t%d dependencies\t%s\n",
					name, len(s.Tasks), len(s.Dependencies), s.Description)
			}
			return nil
		},
	}
}

// buildGraph replays the selected scenarios into a new graph
func buildGraph(cmd *cobra.Command, cfg *Config, input InputConfig) (*graph.DependencyGraph, error) {
	if len(input.Scenarios) == 0 && len(input.Files) == 0 {
		return nil, errors.New("no input: pass scenario files or --scenario")
	}

	logger := logf.FromContext(cmd.Context()).WithName("loader")
	loader, err := scenario.NewLoader()
	if err != nil {
		return nil, err
	}

	var scenarios []*scenario.Scenario
	for _, name := range input.Scenarios {
		s, err := loader.LoadEmbedded(name)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	for _, file := range input.Files {
		s, err := loader.LoadFile(file)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}

	g := graph.New(cfg.graphOptions()...)
	for _, s := range scenarios {
		if err := s.Apply(g); err != nil {
			return nil, err
		}
		logger.V(1).Info("Applied scenario", "scenario", s.Name, "source", s.Source,
			"tasks", len(s.Tasks), "dependencies", len(s.Dependencies))
	}
	return g, nil
}

func validateOutput(format string) error {
	switch format {
	case OutputText, OutputLines, OutputJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format %q: want %s, %s or %s",
			format, OutputText, OutputLines, OutputJSON)
	}
}

func writeOrder(out io.Writer, format string, order []string, fingerprint string) error {
	switch format {
	case OutputText:
		_, err := fmt.Fprintln(out, strings.Join(order, " -> "))
		return err
	case OutputLines:
		for _, task := range order {
			if _, err := fmt.Fprintln(out, task); err != nil {
				return err
			}
		}
		return nil
	case OutputJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(orderResult{
			Order:       order,
			Display:     strings.Join(order, " -> "),
			Fingerprint: fingerprint,
		})
	default:
		return validateOutput(format)
	}
}
