package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rdszhao/cadkg"
	"github.com/rdszhao/cadkg/core"
	"github.com/rdszhao/cadkg/logging"
)

var enrichFlags struct {
	output  string
	workers int
}

var enrichCmd = &cobra.Command{
	Use:   "enrich <tree.json> [more.json ...]",
	Short: "Enrich parsed CAD assembly trees into a knowledge graph",
	Long: `Enrich runs the CAD specialist swarm over one or more parsed assembly
trees (JSON files holding a node tree or an array of trees) and writes the
accumulated knowledge graph as JSON.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}

		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(workerLimit(enrichFlags.workers))

		for _, path := range args {
			path := path
			g.Go(func() error {
				roots, err := loadTrees(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				draft, err := engine.EnrichAssembly(ctx, roots)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d entities, %d relationships (%v)\n",
					path, len(draft.Entities), len(draft.Relationships), draft.Metadata["mode"])
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		return writeGraph(cmd, engine)
	},
}

func init() {
	enrichCmd.Flags().StringVarP(&enrichFlags.output, "output", "o", "", "write graph JSON to file (default stdout)")
	enrichCmd.Flags().IntVar(&enrichFlags.workers, "workers", 2, "number of trees to enrich concurrently")
}

// workerLimit maps the --workers flag to an errgroup limit. Zero or negative
// means unbounded; errgroup would otherwise block every Go call at limit 0.
func workerLimit(n int) int {
	if n < 1 {
		return -1
	}
	return n
}

func newEngine() (*cadkg.Engine, error) {
	logCfg := logging.DefaultLoggerConfig()
	logCfg.Format = "text"
	logCfg.Output = os.Stderr
	if rootFlags.verbose {
		logCfg.Level = logging.LogLevelDebug
	}
	logger := logging.NewLogger(logCfg)

	return cadkg.New(func(o *cadkg.Options) {
		o.ConfigPath = rootFlags.configPath
		o.Logger = logger
	})
}

// loadTrees reads a JSON file holding either one tree or an array of trees.
func loadTrees(path string) ([]*core.DomainNode, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var roots []*core.DomainNode
	if err := json.Unmarshal(raw, &roots); err == nil {
		return roots, nil
	}

	var single core.DomainNode
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("parse tree: %w", err)
	}
	return []*core.DomainNode{&single}, nil
}

// writeGraph exports the engine's accumulated store as JSON.
func writeGraph(cmd *cobra.Command, engine *cadkg.Engine) error {
	export := map[string]any{
		"entities":      engine.Store().Entities(),
		"relationships": engine.Store().Relationships(),
	}
	raw, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return err
	}

	if enrichFlags.output == "" {
		fmt.Fprintln(cmd.OutOrStdout(), string(raw))
		return nil
	}
	return os.WriteFile(enrichFlags.output, raw, 0o644)
}
