package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rdszhao/cadkg"
	"github.com/rdszhao/cadkg/core"
)

var enrichDocFlags struct {
	graphPath string
	output    string
}

var enrichDocCmd = &cobra.Command{
	Use:   "enrich-doc <document.txt> [more.txt ...]",
	Short: "Enrich a knowledge graph from technical documentation",
	Long: `Enrich-doc runs the documentation specialist swarm over one or more text
files. With --graph, the referenced graph export seeds the entities the
document analysis is matched against; without it, documents are analyzed
standalone and their findings recorded in draft metadata.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}

		if enrichDocFlags.graphPath != "" {
			if err := seedGraph(engine, enrichDocFlags.graphPath); err != nil {
				return fmt.Errorf("%s: %w", enrichDocFlags.graphPath, err)
			}
		}

		for _, path := range args {
			raw, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			draft, err := engine.EnrichDocument(cmd.Context(), string(raw))
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d entities, %d relationships (%v)\n",
				path, len(draft.Entities), len(draft.Relationships), draft.Metadata["mode"])
		}

		export := map[string]any{
			"entities":      engine.Store().Entities(),
			"relationships": engine.Store().Relationships(),
		}
		raw, err := json.MarshalIndent(export, "", "  ")
		if err != nil {
			return err
		}
		if enrichDocFlags.output == "" {
			fmt.Fprintln(cmd.OutOrStdout(), string(raw))
			return nil
		}
		return os.WriteFile(enrichDocFlags.output, raw, 0o644)
	},
}

func init() {
	enrichDocCmd.Flags().StringVar(&enrichDocFlags.graphPath, "graph", "", "graph JSON export to seed entities from")
	enrichDocCmd.Flags().StringVarP(&enrichDocFlags.output, "output", "o", "", "write graph JSON to file (default stdout)")
}

// seedGraph loads a previously exported graph and applies it to the store.
func seedGraph(engine *cadkg.Engine, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var export struct {
		Entities      []core.Entity       `json:"entities"`
		Relationships []core.Relationship `json:"relationships"`
	}
	if err := json.Unmarshal(raw, &export); err != nil {
		return fmt.Errorf("parse graph export: %w", err)
	}
	seed := core.NewGraphDraft()
	seed.Entities = export.Entities
	seed.Relationships = export.Relationships
	return engine.Store().Apply(seed)
}
