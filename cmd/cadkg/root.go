package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootFlags struct {
	configPath string
	verbose    bool
}

var rootCmd = &cobra.Command{
	Use:           "cadkg",
	Short:         "Build knowledge graphs from CAD assemblies and documentation",
	Long:          "cadkg runs specialist model swarms that turn parsed CAD assembly trees and technical documents into knowledge graph entities and relationships.",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Missing .env is fine; configuration falls back to defaults.
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootFlags.configPath, "config", "c", "", "path to YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&rootFlags.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(enrichCmd)
	rootCmd.AddCommand(enrichDocCmd)
}
