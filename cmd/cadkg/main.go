// cadkg enriches CAD assembly trees and technical documentation into
// knowledge graph drafts using specialist model swarms.
//
// Usage:
//
//	cadkg enrich assembly.json [more.json ...] -o graph.json
//	cadkg enrich-doc --graph graph.json manual.txt -o enriched.json
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
