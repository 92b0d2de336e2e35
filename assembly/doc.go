// Package assembly enriches CAD assembly trees into knowledge graph drafts
// using a hub-and-spoke specialist swarm. A Coordinator projects the tree
// into bounded per-specialist payloads, hands an orchestrating manager a
// roster of five analysis specialists and synthesizes their outputs into a
// GraphDraft, falling back to a deterministic direct mapping whenever the
// model-backed path fails.
package assembly
