package core

import "fmt"

// Well-known relation kinds emitted by the enrichment swarms. Specialists may
// surface additional kinds; these are the ones the engine itself produces.
const (
	RelationContains   = "CONTAINS"
	RelationImplements = "IMPLEMENTS"
	RelationSatisfies  = "SATISFIES"
	RelationInterfaces = "INTERFACES_WITH"
	RelationDependsOn  = "DEPENDS_ON"
)

// Entity is one node of the enriched knowledge graph draft.
type Entity struct {
	ID         string         `json:"id"`
	Kind       string         `json:"type"`
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Relationship is one directed edge of the enriched knowledge graph draft.
type Relationship struct {
	SourceID   string         `json:"source_id"`
	Relation   string         `json:"relation"`
	TargetID   string         `json:"target_id"`
	Properties map[string]any `json:"properties,omitempty"`
}

// GraphDraft is the synthesized enrichment result handed to the graph-write
// layer. Metadata always carries the run's performance summary plus a marker
// for which path (swarm or fallback) produced the draft; the two paths are
// indistinguishable in shape.
type GraphDraft struct {
	Entities      []Entity       `json:"entities"`
	Relationships []Relationship `json:"relationships"`
	Metadata      map[string]any `json:"metadata"`
}

// NewGraphDraft returns an empty draft with allocated metadata.
func NewGraphDraft() *GraphDraft {
	return &GraphDraft{Metadata: map[string]any{}}
}

// SetMetadata records a metadata value, allocating the map when needed.
func (d *GraphDraft) SetMetadata(key string, value any) {
	if d.Metadata == nil {
		d.Metadata = map[string]any{}
	}
	d.Metadata[key] = value
}

// Validate checks the structural contract required of every emitted draft:
// entity ids are present and unique, and every relationship carries a source,
// relation kind and target. Relationship endpoints are not required to
// resolve within the draft because enrichment may reference entities already
// persisted by an earlier run.
func (d *GraphDraft) Validate() error {
	seen := make(map[string]struct{}, len(d.Entities))
	for i, e := range d.Entities {
		if e.ID == "" {
			return fmt.Errorf("entity %d: empty id", i)
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("entity %d: duplicate id %q", i, e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	for i, r := range d.Relationships {
		if r.SourceID == "" || r.TargetID == "" || r.Relation == "" {
			return fmt.Errorf("relationship %d: missing source, relation or target", i)
		}
	}
	return nil
}
