package swarm

import (
	"github.com/rdszhao/cadkg/core"
)

// BuildFallbackDraft converts a model tree directly into a graph draft
// without any model involvement: one entity per node, one CONTAINS
// relationship per parent-child edge. It is the degraded-mode output used
// when the orchestrated run fails or its synthesis cannot be parsed, and
// is always structurally valid.
func BuildFallbackDraft(roots []*core.DomainNode) *core.GraphDraft {
	draft := core.NewGraphDraft()

	levels := map[string]int{}
	for _, root := range roots {
		annotateLevels(root, 0, levels)
	}

	core.WalkForest(roots, func(node, parent *core.DomainNode) bool {
		props := map[string]any{
			"level": levels[node.ID],
		}
		if st := node.AttrString("shape_type"); st != "" {
			props["shape_type"] = st
		}
		if node.Geometry != nil {
			props["vertex_count"] = node.Geometry.VertexCount
		}
		draft.Entities = append(draft.Entities, core.Entity{
			ID:         node.ID,
			Kind:       entityKind(node),
			Name:       node.Name,
			Properties: props,
		})

		if parent != nil {
			draft.Relationships = append(draft.Relationships, core.Relationship{
				SourceID: parent.ID,
				Relation: core.RelationContains,
				TargetID: node.ID,
			})
		}
		return true
	})

	draft.SetMetadata("analysis_summary", "Direct mapping (fallback mode)")
	draft.SetMetadata("total_entities", len(draft.Entities))
	draft.SetMetadata("total_relationships", len(draft.Relationships))
	return draft
}

func annotateLevels(node *core.DomainNode, depth int, levels map[string]int) {
	levels[node.ID] = depth
	for _, child := range node.Children {
		annotateLevels(child, depth+1, levels)
	}
}

func entityKind(node *core.DomainNode) string {
	switch node.Kind {
	case core.KindAssembly:
		return "Assembly"
	case core.KindPart:
		return "Part"
	case core.KindSection:
		return "Section"
	case core.KindCodeElement:
		return "CodeElement"
	default:
		return "Element"
	}
}
