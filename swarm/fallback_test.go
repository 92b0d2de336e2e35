package swarm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdszhao/cadkg/core"
)

func fallbackTree() *core.DomainNode {
	return &core.DomainNode{
		ID:   "asm_1",
		Name: "Main Assembly",
		Kind: core.KindAssembly,
		Children: []*core.DomainNode{
			{
				ID:       "part_1",
				Name:     "Washer",
				Kind:     core.KindPart,
				Attrs:    map[string]any{"shape_type": "solid"},
				Geometry: &core.GeometryInfo{VertexCount: 72, EdgeCount: 36, FaceCount: 9},
			},
			{
				ID:   "sub_1",
				Name: "Sub Assembly",
				Kind: core.KindAssembly,
				Children: []*core.DomainNode{
					{ID: "part_2", Name: "Bolt", Kind: core.KindPart},
				},
			},
		},
	}
}

func TestBuildFallbackDraft_CountsMatchTree(t *testing.T) {
	roots := []*core.DomainNode{fallbackTree()}

	draft := BuildFallbackDraft(roots)
	require.NoError(t, draft.Validate())

	assert.Len(t, draft.Entities, core.CountNodes(roots))
	assert.Len(t, draft.Relationships, core.CountEdges(roots))
}

func TestBuildFallbackDraft_EntityShape(t *testing.T) {
	draft := BuildFallbackDraft([]*core.DomainNode{fallbackTree()})

	byID := map[string]core.Entity{}
	for _, e := range draft.Entities {
		byID[e.ID] = e
	}

	root := byID["asm_1"]
	assert.Equal(t, "Assembly", root.Kind)
	assert.Equal(t, 0, root.Properties["level"])

	washer := byID["part_1"]
	assert.Equal(t, "Part", washer.Kind)
	assert.Equal(t, 1, washer.Properties["level"])
	assert.Equal(t, "solid", washer.Properties["shape_type"])
	assert.Equal(t, 72, washer.Properties["vertex_count"])

	bolt := byID["part_2"]
	assert.Equal(t, 2, bolt.Properties["level"])
	_, hasGeometry := bolt.Properties["vertex_count"]
	assert.False(t, hasGeometry)

	for _, r := range draft.Relationships {
		assert.Equal(t, core.RelationContains, r.Relation)
	}
	assert.Equal(t, "Direct mapping (fallback mode)", draft.Metadata["analysis_summary"])
	assert.Equal(t, 4, draft.Metadata["total_entities"])
	assert.Equal(t, 3, draft.Metadata["total_relationships"])
}

func TestBuildFallbackDraft_EmptyForest(t *testing.T) {
	draft := BuildFallbackDraft(nil)
	require.NoError(t, draft.Validate())
	assert.Empty(t, draft.Entities)
	assert.Empty(t, draft.Relationships)
}
