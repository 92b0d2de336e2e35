package document

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdszhao/cadkg/config"
	"github.com/rdszhao/cadkg/core"
	"github.com/rdszhao/cadkg/model"
)

func testEntities() []core.Entity {
	return []core.Entity{
		{ID: "part_1", Kind: "Part", Name: "Reaction Wheel", Properties: map[string]any{"level": 1}},
		{ID: "part_2", Kind: "Part", Name: "Star Tracker"},
	}
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.TransportRetries = 0
	return cfg
}

func failingClient() model.Client {
	return model.ClientFunc(func(ctx context.Context, req model.Request) (*model.Response, error) {
		return nil, &model.TransportError{Provider: "test", Err: errors.New("unreachable")}
	})
}

// scriptedManager answers each manager run with one call-everything turn
// followed by the next synthesis in sequence.
func scriptedManager(syntheses ...string) model.Client {
	run := 0
	return model.ClientFunc(func(ctx context.Context, req model.Request) (*model.Response, error) {
		if len(req.Messages) == 1 {
			calls := make([]model.ToolCall, len(req.Tools))
			for i, tool := range req.Tools {
				calls[i] = model.ToolCall{ID: fmt.Sprintf("call_%d", i), Name: tool.Name, Arguments: "{}"}
			}
			return &model.Response{ToolCalls: calls, FinishReason: "tool_calls"}, nil
		}
		if run >= len(syntheses) {
			return nil, fmt.Errorf("unexpected run %d", run)
		}
		text := syntheses[run]
		run++
		return &model.Response{Text: text, FinishReason: "stop"}, nil
	})
}

func TestProcess_FallbackPassesEntitiesThrough(t *testing.T) {
	entities := testEntities()
	c := NewCoordinator(failingClient(), failingClient(), testConfig())

	draft := c.Process(context.Background(), "The reaction wheel provides attitude control.", entities)
	require.NoError(t, draft.Validate())

	assert.Equal(t, "fallback", draft.Metadata["mode"])
	require.Len(t, draft.Entities, 2)
	assert.Equal(t, "Reaction Wheel", draft.Entities[0].Name)
	assert.Empty(t, draft.Relationships)
	assert.Contains(t, draft.Metadata, "performance")
}

func TestProcess_AnalysisOnlyWhenEnrichmentFails(t *testing.T) {
	entities := testEntities()

	specialist := model.NewMockClient("specialist", "test")
	// First manager run succeeds, second one never synthesizes valid JSON.
	manager := scriptedManager(
		`{"document_analysis": {"components": {"components": [{"name": "Reaction Wheel"}]}}}`,
		"no structured output here",
	)

	c := NewCoordinator(specialist, manager, testConfig())

	draft := c.Process(context.Background(), "doc text", entities)
	require.NoError(t, draft.Validate())

	assert.Equal(t, "analysis_only", draft.Metadata["mode"])
	assert.Len(t, draft.Entities, 2)
	assert.Contains(t, draft.Metadata, "document_analysis")
}

func TestProcess_FullEnrichment(t *testing.T) {
	entities := testEntities()

	specialist := model.NewMockClient("specialist", "test")
	manager := scriptedManager(
		`{"document_analysis": {"components": {"components": []}, "specifications": {}, "requirements": {}}}`,
		`{
  "graph_enrichment": {
    "entity_matches": {"matches": [{"doc_component": "RW-1", "cad_part_id": "part_1", "confidence": "high"}]},
    "semantic_properties": {"enrichments": [
      {"entity_id": "part_1", "properties": {"function": "attitude control", "criticality": "critical"}}
    ]},
    "new_relationships": {"relationships": [
      {"source_id": "part_1", "relation_type": "INTERFACES_WITH", "target_id": "part_2", "properties": {"interface_type": "data"}}
    ]},
    "context": {"augmentations": [
      {"entity_id": "part_2", "context": {"documentation_refs": ["page 4"]}}
    ]}
  }
}`,
	)

	c := NewCoordinator(specialist, manager, testConfig())

	draft := c.Process(context.Background(), "doc text", entities)
	require.NoError(t, draft.Validate())
	assert.Equal(t, "swarm", draft.Metadata["mode"])

	byID := map[string]core.Entity{}
	for _, e := range draft.Entities {
		byID[e.ID] = e
	}
	assert.Equal(t, "attitude control", byID["part_1"].Properties["function"])
	// Pre-existing properties survive the merge.
	assert.Equal(t, 1, byID["part_1"].Properties["level"])
	assert.Contains(t, byID["part_2"].Properties, "context")

	require.Len(t, draft.Relationships, 1)
	assert.Equal(t, "INTERFACES_WITH", draft.Relationships[0].Relation)
	assert.Contains(t, draft.Metadata, "entity_matches")
}

func TestBuildDraft_NilEnrichment(t *testing.T) {
	entities := testEntities()

	draft := buildDraft(entities, nil)
	require.Len(t, draft.Entities, 2)
	assert.Empty(t, draft.Relationships)

	// The draft owns copies: mutating it must not touch the input.
	draft.Entities[0].Properties["level"] = 99
	assert.Equal(t, 1, entities[0].Properties["level"])
}

func TestBuildDraft_SkipsMalformedItems(t *testing.T) {
	enrichment := map[string]any{
		"graph_enrichment": map[string]any{
			"new_relationships": map[string]any{
				"relationships": []any{
					"not an object",
					map[string]any{"source_id": "a", "relation_type": "", "target_id": "b"},
					map[string]any{"source_id": "part_1", "relation_type": "DEPENDS_ON", "target_id": "part_2"},
				},
			},
			"semantic_properties": map[string]any{
				"enrichments": []any{
					map[string]any{"entity_id": "missing", "properties": map[string]any{"x": 1}},
				},
			},
		},
	}

	draft := buildDraft(testEntities(), enrichment)
	require.Len(t, draft.Relationships, 1)
	assert.Equal(t, "DEPENDS_ON", draft.Relationships[0].Relation)
	// Enrichment for an unknown entity is dropped, not invented.
	assert.Len(t, draft.Entities, 2)
}

func TestClampText(t *testing.T) {
	assert.Equal(t, "abc", clampText("abc", 8000))
	assert.Equal(t, "ab", clampText("abcdef", 2))
	assert.Equal(t, "hél", clampText("héllo", 3))
	assert.Equal(t, "abc", clampText("abc", 0))
}
