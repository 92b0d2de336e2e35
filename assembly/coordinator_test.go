package assembly

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
	"github.com/rdszhao/cadkg/swarm"
)

func failingClient() model.Client {
	return model.ClientFunc(func(ctx context.Context, req model.Request) (*model.Response, error) {
		return nil, &model.TransportError{Provider: "test", Err: errors.New("unreachable")}
	})
}

// orchestratingClient calls every offered tool on the first turn and then
// emits the given synthesis text.
func orchestratingClient(synthesis string) model.Client {
	turn := 0
	return model.ClientFunc(func(ctx context.Context, req model.Request) (*model.Response, error) {
		turn++
		if turn == 1 {
			calls := make([]model.ToolCall, len(req.Tools))
			for i, tool := range req.Tools {
				calls[i] = model.ToolCall{ID: fmt.Sprintf("call_%d", i), Name: tool.Name, Arguments: "{}"}
			}
			return &model.Response{ToolCalls: calls, FinishReason: "tool_calls"}, nil
		}
		return &model.Response{Text: synthesis, FinishReason: "stop"}, nil
	})
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.TransportRetries = 0
	return cfg
}

func TestCoordinator_FallbackOnTotalBackendFailure(t *testing.T) {
	roots := []*core.DomainNode{testTree()}
	c := NewCoordinator(failingClient(), failingClient(), testConfig())

	draft := c.Process(context.Background(), roots)
	require.NotNil(t, draft)
	require.NoError(t, draft.Validate())

	assert.Equal(t, "fallback", draft.Metadata["mode"])
	assert.Len(t, draft.Entities, core.CountNodes(roots))
	assert.Len(t, draft.Relationships, core.CountEdges(roots))

	perf, ok := draft.Metadata["performance"].(swarm.Summary)
	require.True(t, ok)
	assert.GreaterOrEqual(t, perf.TotalSeconds, 0.0)
	assert.NotEmpty(t, draft.Metadata["run_id"])
}

func TestCoordinator_SwarmPathProducesSynthesizedDraft(t *testing.T) {
	roots := []*core.DomainNode{testTree()}

	specialist := model.NewMockClient("specialist", "test")
	manager := orchestratingClient("```json\n" + `{
  "entities": [
    {"id": "asm_1", "type": "Assembly", "name": "Robot Arm", "properties": {"complexity": "moderate"}}
  ],
  "relationships": [
    {"source_id": "asm_1", "relation": "CONTAINS", "target_id": "part_1", "properties": {}}
  ],
  "metadata": {"analysis_summary": "ok"}
}` + "\n```")

	c := NewCoordinator(specialist, manager, testConfig())

	draft := c.Process(context.Background(), roots)
	require.NoError(t, draft.Validate())

	assert.Equal(t, "swarm", draft.Metadata["mode"])
	require.Len(t, draft.Entities, 1)
	assert.Equal(t, "Robot Arm", draft.Entities[0].Name)
	require.Len(t, draft.Relationships, 1)
	assert.Equal(t, core.RelationContains, draft.Relationships[0].Relation)

	// Synthesis metadata survives alongside the run metadata.
	assert.Equal(t, "ok", draft.Metadata["analysis_summary"])
	assert.Contains(t, draft.Metadata, "performance")
}

func TestCoordinator_UnparseableSynthesisFallsBack(t *testing.T) {
	roots := []*core.DomainNode{testTree()}

	specialist := model.NewMockClient("specialist", "test")
	manager := orchestratingClient("I could not produce the graph, sorry.")

	c := NewCoordinator(specialist, manager, testConfig())

	draft := c.Process(context.Background(), roots)
	require.NoError(t, draft.Validate())
	assert.Equal(t, "fallback", draft.Metadata["mode"])
	assert.Len(t, draft.Entities, core.CountNodes(roots))
}

func TestCoordinator_InvalidSynthesizedDraftFallsBack(t *testing.T) {
	roots := []*core.DomainNode{testTree()}

	specialist := model.NewMockClient("specialist", "test")
	// Duplicate entity ids fail draft validation.
	manager := orchestratingClient(`{"entities": [{"id": "x", "type": "Part", "name": "a"}, {"id": "x", "type": "Part", "name": "b"}], "relationships": []}`)

	c := NewCoordinator(specialist, manager, testConfig())

	draft := c.Process(context.Background(), roots)
	require.NoError(t, draft.Validate())
	assert.Equal(t, "fallback", draft.Metadata["mode"])
}

func TestCoordinator_EmptyForestSkipsSpecialistCalls(t *testing.T) {
	specialist := model.NewMockClient("specialist", "test")
	manager := orchestratingClient(`{"entities": [], "relationships": []}`)

	c := NewCoordinator(specialist, manager, testConfig())

	draft := c.Process(context.Background(), nil)
	require.NoError(t, draft.Validate())

	// Every tool short-circuits on its empty payload: the specialist tier
	// is never consulted, yet synthesis still proceeds.
	assert.Equal(t, "swarm", draft.Metadata["mode"])
	assert.Equal(t, 0, specialist.Calls())
}

func TestCoordinator_CachePersistsAcrossRuns(t *testing.T) {
	roots := []*core.DomainNode{testTree()}

	specialist := model.NewMockClient("specialist", "test")
	synthesis := `{"entities": [{"id": "asm_1", "type": "Assembly", "name": "Robot Arm"}], "relationships": []}`

	c := NewCoordinator(specialist, model.ClientFunc(func(ctx context.Context, req model.Request) (*model.Response, error) {
		// Fresh two-turn script per run.
		if len(req.Messages) == 1 {
			calls := make([]model.ToolCall, len(req.Tools))
			for i, tool := range req.Tools {
				calls[i] = model.ToolCall{ID: fmt.Sprintf("call_%d", i), Name: tool.Name, Arguments: "{}"}
			}
			return &model.Response{ToolCalls: calls, FinishReason: "tool_calls"}, nil
		}
		return &model.Response{Text: synthesis, FinishReason: "stop"}, nil
	}), testConfig())

	first := c.Process(context.Background(), roots)
	require.Equal(t, "swarm", first.Metadata["mode"])
	callsAfterFirst := specialist.Calls()
	require.Greater(t, callsAfterFirst, 0)

	second := c.Process(context.Background(), roots)
	require.Equal(t, "swarm", second.Metadata["mode"])

	// Identical payloads are served from cache on the repeat run.
	assert.Equal(t, callsAfterFirst, specialist.Calls())
	perf, ok := second.Metadata["performance"].(swarm.Summary)
	require.True(t, ok)
	assert.Greater(t, perf.Cache.Hits, 0)
}
