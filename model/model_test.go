package model

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageHelpers(t *testing.T) {
	sys := SystemMessage("rules")
	assert.Equal(t, RoleSystem, sys.Role)

	call := ToolCall{ID: "1", Name: "analyze_geometry", Arguments: "{}"}
	asst := AssistantMessage("thinking", call)
	assert.Equal(t, RoleAssistant, asst.Role)
	require.Len(t, asst.ToolCalls, 1)

	toolMsg := ToolMessage("1", "analyze_geometry", "[]")
	assert.Equal(t, RoleTool, toolMsg.Role)
	assert.Equal(t, "1", toolMsg.ToolCallID)
	assert.Equal(t, "analyze_geometry", toolMsg.ToolName)
}

func TestResponse_HasToolCalls(t *testing.T) {
	assert.False(t, (&Response{Text: "done"}).HasToolCalls())
	assert.True(t, (&Response{ToolCalls: []ToolCall{{ID: "1"}}}).HasToolCalls())
}

func TestTransportError_Unwrap(t *testing.T) {
	inner := errors.New("dial tcp: refused")
	err := &TransportError{Provider: "openai", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "openai")
}

func TestMockClient_KeyedAndPrefixResponses(t *testing.T) {
	c := NewMockClient("m", "test")
	c.AddResponse("exact prompt", "exact answer")
	c.AddResponse("Classify:", "prefix answer")

	resp, err := c.Complete(context.Background(), Request{Messages: []Message{UserMessage("exact prompt")}})
	require.NoError(t, err)
	assert.Equal(t, "exact answer", resp.Text)

	resp, err = c.Complete(context.Background(), Request{Messages: []Message{UserMessage("Classify:\n[payload]")}})
	require.NoError(t, err)
	assert.Equal(t, "prefix answer", resp.Text)

	assert.Equal(t, 2, c.Calls())
}

func TestMockClient_ConcurrentCompletes(t *testing.T) {
	c := NewMockClient("m", "test")
	c.AddResponse("task", "done")

	const callers = 8
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := c.Complete(context.Background(), Request{Messages: []Message{UserMessage("task")}})
			assert.NoError(t, err)
			assert.Equal(t, "done", resp.Text)
		}()
	}
	wg.Wait()

	assert.Equal(t, callers, c.Calls())
}

func TestMockClient_ForcedFailure(t *testing.T) {
	c := NewMockClient("m", "test")
	boom := errors.New("boom")
	c.FailWith(boom)

	_, err := c.Complete(context.Background(), Request{Messages: []Message{UserMessage("x")}})
	assert.ErrorIs(t, err, boom)
}
