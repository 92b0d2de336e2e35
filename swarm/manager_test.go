package swarm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdszhao/cadkg/model"
)

// scriptedClient plays back one response per turn.
type scriptedClient struct {
	turns    []func(req model.Request) (*model.Response, error)
	requests []model.Request
}

func (s *scriptedClient) Complete(_ context.Context, req model.Request) (*model.Response, error) {
	s.requests = append(s.requests, req)
	idx := len(s.requests) - 1
	if idx >= len(s.turns) {
		return nil, fmt.Errorf("unexpected turn %d", idx)
	}
	return s.turns[idx](req)
}

func (s *scriptedClient) Info() model.Info {
	return model.Info{Name: "scripted", Provider: "test", SupportsTools: true}
}

func callAll(names ...string) func(model.Request) (*model.Response, error) {
	return func(model.Request) (*model.Response, error) {
		calls := make([]model.ToolCall, len(names))
		for i, n := range names {
			calls[i] = model.ToolCall{ID: fmt.Sprintf("call_%d", i), Name: n, Arguments: "{}"}
		}
		return &model.Response{ToolCalls: calls, FinishReason: "tool_calls"}, nil
	}
}

func synthesize(text string) func(model.Request) (*model.Response, error) {
	return func(model.Request) (*model.Response, error) {
		return &model.Response{Text: text, FinishReason: "stop"}, nil
	}
}

func staticTool(name, out string, err error) SpecialistTool {
	return SpecialistTool{
		Name:        name,
		Description: name,
		Run: func(context.Context) (string, error) {
			return out, err
		},
	}
}

func TestManager_PartialFailureStillSynthesizes(t *testing.T) {
	tools := []SpecialistTool{
		staticTool("a", `[{"id": "1"}]`, nil),
		staticTool("b", `[{"id": "2"}]`, nil),
		staticTool("c", `[{"id": "3"}]`, nil),
		staticTool("d", "", errors.New("model refused")),
		staticTool("e", "", errors.New("timeout")),
	}

	client := &scriptedClient{turns: []func(model.Request) (*model.Response, error){
		callAll("a", "b", "c", "d", "e"),
		synthesize(`{"entities": []}`),
	}}

	monitor := NewMonitor()
	m := NewManager("mgr", "orchestrate", client, tools, monitor)

	out, err := m.Run(context.Background(), "go")
	require.NoError(t, err)
	assert.Equal(t, `{"entities": []}`, out)

	// The synthesis request carries one tool message per call, in call
	// order, with failures rendered as error text.
	final := client.requests[1]
	var toolMsgs []model.Message
	for _, msg := range final.Messages {
		if msg.Role == model.RoleTool {
			toolMsgs = append(toolMsgs, msg)
		}
	}
	require.Len(t, toolMsgs, 5)
	assert.Equal(t, "a", toolMsgs[0].ToolName)
	assert.Equal(t, "e", toolMsgs[4].ToolName)
	assert.Contains(t, toolMsgs[3].Text, "error:")
	assert.Contains(t, toolMsgs[4].Text, "timeout")

	// One multi-call batch.
	assert.Equal(t, 1, monitor.Summary().ParallelBatches)
}

func TestManager_ZeroSuccessesIsTotalFailure(t *testing.T) {
	tools := []SpecialistTool{
		staticTool("a", "", errors.New("down")),
		staticTool("b", "", errors.New("down")),
	}
	client := &scriptedClient{turns: []func(model.Request) (*model.Response, error){
		callAll("a", "b"),
		synthesize(`{"entities": []}`),
	}}

	m := NewManager("mgr", "orchestrate", client, tools, NewMonitor())

	_, err := m.Run(context.Background(), "go")
	assert.ErrorIs(t, err, ErrNoSpecialistSucceeded)
}

func TestManager_SynthesisWithoutAnyToolCallFails(t *testing.T) {
	client := &scriptedClient{turns: []func(model.Request) (*model.Response, error){
		synthesize(`{"entities": []}`),
	}}

	m := NewManager("mgr", "orchestrate", client, nil, NewMonitor())

	_, err := m.Run(context.Background(), "go")
	assert.ErrorIs(t, err, ErrNoSpecialistSucceeded)
}

func TestManager_UnknownToolRejectedWithoutExecution(t *testing.T) {
	executed := false
	tools := []SpecialistTool{
		{
			Name:        "safe",
			Description: "safe",
			Run: func(context.Context) (string, error) {
				executed = true
				return "ok", nil
			},
		},
	}
	client := &scriptedClient{turns: []func(model.Request) (*model.Response, error){
		callAll("delete_everything"),
		synthesize("done"),
	}}

	m := NewManager("mgr", "orchestrate", client, tools, NewMonitor())

	_, err := m.Run(context.Background(), "go")
	assert.ErrorIs(t, err, ErrNoSpecialistSucceeded)
	assert.False(t, executed)

	// The rejection is reported back to the model as a tool error.
	final := client.requests[1]
	last := final.Messages[len(final.Messages)-1]
	assert.Equal(t, model.RoleTool, last.Role)
	assert.Contains(t, last.Text, "UNKNOWN_TOOL")
}

func TestManager_TurnBudgetExhaustion(t *testing.T) {
	tools := []SpecialistTool{staticTool("a", "ok", nil)}

	loops := make([]func(model.Request) (*model.Response, error), 3)
	for i := range loops {
		loops[i] = callAll("a")
	}
	client := &scriptedClient{turns: loops}

	m := NewManager("mgr", "orchestrate", client, tools, NewMonitor(),
		func(o *ManagerOptions) { o.MaxTurns = 3 })

	_, err := m.Run(context.Background(), "go")
	require.Error(t, err)

	var budgetErr *TurnBudgetError
	require.True(t, errors.As(err, &budgetErr))
	assert.Equal(t, 3, budgetErr.Turns)
	assert.Equal(t, "mgr", budgetErr.Manager)
}

func TestManager_ToolPanicIsRecovered(t *testing.T) {
	tools := []SpecialistTool{
		staticTool("good", "fine", nil),
		{
			Name:        "bad",
			Description: "bad",
			Run: func(context.Context) (string, error) {
				panic("nil map write")
			},
		},
	}
	client := &scriptedClient{turns: []func(model.Request) (*model.Response, error){
		callAll("good", "bad"),
		synthesize("partial result"),
	}}

	m := NewManager("mgr", "orchestrate", client, tools, NewMonitor())

	out, err := m.Run(context.Background(), "go")
	require.NoError(t, err)
	assert.Equal(t, "partial result", out)

	final := client.requests[1]
	var badMsg string
	for _, msg := range final.Messages {
		if msg.Role == model.RoleTool && msg.ToolName == "bad" {
			badMsg = msg.Text
		}
	}
	assert.True(t, strings.Contains(badMsg, "PANIC") || strings.Contains(badMsg, "panic"))
}

func TestManager_BackendErrorPropagates(t *testing.T) {
	client := &scriptedClient{turns: []func(model.Request) (*model.Response, error){
		func(model.Request) (*model.Response, error) {
			return nil, &model.TransportError{Provider: "test", Err: errors.New("unreachable")}
		},
	}}

	m := NewManager("mgr", "orchestrate", client, nil, NewMonitor())

	_, err := m.Run(context.Background(), "go")
	require.Error(t, err)

	var te *model.TransportError
	assert.True(t, errors.As(err, &te))
}
