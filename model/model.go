package model

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Conversation roles recognized by adapters.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall represents a function call request surfaced by a completion
// backend. Unified across vendors so downstream logic does not need
// per-provider branching.
type ToolCall struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Arguments string `json:"arguments,omitempty"` // JSON string of arguments
}

// ToolDefinition declaratively exposes a callable function to the model.
// Parameters is a JSON Schema object (draft agnostic, minimal subset expected).
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Message is one role-tagged turn of a conversation. Assistant messages may
// carry tool calls; tool messages carry the response to a prior call,
// correlated by ToolCallID.
type Message struct {
	Role       string     `json:"role"`
	Text       string     `json:"text,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolName   string     `json:"tool_name,omitempty"`
}

// SystemMessage builds a system-role message.
func SystemMessage(text string) Message { return Message{Role: RoleSystem, Text: text} }

// UserMessage builds a user-role message.
func UserMessage(text string) Message { return Message{Role: RoleUser, Text: text} }

// AssistantMessage builds an assistant-role message.
func AssistantMessage(text string, calls ...ToolCall) Message {
	return Message{Role: RoleAssistant, Text: text, ToolCalls: calls}
}

// ToolMessage builds a tool-role message answering the identified tool call.
func ToolMessage(callID, name, text string) Message {
	return Message{Role: RoleTool, Text: text, ToolCallID: callID, ToolName: name}
}

// Request captures the normalized completion input produced by the swarm engine.
type Request struct {
	Instructions string           `json:"instructions"` // System instructions for the model
	Messages     []Message        `json:"messages"`
	Tools        []ToolDefinition `json:"tools,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the completed model output for one request. Text and ToolCalls
// may both be populated; a response with FinishReason "tool_calls" requires
// the caller to execute the calls and continue the conversation.
type Response struct {
	Text         string      `json:"text,omitempty"`
	ToolCalls    []ToolCall  `json:"tool_calls,omitempty"`
	FinishReason string      `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// HasToolCalls reports whether the response requests tool execution.
func (r *Response) HasToolCalls() bool { return len(r.ToolCalls) > 0 }

// Info contains metadata about a client implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "local", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Client is the minimal interface the swarm engine requires of a completion
// backend. Complete blocks until the model produces a full response or the
// context is cancelled. Implementations wrap transport-level failures
// (unreachable endpoint, timeouts) in *TransportError so callers can apply a
// bounded retry policy.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the backend implementation.
	Info() Info
}

// TransportError wraps a backend transport failure (timeout, connection
// refused, HTTP-level error). Extraction of structured data from a model's
// text is a separate concern and never produces this type.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport error: %v", e.Provider, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *TransportError) Unwrap() error { return e.Err }

// ClientFunc adapts a plain function to the Client interface. Useful for
// scripting multi-turn behavior in tests.
type ClientFunc func(ctx context.Context, req Request) (*Response, error)

// Complete implements Client.
func (f ClientFunc) Complete(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

// Info implements Client.
func (f ClientFunc) Info() Info {
	return Info{Name: "func", Provider: "test", SupportsTools: true}
}

// MockClient is a lightweight in-memory Client useful for tests & examples.
// Responses are keyed by the text of the last user message; unknown prompts
// yield a generic echo. A forced error, when set, takes precedence.
// Safe for concurrent use: the manager fans tool calls out in parallel, so
// one MockClient is routinely shared across goroutines.
type MockClient struct {
	info Info

	mu        sync.Mutex
	responses map[string]string
	err       error
	calls     int
}

// NewMockClient constructs a MockClient with basic tool support enabled.
func NewMockClient(name, provider string) *MockClient {
	return &MockClient{
		info: Info{
			Name:          name,
			Provider:      provider,
			SupportsTools: true,
		},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockClient) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// FailWith makes every subsequent Complete call return err.
func (m *MockClient) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns the number of Complete invocations observed.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Complete implements Client.
func (m *MockClient) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	var prompt string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == RoleUser {
			prompt = req.Messages[i].Text
			break
		}
	}
	text, ok := m.responses[prompt]
	if !ok {
		// Fall back to prefix matching so callers can register responses for
		// prompts that embed large payloads.
		for k, v := range m.responses {
			if k != "" && strings.HasPrefix(prompt, k) {
				text, ok = v, true
				break
			}
		}
	}
	if !ok {
		text = fmt.Sprintf("Mock response to: %s", prompt)
	}
	return &Response{Text: text, FinishReason: "stop"}, nil
}

// Info implements Client.
func (m *MockClient) Info() Info { return m.info }
