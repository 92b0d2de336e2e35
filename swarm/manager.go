package swarm

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rdszhao/cadkg/logging"
	"github.com/rdszhao/cadkg/model"
)

// SpecialistTool exposes one specialist to the manager's model as a callable
// tool. Payloads are bound at preparation time, so tools take no arguments;
// the model only decides which to call and when.
type SpecialistTool struct {
	// Name is the tool identifier shown to the model (snake_case).
	Name string
	// Description tells the model what the specialist analyzes.
	Description string
	// Run invokes the specialist against its pre-bound payload.
	Run func(ctx context.Context) (string, error)
}

// runState tracks the manager's position in its finite execution loop.
type runState int

const (
	stateDispatching runState = iota // asking the model for the next action
	stateAwaitingResults             // executing a batch of tool calls
	stateSynthesizing                // model produced final text, checking outcome
)

func (s runState) String() string {
	switch s {
	case stateDispatching:
		return "dispatching"
	case stateAwaitingResults:
		return "awaiting_results"
	case stateSynthesizing:
		return "synthesizing"
	default:
		return "unknown"
	}
}

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	// MaxTurns is the hard cap on model turns before the run is abandoned.
	MaxTurns int
	// Parallelism bounds concurrent tool executions within one batch.
	// Zero or negative means one goroutine per call in the batch.
	Parallelism int
	// Logger receives per-turn and per-tool events. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Manager is the hub orchestrator: it owns an allow-listed roster of
// specialist tools, delegates the decision of which to invoke to the
// completion client (model-directed tool selection), executes requested
// calls in parallel batches and returns the model's final synthesis text.
//
// The model's freedom is bounded three ways: requested tool names are
// validated against the registry before execution, the conversation is
// capped at a hard turn budget, and a run in which zero specialists
// succeeded is reported as a total failure rather than trusted synthesis.
type Manager struct {
	name         string
	instructions string
	client       model.Client
	tools        []SpecialistTool
	registry     map[string]SpecialistTool
	monitor      *Monitor
	maxTurns     int
	parallelism  int
	logger       logging.Logger
}

// NewManager constructs a hub orchestrator over the given tool roster.
func NewManager(
	name, instructions string,
	client model.Client,
	tools []SpecialistTool,
	monitor *Monitor,
	optFns ...func(o *ManagerOptions),
) *Manager {
	opts := ManagerOptions{
		MaxTurns: 10,
		Logger:   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	registry := make(map[string]SpecialistTool, len(tools))
	for _, t := range tools {
		registry[t.Name] = t
	}

	return &Manager{
		name:         name,
		instructions: instructions,
		client:       client,
		tools:        tools,
		registry:     registry,
		monitor:      monitor,
		maxTurns:     opts.MaxTurns,
		parallelism:  opts.Parallelism,
		logger:       opts.Logger,
	}
}

// Name returns the manager's identity.
func (m *Manager) Name() string { return m.name }

// toolResult pairs a tool call with its outcome, preserving batch order.
type toolResult struct {
	call model.ToolCall
	text string
	err  error
}

// Run drives the manager conversation: taskPrompt seeds the exchange, the
// model requests tool calls which are validated and executed, and the
// model's final non-tool response is returned as the synthesis text.
//
// Failure semantics: individual tool failures are fed back to the model as
// error messages so it can still assemble a partial synthesis; Run only
// fails outright when the turn budget is exhausted (*TurnBudgetError), the
// backend itself fails, or no specialist succeeded across the whole run
// (ErrNoSpecialistSucceeded).
func (m *Manager) Run(ctx context.Context, taskPrompt string) (string, error) {
	req := model.Request{
		Instructions: m.instructions,
		Messages:     []model.Message{model.UserMessage(taskPrompt)},
		Tools:        m.toolDefinitions(),
	}

	state := stateDispatching
	succeeded, failed := 0, 0

	for turn := 0; turn < m.maxTurns; turn++ {
		m.logger.Debug("manager.turn", "manager", m.name, "turn", turn, "state", state.String())

		resp, err := m.client.Complete(ctx, req)
		if err != nil {
			m.logger.Error("manager.turn.failed", "manager", m.name, "turn", turn, "error", err.Error())
			return "", fmt.Errorf("manager %s: %w", m.name, err)
		}

		if resp.HasToolCalls() {
			state = stateAwaitingResults
			req.Messages = append(req.Messages, model.AssistantMessage(resp.Text, resp.ToolCalls...))

			results := m.executeBatch(ctx, resp.ToolCalls)
			for _, r := range results {
				if r.err != nil {
					failed++
					req.Messages = append(req.Messages,
						model.ToolMessage(r.call.ID, r.call.Name, fmt.Sprintf("error: %v", r.err)))
					continue
				}
				succeeded++
				req.Messages = append(req.Messages, model.ToolMessage(r.call.ID, r.call.Name, r.text))
			}

			state = stateDispatching
			continue
		}

		// No tool calls: this is the synthesis turn.
		state = stateSynthesizing
		m.logger.Info("manager.synthesis",
			"manager", m.name,
			"turns", turn+1,
			"tools_succeeded", succeeded,
			"tools_failed", failed,
		)
		if succeeded == 0 {
			return "", ErrNoSpecialistSucceeded
		}
		return resp.Text, nil
	}

	return "", &TurnBudgetError{Manager: m.name, Turns: m.maxTurns}
}

// toolDefinitions renders the roster as no-argument tool declarations.
func (m *Manager) toolDefinitions() []model.ToolDefinition {
	defs := make([]model.ToolDefinition, len(m.tools))
	for i, t := range m.tools {
		defs[i] = model.ToolDefinition{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
		}
	}
	return defs
}

// executeBatch runs one batch of requested tool calls concurrently, bounded
// by the configured parallelism. Results are returned in request order so
// the rebuilt conversation stays deterministic. Unknown tool names are
// rejected before execution; panics inside a tool are recovered and
// converted to tool errors.
func (m *Manager) executeBatch(ctx context.Context, calls []model.ToolCall) []toolResult {
	n := len(calls)
	results := make([]toolResult, n)

	if n == 0 {
		return results
	}
	if n > 1 {
		m.monitor.RecordParallelBatch()
	}

	maxPar := m.parallelism
	if maxPar <= 0 || maxPar > n {
		maxPar = n
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxPar)
	batchStart := time.Now()

	for i := range calls {
		if ctx.Err() != nil {
			results[i] = toolResult{call: calls[i], err: ctx.Err()}
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, fc model.ToolCall) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx] = m.executeOne(ctx, fc)
		}(i, calls[i])
	}
	wg.Wait()

	m.logger.Debug("manager.batch.complete",
		"manager", m.name,
		"count", n,
		"parallelism", maxPar,
		"duration_ms", time.Since(batchStart).Milliseconds(),
	)
	return results
}

// executeOne validates the requested name against the registry and runs the
// tool with panic recovery.
func (m *Manager) executeOne(ctx context.Context, fc model.ToolCall) toolResult {
	impl, ok := m.registry[fc.Name]
	if !ok {
		m.logger.Warn("manager.tool.unknown", "manager", m.name, "tool", fc.Name)
		return toolResult{call: fc, err: &ToolError{
			Tool:    fc.Name,
			Message: "requested tool is not in the registry",
			Code:    "UNKNOWN_TOOL",
		}}
	}

	var (
		text string
		err  error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error("manager.tool.panic", "manager", m.name, "tool", fc.Name, "recover", fmt.Sprintf("%v", r))
				err = &ToolError{
					Tool:    fc.Name,
					Message: fmt.Sprintf("panic: %v\n%s", r, debug.Stack()),
					Code:    "PANIC",
				}
			}
		}()
		start := time.Now()
		text, err = impl.Run(ctx)
		m.logger.Info("manager.tool.executed",
			"manager", m.name,
			"tool", fc.Name,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err != nil,
		)
	}()

	if err != nil {
		if _, isTool := err.(*ToolError); !isTool {
			err = &ToolError{Tool: fc.Name, Message: err.Error(), Code: "EXECUTION_ERROR"}
		}
	}
	return toolResult{call: fc, text: text, err: err}
}
