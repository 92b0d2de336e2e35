package swarm

import (
	"errors"
	"fmt"
)

// ErrNoSpecialistSucceeded reports a total swarm failure: the manager
// finished its run without a single successful specialist invocation.
// Coordinators route this to the fallback mapper.
var ErrNoSpecialistSucceeded = errors.New("no specialist invocation succeeded")

// SpecialistError wraps a failure of one specialist invocation (transport
// failure after retries, cancelled context, backend refusal).
type SpecialistError struct {
	Specialist string
	Err        error
}

func (e *SpecialistError) Error() string {
	return fmt.Sprintf("specialist %s: %v", e.Specialist, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *SpecialistError) Unwrap() error { return e.Err }

// ToolError reports a failure in the manager's tool dispatch layer. Codes:
//
//	UNKNOWN_TOOL    -> requested name is not in the allow-listed registry
//	EXECUTION_ERROR -> the tool ran and returned an error
//	PANIC           -> the tool panicked (recovered)
type ToolError struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
}

// TurnBudgetError reports that a manager run was abandoned after exhausting
// its hard cap on conversation turns without producing a final synthesis.
type TurnBudgetError struct {
	Manager string
	Turns   int
}

func (e *TurnBudgetError) Error() string {
	return fmt.Sprintf("manager %s abandoned after %d turns without synthesis", e.Manager, e.Turns)
}
