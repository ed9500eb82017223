// Package pipeline implements the Execution Pipeline: the top-level
// orchestrator that carries a single tool call through the seven fixed
// stages (Discovery, Permission & Validation, Pre-Execution Hooks,
// Confirmation, Execution, Post-Execution Hooks, Formatting), running the
// Execution stage inside the File Lock Coordinator when the tool requires it.
package pipeline

import (
	"time"

	"github.com/jg-phare/toolcore/pkg/permission"
	"github.com/jg-phare/toolcore/pkg/tools"
)

// ErrorKind is the taxonomy of terminal failure kinds a ResultEnvelope may carry.
type ErrorKind string

const (
	ErrToolNotFound     ErrorKind = "ToolNotFound"
	ErrValidationError  ErrorKind = "ValidationError"
	ErrPermissionDenied ErrorKind = "PermissionDenied"
	ErrUserRejected     ErrorKind = "UserRejected"
	ErrExecutionError   ErrorKind = "ExecutionError"
	ErrCancelled        ErrorKind = "Cancelled"
	ErrHookBlock        ErrorKind = "HookBlock"
)

// ResultError carries structured information about a failed call.
type ResultError struct {
	Kind    ErrorKind
	Message string
	Details any
}

// ResultEnvelope is the uniform shape every stage can return and the
// pipeline ultimately returns to its caller.
type ResultEnvelope struct {
	Success        bool
	LLMContent     string
	DisplayContent string
	Metadata       map[string]any
	Error          *ResultError
}

// ConfirmationScope is the breadth of an approval granted at S4.
type ConfirmationScope string

const (
	ScopeOnce       ConfirmationScope = "Once"
	ScopeSession    ConfirmationScope = "Session"
	ScopePersistent ConfirmationScope = "Persistent"
)

// ConfirmationRequest is what the pipeline hands a ConfirmationHandler.
type ConfirmationRequest struct {
	Title         string
	Message       string
	Risks         []string
	AffectedPaths []string
}

// ConfirmationResponse is the handler's answer.
type ConfirmationResponse struct {
	Approved bool
	Scope    ConfirmationScope
	Reason   string
}

// ConfirmationHandler is supplied per call by the caller of the pipeline;
// its absence means the environment is non-interactive (spec §4.4, S4).
type ConfirmationHandler interface {
	RequestConfirmation(req ConfirmationRequest) (ConfirmationResponse, error)
}

// ExecutionContext is supplied by the caller of the pipeline for one call.
type ExecutionContext struct {
	SessionID           string
	MessageID           string
	ProgressSink        tools.ProgressSink
	ConfirmationHandler ConfirmationHandler
	PermissionMode      permission.Mode
	Data                map[string]any
}

// PersistCallback is the external "config-service" append-to-allow-list
// operation spec §4.4 (S4) describes only at its interface. A failure is
// logged and swallowed by the pipeline, never fails the call.
type PersistCallback func(toolName, abstractRule string) error

// Execution is the transient, per-call state the pipeline threads through
// its seven stages (spec §3).
type Execution struct {
	ID       string
	ToolName string
	Params   map[string]any
	Context  ExecutionContext

	Tool       tools.Tool
	Invocation tools.Invocation

	Signature           string
	CheckResult         permission.CheckResult
	NeedsConfirmation   bool
	ConfirmationReason  string

	Aborted     bool
	AbortReason string
	Result      *ResultEnvelope

	autoApprovedHeadless bool

	StartedAt time.Time
	EndedAt   time.Time
}

// stopped reports whether the pipeline should stop advancing early: a
// prior stage (S1-S4) aborted the call outright. S5's ordinary result
// (success, failure, or cancellation) is not an abort — it still has to
// flow through S6 Post-Execution Hooks and S7 Formatting, per spec §4.4's
// state-machine diagram, where only the early-abort branches skip
// straight to a terminal state and the Execute branch always passes
// through PostHook and Format first.
func (e *Execution) stopped() bool {
	return e.Aborted
}

// fail sets a terminal error result and marks the execution aborted.
func (e *Execution) fail(kind ErrorKind, message string, details any) {
	e.Aborted = true
	e.AbortReason = message
	e.Result = &ResultEnvelope{
		Success:        false,
		DisplayContent: message,
		LLMContent:     message,
		Metadata:       map[string]any{},
		Error:          &ResultError{Kind: kind, Message: message, Details: details},
	}
}

// HistoryEntry is one ring-buffered record of a completed call.
type HistoryEntry struct {
	ExecutionID string
	ToolName    string
	Params      map[string]any
	Result      ResultEnvelope
	StartedAt   time.Time
	EndedAt     time.Time
}

// Stats summarizes the history buffer's contents.
type Stats struct {
	Total         int
	Success       int
	Failure       int
	AvgDuration   time.Duration
	PerToolCounts map[string]int
}

// Event is an observable lifecycle notification (spec §6.1). Observing
// events is never required for correctness.
type Event struct {
	Kind        string // execution_started, stage_started, stage_completed, execution_completed, execution_failed, history_cleared
	ExecutionID string
	ToolName    string
	StageName   string
	Duration    time.Duration
	Result      *ResultEnvelope
	Err         error
}

// EventSink receives lifecycle events. A nil sink means no observer.
type EventSink func(Event)
