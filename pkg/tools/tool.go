// Package tools defines the uniform contract every tool exposes to the
// execution pipeline, plus a handful of concrete tool implementations.
package tools

import "context"

// Kind classifies a tool's category for permission mode overrides.
type Kind string

const (
	KindRead     Kind = "Read"
	KindSearch   Kind = "Search"
	KindEdit     Kind = "Edit"
	KindExecute  Kind = "Execute"
	KindNetwork  Kind = "Network"
	KindReadOnly Kind = "ReadOnly"
	KindOther    Kind = "Other"
)

// ParamSchema is a JSON-Schema-shaped parameter contract. Tools describe
// their accepted parameters this way so callers and permission tooling can
// introspect required fields, types, and constraints without a build step.
type ParamSchema map[string]any

// ValidationError is returned by Tool.Build when raw parameters fail
// schema validation. It is the only way build failures propagate.
type ValidationError struct {
	FieldPath string
	Expected  string
	Actual    string
	Message   string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed for field " + e.FieldPath
}

// ToolOutput is the raw result of an Invocation's Execute call, before the
// pipeline's Format stage wraps it into a full ResultEnvelope.
type ToolOutput struct {
	Content string
	IsError bool
}

// ProgressSink is a one-way, fire-and-forget progress callback an
// Invocation may use while executing. A nil sink means no one is
// listening; implementations must tolerate that.
type ProgressSink func(message string)

// Invocation is the validated, execution-ready handle produced by
// Tool.Build. It is the only object the Execution stage may invoke.
// AffectedPaths is stable across calls on the same Invocation and
// independent of execution side effects.
type Invocation interface {
	Describe() string
	AffectedPaths() []string
	Execute(ctx context.Context, progress ProgressSink) (ToolOutput, error)

	// RuntimeNotes returns context injected by pre-execution hooks via
	// inject_context responses (spec §4.4 S3).
	RuntimeNotes() []string
	AppendRuntimeNote(note string)
}

// Tool is the interface every tool must implement. Build is the single
// point where raw parameters become validated ones: it performs schema
// validation, default injection, and Invocation construction atomically.
// Build must be deterministic and total (§4.1 invariant).
type Tool interface {
	Name() string
	DisplayName() string
	Kind() Kind
	IsConcurrencySafe() bool
	Schema() ParamSchema

	Build(params map[string]any) (Invocation, error)

	// ExtractSignatureContent returns a tool-specific string identifying
	// this exact call, used for session memory and deny/allow matching.
	ExtractSignatureContent(params map[string]any) string

	// AbstractPermissionRule returns a broader pattern suitable for
	// persistence (e.g. "**/*.ts" rather than one specific file).
	AbstractPermissionRule(params map[string]any) string
}
