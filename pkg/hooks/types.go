package hooks

import "context"

// Event identifies one of the three fire-points the pipeline calls into.
type Event string

const (
	EventPreToolUse          Event = "PreToolUse"
	EventPostToolUseSuccess  Event = "PostToolUseSuccess"
	EventPostToolUseFailure  Event = "PostToolUseFailure"
)

// BaseHookInput is embedded in all hook inputs.
type BaseHookInput struct {
	SessionID      string `json:"session_id"`
	CWD            string `json:"cwd"`
	PermissionMode string `json:"permission_mode,omitempty"`
}

// PreToolUseHookInput is the input for PreToolUse hooks.
type PreToolUseHookInput struct {
	BaseHookInput
	HookEventName string `json:"hook_event_name"`
	ToolName      string `json:"tool_name"`
	ToolInput     any    `json:"tool_input"`
	AffectedPaths []string `json:"affected_paths,omitempty"`
	ToolUseID     string `json:"tool_use_id"`
}

// PostToolUseHookInput is the input for PostToolUseSuccess hooks.
type PostToolUseHookInput struct {
	BaseHookInput
	HookEventName string `json:"hook_event_name"`
	ToolName      string `json:"tool_name"`
	ToolInput     any    `json:"tool_input"`
	ToolResponse  any    `json:"tool_response"`
	ToolUseID     string `json:"tool_use_id"`
}

// PostToolUseFailureHookInput is the input for PostToolUseFailure hooks.
type PostToolUseFailureHookInput struct {
	BaseHookInput
	HookEventName string `json:"hook_event_name"`
	ToolName      string `json:"tool_name"`
	ToolInput     any    `json:"tool_input"`
	ToolUseID     string `json:"tool_use_id"`
	Error         string `json:"error"`
}

// --- Output Types ---

// SyncHookJSONOutput is the synchronous return value from hooks.
type SyncHookJSONOutput struct {
	Continue           *bool  `json:"continue,omitempty"`
	SuppressOutput     *bool  `json:"suppressOutput,omitempty"`
	StopReason         string `json:"stopReason,omitempty"`
	Decision           string `json:"decision,omitempty"` // "approve" | "block" | "" (continue)
	SystemMessage      string `json:"systemMessage,omitempty"`
	Reason             string `json:"reason,omitempty"`
	HookSpecificOutput any    `json:"hookSpecificOutput,omitempty"`
}

// AsyncHookJSONOutput signals that the hook will complete asynchronously.
type AsyncHookJSONOutput struct {
	Async        bool `json:"async"`
	AsyncTimeout int  `json:"asyncTimeout,omitempty"`
}

// HookJSONOutput is the union of sync and async outputs.
type HookJSONOutput struct {
	Sync  *SyncHookJSONOutput
	Async *AsyncHookJSONOutput
}

// HookCallback is the Go function type for hook implementations.
type HookCallback func(input any, toolUseID string, ctx context.Context) (HookJSONOutput, error)

// CallbackMatcher groups callbacks with an optional tool name matcher and timeout.
type CallbackMatcher struct {
	Matcher  string         // tool name pattern (glob or exact), empty = match all
	Hooks    []HookCallback // Go function callbacks
	Commands []string       // shell command hooks
	Timeout  int            // seconds, 0 = no timeout
}

// Result is the pipeline-facing interpretation of a hook's output: continue
// or block{message}, per spec §4.4 (S3) / §4.5. The pipeline reads
// AdditionalContext as injected text, but the Runner's output conversion
// never sets it, so hooks fired through a Runner do not inject text.
type Result struct {
	Decision           string // "allow" (continue), "deny" (block), "" = continue
	Message            string
	AdditionalContext  string
	Continue           *bool
	SuppressOutput     *bool
	StopReason         string
	Reason             string
	HookSpecificOutput any
}
