package hooks

import (
	"context"
	"time"
)

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	Hooks     map[Event][]CallbackMatcher
	SessionID string
	CWD       string
}

// Runner fires registered hooks for the three pipeline fire-points
// (PreToolUse, PostToolUseSuccess, PostToolUseFailure). It knows nothing
// about the pipeline's own control flow beyond that contract (spec §4.5).
type Runner struct {
	hooks     map[Event][]CallbackMatcher
	sessionID string
	cwd       string
}

// NewRunner creates a Runner from configuration.
func NewRunner(config RunnerConfig) *Runner {
	hooks := config.Hooks
	if hooks == nil {
		hooks = make(map[Event][]CallbackMatcher)
	}
	return &Runner{
		hooks:     hooks,
		sessionID: config.SessionID,
		cwd:       config.CWD,
	}
}

// Fire executes all matching hooks for an event, in registration order,
// and returns their results. A hook error is swallowed and treated as
// continue, so a hook bug never breaks the tool call; the failing hook
// adds no result and the error is not logged.
func (r *Runner) Fire(ctx context.Context, event Event, input any) ([]Result, error) {
	matchers := r.hooks[event]
	if len(matchers) == 0 {
		return nil, nil
	}

	var results []Result

	for _, matcher := range matchers {
		if matcher.Matcher != "" && !matchToolName(matcher.Matcher, input) {
			continue
		}

		hookCtx := ctx
		if matcher.Timeout > 0 {
			var cancel context.CancelFunc
			hookCtx, cancel = context.WithTimeout(ctx, time.Duration(matcher.Timeout)*time.Second)
			defer cancel()
		}

		if stop := r.executeCallbacks(hookCtx, matcher.Hooks, input, &results); stop {
			return results, nil
		}
		if stop := r.executeShellCommands(hookCtx, matcher.Commands, input, &results); stop {
			return results, nil
		}
	}

	return results, nil
}

// executeCallbacks runs Go function callbacks sequentially, appending results.
// Returns true if processing should stop (continue=false).
func (r *Runner) executeCallbacks(ctx context.Context, callbacks []HookCallback, input any, results *[]Result) bool {
	for _, hook := range callbacks {
		output, err := hook(input, "", ctx)
		if err != nil {
			continue // hook failure swallowed
		}

		if output.Async != nil && output.Async.Async {
			asyncOutput, asyncErr := executeAsync(ctx, hook, input, output.Async.AsyncTimeout)
			if asyncErr != nil {
				continue
			}
			output = asyncOutput
		}

		result := convertOutput(output)
		*results = append(*results, result)

		if result.Continue != nil && !*result.Continue {
			return true
		}
	}
	return false
}

// executeShellCommands runs shell command hooks sequentially, appending results.
// Returns true if processing should stop (continue=false).
func (r *Runner) executeShellCommands(ctx context.Context, commands []string, input any, results *[]Result) bool {
	for _, command := range commands {
		shellCB := ShellHookCallback(command)
		output, err := shellCB(input, "", ctx)
		if err != nil {
			continue // hook failure swallowed
		}

		if output.Async != nil && output.Async.Async {
			asyncOutput, asyncErr := executeAsync(ctx, shellCB, input, output.Async.AsyncTimeout)
			if asyncErr != nil {
				continue
			}
			output = asyncOutput
		}

		result := convertOutput(output)
		*results = append(*results, result)

		if result.Continue != nil && !*result.Continue {
			return true
		}
	}
	return false
}

// convertOutput converts a HookJSONOutput to a hooks.Result.
func convertOutput(output HookJSONOutput) Result {
	if output.Sync == nil {
		return Result{}
	}

	s := output.Sync

	decision := s.Decision
	switch decision {
	case "approve":
		decision = "allow"
	case "block":
		decision = "deny"
	}

	return Result{
		Decision:           decision,
		Message:            s.Reason,
		Continue:           s.Continue,
		SuppressOutput:     s.SuppressOutput,
		StopReason:         s.StopReason,
		Reason:             s.Reason,
		HookSpecificOutput: s.HookSpecificOutput,
	}
}
