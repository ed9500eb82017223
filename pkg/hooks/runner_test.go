package hooks

import (
	"context"
	"testing"
)

func boolPtr(b bool) *bool { return &b }

func TestRunner_NoHooks(t *testing.T) {
	r := NewRunner(RunnerConfig{})
	results, err := r.Fire(context.Background(), EventPreToolUse, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results != nil {
		t.Errorf("expected nil results, got %v", results)
	}
}

func TestRunner_NoMatchingEvent(t *testing.T) {
	r := NewRunner(RunnerConfig{
		Hooks: map[Event][]CallbackMatcher{
			EventPostToolUseSuccess: {
				{Hooks: []HookCallback{func(input any, toolUseID string, ctx context.Context) (HookJSONOutput, error) {
					return HookJSONOutput{Sync: &SyncHookJSONOutput{Decision: "approve"}}, nil
				}}},
			},
		},
	})
	results, err := r.Fire(context.Background(), EventPreToolUse, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results != nil {
		t.Errorf("expected nil results for non-matching event, got %v", results)
	}
}

func TestRunner_GoCallbackExecution(t *testing.T) {
	called := false
	r := NewRunner(RunnerConfig{
		Hooks: map[Event][]CallbackMatcher{
			EventPreToolUse: {
				{Hooks: []HookCallback{func(input any, toolUseID string, ctx context.Context) (HookJSONOutput, error) {
					called = true
					return HookJSONOutput{Sync: &SyncHookJSONOutput{Decision: "approve"}}, nil
				}}},
			},
		},
	})

	results, err := r.Fire(context.Background(), EventPreToolUse, map[string]any{"tool_name": "Bash"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("callback was not called")
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Decision != "allow" {
		t.Errorf("decision = %q, want 'allow' (converted from 'approve')", results[0].Decision)
	}
}

func TestRunner_BlockStopsProcessing(t *testing.T) {
	secondCalled := false
	r := NewRunner(RunnerConfig{
		Hooks: map[Event][]CallbackMatcher{
			EventPreToolUse: {
				{Hooks: []HookCallback{
					func(input any, toolUseID string, ctx context.Context) (HookJSONOutput, error) {
						return HookJSONOutput{Sync: &SyncHookJSONOutput{
							Decision: "block",
							Reason:   "policy: no writes during deploy",
							Continue: boolPtr(false),
						}}, nil
					},
					func(input any, toolUseID string, ctx context.Context) (HookJSONOutput, error) {
						secondCalled = true
						return HookJSONOutput{Sync: &SyncHookJSONOutput{Decision: "approve"}}, nil
					},
				}},
			},
		},
	})

	results, err := r.Fire(context.Background(), EventPreToolUse, map[string]any{"tool_name": "Edit"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secondCalled {
		t.Error("second hook should not run after first hook blocks")
	}
	if len(results) != 1 || results[0].Decision != "deny" {
		t.Fatalf("expected single deny result, got %v", results)
	}
	if results[0].Message != "policy: no writes during deploy" {
		t.Errorf("message = %q", results[0].Message)
	}
}

func TestRunner_MatcherFiltersByToolName(t *testing.T) {
	called := false
	r := NewRunner(RunnerConfig{
		Hooks: map[Event][]CallbackMatcher{
			EventPreToolUse: {
				{Matcher: "Bash", Hooks: []HookCallback{func(input any, toolUseID string, ctx context.Context) (HookJSONOutput, error) {
					called = true
					return HookJSONOutput{Sync: &SyncHookJSONOutput{}}, nil
				}}},
			},
		},
	})

	_, err := r.Fire(context.Background(), EventPreToolUse, map[string]any{"tool_name": "Edit"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Error("hook should not fire for non-matching tool name")
	}

	_, err = r.Fire(context.Background(), EventPreToolUse, map[string]any{"tool_name": "Bash"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("hook should fire for matching tool name")
	}
}

func TestRunner_GlobMatcher(t *testing.T) {
	called := false
	r := NewRunner(RunnerConfig{
		Hooks: map[Event][]CallbackMatcher{
			EventPreToolUse: {
				{Matcher: "mcp__*", Hooks: []HookCallback{func(input any, toolUseID string, ctx context.Context) (HookJSONOutput, error) {
					called = true
					return HookJSONOutput{Sync: &SyncHookJSONOutput{}}, nil
				}}},
			},
		},
	})

	_, _ = r.Fire(context.Background(), EventPreToolUse, map[string]any{"tool_name": "mcp__server__tool"})
	if !called {
		t.Error("expected glob matcher to match mcp__server__tool")
	}
}

func TestRunner_HookErrorIsSwallowed(t *testing.T) {
	r := NewRunner(RunnerConfig{
		Hooks: map[Event][]CallbackMatcher{
			EventPreToolUse: {
				{Hooks: []HookCallback{func(input any, toolUseID string, ctx context.Context) (HookJSONOutput, error) {
					return HookJSONOutput{}, context.Canceled
				}}},
			},
		},
	})

	results, err := r.Fire(context.Background(), EventPreToolUse, map[string]any{"tool_name": "Bash"})
	if err != nil {
		t.Fatalf("hook errors must be swallowed, got error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results from a failing hook, got %v", results)
	}
}

func TestRunner_ShellHookRoundTrip(t *testing.T) {
	r := NewRunner(RunnerConfig{
		Hooks: map[Event][]CallbackMatcher{
			EventPostToolUseSuccess: {
				{Commands: []string{`echo '{"decision":"approve"}'`}},
			},
		},
	})

	results, err := r.Fire(context.Background(), EventPostToolUseSuccess, map[string]any{"tool_name": "Bash"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Decision != "allow" {
		t.Fatalf("expected allow from shell hook, got %v", results)
	}
}

func TestRunner_PostToolUseFailureHooks(t *testing.T) {
	var gotInput *PostToolUseFailureHookInput
	r := NewRunner(RunnerConfig{
		Hooks: map[Event][]CallbackMatcher{
			EventPostToolUseFailure: {
				{Hooks: []HookCallback{func(input any, toolUseID string, ctx context.Context) (HookJSONOutput, error) {
					if in, ok := input.(*PostToolUseFailureHookInput); ok {
						gotInput = in
					}
					return HookJSONOutput{Sync: &SyncHookJSONOutput{Reason: "noted"}}, nil
				}}},
			},
		},
	})

	input := &PostToolUseFailureHookInput{ToolName: "Bash", Error: "exit status 1"}
	results, err := r.Fire(context.Background(), EventPostToolUseFailure, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotInput == nil || gotInput.Error != "exit status 1" {
		t.Fatalf("expected hook to observe failure input, got %+v", gotInput)
	}
	if len(results) != 1 || results[0].Message != "noted" {
		t.Errorf("results = %+v", results)
	}
}
