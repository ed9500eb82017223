package tools

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestBash_SimpleCommand(t *testing.T) {
	tool := &BashTool{}
	out := buildAndExec(t, tool, map[string]any{"command": "echo hello"})
	if out.IsError {
		t.Fatalf("unexpected error: %s", out.Content)
	}
	if out.Content != "hello" {
		t.Errorf("got %q, want %q", out.Content, "hello")
	}
}

func TestBash_StderrCapture(t *testing.T) {
	tool := &BashTool{}
	out := buildAndExec(t, tool, map[string]any{"command": "echo stderr_msg >&2"})
	if !strings.Contains(out.Content, "stderr_msg") {
		t.Errorf("expected stderr_msg in output, got %q", out.Content)
	}
}

func TestBash_NonZeroExit(t *testing.T) {
	tool := &BashTool{}
	out := buildAndExec(t, tool, map[string]any{"command": "exit 1"})
	if !out.IsError {
		t.Error("expected IsError for non-zero exit")
	}
}

func TestBash_Timeout(t *testing.T) {
	tool := &BashTool{}
	inv, err := tool.Build(map[string]any{
		"command": "sleep 10",
		"timeout": float64(100), // 100ms
	})
	if err != nil {
		t.Fatal(err)
	}
	out, err := inv.Execute(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !out.IsError {
		t.Error("expected error on timeout")
	}
	if !strings.Contains(out.Content, "timed out") {
		t.Errorf("expected timeout message, got %q", out.Content)
	}
}

func TestBash_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	tool := &BashTool{}
	inv, err := tool.Build(map[string]any{"command": "sleep 10"})
	if err != nil {
		t.Fatal(err)
	}
	out, err := inv.Execute(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !out.IsError {
		t.Error("expected error on context cancel")
	}
}

func TestBash_MissingCommandRejectedAtBuild(t *testing.T) {
	tool := &BashTool{}
	_, err := tool.Build(map[string]any{})
	if err == nil {
		t.Error("expected Build error for missing command")
	}
}

func TestBash_CWD(t *testing.T) {
	tool := &BashTool{CWD: "/tmp"}
	out := buildAndExec(t, tool, map[string]any{"command": "pwd"})
	if !strings.Contains(out.Content, "tmp") {
		t.Errorf("expected CWD /tmp, got %q", out.Content)
	}
}

func TestBash_LargeOutput(t *testing.T) {
	tool := &BashTool{}
	out := buildAndExec(t, tool, map[string]any{"command": "python3 -c 'print(\"x\" * 40000)'"})
	if len(out.Content) > bashMaxOutput+200 { // +200 for truncation message
		t.Errorf("output not truncated: %d chars", len(out.Content))
	}
	if !strings.Contains(out.Content, "truncated") {
		t.Error("expected truncation message")
	}
}

func TestBash_AbstractPermissionRuleUsesFirstWord(t *testing.T) {
	tool := &BashTool{}
	rule := tool.AbstractPermissionRule(map[string]any{"command": "git status"})
	if rule != "Bash(git:*)" {
		t.Errorf("got %q", rule)
	}
}
