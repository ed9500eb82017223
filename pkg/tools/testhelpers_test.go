package tools

import (
	"context"
	"testing"
)

// buildAndExec builds an invocation from tool and params and runs it,
// failing the test immediately on a Build error (tests that want to
// assert on Build errors call tool.Build directly instead).
func buildAndExec(t *testing.T, tool Tool, params map[string]any) ToolOutput {
	t.Helper()
	inv, err := tool.Build(params)
	if err != nil {
		t.Fatalf("Build error: %s", err)
	}
	out, err := inv.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("Execute error: %s", err)
	}
	return out
}
