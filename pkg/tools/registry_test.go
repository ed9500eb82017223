package tools

import (
	"context"
	"testing"
)

// stubInvocation is the minimal Invocation returned by stubTool.Build.
type stubInvocation struct {
	BaseInvocation
	name string
}

func (s *stubInvocation) Describe() string      { return s.name }
func (s *stubInvocation) AffectedPaths() []string { return nil }
func (s *stubInvocation) Execute(_ context.Context, _ ProgressSink) (ToolOutput, error) {
	return ToolOutput{Content: "ok"}, nil
}

// stubTool is a minimal Tool for testing the registry.
type stubTool struct {
	name        string
	displayName string
	kind        Kind
}

func (s *stubTool) Name() string            { return s.name }
func (s *stubTool) DisplayName() string     { return s.displayName }
func (s *stubTool) Kind() Kind              { return s.kind }
func (s *stubTool) IsConcurrencySafe() bool { return s.kind == KindRead || s.kind == KindSearch || s.kind == KindReadOnly }
func (s *stubTool) Schema() ParamSchema     { return ParamSchema{"type": "object"} }

func (s *stubTool) Build(params map[string]any) (Invocation, error) {
	return &stubInvocation{name: s.name}, nil
}

func (s *stubTool) ExtractSignatureContent(params map[string]any) string { return s.name }
func (s *stubTool) AbstractPermissionRule(params map[string]any) string  { return s.name }

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	tool := &stubTool{name: "Bash", displayName: "Execute commands", kind: KindExecute}
	r.Register(tool)

	got, ok := r.Get("Bash")
	if !ok {
		t.Fatal("expected to find Bash tool")
	}
	if got.Name() != "Bash" {
		t.Errorf("got name %q, want %q", got.Name(), "Bash")
	}

	_, ok = r.Get("NotExist")
	if ok {
		t.Error("expected NotExist to not be found")
	}
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubTool{name: "Grep", kind: KindSearch})
	r.Register(&stubTool{name: "Bash", kind: KindExecute})
	r.Register(&stubTool{name: "FileRead", kind: KindRead})

	names := r.Names()
	want := []string{"Bash", "FileRead", "Grep"}
	if len(names) != len(want) {
		t.Fatalf("got %d names, want %d", len(names), len(want))
	}
	for i, n := range names {
		if n != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, n, want[i])
		}
	}
}

func TestRegistry_Disabled(t *testing.T) {
	r := NewRegistry(WithDisabled("Bash"))
	r.Register(&stubTool{name: "Bash", kind: KindExecute})
	r.Register(&stubTool{name: "Grep", kind: KindSearch})

	if !r.IsDisabled("Bash") {
		t.Error("expected Bash to be disabled")
	}

	// Disabled tools are excluded from Names()
	names := r.Names()
	if len(names) != 1 || names[0] != "Grep" {
		t.Errorf("expected only Grep, got %v", names)
	}

	// But can still be retrieved via Get()
	_, ok := r.Get("Bash")
	if !ok {
		t.Error("expected disabled tool to still be retrievable via Get()")
	}
}

func TestRegistry_Allowed(t *testing.T) {
	r := NewRegistry(WithAllowed("FileRead", "Glob"))

	if !r.IsAllowed("FileRead") {
		t.Error("expected FileRead to be allowed")
	}
	if !r.IsAllowed("Glob") {
		t.Error("expected Glob to be allowed")
	}
	if r.IsAllowed("Bash") {
		t.Error("expected Bash to not be auto-allowed")
	}
}

func TestRegistry_ToolDefinitions(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubTool{name: "Bash", displayName: "Execute commands", kind: KindExecute})
	r.Register(&stubTool{name: "Grep", displayName: "Search files", kind: KindSearch})

	defs := r.ToolDefinitions()
	if len(defs) != 2 {
		t.Fatalf("got %d definitions, want 2", len(defs))
	}

	// Should be sorted by name
	if defs[0].Name != "Bash" {
		t.Errorf("first tool = %q, want Bash", defs[0].Name)
	}
	if defs[1].Name != "Grep" {
		t.Errorf("second tool = %q, want Grep", defs[1].Name)
	}

	if defs[0].Kind != KindExecute {
		t.Errorf("Bash kind = %q, want Execute", defs[0].Kind)
	}
}

func TestRegistry_DisabledExcludedFromDefinitions(t *testing.T) {
	r := NewRegistry(WithDisabled("Bash"))
	r.Register(&stubTool{name: "Bash", displayName: "Execute commands", kind: KindExecute})
	r.Register(&stubTool{name: "Grep", displayName: "Search files", kind: KindSearch})

	defs := r.ToolDefinitions()
	if len(defs) != 1 {
		t.Fatalf("got %d definitions, want 1 (Bash should be excluded)", len(defs))
	}
	if defs[0].Name != "Grep" {
		t.Errorf("expected only Grep, got %s", defs[0].Name)
	}
}
