package tools

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileWrite_NewFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "new.txt")

	tool := &FileWriteTool{}
	out := buildAndExec(t, tool, map[string]any{
		"file_path": path,
		"content":   "hello\nworld\n",
	})
	if out.IsError {
		t.Fatalf("unexpected error: %s", out.Content)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "hello\nworld\n" {
		t.Errorf("file content = %q", string(data))
	}
	if !strings.Contains(out.Content, "2 lines") {
		t.Errorf("expected 2 lines in output, got %q", out.Content)
	}
}

func TestFileWrite_Overwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "existing.txt")
	os.WriteFile(path, []byte("old content"), 0o644)

	tool := &FileWriteTool{}
	out := buildAndExec(t, tool, map[string]any{
		"file_path": path,
		"content":   "new content",
	})
	if out.IsError {
		t.Fatalf("unexpected error: %s", out.Content)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "new content" {
		t.Errorf("file content = %q, want 'new content'", string(data))
	}
}

func TestFileWrite_CreateNestedDirs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b", "c", "deep.txt")

	tool := &FileWriteTool{}
	out := buildAndExec(t, tool, map[string]any{
		"file_path": path,
		"content":   "deep file",
	})
	if out.IsError {
		t.Fatalf("unexpected error: %s", out.Content)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "deep file" {
		t.Errorf("file content = %q", string(data))
	}
}

func TestFileWrite_RelativePathRejectedAtBuild(t *testing.T) {
	tool := &FileWriteTool{}
	_, err := tool.Build(map[string]any{
		"file_path": "relative/path.txt",
		"content":   "test",
	})
	if err == nil {
		t.Error("expected Build error for relative path")
	}
}

func TestFileWrite_AffectedPaths(t *testing.T) {
	tool := &FileWriteTool{}
	inv, err := tool.Build(map[string]any{"file_path": "/tmp/y.txt", "content": "x"})
	if err != nil {
		t.Fatal(err)
	}
	paths := inv.AffectedPaths()
	if len(paths) != 1 || paths[0] != "/tmp/y.txt" {
		t.Errorf("got %v", paths)
	}
}
