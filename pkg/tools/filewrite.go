package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileWriteTool creates or overwrites files.
type FileWriteTool struct{}

func (f *FileWriteTool) Name() string           { return "Write" }
func (f *FileWriteTool) DisplayName() string    { return "Write file" }
func (f *FileWriteTool) Kind() Kind             { return KindEdit }
func (f *FileWriteTool) IsConcurrencySafe() bool { return false }

func (f *FileWriteTool) Schema() ParamSchema {
	return ParamSchema{
		"type": "object",
		"properties": map[string]any{
			"file_path": map[string]any{
				"type":        "string",
				"description": "The absolute path to the file to write",
			},
			"content": map[string]any{
				"type":        "string",
				"description": "The content to write to the file",
			},
		},
		"required": []string{"file_path", "content"},
	}
}

func (f *FileWriteTool) ExtractSignatureContent(params map[string]any) string {
	path, _ := params["file_path"].(string)
	return path
}

func (f *FileWriteTool) AbstractPermissionRule(params map[string]any) string {
	path, _ := params["file_path"].(string)
	return filepath.Dir(path) + "/**"
}

func (f *FileWriteTool) Build(params map[string]any) (Invocation, error) {
	filePath, ok := params["file_path"].(string)
	if !ok || filePath == "" {
		return nil, &ValidationError{FieldPath: "file_path", Message: "file_path is required"}
	}
	if !filepath.IsAbs(filePath) {
		return nil, &ValidationError{FieldPath: "file_path", Message: "file_path must be an absolute path"}
	}
	content, ok := params["content"].(string)
	if !ok {
		return nil, &ValidationError{FieldPath: "content", Message: "content is required"}
	}

	return &fileWriteInvocation{filePath: filePath, content: content}, nil
}

type fileWriteInvocation struct {
	BaseInvocation
	filePath string
	content  string
}

func (i *fileWriteInvocation) Describe() string        { return "Write " + i.filePath }
func (i *fileWriteInvocation) AffectedPaths() []string { return []string{i.filePath} }

func (i *fileWriteInvocation) Execute(_ context.Context, _ ProgressSink) (ToolOutput, error) {
	dir := filepath.Dir(i.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ToolOutput{Content: fmt.Sprintf("Error creating directories: %s", err), IsError: true}, nil
	}

	if err := os.WriteFile(i.filePath, []byte(i.content), 0o644); err != nil {
		return ToolOutput{Content: fmt.Sprintf("Error writing file: %s", err), IsError: true}, nil
	}

	lineCount := strings.Count(i.content, "\n")
	if len(i.content) > 0 && !strings.HasSuffix(i.content, "\n") {
		lineCount++
	}

	return ToolOutput{Content: fmt.Sprintf("File written successfully at: %s (%d lines)", i.filePath, lineCount)}, nil
}
