package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileEditTool performs find-and-replace in files.
type FileEditTool struct{}

func (f *FileEditTool) Name() string        { return "Edit" }
func (f *FileEditTool) DisplayName() string  { return "Edit file" }
func (f *FileEditTool) Kind() Kind          { return KindEdit }
func (f *FileEditTool) IsConcurrencySafe() bool { return false }

func (f *FileEditTool) Schema() ParamSchema {
	return ParamSchema{
		"type": "object",
		"properties": map[string]any{
			"file_path": map[string]any{
				"type":        "string",
				"description": "The absolute path to the file to modify",
			},
			"old_string": map[string]any{
				"type":        "string",
				"description": "The text to replace",
			},
			"new_string": map[string]any{
				"type":        "string",
				"description": "The text to replace it with",
			},
			"replace_all": map[string]any{
				"type":        "boolean",
				"description": "Replace all occurrences of old_string (default false)",
			},
		},
		"required": []string{"file_path", "old_string", "new_string"},
	}
}

func (f *FileEditTool) ExtractSignatureContent(params map[string]any) string {
	path, _ := params["file_path"].(string)
	return path
}

func (f *FileEditTool) AbstractPermissionRule(params map[string]any) string {
	path, _ := params["file_path"].(string)
	return filepath.Dir(path) + "/**"
}

func (f *FileEditTool) Build(params map[string]any) (Invocation, error) {
	filePath, ok := params["file_path"].(string)
	if !ok || filePath == "" {
		return nil, &ValidationError{FieldPath: "file_path", Message: "file_path is required"}
	}
	if !filepath.IsAbs(filePath) {
		return nil, &ValidationError{FieldPath: "file_path", Message: "file_path must be an absolute path"}
	}
	oldString, ok := params["old_string"].(string)
	if !ok {
		return nil, &ValidationError{FieldPath: "old_string", Message: "old_string is required"}
	}
	newString, ok := params["new_string"].(string)
	if !ok {
		return nil, &ValidationError{FieldPath: "new_string", Message: "new_string is required"}
	}
	if oldString == newString {
		return nil, &ValidationError{Message: "old_string and new_string must be different"}
	}
	replaceAll, _ := params["replace_all"].(bool)

	return &fileEditInvocation{
		filePath:   filePath,
		oldString:  oldString,
		newString:  newString,
		replaceAll: replaceAll,
	}, nil
}

type fileEditInvocation struct {
	BaseInvocation
	filePath   string
	oldString  string
	newString  string
	replaceAll bool
}

func (i *fileEditInvocation) Describe() string        { return "Edit " + i.filePath }
func (i *fileEditInvocation) AffectedPaths() []string { return []string{i.filePath} }

func (i *fileEditInvocation) Execute(_ context.Context, _ ProgressSink) (ToolOutput, error) {
	data, err := os.ReadFile(i.filePath)
	if err != nil {
		return ToolOutput{Content: fmt.Sprintf("Error: %s", err), IsError: true}, nil
	}
	content := string(data)

	count := strings.Count(content, i.oldString)
	if count == 0 {
		return ToolOutput{Content: "Error: old_string not found in file", IsError: true}, nil
	}
	if !i.replaceAll && count > 1 {
		return ToolOutput{
			Content: fmt.Sprintf("Error: old_string found %d times in file. Use replace_all or provide a more unique string.", count),
			IsError: true,
		}, nil
	}

	var newContent string
	if i.replaceAll {
		newContent = strings.ReplaceAll(content, i.oldString, i.newString)
	} else {
		newContent = strings.Replace(content, i.oldString, i.newString, 1)
	}

	if err := os.WriteFile(i.filePath, []byte(newContent), 0o644); err != nil {
		return ToolOutput{Content: fmt.Sprintf("Error writing file: %s", err), IsError: true}, nil
	}

	return ToolOutput{Content: fmt.Sprintf("Replaced %d occurrence(s) in %s", count, i.filePath)}, nil
}
