package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// NotebookEditTool edits Jupyter notebook cells.
type NotebookEditTool struct{}

func (n *NotebookEditTool) Name() string           { return "NotebookEdit" }
func (n *NotebookEditTool) DisplayName() string    { return "Edit notebook" }
func (n *NotebookEditTool) Kind() Kind             { return KindEdit }
func (n *NotebookEditTool) IsConcurrencySafe() bool { return false }

func (n *NotebookEditTool) Schema() ParamSchema {
	return ParamSchema{
		"type": "object",
		"properties": map[string]any{
			"notebook_path": map[string]any{
				"type":        "string",
				"description": "Absolute path to the .ipynb file",
			},
			"new_source": map[string]any{
				"type":        "string",
				"description": "The new source for the cell",
			},
			"cell_number": map[string]any{
				"type":        "integer",
				"description": "0-indexed cell number",
			},
			"cell_id": map[string]any{
				"type":        "string",
				"description": "The ID of the cell to edit",
			},
			"cell_type": map[string]any{
				"type":        "string",
				"enum":        []string{"code", "markdown"},
				"description": "The type of the cell",
			},
			"edit_mode": map[string]any{
				"type":        "string",
				"enum":        []string{"replace", "insert", "delete"},
				"description": "The edit operation (default: replace)",
			},
		},
		"required": []string{"notebook_path", "new_source"},
	}
}

func (n *NotebookEditTool) ExtractSignatureContent(params map[string]any) string {
	path, _ := params["notebook_path"].(string)
	return path
}

func (n *NotebookEditTool) AbstractPermissionRule(params map[string]any) string {
	path, _ := params["notebook_path"].(string)
	return filepath.Dir(path) + "/**"
}

func (n *NotebookEditTool) Build(params map[string]any) (Invocation, error) {
	nbPath, ok := params["notebook_path"].(string)
	if !ok || nbPath == "" {
		return nil, &ValidationError{FieldPath: "notebook_path", Message: "notebook_path is required"}
	}
	if !filepath.IsAbs(nbPath) {
		return nil, &ValidationError{FieldPath: "notebook_path", Message: "notebook_path must be an absolute path"}
	}
	if !strings.HasSuffix(nbPath, ".ipynb") {
		return nil, &ValidationError{FieldPath: "notebook_path", Message: "notebook_path must end in .ipynb"}
	}

	editMode := "replace"
	if m, ok := params["edit_mode"].(string); ok && m != "" {
		editMode = m
	}

	newSource, _ := params["new_source"].(string)
	if editMode != "delete" && newSource == "" {
		return nil, &ValidationError{FieldPath: "new_source", Message: "new_source is required for replace/insert"}
	}

	cellIdx := -1
	if num, ok := params["cell_number"].(float64); ok {
		cellIdx = int(num)
	}
	cellID, _ := params["cell_id"].(string)
	cellType, _ := params["cell_type"].(string)

	return &notebookEditInvocation{
		notebookPath: nbPath,
		newSource:    newSource,
		editMode:     editMode,
		cellIdx:      cellIdx,
		cellID:       cellID,
		cellType:     cellType,
	}, nil
}

type notebookEditInvocation struct {
	BaseInvocation
	notebookPath string
	newSource    string
	editMode     string
	cellIdx      int
	cellID       string
	cellType     string
}

func (i *notebookEditInvocation) Describe() string        { return "Edit notebook " + i.notebookPath }
func (i *notebookEditInvocation) AffectedPaths() []string { return []string{i.notebookPath} }

func (i *notebookEditInvocation) Execute(_ context.Context, _ ProgressSink) (ToolOutput, error) {
	data, err := os.ReadFile(i.notebookPath)
	if err != nil {
		return ToolOutput{Content: fmt.Sprintf("Error reading notebook: %s", err), IsError: true}, nil
	}

	var notebook map[string]any
	if err := json.Unmarshal(data, &notebook); err != nil {
		return ToolOutput{Content: fmt.Sprintf("Error parsing notebook: %s", err), IsError: true}, nil
	}

	rawCells, ok := notebook["cells"].([]any)
	if !ok {
		return ToolOutput{Content: "Error: notebook has no cells array", IsError: true}, nil
	}

	cellIdx := i.cellIdx
	if cellIdx < 0 && i.cellID != "" {
		for idx, c := range rawCells {
			cell, _ := c.(map[string]any)
			if id, _ := cell["id"].(string); id == i.cellID {
				cellIdx = idx
				break
			}
		}
		if cellIdx == -1 {
			return ToolOutput{
				Content: fmt.Sprintf("Error: cell with id %q not found", i.cellID),
				IsError: true,
			}, nil
		}
	}

	sourceLines := splitSourceLines(i.newSource)

	switch i.editMode {
	case "replace":
		if cellIdx < 0 || cellIdx >= len(rawCells) {
			return ToolOutput{
				Content: fmt.Sprintf("Error: cell_number %d out of range (0-%d)", cellIdx, len(rawCells)-1),
				IsError: true,
			}, nil
		}
		cell, _ := rawCells[cellIdx].(map[string]any)
		cell["source"] = sourceLines
		if i.cellType != "" {
			cell["cell_type"] = i.cellType
		}

	case "insert":
		ct := "code"
		if i.cellType != "" {
			ct = i.cellType
		}

		newCell := map[string]any{
			"cell_type": ct,
			"source":    sourceLines,
			"metadata":  map[string]any{},
		}
		if ct == "code" {
			newCell["outputs"] = []any{}
			newCell["execution_count"] = nil
		}

		insertAt := 0
		if cellIdx >= 0 {
			insertAt = cellIdx + 1
		}
		if insertAt > len(rawCells) {
			insertAt = len(rawCells)
		}

		rawCells = append(rawCells, nil)
		copy(rawCells[insertAt+1:], rawCells[insertAt:])
		rawCells[insertAt] = newCell

	case "delete":
		if cellIdx < 0 || cellIdx >= len(rawCells) {
			return ToolOutput{
				Content: fmt.Sprintf("Error: cell_number %d out of range (0-%d)", cellIdx, len(rawCells)-1),
				IsError: true,
			}, nil
		}
		rawCells = append(rawCells[:cellIdx], rawCells[cellIdx+1:]...)

	default:
		return ToolOutput{
			Content: fmt.Sprintf("Error: unknown edit_mode %q", i.editMode),
			IsError: true,
		}, nil
	}

	notebook["cells"] = rawCells

	out, err := json.MarshalIndent(notebook, "", " ")
	if err != nil {
		return ToolOutput{Content: fmt.Sprintf("Error marshaling notebook: %s", err), IsError: true}, nil
	}

	if err := os.WriteFile(i.notebookPath, append(out, '\n'), 0644); err != nil {
		return ToolOutput{Content: fmt.Sprintf("Error writing notebook: %s", err), IsError: true}, nil
	}

	return ToolOutput{
		Content: fmt.Sprintf("Notebook %s updated (%s at cell %d). Total cells: %d", i.notebookPath, i.editMode, cellIdx, len(rawCells)),
	}, nil
}

// splitSourceLines converts a source string to Jupyter's line array format.
// Each line (except the last) gets a trailing \n.
func splitSourceLines(source string) []string {
	if source == "" {
		return []string{}
	}
	lines := strings.Split(source, "\n")
	result := make([]string, len(lines))
	for i, line := range lines {
		if i < len(lines)-1 {
			result[i] = line + "\n"
		} else {
			result[i] = line
		}
	}
	return result
}
