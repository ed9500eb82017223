package tools

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

var validTodoStatuses = map[string]bool{
	"pending":     true,
	"in_progress": true,
	"completed":   true,
}

// TodoItem represents a single todo entry.
type TodoItem struct {
	Content    string
	Status     string
	ActiveForm string
}

// TodoWriteTool manages a structured todo list in memory.
type TodoWriteTool struct {
	mu    sync.Mutex
	Todos []TodoItem
}

func (t *TodoWriteTool) Name() string           { return "TodoWrite" }
func (t *TodoWriteTool) DisplayName() string    { return "Update todo list" }
func (t *TodoWriteTool) Kind() Kind             { return KindOther }
func (t *TodoWriteTool) IsConcurrencySafe() bool { return true }

func (t *TodoWriteTool) Schema() ParamSchema {
	return ParamSchema{
		"type": "object",
		"properties": map[string]any{
			"todos": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"content": map[string]any{
							"type":        "string",
							"description": "The todo item content",
						},
						"status": map[string]any{
							"type":        "string",
							"enum":        []string{"pending", "in_progress", "completed"},
							"description": "Status of the todo item",
						},
						"activeForm": map[string]any{
							"type":        "string",
							"description": "Present continuous form shown when in_progress",
						},
					},
					"required": []string{"content", "status"},
				},
				"description": "The full todo list (replaces existing)",
			},
		},
		"required": []string{"todos"},
	}
}

func (t *TodoWriteTool) ExtractSignatureContent(params map[string]any) string {
	return "todos"
}

func (t *TodoWriteTool) AbstractPermissionRule(params map[string]any) string {
	return "TodoWrite"
}

func (t *TodoWriteTool) Build(params map[string]any) (Invocation, error) {
	rawTodos, ok := params["todos"].([]any)
	if !ok {
		return nil, &ValidationError{FieldPath: "todos", Message: "todos is required and must be an array"}
	}

	items := make([]TodoItem, 0, len(rawTodos))
	for i, raw := range rawTodos {
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, &ValidationError{FieldPath: fmt.Sprintf("todos[%d]", i), Message: "must be an object"}
		}

		content, _ := obj["content"].(string)
		if content == "" {
			return nil, &ValidationError{FieldPath: fmt.Sprintf("todos[%d].content", i), Message: "content is required"}
		}

		status, _ := obj["status"].(string)
		if !validTodoStatuses[status] {
			return nil, &ValidationError{
				FieldPath: fmt.Sprintf("todos[%d].status", i),
				Message:   "status must be one of: pending, in_progress, completed",
			}
		}

		activeForm, _ := obj["activeForm"].(string)
		items = append(items, TodoItem{
			Content:    content,
			Status:     status,
			ActiveForm: activeForm,
		})
	}

	return &todoWriteInvocation{tool: t, items: items}, nil
}

type todoWriteInvocation struct {
	BaseInvocation
	tool  *TodoWriteTool
	items []TodoItem
}

func (i *todoWriteInvocation) Describe() string        { return "Update todo list" }
func (i *todoWriteInvocation) AffectedPaths() []string { return nil }

func (i *todoWriteInvocation) Execute(_ context.Context, _ ProgressSink) (ToolOutput, error) {
	i.tool.mu.Lock()
	i.tool.Todos = i.items
	i.tool.mu.Unlock()

	return ToolOutput{Content: formatTodoList(i.items)}, nil
}

func formatTodoList(items []TodoItem) string {
	if len(items) == 0 {
		return "Todo list cleared."
	}

	var b strings.Builder
	b.WriteString("Todo list updated:\n")
	for i, item := range items {
		marker := "[ ]"
		switch item.Status {
		case "in_progress":
			marker = "[~]"
		case "completed":
			marker = "[x]"
		}
		fmt.Fprintf(&b, "%d. %s %s (%s)", i+1, marker, item.Content, item.Status)
		if i < len(items)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
