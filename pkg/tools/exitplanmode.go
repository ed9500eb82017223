package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// AllowedPrompt represents a permitted action in the implementation phase.
type AllowedPrompt struct {
	Tool   string `json:"tool"`
	Prompt string `json:"prompt"`
}

// ExitPlanModeTool signals that plan mode should be exited.
type ExitPlanModeTool struct{}

func (e *ExitPlanModeTool) Name() string           { return "ExitPlanMode" }
func (e *ExitPlanModeTool) DisplayName() string    { return "Exit plan mode" }
func (e *ExitPlanModeTool) Kind() Kind             { return KindOther }
func (e *ExitPlanModeTool) IsConcurrencySafe() bool { return true }

func (e *ExitPlanModeTool) Schema() ParamSchema {
	return ParamSchema{
		"type": "object",
		"properties": map[string]any{
			"allowedPrompts": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"tool": map[string]any{
							"type": "string",
							"enum": []string{"Bash"},
						},
						"prompt": map[string]any{
							"type":        "string",
							"description": "Semantic description of the action",
						},
					},
					"required": []string{"tool", "prompt"},
				},
				"description": "Prompt-based permissions needed to implement the plan",
			},
		},
	}
}

func (e *ExitPlanModeTool) ExtractSignatureContent(params map[string]any) string {
	return "plan"
}

func (e *ExitPlanModeTool) AbstractPermissionRule(params map[string]any) string {
	return "ExitPlanMode"
}

func (e *ExitPlanModeTool) Build(params map[string]any) (Invocation, error) {
	var prompts []AllowedPrompt

	if raw, ok := params["allowedPrompts"].([]any); ok {
		for i, item := range raw {
			data, err := json.Marshal(item)
			if err != nil {
				return nil, &ValidationError{FieldPath: fmt.Sprintf("allowedPrompts[%d]", i), Message: "invalid entry"}
			}
			var p AllowedPrompt
			if err := json.Unmarshal(data, &p); err != nil {
				return nil, &ValidationError{FieldPath: fmt.Sprintf("allowedPrompts[%d]", i), Message: "invalid entry"}
			}
			if p.Tool != "Bash" {
				return nil, &ValidationError{FieldPath: fmt.Sprintf("allowedPrompts[%d].tool", i), Message: "tool must be \"Bash\""}
			}
			if p.Prompt == "" {
				return nil, &ValidationError{FieldPath: fmt.Sprintf("allowedPrompts[%d].prompt", i), Message: "prompt is required"}
			}
			prompts = append(prompts, p)
		}
	}

	return &exitPlanModeInvocation{prompts: prompts}, nil
}

type exitPlanModeInvocation struct {
	BaseInvocation
	prompts []AllowedPrompt
}

func (i *exitPlanModeInvocation) Describe() string        { return "Exit plan mode" }
func (i *exitPlanModeInvocation) AffectedPaths() []string { return nil }

func (i *exitPlanModeInvocation) Execute(_ context.Context, _ ProgressSink) (ToolOutput, error) {
	if len(i.prompts) == 0 {
		return ToolOutput{Content: "Exiting plan mode."}, nil
	}

	var b strings.Builder
	b.WriteString("Exiting plan mode. Allowed prompts:\n")
	for _, p := range i.prompts {
		fmt.Fprintf(&b, "- [%s] %s\n", p.Tool, p.Prompt)
	}

	return ToolOutput{Content: strings.TrimRight(b.String(), "\n")}, nil
}
