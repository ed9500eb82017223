package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// QuestionOption represents a choice for a question.
type QuestionOption struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

// QuestionSpec represents a single question to ask the user.
type QuestionSpec struct {
	Question    string           `json:"question"`
	Header      string           `json:"header"`
	Options     []QuestionOption `json:"options"`
	MultiSelect bool             `json:"multiSelect"`
}

// UserInputHandler provides user interaction for the AskUserQuestion tool.
type UserInputHandler interface {
	AskQuestions(ctx context.Context, questions []QuestionSpec) (map[string]string, error)
}

// AskUserQuestionTool blocks for user input, delegating to a callback interface.
type AskUserQuestionTool struct {
	Handler UserInputHandler
}

func (a *AskUserQuestionTool) Name() string           { return "AskUserQuestion" }
func (a *AskUserQuestionTool) DisplayName() string    { return "Ask user a question" }
func (a *AskUserQuestionTool) Kind() Kind             { return KindOther }
func (a *AskUserQuestionTool) IsConcurrencySafe() bool { return true }

func (a *AskUserQuestionTool) Schema() ParamSchema {
	return ParamSchema{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"maxItems": 4,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "The question to ask",
						},
						"header": map[string]any{
							"type":        "string",
							"description": "Short label (max 12 chars)",
							"maxLength":   12,
						},
						"options": map[string]any{
							"type":     "array",
							"minItems": 2,
							"maxItems": 4,
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"label":       map[string]any{"type": "string"},
									"description": map[string]any{"type": "string"},
								},
								"required": []string{"label", "description"},
							},
						},
						"multiSelect": map[string]any{
							"type":    "boolean",
							"default": false,
						},
					},
					"required": []string{"question", "header", "options", "multiSelect"},
				},
				"description": "Questions to ask the user (1-4 questions)",
			},
		},
		"required": []string{"questions"},
	}
}

func (a *AskUserQuestionTool) ExtractSignatureContent(params map[string]any) string {
	return "questions"
}

func (a *AskUserQuestionTool) AbstractPermissionRule(params map[string]any) string {
	return "AskUserQuestion"
}

func (a *AskUserQuestionTool) Build(params map[string]any) (Invocation, error) {
	rawQuestions, ok := params["questions"].([]any)
	if !ok || len(rawQuestions) == 0 {
		return nil, &ValidationError{FieldPath: "questions", Message: "questions is required and must be a non-empty array"}
	}
	if len(rawQuestions) > 4 {
		return nil, &ValidationError{FieldPath: "questions", Message: "maximum 4 questions allowed"}
	}

	questions := make([]QuestionSpec, 0, len(rawQuestions))
	for i, raw := range rawQuestions {
		data, err := json.Marshal(raw)
		if err != nil {
			return nil, &ValidationError{FieldPath: fmt.Sprintf("questions[%d]", i), Message: "invalid question"}
		}
		var q QuestionSpec
		if err := json.Unmarshal(data, &q); err != nil {
			return nil, &ValidationError{FieldPath: fmt.Sprintf("questions[%d]", i), Message: "invalid question"}
		}

		if q.Question == "" {
			return nil, &ValidationError{FieldPath: fmt.Sprintf("questions[%d].question", i), Message: "question is required"}
		}
		if q.Header == "" {
			return nil, &ValidationError{FieldPath: fmt.Sprintf("questions[%d].header", i), Message: "header is required"}
		}
		if len([]rune(q.Header)) > 12 {
			return nil, &ValidationError{FieldPath: fmt.Sprintf("questions[%d].header", i), Message: "header must be 12 chars or less"}
		}
		if len(q.Options) < 2 || len(q.Options) > 4 {
			return nil, &ValidationError{FieldPath: fmt.Sprintf("questions[%d]", i), Message: "must have 2-4 options"}
		}

		questions = append(questions, q)
	}

	return &askUserInvocation{handler: a.Handler, questions: questions}, nil
}

type askUserInvocation struct {
	BaseInvocation
	handler   UserInputHandler
	questions []QuestionSpec
}

func (i *askUserInvocation) Describe() string        { return "Ask user question(s)" }
func (i *askUserInvocation) AffectedPaths() []string { return nil }

func (i *askUserInvocation) Execute(ctx context.Context, _ ProgressSink) (ToolOutput, error) {
	if i.handler == nil {
		return ToolOutput{Content: "Error: user input not available in this context", IsError: true}, nil
	}

	answers, err := i.handler.AskQuestions(ctx, i.questions)
	if err != nil {
		return ToolOutput{
			Content: fmt.Sprintf("Error getting user input: %s", err),
			IsError: true,
		}, nil
	}

	var b strings.Builder
	b.WriteString("User answers:\n")
	for k, v := range answers {
		fmt.Fprintf(&b, "- %s: %s\n", k, v)
	}

	return ToolOutput{Content: strings.TrimRight(b.String(), "\n")}, nil
}
