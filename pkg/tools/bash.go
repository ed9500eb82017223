package tools

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const (
	bashDefaultTimeout = 120 * time.Second
	bashMaxTimeout     = 600 * time.Second
	bashMaxOutput      = 30000 // characters
)

// BashTool executes shell commands.
type BashTool struct {
	CWD string // working directory for command execution
}

func (b *BashTool) Name() string           { return "Bash" }
func (b *BashTool) DisplayName() string    { return "Run shell command" }
func (b *BashTool) Kind() Kind             { return KindExecute }
func (b *BashTool) IsConcurrencySafe() bool { return false }

func (b *BashTool) Schema() ParamSchema {
	return ParamSchema{
		"type": "object",
		"properties": map[string]any{
			"command": map[string]any{
				"type":        "string",
				"description": "The command to execute",
			},
			"timeout": map[string]any{
				"type":        "integer",
				"description": "Optional timeout in milliseconds (max 600000)",
			},
			"description": map[string]any{
				"type":        "string",
				"description": "Clear, concise description of what this command does",
			},
		},
		"required": []string{"command"},
	}
}

func (b *BashTool) ExtractSignatureContent(params map[string]any) string {
	command, _ := params["command"].(string)
	return command
}

func (b *BashTool) AbstractPermissionRule(params map[string]any) string {
	command, _ := params["command"].(string)
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "Bash(*)"
	}
	return fmt.Sprintf("Bash(%s:*)", fields[0])
}

func (b *BashTool) Build(params map[string]any) (Invocation, error) {
	command, ok := params["command"].(string)
	if !ok || command == "" {
		return nil, &ValidationError{FieldPath: "command", Message: "command is required"}
	}

	timeout := bashDefaultTimeout
	if t, ok := params["timeout"].(float64); ok && t > 0 {
		timeout = time.Duration(t) * time.Millisecond
		if timeout > bashMaxTimeout {
			timeout = bashMaxTimeout
		}
	}

	return &bashInvocation{command: command, cwd: b.CWD, timeout: timeout}, nil
}

type bashInvocation struct {
	BaseInvocation
	command string
	cwd     string
	timeout time.Duration
}

func (i *bashInvocation) Describe() string { return "Run: " + i.command }

func (i *bashInvocation) AffectedPaths() []string {
	if i.cwd == "" {
		return nil
	}
	return []string{i.cwd}
}

func (i *bashInvocation) Execute(ctx context.Context, _ ProgressSink) (ToolOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "bash", "-c", i.command)
	if i.cwd != "" {
		cmd.Dir = i.cwd
	}

	output, err := cmd.CombinedOutput()
	result := string(output)

	if len(result) > bashMaxOutput {
		result = result[:bashMaxOutput] + fmt.Sprintf(
			"\n... (truncated, %d total characters. Consider using head/tail or piping to limit output)",
			len(string(output)))
	}

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return ToolOutput{
				Content: fmt.Sprintf("Error: command timed out after %s\n%s", i.timeout, result),
				IsError: true,
			}, nil
		}
		return ToolOutput{
			Content: strings.TrimRight(result, "\n"),
			IsError: true,
		}, nil
	}

	return ToolOutput{Content: strings.TrimRight(result, "\n")}, nil
}
