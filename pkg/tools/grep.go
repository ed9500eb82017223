package tools

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

const grepMaxOutput = 100000 // characters

// GrepTool searches file contents using ripgrep.
type GrepTool struct {
	CWD string
}

func (g *GrepTool) Name() string           { return "Grep" }
func (g *GrepTool) DisplayName() string    { return "Search file contents" }
func (g *GrepTool) Kind() Kind             { return KindSearch }
func (g *GrepTool) IsConcurrencySafe() bool { return true }

func (g *GrepTool) Schema() ParamSchema {
	return ParamSchema{
		"type": "object",
		"properties": map[string]any{
			"pattern": map[string]any{
				"type":        "string",
				"description": "The regular expression pattern to search for",
			},
			"path": map[string]any{
				"type":        "string",
				"description": "File or directory to search in (default: CWD)",
			},
			"glob": map[string]any{
				"type":        "string",
				"description": "Glob pattern to filter files (e.g. \"*.js\")",
			},
			"output_mode": map[string]any{
				"type":        "string",
				"description": "Output mode: content, files_with_matches, count",
			},
			"-i": map[string]any{
				"type":        "boolean",
				"description": "Case insensitive search",
			},
			"-n": map[string]any{
				"type":        "boolean",
				"description": "Show line numbers (default true)",
			},
			"-A": map[string]any{
				"type":        "number",
				"description": "Lines to show after each match",
			},
			"-B": map[string]any{
				"type":        "number",
				"description": "Lines to show before each match",
			},
			"-C": map[string]any{
				"type":        "number",
				"description": "Lines of context around each match",
			},
			"type": map[string]any{
				"type":        "string",
				"description": "File type filter (e.g. js, py, go)",
			},
			"head_limit": map[string]any{
				"type":        "number",
				"description": "Limit output to first N entries",
			},
			"multiline": map[string]any{
				"type":        "boolean",
				"description": "Enable multiline mode",
			},
		},
		"required": []string{"pattern"},
	}
}

func (g *GrepTool) ExtractSignatureContent(params map[string]any) string {
	pattern, _ := params["pattern"].(string)
	return pattern
}

func (g *GrepTool) AbstractPermissionRule(params map[string]any) string {
	searchPath := g.CWD
	if p, ok := params["path"].(string); ok && p != "" {
		searchPath = p
	}
	return searchPath + "/**"
}

func (g *GrepTool) Build(params map[string]any) (Invocation, error) {
	pattern, ok := params["pattern"].(string)
	if !ok || pattern == "" {
		return nil, &ValidationError{FieldPath: "pattern", Message: "pattern is required"}
	}

	searchPath := g.CWD
	if p, ok := params["path"].(string); ok && p != "" {
		searchPath = p
	}

	return &grepInvocation{pattern: pattern, searchPath: searchPath, params: params}, nil
}

type grepInvocation struct {
	BaseInvocation
	pattern    string
	searchPath string
	params     map[string]any
}

func (i *grepInvocation) Describe() string        { return "Grep " + i.pattern }
func (i *grepInvocation) AffectedPaths() []string { return []string{i.searchPath} }

func (i *grepInvocation) Execute(ctx context.Context, _ ProgressSink) (ToolOutput, error) {
	args := i.buildArgs()
	args = append(args, i.searchPath)

	cmd := exec.CommandContext(ctx, "rg", args...)
	output, err := cmd.CombinedOutput()
	result := strings.TrimRight(string(output), "\n")

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
			return ToolOutput{Content: "No matches found."}, nil
		}
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 2 {
			return ToolOutput{Content: fmt.Sprintf("Error: %s", result), IsError: true}, nil
		}
		return ToolOutput{Content: fmt.Sprintf("Error running rg: %s", err), IsError: true}, nil
	}

	if result == "" {
		return ToolOutput{Content: "No matches found."}, nil
	}

	if hl, ok := i.params["head_limit"].(float64); ok && hl > 0 {
		lines := strings.Split(result, "\n")
		limit := int(hl)
		if limit < len(lines) {
			result = strings.Join(lines[:limit], "\n")
		}
	}

	if len(result) > grepMaxOutput {
		totalLen := len(result)
		result = result[:grepMaxOutput] + fmt.Sprintf("\n... (truncated, %d total characters)", totalLen)
	}

	return ToolOutput{Content: result}, nil
}

func (i *grepInvocation) buildArgs() []string {
	input := i.params
	var args []string

	outputMode := "files_with_matches"
	if om, ok := input["output_mode"].(string); ok && om != "" {
		outputMode = om
	}

	switch outputMode {
	case "files_with_matches":
		args = append(args, "--files-with-matches")
	case "count":
		args = append(args, "--count")
	case "content":
		showLineNumbers := true
		if n, ok := input["-n"].(bool); ok {
			showLineNumbers = n
		}
		if showLineNumbers {
			args = append(args, "--line-number")
		}
	}

	if ci, ok := input["-i"].(bool); ok && ci {
		args = append(args, "--ignore-case")
	}

	if a, ok := input["-A"].(float64); ok && a > 0 {
		args = append(args, "-A", strconv.Itoa(int(a)))
	}
	if b, ok := input["-B"].(float64); ok && b > 0 {
		args = append(args, "-B", strconv.Itoa(int(b)))
	}
	if c, ok := input["-C"].(float64); ok && c > 0 {
		args = append(args, "-C", strconv.Itoa(int(c)))
	}

	if gl, ok := input["glob"].(string); ok && gl != "" {
		args = append(args, "--glob", gl)
	}

	if ft, ok := input["type"].(string); ok && ft != "" {
		args = append(args, "--type", ft)
	}

	if ml, ok := input["multiline"].(bool); ok && ml {
		args = append(args, "--multiline", "--multiline-dotall")
	}

	args = append(args, "--", i.pattern)

	return args
}
