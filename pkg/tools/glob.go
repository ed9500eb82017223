package tools

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// GlobTool finds files by glob pattern.
type GlobTool struct {
	CWD string
}

func (g *GlobTool) Name() string           { return "Glob" }
func (g *GlobTool) DisplayName() string    { return "Find files" }
func (g *GlobTool) Kind() Kind             { return KindSearch }
func (g *GlobTool) IsConcurrencySafe() bool { return true }

func (g *GlobTool) Schema() ParamSchema {
	return ParamSchema{
		"type": "object",
		"properties": map[string]any{
			"pattern": map[string]any{
				"type":        "string",
				"description": "The glob pattern to match files against",
			},
			"path": map[string]any{
				"type":        "string",
				"description": "The directory to search in (default: CWD)",
			},
		},
		"required": []string{"pattern"},
	}
}

func (g *GlobTool) ExtractSignatureContent(params map[string]any) string {
	pattern, _ := params["pattern"].(string)
	return pattern
}

func (g *GlobTool) AbstractPermissionRule(params map[string]any) string {
	searchDir := g.CWD
	if p, ok := params["path"].(string); ok && p != "" {
		searchDir = p
	}
	return searchDir + "/**"
}

func (g *GlobTool) Build(params map[string]any) (Invocation, error) {
	pattern, ok := params["pattern"].(string)
	if !ok || pattern == "" {
		return nil, &ValidationError{FieldPath: "pattern", Message: "pattern is required"}
	}

	searchDir := g.CWD
	if p, ok := params["path"].(string); ok && p != "" {
		searchDir = p
	}

	return &globInvocation{pattern: pattern, searchDir: searchDir}, nil
}

type globInvocation struct {
	BaseInvocation
	pattern   string
	searchDir string
}

func (i *globInvocation) Describe() string        { return "Glob " + i.pattern }
func (i *globInvocation) AffectedPaths() []string { return []string{i.searchDir} }

func (i *globInvocation) Execute(_ context.Context, _ ProgressSink) (ToolOutput, error) {
	fullPattern := filepath.Join(i.searchDir, i.pattern)

	matches, err := doublestar.FilepathGlob(fullPattern)
	if err != nil {
		return ToolOutput{Content: fmt.Sprintf("Error: %s", err), IsError: true}, nil
	}

	sort.Strings(matches)

	if len(matches) == 0 {
		return ToolOutput{Content: "No files matched the pattern."}, nil
	}

	return ToolOutput{Content: strings.Join(matches, "\n")}, nil
}
