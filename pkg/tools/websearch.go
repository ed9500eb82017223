package tools

import (
	"context"
	"fmt"
	"strings"
)

// SearchOptions configures domain filtering for web search.
type SearchOptions struct {
	AllowedDomains []string
	BlockedDomains []string
}

// SearchResult represents a single web search result.
type SearchResult struct {
	Title   string
	URL     string
	Snippet string
}

// SearchProvider executes web searches.
type SearchProvider interface {
	Search(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error)
}

// StubSearchProvider returns a helpful message when no real provider is configured.
type StubSearchProvider struct{}

func (s *StubSearchProvider) Search(_ context.Context, _ string, _ SearchOptions) ([]SearchResult, error) {
	return nil, fmt.Errorf("web search not configured. Set a SearchProvider on the WebSearchTool")
}

// WebSearchTool performs web searches via a configurable provider.
type WebSearchTool struct {
	Provider SearchProvider
}

func (w *WebSearchTool) Name() string           { return "WebSearch" }
func (w *WebSearchTool) DisplayName() string    { return "Search the web" }
func (w *WebSearchTool) Kind() Kind             { return KindNetwork }
func (w *WebSearchTool) IsConcurrencySafe() bool { return true }

func (w *WebSearchTool) Schema() ParamSchema {
	return ParamSchema{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The search query",
			},
			"allowed_domains": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Only include results from these domains",
			},
			"blocked_domains": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Exclude results from these domains",
			},
		},
		"required": []string{"query"},
	}
}

func (w *WebSearchTool) ExtractSignatureContent(params map[string]any) string {
	query, _ := params["query"].(string)
	return query
}

func (w *WebSearchTool) AbstractPermissionRule(params map[string]any) string {
	return "WebSearch"
}

func (w *WebSearchTool) Build(params map[string]any) (Invocation, error) {
	query, ok := params["query"].(string)
	if !ok || query == "" {
		return nil, &ValidationError{FieldPath: "query", Message: "query is required"}
	}

	opts := SearchOptions{}
	if domains, ok := params["allowed_domains"].([]any); ok {
		for _, d := range domains {
			if s, ok := d.(string); ok {
				opts.AllowedDomains = append(opts.AllowedDomains, s)
			}
		}
	}
	if domains, ok := params["blocked_domains"].([]any); ok {
		for _, d := range domains {
			if s, ok := d.(string); ok {
				opts.BlockedDomains = append(opts.BlockedDomains, s)
			}
		}
	}

	provider := w.Provider
	if provider == nil {
		provider = &StubSearchProvider{}
	}

	return &webSearchInvocation{provider: provider, query: query, opts: opts}, nil
}

type webSearchInvocation struct {
	BaseInvocation
	provider SearchProvider
	query    string
	opts     SearchOptions
}

func (i *webSearchInvocation) Describe() string        { return "Search: " + i.query }
func (i *webSearchInvocation) AffectedPaths() []string { return nil }

func (i *webSearchInvocation) Execute(ctx context.Context, _ ProgressSink) (ToolOutput, error) {
	results, err := i.provider.Search(ctx, i.query, i.opts)
	if err != nil {
		return ToolOutput{Content: fmt.Sprintf("Error: %s", err), IsError: true}, nil
	}

	if len(results) == 0 {
		return ToolOutput{Content: "No results found."}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Search results for %q:\n\n", i.query)
	for idx, r := range results {
		fmt.Fprintf(&b, "%d. **%s**\n   %s\n   %s\n", idx+1, r.Title, r.URL, r.Snippet)
		if idx < len(results)-1 {
			b.WriteByte('\n')
		}
	}

	return ToolOutput{Content: b.String()}, nil
}
