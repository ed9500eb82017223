package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	webFetchTimeout    = 30 * time.Second
	webFetchMaxBody    = 5 * 1024 * 1024 // 5MB
	webFetchMaxContent = 50000           // chars after extraction
	webFetchUserAgent  = "toolcore/1.0 (Agent)"
)

// ContentSummarizer summarizes web page content using an LLM.
type ContentSummarizer interface {
	Summarize(ctx context.Context, prompt, content string) (string, error)
}

// WebFetchTool fetches web content and extracts text from HTML.
type WebFetchTool struct {
	// HTTPClient overrides the default client (useful for testing).
	HTTPClient *http.Client

	// Summarizer, when set, processes fetched content with a prompt via an LLM.
	// When nil, raw extracted content is returned.
	Summarizer ContentSummarizer
}

func (w *WebFetchTool) Name() string           { return "WebFetch" }
func (w *WebFetchTool) DisplayName() string    { return "Fetch URL" }
func (w *WebFetchTool) Kind() Kind             { return KindNetwork }
func (w *WebFetchTool) IsConcurrencySafe() bool { return true }

func (w *WebFetchTool) Schema() ParamSchema {
	return ParamSchema{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "The URL to fetch content from",
			},
			"prompt": map[string]any{
				"type":        "string",
				"description": "The prompt describing what to extract from the page",
			},
		},
		"required": []string{"url", "prompt"},
	}
}

func (w *WebFetchTool) ExtractSignatureContent(params map[string]any) string {
	url, _ := params["url"].(string)
	return url
}

func (w *WebFetchTool) AbstractPermissionRule(params map[string]any) string {
	url, _ := params["url"].(string)
	return "WebFetch(domain:" + url + ")"
}

func (w *WebFetchTool) Build(params map[string]any) (Invocation, error) {
	rawURL, ok := params["url"].(string)
	if !ok || rawURL == "" {
		return nil, &ValidationError{FieldPath: "url", Message: "url is required"}
	}

	prompt, _ := params["prompt"].(string)
	if prompt == "" {
		return nil, &ValidationError{FieldPath: "prompt", Message: "prompt is required"}
	}

	if strings.HasPrefix(rawURL, "http://") {
		rawURL = "https://" + rawURL[7:]
	}
	if !strings.HasPrefix(rawURL, "https://") {
		return nil, &ValidationError{FieldPath: "url", Message: "url must start with http:// or https://"}
	}

	return &webFetchInvocation{url: rawURL, prompt: prompt, client: w.HTTPClient, summarizer: w.Summarizer}, nil
}

type webFetchInvocation struct {
	BaseInvocation
	url        string
	prompt     string
	client     *http.Client
	summarizer ContentSummarizer
}

func (i *webFetchInvocation) Describe() string        { return "Fetch " + i.url }
func (i *webFetchInvocation) AffectedPaths() []string { return nil }

func (i *webFetchInvocation) Execute(ctx context.Context, _ ProgressSink) (ToolOutput, error) {
	client := i.client
	if client == nil {
		client = &http.Client{
			Timeout: webFetchTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		}
	}

	ctx, cancel := context.WithTimeout(ctx, webFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, i.url, nil)
	if err != nil {
		return ToolOutput{Content: fmt.Sprintf("Error creating request: %s", err), IsError: true}, nil
	}
	req.Header.Set("User-Agent", webFetchUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return ToolOutput{Content: fmt.Sprintf("Error fetching URL: %s", err), IsError: true}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return ToolOutput{Content: fmt.Sprintf("Error: HTTP %d from %s", resp.StatusCode, i.url), IsError: true}, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, webFetchMaxBody))
	if err != nil {
		return ToolOutput{Content: fmt.Sprintf("Error reading response: %s", err), IsError: true}, nil
	}

	content := string(body)
	contentType := resp.Header.Get("Content-Type")

	if strings.Contains(contentType, "text/html") || strings.Contains(contentType, "application/xhtml") {
		content = extractTextFromHTML(content)
	}

	if len(content) > webFetchMaxContent {
		content = content[:webFetchMaxContent] + "\n... (truncated)"
	}

	if i.summarizer != nil {
		summary, sumErr := i.summarizer.Summarize(ctx, i.prompt, content)
		if sumErr == nil && summary != "" {
			return ToolOutput{
				Content: fmt.Sprintf("Fetched and summarized content from %s:\n\n%s", i.url, summary),
			}, nil
		}
	}

	return ToolOutput{
		Content: fmt.Sprintf("Fetched content from %s:\n\nPrompt: %s\n\n%s", i.url, i.prompt, content),
	}, nil
}

// extractTextFromHTML uses the x/net/html tokenizer to strip tags and extract visible text.
func extractTextFromHTML(rawHTML string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(rawHTML))
	var b strings.Builder
	var skip bool

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			tag := string(tn)
			if tag == "script" || tag == "style" || tag == "noscript" || tag == "head" {
				skip = true
			}
			if isBlockTag(tag) {
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			tag := string(tn)
			if tag == "script" || tag == "style" || tag == "noscript" || tag == "head" {
				skip = false
			}
		case html.TextToken:
			if !skip {
				text := strings.TrimSpace(string(tokenizer.Text()))
				if text != "" {
					if b.Len() > 0 {
						b.WriteByte(' ')
					}
					b.WriteString(text)
				}
			}
		}
	}
}

func isBlockTag(tag string) bool {
	switch tag {
	case "div", "p", "br", "h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li", "table", "tr", "td", "th",
		"section", "article", "header", "footer", "nav",
		"blockquote", "pre", "hr":
		return true
	}
	return false
}
