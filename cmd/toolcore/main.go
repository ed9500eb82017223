// Command toolcore executes a single tool call through the pipeline.
//
// Usage:
//
//	go run ./cmd/toolcore -tool Bash -params '{"command":"echo hi"}'
//	go run ./cmd/toolcore -tool Read -params '{"file_path":"/tmp/x.txt"}' -mode AutoEdit
//	go run ./cmd/toolcore -config ~/.toolcore/permissions.json -tool Glob -params '{"pattern":"**/*.go"}'
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/jg-phare/toolcore/pkg/configwatch"
	"github.com/jg-phare/toolcore/pkg/permission"
	"github.com/jg-phare/toolcore/pkg/pipeline"
	"github.com/jg-phare/toolcore/pkg/tools"
)

func main() {
	toolName := flag.String("tool", "", "Tool to invoke (e.g. Bash, Read, Write, Glob, Grep)")
	paramsJSON := flag.String("params", "{}", "JSON object of tool parameters")
	configPath := flag.String("config", defaultConfigPath(), "Path to permission config JSON")
	mode := flag.String("mode", string(permission.ModeDefault), "Permission mode: Default, AutoEdit, Yolo, Plan")
	sessionID := flag.String("session", "cli", "Session ID for hook/config attribution")
	flag.Parse()

	if *toolName == "" {
		fmt.Fprintln(os.Stderr, "Error: -tool is required")
		flag.Usage()
		os.Exit(1)
	}

	var params map[string]any
	if err := json.Unmarshal([]byte(*paramsJSON), &params); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid -params JSON: %v\n", err)
		os.Exit(1)
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	registry := buildToolRegistry(cwd)

	evaluator := permission.NewEvaluator(&permission.Config{}, permission.Mode(*mode))
	if err := ensureConfigFile(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	watcher := configwatch.New(*configPath, evaluator)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := watcher.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error starting config watcher: %v\n", err)
		os.Exit(1)
	}
	defer watcher.Stop()

	persister := permission.NewFileAllowListPersister(*configPath)

	p := pipeline.New(registry, evaluator,
		pipeline.WithPersistCallback(persister.Persist),
		pipeline.WithHistoryCapacity(100),
		pipeline.WithEventSink(logEvent),
	)

	result := p.Execute(ctx, *toolName, params, pipeline.ExecutionContext{
		SessionID:      *sessionID,
		PermissionMode: permission.Mode(*mode),
	})

	if result.Success {
		fmt.Println(result.DisplayContent)
		return
	}

	fmt.Fprintf(os.Stderr, "Error: %s\n", result.DisplayContent)
	if result.Error != nil {
		os.Exit(exitCodeFor(result.Error.Kind))
	}
	os.Exit(1)
}

func exitCodeFor(kind pipeline.ErrorKind) int {
	switch kind {
	case pipeline.ErrToolNotFound, pipeline.ErrValidationError:
		return 2
	case pipeline.ErrPermissionDenied, pipeline.ErrUserRejected:
		return 3
	default:
		return 1
	}
}

func logEvent(e pipeline.Event) {
	if e.Kind == "stage_started" || e.Kind == "stage_completed" {
		return
	}
	fmt.Fprintf(os.Stderr, "[%s] %s\n", e.Kind, e.ToolName)
}

// buildToolRegistry registers every concrete tool except Config (which
// needs a ConfigStore this CLI does not have) with its CWD-scoped
// configuration, mirroring the teacher's buildToolRegistry.
func buildToolRegistry(cwd string) *tools.Registry {
	registry := tools.NewRegistry(
		tools.WithAllowed("Read", "Glob", "Grep"),
	)
	registry.Register(&tools.FileReadTool{})
	registry.Register(&tools.FileWriteTool{})
	registry.Register(&tools.FileEditTool{})
	registry.Register(&tools.GlobTool{CWD: cwd})
	registry.Register(&tools.GrepTool{CWD: cwd})
	registry.Register(&tools.BashTool{CWD: cwd})
	registry.Register(&tools.NotebookEditTool{})
	registry.Register(&tools.WebFetchTool{})
	registry.Register(&tools.WebSearchTool{})
	registry.Register(&tools.TodoWriteTool{})
	registry.Register(&tools.AskUserQuestionTool{})
	registry.Register(&tools.ExitPlanModeTool{})
	return registry
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "permissions.json"
	}
	return filepath.Join(home, ".toolcore", "permissions.json")
}

// ensureConfigFile creates an empty permission config at path if none
// exists yet, so a fresh checkout can run without a manual setup step.
func ensureConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	empty := permission.Config{Allow: []string{}, Ask: []string{}, Deny: []string{}}
	data, err := json.MarshalIndent(empty, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
