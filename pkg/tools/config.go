package tools

import (
	"context"
	"fmt"
	"sync"
)

// ConfigStore provides runtime configuration get/set.
type ConfigStore interface {
	Get(key string) (any, bool)
	Set(key string, value any) error
}

// InMemoryConfigStore is a simple in-memory configuration store.
type InMemoryConfigStore struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewInMemoryConfigStore creates a new InMemoryConfigStore.
func NewInMemoryConfigStore() *InMemoryConfigStore {
	return &InMemoryConfigStore{data: make(map[string]any)}
}

func (s *InMemoryConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *InMemoryConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// ConfigTool provides runtime configuration get/set.
type ConfigTool struct {
	Store ConfigStore
}

func (c *ConfigTool) Name() string           { return "Config" }
func (c *ConfigTool) DisplayName() string    { return "Get or set config" }
func (c *ConfigTool) Kind() Kind             { return KindOther }
func (c *ConfigTool) IsConcurrencySafe() bool { return true }

func (c *ConfigTool) Schema() ParamSchema {
	return ParamSchema{
		"type": "object",
		"properties": map[string]any{
			"setting": map[string]any{
				"type":        "string",
				"description": "The configuration key to get or set",
			},
			"value": map[string]any{
				"description": "The value to set (omit to read current value)",
			},
		},
		"required": []string{"setting"},
	}
}

func (c *ConfigTool) ExtractSignatureContent(params map[string]any) string {
	setting, _ := params["setting"].(string)
	return setting
}

func (c *ConfigTool) AbstractPermissionRule(params map[string]any) string {
	setting, _ := params["setting"].(string)
	return fmt.Sprintf("Config(%s)", setting)
}

func (c *ConfigTool) Build(params map[string]any) (Invocation, error) {
	setting, ok := params["setting"].(string)
	if !ok || setting == "" {
		return nil, &ValidationError{FieldPath: "setting", Message: "setting is required"}
	}

	value, hasValue := params["value"]

	return &configInvocation{store: c.Store, setting: setting, value: value, hasValue: hasValue}, nil
}

type configInvocation struct {
	BaseInvocation
	store    ConfigStore
	setting  string
	value    any
	hasValue bool
}

func (i *configInvocation) Describe() string        { return "Config " + i.setting }
func (i *configInvocation) AffectedPaths() []string { return nil }

func (i *configInvocation) Execute(_ context.Context, _ ProgressSink) (ToolOutput, error) {
	if i.store == nil {
		return ToolOutput{Content: "Error: config store not configured", IsError: true}, nil
	}

	if i.hasValue {
		if err := i.store.Set(i.setting, i.value); err != nil {
			return ToolOutput{
				Content: fmt.Sprintf("Error setting %s: %s", i.setting, err),
				IsError: true,
			}, nil
		}
		return ToolOutput{Content: fmt.Sprintf("%s set to %v", i.setting, i.value)}, nil
	}

	value, exists := i.store.Get(i.setting)
	if !exists {
		return ToolOutput{
			Content: fmt.Sprintf("Error: setting %q not found", i.setting),
			IsError: true,
		}, nil
	}

	return ToolOutput{Content: fmt.Sprintf("%s = %v", i.setting, value)}, nil
}
