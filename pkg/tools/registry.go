package tools

import "sort"

// Registry holds available tools and resolves them by name.
type Registry struct {
	tools    map[string]Tool
	allowed  map[string]bool // auto-allowed tools (no permission prompt)
	disabled map[string]bool // explicitly disallowed
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithAllowed marks tool names as auto-allowed.
func WithAllowed(names ...string) RegistryOption {
	return func(r *Registry) {
		for _, n := range names {
			r.allowed[n] = true
		}
	}
}

// WithDisabled marks tool names as disabled.
func WithDisabled(names ...string) RegistryOption {
	return func(r *Registry) {
		for _, n := range names {
			r.disabled[n] = true
		}
	}
}

// NewRegistry creates a new tool registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		tools:    make(map[string]Tool),
		allowed:  make(map[string]bool),
		disabled: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a tool to the registry.
func (r *Registry) Register(tool Tool) {
	r.tools[tool.Name()] = tool
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// IsAllowed returns true if the tool is auto-allowed (no permission prompt needed).
func (r *Registry) IsAllowed(name string) bool {
	return r.allowed[name]
}

// IsDisabled returns true if the tool is explicitly disallowed.
func (r *Registry) IsDisabled(name string) bool {
	return r.disabled[name]
}

// Names returns all registered, non-disabled tool names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		if !r.disabled[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// ToolDescriptor is a name/display-name/kind/schema record suitable for presenting the
// registry's contents to a caller without coupling the registry to any
// particular wire format. It replaces the teacher's llm.ToolDefinition
// now that the chat-model transport layer is out of scope.
type ToolDescriptor struct {
	Name        string
	DisplayName string
	Kind        Kind
	Schema      ParamSchema
}

// ToolDefinitions returns descriptors for all enabled tools, sorted by
// name.
func (r *Registry) ToolDefinitions() []ToolDescriptor {
	names := r.Names()
	defs := make([]ToolDescriptor, 0, len(names))
	for _, name := range names {
		tool := r.tools[name]
		defs = append(defs, ToolDescriptor{
			Name:        tool.Name(),
			DisplayName: tool.DisplayName(),
			Kind:        tool.Kind(),
			Schema:      tool.Schema(),
		})
	}
	return defs
}
