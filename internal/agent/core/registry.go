package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// ParamSpec describes one tool parameter for prompt construction.
type ParamSpec struct {
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Default     interface{} `json:"default,omitempty"`
}

// ToolFunc executes a tool with the step's parameters. Faults are
// reported through the error return; executors never panic past
// their own boundary.
type ToolFunc func(ctx context.Context, params map[string]interface{}) (map[string]interface{}, error)

// Tool is an immutable registered tool.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]ParamSpec
	Execute     ToolFunc
}

// Registry is the fixed name -> tool mapping. It is populated once
// at startup and read concurrently without mutation afterwards, so
// no locking is required.
type Registry struct {
	tools map[string]Tool
	order []string
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register inserts a tool by name. Last write wins on collision.
func (r *Registry) Register(tool Tool) {
	if _, exists := r.tools[tool.Name]; !exists {
		r.order = append(r.order, tool.Name)
	}
	r.tools[tool.Name] = tool
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// List returns all tools in registration order.
func (r *Registry) List() []Tool {
	out := make([]Tool, 0, len(r.tools))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Catalog renders the registered tools as a prompt fragment.
func (r *Registry) Catalog() string {
	var b strings.Builder
	for _, tool := range r.List() {
		fmt.Fprintf(&b, "- %s: %s\n", tool.Name, tool.Description)
		names := make([]string, 0, len(tool.Parameters))
		for name := range tool.Parameters {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			spec := tool.Parameters[name]
			if spec.Default != nil {
				fmt.Fprintf(&b, "    %s (%s): %s (default: %v)\n", name, spec.Type, spec.Description, spec.Default)
			} else {
				fmt.Fprintf(&b, "    %s (%s): %s\n", name, spec.Type, spec.Description)
			}
		}
	}
	return b.String()
}
