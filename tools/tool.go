// Package tools hosts the in-process tools the agent loop can execute
// on the model's behalf, plus the registry the loop resolves them from.
package tools

import (
	"context"
	"fmt"

	"cutui/model"
)

// Schema describes a tool's input as a JSON-schema object fragment:
// property name -> schema, plus the required property names.
type Schema struct {
	Properties map[string]any
	Required   []string
}

// Result is the outcome of one tool execution. At most one of Output
// and Error is set; Base64Image may accompany either.
type Result struct {
	Output      string
	Error       string
	Base64Image string
}

// Block converts the result into its conversation-store form.
func (r Result) Block(toolUseID string) model.ToolResultBlock {
	return model.ToolResultBlock{
		ToolUseID:   toolUseID,
		Output:      r.Output,
		Error:       r.Error,
		Base64Image: r.Base64Image,
	}
}

// Tool is one executable capability offered to the model.
type Tool interface {
	Name() string
	Description() string
	Schema() Schema

	// Run executes the tool. A failed execution is reported through
	// Result.Error, not the error return, so the model can react to
	// it; the error return is reserved for context cancellation.
	Run(ctx context.Context, input map[string]any) (Result, error)
}

// Registry holds the available tools in registration order.
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool. Registering a name twice replaces the earlier
// tool without disturbing its position.
func (r *Registry) Register(t Tool) {
	if _, exists := r.tools[t.Name()]; !exists {
		r.order = append(r.order, t.Name())
	}
	r.tools[t.Name()] = t
}

// Get resolves a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// All returns the tools in registration order.
func (r *Registry) All() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// stringArg extracts a required string argument from tool input.
func stringArg(input map[string]any, key string) (string, error) {
	v, ok := input[key]
	if !ok {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string", key)
	}
	return s, nil
}
