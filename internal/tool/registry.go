// Package tool provides the tool registry and the built-in tools.
package tool

import (
	"context"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/mcpfetch/mcpfetch/internal/errors"
)

// Handler executes a tool invocation and returns its content items.
type Handler func(ctx context.Context, args map[string]any) ([]Content, error)

// Descriptor describes a registered tool. Immutable once registered.
type Descriptor struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
}

// registration pairs a descriptor with its handler.
type registration struct {
	desc    Descriptor
	handler Handler
}

// Registry maps tool names to descriptors and handlers.
//
// Registration order is preserved for listing. All methods are safe for
// concurrent use; in practice registration happens once at startup and
// invocation happens from session goroutines.
type Registry struct {
	mu    sync.RWMutex
	order []string
	tools map[string]*registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]*registration, 8),
	}
}

// Register adds a tool descriptor and its handler.
//
// Returns DuplicateToolError if the name is already registered.
func (r *Registry) Register(desc Descriptor, handler Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[desc.Name]; exists {
		return &errors.DuplicateToolError{Name: desc.Name}
	}

	r.tools[desc.Name] = &registration{desc: desc, handler: handler}
	r.order = append(r.order, desc.Name)

	return nil
}

// List returns all registered descriptors in registration order.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].desc)
	}

	return out
}

// Invoke looks up a tool by name, validates required arguments against its
// input schema, and runs the handler.
//
// Returns UnknownToolError if the name is not registered,
// MissingArgumentError if a required field is absent, and wraps any handler
// failure in ToolExecutionError.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) ([]Content, error) {
	r.mu.RLock()
	reg, exists := r.tools[name]
	r.mu.RUnlock()

	if !exists {
		return nil, &errors.UnknownToolError{Name: name}
	}

	if schema := reg.desc.InputSchema; schema != nil {
		for _, field := range schema.Required {
			if _, ok := args[field]; !ok {
				return nil, &errors.MissingArgumentError{Tool: name, Field: field}
			}
		}
	}

	content, err := reg.handler(ctx, args)
	if err != nil {
		return nil, &errors.ToolExecutionError{Tool: name, Err: err}
	}

	return content, nil
}
