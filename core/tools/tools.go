// Package tools declares the functions the remote model may call and executes
// incoming call requests against registered handlers.
package tools

import (
	"context"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/jinzhu/copier"
)

// Declaration describes one callable function advertised at session setup.
type Declaration struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
}

// Declare builds a declaration whose parameter schema is reflected from the
// args struct type.
func Declare[Args any](name, description string) Declaration {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
		Anonymous:      true,
	}

	var args Args
	return Declaration{
		Name:        name,
		Description: description,
		Parameters:  reflector.Reflect(&args),
	}
}

// Handler executes one tool call. The returned value is marshalled verbatim
// into the tool response sent back to the endpoint.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Registry holds declarations and handlers and satisfies the session's tool
// executor contract.
type Registry struct {
	mu       sync.Mutex
	decls    []Declaration
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: map[string]Handler{}}
}

func (r *Registry) Register(decl Declaration, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.decls = append(r.decls, decl)
	r.handlers[decl.Name] = handler
}

// Declarations returns a deep copy of the registered declarations so callers
// cannot mutate registry state through the returned slice.
func (r *Registry) Declarations() []Declaration {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := make([]Declaration, 0, len(r.decls))
	copier.Copy(&copied, r.decls)
	return copied
}

// Execute runs the named tool. Unknown tools produce a structured failure
// result rather than an error so the model learns the call was invalid.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (any, error) {
	r.mu.Lock()
	handler, ok := r.handlers[name]
	r.mu.Unlock()

	if !ok {
		return map[string]any{
			"success": false,
			"error":   fmt.Sprintf("unknown tool: %s", name),
		}, nil
	}

	return handler(ctx, args)
}
