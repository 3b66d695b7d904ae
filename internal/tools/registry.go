package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/speechlab/dubkit/internal/dubbing"
)

// Handler runs one tool invocation with already-decoded JSON arguments.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

type Param struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // "string" | "integer"
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

type Tool struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Params      []Param `json:"params"`
	Handler     Handler `json:"-"`
}

// Schema renders the tool's input schema as a JSON-schema object, the
// shape function-calling runtimes expect.
func (t Tool) Schema() map[string]any {
	props := make(map[string]any, len(t.Params))
	var required []string
	for _, p := range t.Params {
		props[p.Name] = map[string]any{
			"type":        p.Type,
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// Registry — a static name -> (schema, handler) mapping, built once at
// process start.
type Registry struct {
	tools map[string]Tool
	order []string
}

func (r *Registry) register(t Tool) {
	if _, dup := r.tools[t.Name]; dup {
		panic(fmt.Sprintf("tool %q registered twice", t.Name))
	}
	r.tools[t.Name] = t
	r.order = append(r.order, t.Name)
}

// List returns the tools in registration order.
func (r *Registry) List() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (any, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, &dubbing.NotFoundError{Resource: "tool " + name}
	}
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	return t.Handler(ctx, args)
}
