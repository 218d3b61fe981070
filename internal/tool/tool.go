// Package tool implements the fixed tool registry and tool-call executor.
//
// Tools are declared once at process start and never mutated. Each tool makes
// exactly one outbound call to an external collaborator and forwards the raw
// response unmodified.
package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Sentinel errors. Use errors.Is to check.
var (
	// ErrUnknownTool is returned when the model requests a tool that is not
	// registered.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrInvalidArguments is returned when the requested arguments fail
	// schema validation. Validation happens before any network call.
	ErrInvalidArguments = errors.New("invalid tool arguments")
)

// ExecutionError wraps a failure from the external collaborator behind a tool.
type ExecutionError struct {
	Tool string
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// Param describes one declared tool parameter.
type Param struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

// Descriptor describes a tool to model providers and MCP clients.
type Descriptor struct {
	Name        string
	Description string
	Params      []Param
}

// Schema renders the descriptor as a JSON Schema object suitable for provider
// tool definitions and for validation.
func (d Descriptor) Schema() map[string]any {
	props := make(map[string]any, len(d.Params))
	var required []any
	for _, p := range d.Params {
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

// ExecFunc performs the tool's single outbound call.
type ExecFunc func(ctx context.Context, args map[string]any) (any, error)

type entry struct {
	desc   Descriptor
	exec   ExecFunc
	schema *jsonschema.Schema
}

// Registry maps tool names to their descriptors and executors. It is built at
// startup and read-only afterwards; no locking is needed.
type Registry struct {
	tools map[string]entry
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]entry)}
}

// Register adds a tool, compiling its parameter schema for validation.
// Registering a name twice replaces the previous tool.
func (r *Registry) Register(desc Descriptor, exec ExecFunc) error {
	if desc.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if exec == nil {
		return fmt.Errorf("tool %s has no executor", desc.Name)
	}
	schema, err := compileSchema(desc)
	if err != nil {
		return fmt.Errorf("compile schema for %s: %w", desc.Name, err)
	}
	r.tools[desc.Name] = entry{desc: desc, exec: exec, schema: schema}
	return nil
}

// Descriptors returns registered descriptors sorted by name so exports to
// providers and MCP clients are deterministic.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.tools))
	for _, e := range r.tools {
		out = append(out, e.desc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Execute validates args against the tool's declared schema and runs the
// executor. Unknown names fail with ErrUnknownTool; validation failures with
// ErrInvalidArguments before any outbound call; executor failures are wrapped
// in ExecutionError.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (any, error) {
	e, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	if args == nil {
		args = map[string]any{}
	}
	if err := e.schema.Validate(normalizeArgs(args)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}

	result, err := e.exec(ctx, args)
	if err != nil {
		return nil, &ExecutionError{Tool: name, Err: err}
	}
	return result, nil
}

// compileSchema builds a validator from the descriptor's schema map.
func compileSchema(desc Descriptor) (*jsonschema.Schema, error) {
	data, err := json.Marshal(desc.Schema())
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	resource := desc.Name + ".schema.json"
	if err := compiler.AddResource(resource, doc); err != nil {
		return nil, err
	}
	return compiler.Compile(resource)
}

// normalizeArgs round-trips args through encoding/json so the validator sees
// plain JSON values regardless of how the argument map was produced.
func normalizeArgs(args map[string]any) any {
	data, err := json.Marshal(args)
	if err != nil {
		return args
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return args
	}
	return v
}
