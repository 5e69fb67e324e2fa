// Package schema compiles and runs JSON Schema draft 2020-12 validation
// against tool input arguments. Unlike a single document validated against
// one embedded meta-schema, each registered tool contributes its own
// inputSchema, compiled independently and cached by tool name.
package schema

// file: internal/schema/validator.go

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/mcpcore/mcpcore/internal/logging"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validator compiles and caches one jsonschema.Schema per tool name.
// Compilation happens once, at registration time; Validate only runs the
// already-compiled schema, so the hot path never touches the compiler.
type Validator struct {
	mu      sync.RWMutex
	schemas map[string]*jsonschema.Schema
	logger  logging.Logger
}

// NewValidator creates an empty validator. Register schemas with Compile.
func NewValidator(logger logging.Logger) *Validator {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &Validator{
		schemas: make(map[string]*jsonschema.Schema),
		logger:  logger.WithField("component", "schema_validator"),
	}
}

// Compile parses and compiles a tool's inputSchema document, caching the
// result under name. Re-compiling an existing name replaces its schema,
// mirroring the registry's last-writer-wins semantics for re-registration.
func (v *Validator) Compile(name string, rawSchema json.RawMessage) error {
	if len(rawSchema) == 0 {
		v.mu.Lock()
		delete(v.schemas, name)
		v.mu.Unlock()
		return nil
	}

	var doc interface{}
	if err := json.Unmarshal(rawSchema, &doc); err != nil {
		return NewValidationError(ErrInvalidJSONFormat, fmt.Sprintf("inputSchema for %q is not valid JSON", name), err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	resourceID := "mcp://tool/" + name + "/inputSchema.json"
	if err := compiler.AddResource(resourceID, bytes.NewReader(rawSchema)); err != nil {
		return NewValidationError(ErrSchemaCompileFailed, fmt.Sprintf("failed to register schema resource for tool %q", name),
			errors.Wrap(err, "compiler.AddResource failed"))
	}

	compiled, err := compiler.Compile(resourceID)
	if err != nil {
		v.logger.Error("Failed to compile tool input schema.", "tool", name, "error", err)
		return NewValidationError(ErrSchemaCompileFailed, fmt.Sprintf("failed to compile inputSchema for tool %q", name),
			errors.Wrap(err, "compiler.Compile failed"))
	}

	v.mu.Lock()
	v.schemas[name] = compiled
	v.mu.Unlock()

	v.logger.Debug("Compiled tool input schema.", "tool", name)
	return nil
}

// Remove drops a cached schema, used when a tool is unregistered.
func (v *Validator) Remove(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.schemas, name)
}

// HasSchema reports whether name has a compiled schema registered.
func (v *Validator) HasSchema(name string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.schemas[name]
	return ok
}

// Validate runs data against the compiled schema for name. A tool with no
// registered schema is treated as accepting any arguments and always
// passes; this matches tools that declare no inputSchema at all.
func (v *Validator) Validate(name string, data json.RawMessage) *ValidationError {
	v.mu.RLock()
	compiled, ok := v.schemas[name]
	v.mu.RUnlock()
	if !ok {
		return nil
	}

	var instance interface{}
	if len(data) == 0 {
		data = []byte("{}")
	}
	if err := json.Unmarshal(data, &instance); err != nil {
		return NewValidationError(ErrInvalidJSONFormat, fmt.Sprintf("arguments for tool %q are not valid JSON", name), err).
			WithContext("tool", name)
	}

	if err := compiled.Validate(instance); err != nil {
		var valErr *jsonschema.ValidationError
		if errors.As(err, &valErr) {
			return convertValidationError(valErr, name)
		}
		return NewValidationError(ErrValidationFailed, fmt.Sprintf("validation failed for tool %q", name), err).
			WithContext("tool", name)
	}
	return nil
}
