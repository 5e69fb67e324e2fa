// file: internal/schema/errors.go
package schema

import (
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrorCode categorizes the kinds of failure the validator can produce.
type ErrorCode int

const (
	// ErrSchemaCompileFailed indicates the jsonschema compiler rejected a tool's inputSchema document.
	ErrSchemaCompileFailed ErrorCode = iota + 1000
	// ErrValidationFailed indicates the data provided did not conform to the compiled schema.
	ErrValidationFailed
	// ErrInvalidJSONFormat indicates the data handed to Compile or Validate was not syntactically valid JSON.
	ErrInvalidJSONFormat
)

// ValidationError is the schema package's error type: a code, a message, the
// jsonschema path pair, and the underlying cause. handleToolsCall surfaces
// Code, InstancePath and Message onto the wire; Context is for callers that
// want the rest (e.g. the best-effort Suggestion below).
type ValidationError struct {
	Code         ErrorCode
	Message      string
	Cause        error
	SchemaPath   string
	InstancePath string
	Context      map[string]interface{}
}

func (e *ValidationError) Error() string {
	base := fmt.Sprintf("SchemaError [%d] %s", e.Code, e.Message)
	if e.InstancePath != "" {
		base += fmt.Sprintf(" (instance: %s)", e.InstancePath)
	}
	if e.Cause != nil {
		base += fmt.Sprintf(": %+v", e.Cause)
	}
	return base
}

// Unwrap supports errors.Is/As against the wrapped cause.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a key-value pair and returns e for chaining.
func (e *ValidationError) WithContext(key string, value interface{}) *ValidationError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewValidationError wraps cause with a stack trace and stamps a creation timestamp into Context.
func NewValidationError(code ErrorCode, message string, cause error) *ValidationError {
	var wrapped error
	if cause != nil {
		wrapped = errors.WithStack(cause)
	}
	return &ValidationError{
		Code:    code,
		Message: message,
		Cause:   wrapped,
		Context: map[string]interface{}{
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		},
	}
}

// convertValidationError turns the jsonschema library's error into our
// ValidationError, carrying the instance/schema paths callers render and a
// best-effort human suggestion under Context["suggestion"].
func convertValidationError(valErr *jsonschema.ValidationError, toolName string) *ValidationError {
	// The top-level error only wraps its Causes; report the first leaf cause,
	// which names the specific failing keyword and location.
	leaf := valErr
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	customErr := NewValidationError(ErrValidationFailed, "schema validation failed", valErr)
	customErr.InstancePath = leaf.InstanceLocation
	customErr.SchemaPath = leaf.KeywordLocation
	if leaf.Message != "" {
		customErr.Message = leaf.Message
	}
	// A missing required property is located at its parent object; point
	// InstancePath at the first missing property itself.
	if rest, ok := strings.CutPrefix(leaf.Message, "missing properties: "); ok {
		first, _, _ := strings.Cut(rest, ", ")
		customErr.InstancePath = leaf.InstanceLocation + "/" + strings.Trim(first, "'")
	}
	customErr.WithContext("tool", toolName)

	if suggestion := suggestFix(leaf.Message, leaf.InstanceLocation); suggestion != "" {
		customErr.WithContext("suggestion", suggestion)
	}
	return customErr
}

// suggestFix gives a short, human-readable nudge for the handful of
// validation failures common enough to be worth special-casing; anything
// else is left for the caller to read straight off Message.
func suggestFix(errorMsg, instancePath string) string {
	path := instancePath
	if path == "" || path == "/" {
		path = "the message root"
	}

	switch {
	case strings.Contains(errorMsg, "required property") || strings.Contains(errorMsg, "missing properties"):
		return fmt.Sprintf("ensure all required fields are provided in %s", path)
	case strings.Contains(errorMsg, "invalid type"):
		return fmt.Sprintf("check the data type of the field at %s against the tool's inputSchema", path)
	case strings.Contains(errorMsg, "additionalProperties"):
		return fmt.Sprintf("remove unrecognized properties from the object at %s", path)
	case strings.Contains(errorMsg, "enum"):
		return fmt.Sprintf("the value at %s must be one of the schema's allowed options", path)
	default:
		return ""
	}
}
