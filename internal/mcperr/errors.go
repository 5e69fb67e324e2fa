// Package mcperr defines the flat error taxonomy shared by every MCP endpoint
// component: numeric wire codes, a structured in-process Error type, and the
// conversions between them. It consolidates what the teacher split across
// internal/mcperror, internal/mcp/mcp_errors, and internal/transport's own
// error codes into one place, matching the spec's single flat code space.
// file: internal/mcperr/errors.go
package mcperr

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
)

// Code is a JSON-RPC / MCP numeric error code. Values are wire-stable.
type Code int

// The flat code space defined by the spec's error taxonomy table.
const (
	ParseError           Code = -32700
	InvalidRequest       Code = -32600
	MethodNotFound       Code = -32601
	InvalidParams        Code = -32602
	InternalError        Code = -32603
	InitializationFailed Code = -32000
	ToolExecutionError   Code = -32001
	ResourceNotFound     Code = -32002
	PermissionDenied     Code = -32003
	RateLimitExceeded    Code = -32004
	ValidationError      Code = -32005
	TimeoutError         Code = -32006
)

// String returns a short human label for the code, used in log lines.
func (c Code) String() string {
	switch c {
	case ParseError:
		return "ParseError"
	case InvalidRequest:
		return "InvalidRequest"
	case MethodNotFound:
		return "MethodNotFound"
	case InvalidParams:
		return "InvalidParams"
	case InternalError:
		return "InternalError"
	case InitializationFailed:
		return "InitializationFailed"
	case ToolExecutionError:
		return "ToolExecutionError"
	case ResourceNotFound:
		return "ResourceNotFound"
	case PermissionDenied:
		return "PermissionDenied"
	case RateLimitExceeded:
		return "RateLimitExceeded"
	case ValidationError:
		return "ValidationError"
	case TimeoutError:
		return "TimeoutError"
	default:
		return "Unknown"
	}
}

// Error is the in-process representation of an MCP/JSON-RPC error. It never
// carries a language stack trace onto the wire; Data is the only structured
// payload that reaches the peer.
type Error struct {
	Code    Code
	Message string
	Data    map[string]interface{}
	cause   error
}

// Error implements the standard error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("mcperr [%d %s] %s: %v", e.Code, e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("mcperr [%d %s] %s", e.Code, e.Code, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches another *Error by Code, so errors.Is(err, mcperr.New(mcperr.TimeoutError, "")) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithData attaches or merges a structured data payload and returns the same error for chaining.
func (e *Error) WithData(data map[string]interface{}) *Error {
	if e.Data == nil {
		e.Data = make(map[string]interface{}, len(data))
	}
	for k, v := range data {
		e.Data[k] = v
	}
	return e
}

// New creates an Error with no underlying cause. The message is wrapped with
// errors.Newf so the resulting error carries a stack trace for diagnostics,
// even though that stack trace never reaches the wire.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: errors.Newf("%s", message)}
}

// Wrap creates an Error around an existing cause, preserving its stack via
// errors.Wrapf; the wire message stays under the caller's control so internal
// details don't leak.
func Wrap(code Code, message string, cause error) *Error {
	var wrapped error
	if cause != nil {
		wrapped = errors.Wrapf(cause, "%s", message)
	}
	return &Error{Code: code, Message: message, cause: wrapped}
}

// Wire is the exact on-wire JSON-RPC error envelope shape.
type Wire struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// ToWire converts an Error (or any error) into the wire envelope. Non-*Error
// values are folded into InternalError so a raw Go error never reaches the peer
// verbatim (spec §7: handler exceptions never propagate past the endpoint).
func ToWire(err error) *Wire {
	if err == nil {
		return nil
	}
	var mcpErr *Error
	if errors.As(err, &mcpErr) {
		w := &Wire{Code: int(mcpErr.Code), Message: mcpErr.Message}
		if len(mcpErr.Data) > 0 {
			if raw, marshalErr := json.Marshal(mcpErr.Data); marshalErr == nil {
				w.Data = raw
			}
		}
		return w
	}
	return &Wire{Code: int(InternalError), Message: "Internal error"}
}

// FromWire converts a wire envelope back into an *Error, used by the client
// role to turn a peer's error response into a Go error for the caller.
func FromWire(w *Wire) *Error {
	if w == nil {
		return nil
	}
	e := &Error{Code: Code(w.Code), Message: w.Message, cause: errors.Newf("%s", w.Message)}
	if len(w.Data) > 0 {
		var data map[string]interface{}
		if err := json.Unmarshal(w.Data, &data); err == nil {
			e.Data = data
		}
	}
	return e
}

// Convenience constructors used throughout the endpoint/middleware/schema packages.

// NewValidationError builds a ValidationError carrying the JSON-Schema instance path.
func NewValidationError(instancePath, message string) *Error {
	return New(ValidationError, message).WithData(map[string]interface{}{"instancePath": instancePath})
}

// NewMethodNotFound builds a MethodNotFound error referencing the unknown method/name.
func NewMethodNotFound(name string) *Error {
	return New(MethodNotFound, fmt.Sprintf("method or name %q not found", name)).
		WithData(map[string]interface{}{"name": name})
}

// NewResourceNotFound builds a ResourceNotFound error referencing the unknown URI.
func NewResourceNotFound(uri string) *Error {
	return New(ResourceNotFound, fmt.Sprintf("resource %q not found", uri)).
		WithData(map[string]interface{}{"uri": uri})
}

// NewToolExecutionError wraps a tool handler failure without leaking its stack trace.
func NewToolExecutionError(toolName string, cause error) *Error {
	return Wrap(ToolExecutionError, fmt.Sprintf("tool %q failed", toolName), cause).
		WithData(map[string]interface{}{"tool": toolName})
}

// NewInitializationFailed builds the error returned for any method received
// before the lifecycle reaches Initialized.
func NewInitializationFailed(reason string) *Error {
	return New(InitializationFailed, reason)
}

// NewTimeoutError builds the error delivered to a pending outbound request
// whose deadline fired, or whose endpoint entered ShuttingDown.
func NewTimeoutError(reason string) *Error {
	return New(TimeoutError, reason)
}

// NewRateLimitExceeded builds the error a rate-limiter hook returns, carrying
// the number of seconds until the oldest sample in the window ages out.
func NewRateLimitExceeded(retryAfterSeconds float64, limit int) *Error {
	return New(RateLimitExceeded, "rate limit exceeded").WithData(map[string]interface{}{
		"retryAfter": retryAfterSeconds,
		"limit":      limit,
	})
}

// NewPermissionDenied builds the error an auth hook returns on credential mismatch.
func NewPermissionDenied(reason string) *Error {
	return New(PermissionDenied, reason)
}
