// Package jsonrpc implements the JSON-RPC 2.0 envelope used by MCP: the
// canonical Message shape, the ID sum type that preserves wire fidelity
// (string stays string, integer stays integer), and classification into
// request / notification / response / error-response per the spec's
// inbound classification rules.
// file: internal/jsonrpc/message.go
package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mcpcore/mcpcore/internal/mcperr"
)

// Version is the JSON-RPC version string every envelope must carry.
const Version = "2.0"

// ID is a JSON-RPC request identifier. The wire form may be a string or a
// number; this sum type preserves whichever one arrived so a response can
// echo it byte-for-byte; see Design Note 9 (pending-request table keyed by
// a {Numeric | Str} sum type).
type ID struct {
	str      string
	num      int64
	isString bool
	isSet    bool
}

// NewStringID builds a string-valued ID.
func NewStringID(s string) ID { return ID{str: s, isString: true, isSet: true} }

// NewNumberID builds a numeric-valued ID.
func NewNumberID(n int64) ID { return ID{num: n, isSet: true} }

// IsSet reports whether the ID was present on the wire at all.
func (id ID) IsSet() bool { return id.isSet }

// IsString reports whether the wire value was a JSON string.
func (id ID) IsString() bool { return id.isString }

// String returns the canonical string form, used as a pending-request map key.
func (id ID) String() string {
	if !id.isSet {
		return ""
	}
	if id.isString {
		return "s:" + id.str
	}
	return fmt.Sprintf("n:%d", id.num)
}

// MarshalJSON emits the ID in whatever wire type it was constructed with.
func (id ID) MarshalJSON() ([]byte, error) {
	if !id.isSet {
		return []byte("null"), nil
	}
	if id.isString {
		return json.Marshal(id.str)
	}
	return json.Marshal(id.num)
}

// UnmarshalJSON accepts a JSON string, integer, or null, recording which
// type it saw so MarshalJSON can echo it back unchanged.
func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if string(trimmed) == "null" || len(trimmed) == 0 {
		*id = ID{}
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*id = ID{str: s, isString: true, isSet: true}
		return nil
	}
	var n int64
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return err
	}
	*id = ID{num: n, isSet: true}
	return nil
}

// Message is the canonical JSON-RPC 2.0 envelope. Exactly one of the
// {request, notification, response, error-response} shapes holds per spec
// §3's invariant; Kind classifies which.
type Message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *ID             `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *mcperr.Wire    `json:"error,omitempty"`
}

// Kind enumerates the five classifications from spec §4.4.1.
type Kind int

const (
	// KindInvalid covers malformed envelopes (neither method nor id/result/error align).
	KindInvalid Kind = iota
	KindRequest
	KindNotification
	KindSuccessResponse
	KindErrorResponse
)

// Kind classifies an already-decoded Message per spec §4.4.1, steps 1-5.
func (m *Message) Kind() Kind {
	hasID := m.ID != nil && m.ID.IsSet()
	hasMethod := m.Method != ""
	hasResult := m.Result != nil
	hasError := m.Error != nil

	switch {
	case hasID && hasResult && !hasError:
		return KindSuccessResponse
	case hasID && hasError:
		return KindErrorResponse
	case hasMethod && hasID:
		return KindRequest
	case hasMethod && !hasID:
		return KindNotification
	default:
		return KindInvalid
	}
}

// NewRequest builds a request envelope.
func NewRequest(id ID, method string, params json.RawMessage) *Message {
	return &Message{JSONRPC: Version, ID: &id, Method: method, Params: params}
}

// NewNotification builds a notification envelope (no id).
func NewNotification(method string, params json.RawMessage) *Message {
	return &Message{JSONRPC: Version, Method: method, Params: params}
}

// NewResultResponse builds a success response envelope echoing id.
func NewResultResponse(id ID, result json.RawMessage) *Message {
	return &Message{JSONRPC: Version, ID: &id, Result: result}
}

// NewErrorResponse builds an error response envelope echoing id.
func NewErrorResponse(id ID, wireErr *mcperr.Wire) *Message {
	return &Message{JSONRPC: Version, ID: &id, Error: wireErr}
}
