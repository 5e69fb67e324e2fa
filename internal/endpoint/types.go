// file: internal/endpoint/types.go
package endpoint

import (
	"context"
	"encoding/json"
)

// ProtocolVersion is the negotiated MCP wire version this core speaks.
const ProtocolVersion = "2024-11-05"

// Implementation identifies either side of the handshake (clientInfo/serverInfo).
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ToolsCapability advertises optional tool-related behavior.
type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ResourcesCapability advertises optional resource-related behavior.
type ResourcesCapability struct {
	Subscribe   bool `json:"subscribe,omitempty"`
	ListChanged bool `json:"listChanged,omitempty"`
}

// PromptsCapability advertises optional prompt-related behavior.
type PromptsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// LoggingCapability is an empty marker: its presence means the server accepts
// logging/setLevel at all.
type LoggingCapability struct{}

// RootsCapability advertises whether the client will notify on root changes.
type RootsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ServerCapabilities is the bag of feature flags a server advertises once,
// during initialize, and never changes afterward.
type ServerCapabilities struct {
	Logging   *LoggingCapability   `json:"logging,omitempty"`
	Tools     *ToolsCapability     `json:"tools,omitempty"`
	Resources *ResourcesCapability `json:"resources,omitempty"`
	Prompts   *PromptsCapability   `json:"prompts,omitempty"`
}

// ClientCapabilities is the client-side analog.
type ClientCapabilities struct {
	Roots *RootsCapability `json:"roots,omitempty"`
}

// InitializeParams is the payload of the client's initialize request.
type InitializeParams struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ClientCapabilities `json:"capabilities"`
	ClientInfo      Implementation     `json:"clientInfo"`
}

// InitializeResult is the payload of the server's initialize response.
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      Implementation     `json:"serverInfo"`
}

// Tool is a registered, schema-described callable.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

// ToolHandler executes a tool's call against already schema-validated arguments.
type ToolHandler func(ctx context.Context, arguments json.RawMessage) (interface{}, error)

// Resource is a URI-addressed content object.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// ResourceHandler reads the content behind a resource URI.
type ResourceHandler func(ctx context.Context, uri string) (contents interface{}, mimeType string, err error)

// PromptArgument describes one named input a prompt accepts.
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// Prompt is a named, argument-parameterized message generator.
type Prompt struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Arguments   []PromptArgument `json:"arguments,omitempty"`
}

// PromptMessage is one generated message in a PromptResult.
type PromptMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

// PromptResult is a prompt handler's output, returned to the caller verbatim.
type PromptResult struct {
	Description string          `json:"description,omitempty"`
	Messages    []PromptMessage `json:"messages"`
}

// PromptHandler renders a prompt's messages from its arguments.
type PromptHandler func(ctx context.Context, arguments map[string]string) (*PromptResult, error)

// Root is a client-exposed filesystem root the server may learn about.
type Root struct {
	URI  string `json:"uri"`
	Name string `json:"name,omitempty"`
}

// ContentBlock is one block of a tool call's result content.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolCallResult is the wire shape tools/call responds with.
type ToolCallResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// ResourceContent is one entry of a resources/read response.
type ResourceContent struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

// ResourceReadResult is the wire shape resources/read responds with.
type ResourceReadResult struct {
	Contents []ResourceContent `json:"contents"`
}

// ToolsListResult is the wire shape tools/list responds with.
type ToolsListResult struct {
	Tools []Tool `json:"tools"`
}

// ResourcesListResult is the wire shape resources/list responds with.
type ResourcesListResult struct {
	Resources []Resource `json:"resources"`
}

// PromptsListResult is the wire shape prompts/list responds with.
type PromptsListResult struct {
	Prompts []Prompt `json:"prompts"`
}

// RootsListResult is the wire shape roots/list responds with (client role).
type RootsListResult struct {
	Roots []Root `json:"roots"`
}
