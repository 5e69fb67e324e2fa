// file: internal/endpoint/handlers.go
package endpoint

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mcpcore/mcpcore/internal/endpoint/state"
	"github.com/mcpcore/mcpcore/internal/logging"
	"github.com/mcpcore/mcpcore/internal/mcperr"
)

// handleInitialize answers the server-role initialize request. It never
// checks the peer's protocolVersion for compatibility — it always echoes
// this package's ProtocolVersion, preserving the source behavior the spec's
// Open Questions section flags as possibly unintentional leniency.
func (e *Endpoint) handleInitialize(_ context.Context, params json.RawMessage) (interface{}, error) {
	var p InitializeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, mcperr.Wrap(mcperr.InvalidParams, "invalid initialize params", err)
	}
	return InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    e.capabilities,
		ServerInfo:      e.info,
	}, nil
}

func (e *Endpoint) handleInitialized(ctx context.Context, _ json.RawMessage) error {
	return e.machine.Transition(ctx, state.EventInitializeComplete)
}

func (e *Endpoint) handleToolsList(_ context.Context, _ json.RawMessage) (interface{}, error) {
	entries := e.tools.List()
	tools := make([]Tool, 0, len(entries))
	for _, entry := range entries {
		tools = append(tools, entry.tool)
	}
	return ToolsListResult{Tools: tools}, nil
}

type toolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

func (e *Endpoint) handleToolsCall(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p toolCallParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, mcperr.Wrap(mcperr.InvalidParams, "invalid tools/call params", err)
	}
	entry, ok := e.tools.Get(p.Name)
	if !ok {
		return nil, mcperr.NewMethodNotFound(p.Name)
	}

	args := p.Arguments
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if e.validator.HasSchema(p.Name) {
		if valErr := e.validator.Validate(p.Name, args); valErr != nil {
			wireErr := mcperr.NewValidationError(valErr.InstancePath, valErr.Message)
			if suggestion, ok := valErr.Context["suggestion"].(string); ok && suggestion != "" {
				wireErr.WithData(map[string]interface{}{"suggestion": suggestion})
			}
			return nil, wireErr
		}
	}

	result, err := entry.handler(ctx, args)
	if err != nil {
		return nil, mcperr.NewToolExecutionError(p.Name, err)
	}
	return ToolCallResult{Content: toContentBlocks(result)}, nil
}

// toContentBlocks wraps a handler's return value into a single text content
// block, stringifying non-string values as JSON per spec §4.4.3.
func toContentBlocks(result interface{}) []ContentBlock {
	if result == nil {
		return []ContentBlock{{Type: "text", Text: ""}}
	}
	if s, ok := result.(string); ok {
		return []ContentBlock{{Type: "text", Text: s}}
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return []ContentBlock{{Type: "text", Text: fmt.Sprintf("%v", result)}}
	}
	return []ContentBlock{{Type: "text", Text: string(raw)}}
}

func (e *Endpoint) handleResourcesList(_ context.Context, _ json.RawMessage) (interface{}, error) {
	entries := e.resources.List()
	resources := make([]Resource, 0, len(entries))
	for _, entry := range entries {
		resources = append(resources, entry.resource)
	}
	return ResourcesListResult{Resources: resources}, nil
}

type resourceReadParams struct {
	URI string `json:"uri"`
}

func (e *Endpoint) handleResourcesRead(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p resourceReadParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, mcperr.Wrap(mcperr.InvalidParams, "invalid resources/read params", err)
	}
	entry, ok := e.resources.Get(p.URI)
	if !ok {
		return nil, mcperr.NewResourceNotFound(p.URI)
	}

	contents, mimeType, err := entry.handler(ctx, p.URI)
	if err != nil {
		return nil, mcperr.Wrap(mcperr.InternalError, fmt.Sprintf("resource %q handler failed", p.URI), err)
	}
	if mimeType == "" {
		mimeType = "text/plain"
	}

	var text string
	if s, ok := contents.(string); ok {
		text = s
	} else if raw, err := json.Marshal(contents); err == nil {
		text = string(raw)
	} else {
		text = fmt.Sprintf("%v", contents)
	}

	return ResourceReadResult{Contents: []ResourceContent{{URI: p.URI, MimeType: mimeType, Text: text}}}, nil
}

func (e *Endpoint) handlePromptsList(_ context.Context, _ json.RawMessage) (interface{}, error) {
	entries := e.prompts.List()
	prompts := make([]Prompt, 0, len(entries))
	for _, entry := range entries {
		prompts = append(prompts, entry.prompt)
	}
	return PromptsListResult{Prompts: prompts}, nil
}

type promptGetParams struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments,omitempty"`
}

func (e *Endpoint) handlePromptsGet(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p promptGetParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, mcperr.Wrap(mcperr.InvalidParams, "invalid prompts/get params", err)
	}
	entry, ok := e.prompts.Get(p.Name)
	if !ok {
		return nil, mcperr.NewMethodNotFound(p.Name)
	}

	result, err := entry.handler(ctx, p.Arguments)
	if err != nil {
		return nil, mcperr.Wrap(mcperr.InternalError, fmt.Sprintf("prompt %q handler failed", p.Name), err)
	}
	return result, nil
}

type setLevelParams struct {
	Level string `json:"level"`
}

// handleSetLevel is dispatched as a notification (no response), preserving
// the source's notification-style handling per the spec's Open Questions.
func (e *Endpoint) handleSetLevel(_ context.Context, params json.RawMessage) error {
	var p setLevelParams
	if err := json.Unmarshal(params, &p); err != nil {
		e.logger.Warn("invalid logging/setLevel params", "error", err)
		return nil
	}
	level, ok := logging.ParseLevel(p.Level)
	if !ok {
		e.logger.Warn("unknown log level, ignoring", "level", p.Level)
		return nil
	}
	logging.SetLevel(level)
	return nil
}

func (e *Endpoint) handleRootsList(_ context.Context, _ json.RawMessage) (interface{}, error) {
	return RootsListResult{Roots: e.roots.List()}, nil
}
