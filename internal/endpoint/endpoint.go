// file: internal/endpoint/endpoint.go
package endpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mcpcore/mcpcore/internal/endpoint/state"
	"github.com/mcpcore/mcpcore/internal/jsonrpc"
	"github.com/mcpcore/mcpcore/internal/logging"
	"github.com/mcpcore/mcpcore/internal/mcperr"
	"github.com/mcpcore/mcpcore/internal/metrics"
	"github.com/mcpcore/mcpcore/internal/middleware"
	"github.com/mcpcore/mcpcore/internal/registry"
	"github.com/mcpcore/mcpcore/internal/schema"
	"github.com/mcpcore/mcpcore/internal/transport"
)

// Role distinguishes which half of the handshake an Endpoint plays; the two
// roles share every mechanic below and differ only in their method sets.
type Role int

const (
	RoleServer Role = iota
	RoleClient
)

func (r Role) String() string {
	if r == RoleClient {
		return "client"
	}
	return "server"
}

// NotificationEvent is one inbound, client-role notification delivered on
// Endpoint.Events — a per-instance channel rather than a global event bus,
// per Design Note 9.
type NotificationEvent struct {
	Method string
	Params json.RawMessage
}

type toolEntry struct {
	tool    Tool
	handler ToolHandler
}

type resourceEntry struct {
	resource Resource
	handler  ResourceHandler
}

type promptEntry struct {
	prompt  Prompt
	handler PromptHandler
}

// Config constructs an Endpoint.
type Config struct {
	Role          Role
	Transport     transport.Transport
	Logger        logging.Logger
	Info          Implementation
	Hooks         *middleware.Chain
	Capabilities  ServerCapabilities // server role; zero value gets sane defaults
	ShutdownGrace time.Duration      // default 1s, per spec §4.4.2
	Metrics       *metrics.Collector // optional; nil disables recording
}

// Endpoint is one half (server or client) of an MCP session: it owns the
// lifecycle state machine, the tool/resource/prompt/root registries, the
// outbound pending-request table, the inbound dispatch table, and the
// pre-dispatch hook chain, all serialized per spec §5's concurrency model.
type Endpoint struct {
	role         Role
	transport    transport.Transport
	logger       logging.Logger
	machine      *state.Machine
	tools        *registry.Registry[string, toolEntry]
	resources    *registry.Registry[string, resourceEntry]
	prompts      *registry.Registry[string, promptEntry]
	roots        *registry.Registry[string, Root]
	pending      *pendingTable
	dispatch     *dispatchTable
	hooks        *middleware.Chain
	validator    *schema.Validator
	info         Implementation
	capabilities ServerCapabilities
	metrics      *metrics.Collector

	nextID        int64
	shutdownGrace time.Duration
	wg            sync.WaitGroup
	events        chan NotificationEvent
}

// New builds an Endpoint in the Created state. Call Start to wire the
// transport and begin processing.
func New(cfg Config) (*Endpoint, error) {
	if cfg.Transport == nil {
		return nil, errors.New("endpoint: Transport must not be nil")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	logger = logger.WithField("component", "endpoint").WithField("role", cfg.Role.String())

	machine, err := state.New(logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build endpoint lifecycle machine")
	}

	hooks := cfg.Hooks
	if hooks == nil {
		hooks = middleware.NewChain()
	}
	grace := cfg.ShutdownGrace
	if grace <= 0 {
		grace = time.Second
	}
	caps := cfg.Capabilities
	if (caps == ServerCapabilities{}) {
		caps = defaultCapabilities()
	}

	return &Endpoint{
		role:          cfg.Role,
		transport:     cfg.Transport,
		logger:        logger,
		machine:       machine,
		tools:         registry.New[string, toolEntry]("tool", logger),
		resources:     registry.New[string, resourceEntry]("resource", logger),
		prompts:       registry.New[string, promptEntry]("prompt", logger),
		roots:         registry.New[string, Root]("root", logger),
		pending:       newPendingTable(),
		dispatch:      newDispatchTable(),
		hooks:         hooks,
		validator:     schema.NewValidator(logger),
		info:          cfg.Info,
		capabilities:  caps,
		shutdownGrace: grace,
		events:        make(chan NotificationEvent, 32),
		metrics:       cfg.Metrics,
	}, nil
}

// recordDispatch reports a completed dispatch to the metrics collector, if
// one was configured.
func (e *Endpoint) recordDispatch(method string, start time.Time, success bool) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordDispatch(method, int(time.Since(start).Milliseconds()), success)
}

func defaultCapabilities() ServerCapabilities {
	return ServerCapabilities{
		Logging:   &LoggingCapability{},
		Tools:     &ToolsCapability{ListChanged: true},
		Resources: &ResourcesCapability{Subscribe: true, ListChanged: true},
		Prompts:   &PromptsCapability{ListChanged: true},
	}
}

// State returns the endpoint's current lifecycle state.
func (e *Endpoint) State() state.State {
	return e.machine.CurrentState()
}

// Events returns the channel of inbound named notifications (client role).
func (e *Endpoint) Events() <-chan NotificationEvent {
	return e.events
}

// Start transitions Created -> Started, registers the method dispatch table
// for this endpoint's role, and begins pumping the transport's event stream.
func (e *Endpoint) Start(ctx context.Context) error {
	if err := e.machine.Transition(ctx, state.EventStart); err != nil {
		return errors.Wrap(err, "failed to start endpoint")
	}
	e.registerRoutes()
	go e.pump(ctx)
	return nil
}

func (e *Endpoint) registerRoutes() {
	if e.role == RoleServer {
		e.dispatch.addRequest("initialize", e.handleInitialize)
		e.dispatch.addNotification("initialized", e.handleInitialized)
		e.dispatch.addRequest("tools/list", e.handleToolsList)
		e.dispatch.addRequest("tools/call", e.handleToolsCall)
		e.dispatch.addRequest("resources/list", e.handleResourcesList)
		e.dispatch.addRequest("resources/read", e.handleResourcesRead)
		e.dispatch.addRequest("prompts/list", e.handlePromptsList)
		e.dispatch.addRequest("prompts/get", e.handlePromptsGet)
		e.dispatch.addNotification("logging/setLevel", e.handleSetLevel)
		return
	}
	e.dispatch.addRequest("roots/list", e.handleRootsList)
	for _, method := range []string{
		"notifications/tools/list_changed",
		"notifications/resources/list_changed",
		"notifications/prompts/list_changed",
		"notifications/resources/updated",
	} {
		e.dispatch.addNotification(method, e.notifyHandler(method))
	}
}

// pump drains the transport's Events channel until it closes or ctx ends.
func (e *Endpoint) pump(ctx context.Context) {
	events := e.transport.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Kind {
			case transport.EventMessage:
				e.handleMessage(ctx, ev.Message)
			case transport.EventError:
				e.logger.Warn("transport framing error", "error", ev.Err)
			case transport.EventClosed:
				e.logger.Info("transport closed", "error", ev.Err)
				return
			}
		}
	}
}

func (e *Endpoint) handleMessage(ctx context.Context, raw []byte) {
	var msg jsonrpc.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		e.logger.Warn("dropping unparseable message", "error", err)
		return
	}

	switch msg.Kind() {
	case jsonrpc.KindSuccessResponse:
		if !e.pending.complete(*msg.ID, pendingOutcome{result: msg.Result}) {
			e.logger.Debug("dropping response for unknown or already-settled id", "id", msg.ID.String())
		}
	case jsonrpc.KindErrorResponse:
		if !e.pending.complete(*msg.ID, pendingOutcome{err: mcperr.FromWire(msg.Error)}) {
			e.logger.Debug("dropping error response for unknown or already-settled id", "id", msg.ID.String())
		}
	case jsonrpc.KindRequest:
		e.wg.Add(1)
		go e.handleRequest(ctx, msg)
	case jsonrpc.KindNotification:
		e.wg.Add(1)
		go e.handleNotification(ctx, msg)
	default:
		if msg.ID != nil && msg.ID.IsSet() {
			e.sendError(ctx, *msg.ID, mcperr.New(mcperr.InvalidRequest, "malformed JSON-RPC envelope"))
		} else {
			e.logger.Warn("dropping malformed message with no id")
		}
	}
}

func (e *Endpoint) handleRequest(ctx context.Context, msg jsonrpc.Message) {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("panic in request handler", "method", msg.Method, "recovered", r)
			e.sendError(ctx, *msg.ID, mcperr.New(mcperr.InternalError, "internal error"))
		}
	}()

	st := e.State()
	if st == state.ShuttingDown {
		e.sendError(ctx, *msg.ID, mcperr.New(mcperr.InternalError, "shutting down"))
		return
	}
	if e.role == RoleServer && st != state.Initialized && msg.Method != "initialize" {
		e.sendError(ctx, *msg.ID, mcperr.NewInitializationFailed(
			fmt.Sprintf("method %q requires a completed initialization handshake", msg.Method)))
		return
	}
	start := time.Now()
	if err := e.hooks.Run(ctx, msg.Method, msg.Params); err != nil {
		e.recordDispatch(msg.Method, start, false)
		e.sendError(ctx, *msg.ID, err)
		return
	}

	result, err := e.dispatch.dispatchRequest(ctx, msg.Method, msg.Params)
	if err != nil {
		e.recordDispatch(msg.Method, start, false)
		e.sendError(ctx, *msg.ID, err)
		return
	}
	e.recordDispatch(msg.Method, start, true)
	e.sendResult(ctx, *msg.ID, result)
}

func (e *Endpoint) handleNotification(ctx context.Context, msg jsonrpc.Message) {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("panic in notification handler", "method", msg.Method, "recovered", r)
		}
	}()

	if err := e.dispatch.dispatchNotification(ctx, msg.Method, msg.Params); err != nil {
		e.logger.Warn("notification handler failed", "method", msg.Method, "error", err)
	}
}

func (e *Endpoint) sendResult(ctx context.Context, id jsonrpc.ID, result interface{}) {
	raw, err := json.Marshal(result)
	if err != nil {
		e.logger.Error("failed to marshal result", "error", err)
		e.sendError(ctx, id, mcperr.Wrap(mcperr.InternalError, "failed to encode result", err))
		return
	}
	e.writeMessage(ctx, jsonrpc.NewResultResponse(id, raw))
}

func (e *Endpoint) sendError(ctx context.Context, id jsonrpc.ID, err error) {
	e.writeMessage(ctx, jsonrpc.NewErrorResponse(id, mcperr.ToWire(err)))
}

func (e *Endpoint) writeMessage(ctx context.Context, msg *jsonrpc.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		e.logger.Error("failed to marshal outbound message", "error", err)
		return
	}
	if err := e.transport.Send(ctx, data); err != nil {
		e.logger.Error("failed to send message", "error", err)
	}
}

func (e *Endpoint) notifyHandler(method string) notificationHandler {
	return func(_ context.Context, params json.RawMessage) error {
		select {
		case e.events <- NotificationEvent{Method: method, Params: params}:
		default:
			e.logger.Warn("dropping notification event, events channel full", "method", method)
		}
		return nil
	}
}

// SendRequest issues an outbound request and awaits its resolution, a
// timeout, cancellation of ctx, or endpoint shutdown — whichever first.
func (e *Endpoint) SendRequest(ctx context.Context, method string, params json.RawMessage, timeoutMs int) (json.RawMessage, error) {
	if timeoutMs <= 0 {
		timeoutMs = 30000
	}
	id := jsonrpc.NewNumberID(atomic.AddInt64(&e.nextID, 1))
	waiter := e.pending.register(id, time.Duration(timeoutMs)*time.Millisecond)
	e.reportPendingDepth()
	defer e.reportPendingDepth()

	data, err := json.Marshal(jsonrpc.NewRequest(id, method, params))
	if err != nil {
		e.pending.complete(id, pendingOutcome{})
		return nil, errors.Wrap(err, "failed to encode outbound request")
	}
	if err := e.transport.Send(ctx, data); err != nil {
		e.pending.complete(id, pendingOutcome{})
		return nil, err
	}

	select {
	case outcome := <-waiter.ch:
		return outcome.result, outcome.err
	case <-ctx.Done():
		e.pending.complete(id, pendingOutcome{})
		return nil, ctx.Err()
	}
}

// reportPendingDepth forwards the outbound correlation table's current size
// to the metrics collector, if one was configured.
func (e *Endpoint) reportPendingDepth() {
	if e.metrics == nil {
		return
	}
	e.metrics.SetPendingCount(e.pending.len())
}

// SendNotification writes a one-way message; there is nothing to await.
func (e *Endpoint) SendNotification(ctx context.Context, method string, params json.RawMessage) error {
	data, err := json.Marshal(jsonrpc.NewNotification(method, params))
	if err != nil {
		return errors.Wrap(err, "failed to encode outbound notification")
	}
	return e.transport.Send(ctx, data)
}

// Initialize drives the client-role handshake: send initialize, await the
// result, send the initialized notification, and transition locally.
func (e *Endpoint) Initialize(ctx context.Context, params InitializeParams, timeoutMs int) (*InitializeResult, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode initialize params")
	}
	resultRaw, err := e.SendRequest(ctx, "initialize", raw, timeoutMs)
	if err != nil {
		return nil, err
	}
	var result InitializeResult
	if err := json.Unmarshal(resultRaw, &result); err != nil {
		return nil, errors.Wrap(err, "failed to decode initialize result")
	}
	if err := e.SendNotification(ctx, "initialized", nil); err != nil {
		return nil, err
	}
	if err := e.machine.Transition(ctx, state.EventInitializeComplete); err != nil {
		return nil, errors.Wrap(err, "failed to complete client initialization")
	}
	return &result, nil
}

// Shutdown rejects in-flight outbound requests, gives in-flight inbound
// handlers a bounded grace period to finish, then transitions to Closed and
// closes the transport.
func (e *Endpoint) Shutdown(ctx context.Context) error {
	if err := e.machine.Transition(ctx, state.EventShutdown); err != nil {
		return errors.Wrap(err, "failed to begin shutdown")
	}
	e.pending.shutdown()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(e.shutdownGrace):
		e.logger.Warn("shutdown grace period elapsed with handlers still in flight")
	}

	if err := e.machine.Transition(ctx, state.EventClose); err != nil {
		return errors.Wrap(err, "failed to close endpoint")
	}
	return e.transport.Close()
}

// Close forces the endpoint to Closed without waiting for in-flight
// handlers; intended for abrupt teardown (e.g. a fatal transport error).
func (e *Endpoint) Close() error {
	_ = e.machine.Transition(context.Background(), state.EventClose)
	return e.transport.Close()
}

// Registration API: addTool/addResource/addPrompt/addRoot and their
// idempotent removals (spec §6).

func (e *Endpoint) AddTool(tool Tool, handler ToolHandler) error {
	if err := registry.ValidateName(registry.EntityTool, tool.Name); err != nil {
		return mcperr.Wrap(mcperr.InvalidParams, "invalid tool name", err)
	}
	if handler == nil {
		return mcperr.New(mcperr.InvalidParams, "tool handler must not be nil")
	}
	if len(tool.InputSchema) > 0 {
		if err := e.validator.Compile(tool.Name, tool.InputSchema); err != nil {
			return mcperr.Wrap(mcperr.InvalidParams, "invalid tool input schema", err)
		}
	} else {
		e.validator.Remove(tool.Name)
	}
	e.tools.Add(tool.Name, toolEntry{tool: tool, handler: handler})
	return nil
}

func (e *Endpoint) RemoveTool(name string) {
	e.tools.Remove(name)
	e.validator.Remove(name)
}

func (e *Endpoint) AddResource(resource Resource, handler ResourceHandler) error {
	if resource.URI == "" {
		return mcperr.New(mcperr.InvalidParams, "resource uri must not be empty")
	}
	if handler == nil {
		return mcperr.New(mcperr.InvalidParams, "resource handler must not be nil")
	}
	e.resources.Add(resource.URI, resourceEntry{resource: resource, handler: handler})
	return nil
}

func (e *Endpoint) RemoveResource(uri string) {
	e.resources.Remove(uri)
}

func (e *Endpoint) AddPrompt(prompt Prompt, handler PromptHandler) error {
	if err := registry.ValidateName(registry.EntityPrompt, prompt.Name); err != nil {
		return mcperr.Wrap(mcperr.InvalidParams, "invalid prompt name", err)
	}
	if handler == nil {
		return mcperr.New(mcperr.InvalidParams, "prompt handler must not be nil")
	}
	e.prompts.Add(prompt.Name, promptEntry{prompt: prompt, handler: handler})
	return nil
}

func (e *Endpoint) RemovePrompt(name string) {
	e.prompts.Remove(name)
}

func (e *Endpoint) AddRoot(root Root) error {
	if root.URI == "" {
		return mcperr.New(mcperr.InvalidParams, "root uri must not be empty")
	}
	e.roots.Add(root.URI, root)
	return nil
}

func (e *Endpoint) RemoveRoot(uri string) {
	e.roots.Remove(uri)
}
