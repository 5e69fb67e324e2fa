// Package transport frames JSON-RPC messages over a byte stream. The
// newline-delimited implementation here reads asynchronously and emits
// Events rather than blocking callers on ReadMessage, so a single endpoint
// can drive both the read loop and outbound Sends concurrently.
// file: internal/transport/transport.go
package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/mcpcore/mcpcore/internal/logging"
	"github.com/mcpcore/mcpcore/internal/mcperr"
)

// MaxMessageSize bounds a single line to guard against unbounded memory
// growth from a misbehaving or malicious peer.
const MaxMessageSize = 1024 * 1024 // 1MB.

// EventKind classifies an item delivered on a Transport's Events channel.
type EventKind int

const (
	// EventMessage carries one complete, framed message.
	EventMessage EventKind = iota
	// EventError carries a non-fatal framing or size error for one line;
	// the read loop continues after emitting it.
	EventError
	// EventClosed is emitted exactly once, when the read loop ends for any
	// reason (peer closed the stream, underlying error, or Close called).
	EventClosed
)

// Event is one item from a Transport's Events channel.
type Event struct {
	Kind    EventKind
	Message []byte
	Err     error
}

// Transport sends and receives framed messages over a byte stream.
// Implementations must be safe for concurrent Send calls and must keep
// emitting Events until Close is called or the stream ends.
type Transport interface {
	// Send writes one complete message. Safe to call concurrently.
	Send(ctx context.Context, message []byte) error
	// Events returns the channel of incoming framing events. It is closed
	// after an EventClosed item is delivered.
	Events() <-chan Event
	// Close shuts down the transport and unblocks any pending read.
	Close() error
}

// NDJSONTransport frames messages as newline-delimited JSON, the wire
// format MCP uses over stdio.
type NDJSONTransport struct {
	reader *bufio.Reader
	writer io.Writer
	closer io.Closer
	logger logging.Logger

	writeMu sync.Mutex

	closeMu sync.Mutex
	closed  bool

	events chan Event
	once   sync.Once
}

// NewNDJSONTransport wraps reader/writer/closer and starts the background
// read loop immediately; Events begins delivering as soon as data arrives.
func NewNDJSONTransport(reader io.Reader, writer io.Writer, closer io.Closer, logger logging.Logger) *NDJSONTransport {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	t := &NDJSONTransport{
		reader: bufio.NewReader(reader),
		writer: writer,
		closer: closer,
		logger: logger.WithField("component", "ndjson_transport"),
		events: make(chan Event, 16),
	}
	go t.readLoop()
	return t
}

// readLoop runs for the lifetime of the transport, pushing one Event per
// non-blank line: EventMessage for valid JSON, EventError for an oversized
// or unparseable line. bufio.Reader.ReadBytes blocks across as many underlying Read calls
// as it takes to see a newline, so a message arriving in several chunks
// still yields exactly one EventMessage, never a spurious parse error.
func (t *NDJSONTransport) readLoop() {
	defer close(t.events)

	for {
		line, err := t.reader.ReadBytes('\n')
		if len(line) > 0 {
			message := bytes.TrimSpace(line)
			if len(message) > 0 {
				if len(message) > MaxMessageSize {
					t.events <- Event{Kind: EventError, Err: newSizeError(len(message))}
				} else if !json.Valid(message) {
					t.events <- Event{Kind: EventError, Err: mcperr.New(mcperr.ParseError, "line is not valid JSON")}
				} else {
					t.logger.Debug("Received message line.", "size", len(message))
					t.events <- Event{Kind: EventMessage, Message: message}
				}
			}
		}
		if err != nil {
			if err != io.EOF {
				t.logger.Warn("Transport read error, closing.", "error", err)
			}
			t.events <- Event{Kind: EventClosed, Err: err}
			return
		}
	}
}

// Send writes message followed by a newline. Concurrent Sends are
// serialized so two goroutines never interleave partial writes.
func (t *NDJSONTransport) Send(ctx context.Context, message []byte) error {
	t.closeMu.Lock()
	closed := t.closed
	t.closeMu.Unlock()
	if closed {
		return newClosedError("send")
	}

	if len(message) > MaxMessageSize {
		return newSizeError(len(message))
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	done := make(chan error, 1)
	go func() {
		buf := make([]byte, len(message)+1)
		copy(buf, message)
		buf[len(message)] = '\n'
		n, err := t.writer.Write(buf)
		if err == nil && n < len(buf) {
			err = io.ErrShortWrite
		}
		done <- err
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// Events returns the channel of framing events.
func (t *NDJSONTransport) Events() <-chan Event { return t.events }

// Close shuts the transport down; the blocked read unblocks via the
// underlying closer returning an error, which the read loop turns into
// the terminal EventClosed.
func (t *NDJSONTransport) Close() error {
	t.closeMu.Lock()
	defer t.closeMu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	if t.closer != nil {
		return t.closer.Close()
	}
	return nil
}
