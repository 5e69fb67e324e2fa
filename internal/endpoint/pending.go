// file: internal/endpoint/pending.go
package endpoint

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/mcpcore/mcpcore/internal/jsonrpc"
	"github.com/mcpcore/mcpcore/internal/mcperr"
)

// pendingOutcome is the result delivered to a sendRequest caller, exactly one
// of {result set, err set} per spec's pending-table conservation invariant.
type pendingOutcome struct {
	result json.RawMessage
	err    error
}

// pendingRequest is one outbound request awaiting a response, a timeout, or
// shutdown — whichever fires first wins and removes the entry.
type pendingRequest struct {
	id    jsonrpc.ID
	ch    chan pendingOutcome
	timer *time.Timer
}

// pendingTable tracks all in-flight outbound requests for one endpoint.
type pendingTable struct {
	mu      sync.Mutex
	entries map[string]*pendingRequest
}

func newPendingTable() *pendingTable {
	return &pendingTable{entries: make(map[string]*pendingRequest)}
}

// register inserts a new waiter for id with a deadline timer that rejects
// with TimeoutError if it fires before resolve/reject removes the entry.
func (t *pendingTable) register(id jsonrpc.ID, timeout time.Duration) *pendingRequest {
	p := &pendingRequest{id: id, ch: make(chan pendingOutcome, 1)}

	t.mu.Lock()
	t.entries[id.String()] = p
	t.mu.Unlock()

	p.timer = time.AfterFunc(timeout, func() {
		t.complete(id, pendingOutcome{err: mcperr.NewTimeoutError("request timed out")})
	})
	return p
}

// complete resolves the pending entry for id exactly once; a second caller
// (e.g. a late response after the deadline already fired) finds no entry and
// is a no-op, preserving the spec's terminal-outcome exclusivity.
func (t *pendingTable) complete(id jsonrpc.ID, outcome pendingOutcome) bool {
	t.mu.Lock()
	p, ok := t.entries[id.String()]
	if ok {
		delete(t.entries, id.String())
	}
	t.mu.Unlock()

	if !ok {
		return false
	}
	p.timer.Stop()
	p.ch <- outcome
	return true
}

// shutdown rejects every still-pending entry with TimeoutError("shutting
// down") and clears the table.
func (t *pendingTable) shutdown() {
	t.mu.Lock()
	entries := t.entries
	t.entries = make(map[string]*pendingRequest)
	t.mu.Unlock()

	for _, p := range entries {
		p.timer.Stop()
		p.ch <- pendingOutcome{err: mcperr.NewTimeoutError("shutting down")}
	}
}

// len reports the number of in-flight outbound requests (metrics/testing).
func (t *pendingTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
