// Package state implements the endpoint lifecycle as a finite state machine
// over github.com/looplab/fsm: Created -> Started -> Initialized ->
// ShuttingDown -> Closed, with Close reachable from any non-terminal state
// (spec §4.4.2). This replaces a generic multi-purpose FSM wrapper with the
// fixed, 5-state/4-event graph the endpoint actually needs.
// file: internal/endpoint/state/state.go
package state

import lfsm "github.com/looplab/fsm"

// State is one of the endpoint lifecycle's five states.
type State string

// Event is one of the lifecycle transitions below.
type Event string

// The five lifecycle states shared by both server and client roles.
const (
	Created      State = "created"
	Started      State = "started"
	Initialized  State = "initialized"
	ShuttingDown State = "shuttingDown"
	Closed       State = "closed"
)

// IsTerminal reports whether s admits no further transitions.
func IsTerminal(s State) bool {
	return s == Closed
}

// Lifecycle events. EventInitializeComplete fires when a server receives the
// peer's "initialized" notification, or when a client has sent its own
// "initialized" notification after a successful initialize response.
const (
	EventStart              Event = "start"
	EventInitializeComplete Event = "initialize_complete"
	EventShutdown           Event = "shutdown"
	EventClose              Event = "close"
)

// edge describes one transition of the lifecycle graph; src lists every
// state the event is valid from, matching looplab/fsm's EventDesc.Src.
type edge struct {
	src   []State
	event Event
	dst   State
}

var edges = []edge{
	{src: []State{Created}, event: EventStart, dst: Started},
	{src: []State{Started}, event: EventInitializeComplete, dst: Initialized},
	{src: []State{Started, Initialized}, event: EventShutdown, dst: ShuttingDown},
	{src: []State{Created, Started, Initialized, ShuttingDown}, event: EventClose, dst: Closed},
}

// lifecycleEvents converts edges into the EventDesc slice looplab/fsm.NewFSM
// expects, collapsing the 4 logical transitions into looplab's one-dst-per-name
// encoding (every edge above already has a single destination per event name).
func lifecycleEvents() []lfsm.EventDesc {
	out := make([]lfsm.EventDesc, len(edges))
	for i, e := range edges {
		src := make([]string, len(e.src))
		for j, s := range e.src {
			src[j] = string(s)
		}
		out[i] = lfsm.EventDesc{Name: string(e.event), Src: src, Dst: string(e.dst)}
	}
	return out
}
