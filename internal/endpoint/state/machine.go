// file: internal/endpoint/state/machine.go
package state

import (
	"context"

	"github.com/cockroachdb/errors"
	lfsm "github.com/looplab/fsm"
	"github.com/mcpcore/mcpcore/internal/logging"
)

// Machine drives the endpoint's fixed 5-state, 4-event lifecycle (spec
// §4.4.2) on top of github.com/looplab/fsm. Unlike a general-purpose FSM
// wrapper, it has no guard conditions, entry actions, or manual state reset:
// the endpoint lifecycle only ever moves forward along the edges in state.go.
type Machine struct {
	fsm    *lfsm.FSM
	logger logging.Logger
}

// New builds and finalizes the lifecycle machine, starting in Created.
func New(logger logging.Logger) (*Machine, error) {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	logger = logger.WithField("component", "endpoint_state")
	m := &Machine{
		fsm:    lfsm.NewFSM(string(Created), lifecycleEvents(), lfsm.Callbacks{}),
		logger: logger,
	}
	logger.Debug("lifecycle machine built", "initialState", Created)
	return m, nil
}

// CurrentState returns the lifecycle's current state.
func (m *Machine) CurrentState() State {
	return State(m.fsm.Current())
}

// Transition attempts to fire event from the current state, returning an
// error if the event isn't valid from that state.
func (m *Machine) Transition(ctx context.Context, event Event) error {
	from := m.CurrentState()
	if err := m.fsm.Event(ctx, string(event)); err != nil {
		m.logger.Warn("lifecycle transition rejected", "event", event, "from", from, "error", err.Error())
		return errors.Wrapf(err, "failed to transition on event %q from state %q", event, from)
	}
	m.logger.Debug("lifecycle transition", "event", event, "from", from, "to", m.CurrentState())
	return nil
}
