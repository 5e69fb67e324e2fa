// file: internal/endpoint/state/machine_test.go
package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMachineStartsInCreated(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)
	assert.Equal(t, Created, m.CurrentState())
}

func TestMachineFollowsTheFullLifecycle(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, m.Transition(ctx, EventStart))
	assert.Equal(t, Started, m.CurrentState())

	require.NoError(t, m.Transition(ctx, EventInitializeComplete))
	assert.Equal(t, Initialized, m.CurrentState())

	require.NoError(t, m.Transition(ctx, EventShutdown))
	assert.Equal(t, ShuttingDown, m.CurrentState())

	require.NoError(t, m.Transition(ctx, EventClose))
	assert.Equal(t, Closed, m.CurrentState())
	assert.True(t, IsTerminal(m.CurrentState()))
}

func TestMachineRejectsOutOfOrderTransitions(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)
	ctx := context.Background()

	err = m.Transition(ctx, EventInitializeComplete)
	require.Error(t, err)
	assert.Equal(t, Created, m.CurrentState(), "a rejected transition must not change state")
}

func TestCloseIsReachableFromCreated(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, m.Transition(ctx, EventClose))
	assert.Equal(t, Closed, m.CurrentState(), "Close must be reachable directly from Created")
}

func TestCloseIsTerminalAndRejectsFurtherEvents(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, m.Transition(ctx, EventClose))

	err = m.Transition(ctx, EventStart)
	require.Error(t, err, "Closed must not accept further events")
}
