// file: internal/mcperr/errors_test.go
package mcperr

import (
	"encoding/json"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	a := New(TimeoutError, "first timeout")
	b := New(TimeoutError, "second timeout")
	c := New(InternalError, "not a timeout")

	assert.True(t, errors.Is(a, b), "two Errors with the same Code should match via errors.Is")
	assert.False(t, errors.Is(a, c), "Errors with different Codes must not match")
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("boom")
	wrapped := Wrap(ToolExecutionError, "tool failed", cause)

	require.Error(t, wrapped)
	assert.ErrorIs(t, wrapped, cause, "Unwrap chain should reach the original cause")
}

func TestToWireNeverLeaksStackTrace(t *testing.T) {
	cause := errors.New("leaked detail")
	err := Wrap(InternalError, "public message", cause)

	wire := ToWire(err)
	require.NotNil(t, wire)
	assert.Equal(t, int(InternalError), wire.Code)
	assert.Equal(t, "public message", wire.Message)
	assert.NotContains(t, wire.Message, "leaked detail")
}

func TestToWireFoldsUnknownErrorsIntoInternalError(t *testing.T) {
	wire := ToWire(errors.New("some random go error"))
	require.NotNil(t, wire)
	assert.Equal(t, int(InternalError), wire.Code)
	assert.Equal(t, "Internal error", wire.Message)
}

func TestValidationErrorCarriesInstancePath(t *testing.T) {
	err := NewValidationError("/b", "missing required property 'b'")
	wire := ToWire(err)
	require.NotNil(t, wire.Data)

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(wire.Data, &data))
	assert.Equal(t, "/b", data["instancePath"])
}

func TestFromWireRoundTrip(t *testing.T) {
	original := NewRateLimitExceeded(12.5, 10)
	wire := ToWire(original)

	reconstructed := FromWire(wire)
	require.NotNil(t, reconstructed)
	assert.Equal(t, RateLimitExceeded, reconstructed.Code)
	assert.EqualValues(t, 12.5, reconstructed.Data["retryAfter"])
	assert.EqualValues(t, 10, reconstructed.Data["limit"])
}

func TestCodeStringKnownAndUnknown(t *testing.T) {
	assert.Equal(t, "TimeoutError", TimeoutError.String())
	assert.Equal(t, "Unknown", Code(1).String())
}
