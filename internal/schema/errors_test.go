// file: internal/schema/errors_test.go
package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMissingRequiredFieldCarriesASuggestion(t *testing.T) {
	v := NewValidator(nil)
	require.NoError(t, v.Compile("getWeather", json.RawMessage(sampleSchema)))

	err := v.Validate("getWeather", json.RawMessage(`{"units":"metric"}`))
	require.NotNil(t, err)
	suggestion, ok := err.Context["suggestion"].(string)
	require.True(t, ok, "expected a suggestion in Context")
	assert.Contains(t, suggestion, "required fields")
}

func TestValidationErrorUnwrapReturnsCause(t *testing.T) {
	cause := assert.AnError
	err := NewValidationError(ErrValidationFailed, "boom", cause)
	assert.ErrorIs(t, err, cause)
}
