// file: internal/schema/validator_test.go
package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSchema = `{
	"type": "object",
	"properties": {
		"city": {"type": "string"},
		"units": {"type": "string", "enum": ["metric", "imperial"]}
	},
	"required": ["city"],
	"additionalProperties": false
}`

func TestCompileAndValidateSuccess(t *testing.T) {
	v := NewValidator(nil)
	require.NoError(t, v.Compile("getWeather", json.RawMessage(sampleSchema)))
	assert.True(t, v.HasSchema("getWeather"))

	err := v.Validate("getWeather", json.RawMessage(`{"city":"Lisbon","units":"metric"}`))
	assert.Nil(t, err)
}

func TestValidateMissingRequiredField(t *testing.T) {
	v := NewValidator(nil)
	require.NoError(t, v.Compile("getWeather", json.RawMessage(sampleSchema)))

	err := v.Validate("getWeather", json.RawMessage(`{"units":"metric"}`))
	require.NotNil(t, err)
	assert.Equal(t, ErrValidationFailed, err.Code)
	assert.NotEmpty(t, err.InstancePath)
}

func TestValidateRejectsAdditionalProperties(t *testing.T) {
	v := NewValidator(nil)
	require.NoError(t, v.Compile("getWeather", json.RawMessage(sampleSchema)))

	err := v.Validate("getWeather", json.RawMessage(`{"city":"Lisbon","windSpeed":10}`))
	require.NotNil(t, err)
	assert.Equal(t, ErrValidationFailed, err.Code)
}

func TestValidateToolWithoutSchemaAlwaysPasses(t *testing.T) {
	v := NewValidator(nil)
	err := v.Validate("noSchemaTool", json.RawMessage(`{"anything":"goes"}`))
	assert.Nil(t, err)
}

func TestValidateRejectsMalformedJSON(t *testing.T) {
	v := NewValidator(nil)
	require.NoError(t, v.Compile("getWeather", json.RawMessage(sampleSchema)))

	err := v.Validate("getWeather", json.RawMessage(`{not json`))
	require.NotNil(t, err)
	assert.Equal(t, ErrInvalidJSONFormat, err.Code)
}

func TestCompileRejectsInvalidSchemaDocument(t *testing.T) {
	v := NewValidator(nil)
	err := v.Compile("broken", json.RawMessage(`{"type": 123}`))
	assert.Error(t, err)
}

func TestRemoveDropsCompiledSchema(t *testing.T) {
	v := NewValidator(nil)
	require.NoError(t, v.Compile("getWeather", json.RawMessage(sampleSchema)))
	v.Remove("getWeather")
	assert.False(t, v.HasSchema("getWeather"))

	// Without a schema, any arguments validate.
	err := v.Validate("getWeather", json.RawMessage(`{}`))
	assert.Nil(t, err)
}

func TestCompileWithEmptySchemaClearsExisting(t *testing.T) {
	v := NewValidator(nil)
	require.NoError(t, v.Compile("getWeather", json.RawMessage(sampleSchema)))
	require.NoError(t, v.Compile("getWeather", nil))
	assert.False(t, v.HasSchema("getWeather"))
}
