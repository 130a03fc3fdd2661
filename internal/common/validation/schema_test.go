// internal/common/validation/schema_test.go
package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"type": "object",
	"required": ["is_waste_item"],
	"properties": {
		"is_waste_item": {"type": "boolean"},
		"confidence": {"type": ["number", "string"]}
	}
}`

func TestSchema_Validate(t *testing.T) {
	schema, err := CompileSchema("test", testSchema)
	require.NoError(t, err)
	assert.Equal(t, "test", schema.Name())

	tests := []struct {
		name       string
		doc        map[string]interface{}
		valid      bool
		errorField string
	}{
		{"valid", map[string]interface{}{"is_waste_item": true, "confidence": 0.9}, true, ""},
		{"string confidence", map[string]interface{}{"is_waste_item": false, "confidence": "0.8"}, true, ""},
		{"extra fields allowed", map[string]interface{}{"is_waste_item": true, "note": "x"}, true, ""},
		{"missing required", map[string]interface{}{"confidence": 0.9}, false, ""},
		{"wrong type", map[string]interface{}{"is_waste_item": "yes"}, false, "is_waste_item"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := schema.Validate(tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid)
			if !tt.valid {
				assert.NotEmpty(t, result.GetErrorMessages())
				if tt.errorField != "" {
					assert.True(t, result.HasErrors(tt.errorField), result.Error())
				}
			}
		})
	}
}

func TestCompileSchema_Invalid(t *testing.T) {
	_, err := CompileSchema("broken", `{"type": `)
	assert.Error(t, err)

	assert.Panics(t, func() { MustCompileSchema("broken", `{"type": 12}`) })
}
