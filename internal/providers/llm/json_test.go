package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"plain object", `{"key": "value"}`, false},
		{"json fence", "```json\n{\"key\": \"value\"}\n```", false},
		{"bare fence", "```\n{\"key\": \"value\"}\n```", false},
		{"surrounding whitespace", "  \n {\"key\": \"value\"} \n", false},
		{"array", `[{"key": "value"}]`, false},
		{"prose before", `Sure! {"key": "value"}`, true},
		{"prose after", `{"key": "value"} hope this helps`, true},
		{"two values", `{"key": "value"}{"key": "other"}`, true},
		{"empty", "", true},
		{"empty fence", "```json\n```", true},
		{"truncated", `{"key": "val`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v any
			err := DecodeJSON(tt.text, &v)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.NotNil(t, v)
				return
			}

			var pf *ParseFailure
			require.True(t, errors.As(err, &pf), "expected *ParseFailure, got %v", err)
			assert.Equal(t, tt.text, pf.Raw)
		})
	}
}

func TestDecodeJSON_NumbersAreFloat64(t *testing.T) {
	var v map[string]any
	require.NoError(t, DecodeJSON(`{"n": 42}`, &v))
	assert.Equal(t, float64(42), v["n"])
}

func TestDecodeJSON_EmptyUnwrapsToSentinel(t *testing.T) {
	var v any
	assert.ErrorIs(t, DecodeJSON("   ", &v), ErrEmptyResponse)
}

func TestStripFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFence("```\n{\"a\":1}"))
	assert.Equal(t, `text`, StripFence("  text  "))
}
