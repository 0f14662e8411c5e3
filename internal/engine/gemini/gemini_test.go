package gemini_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ocrsvc/internal/config"
	"ocrsvc/internal/engine/gemini"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"markdown":"x"}`, `{"markdown":"x"}`},
		{"json fence", "```json\n{\"markdown\":\"x\"}\n```", `{"markdown":"x"}`},
		{"bare fence", "```\nhello\n```", "hello"},
		{"surrounding whitespace", "  \n```json\n[]\n```\n ", "[]"},
		{"unterminated fence", "```json\n{\"a\":1}", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gemini.StripCodeFences(tt.in))
		})
	}
}

func TestProvider_EmptyAPIKey(t *testing.T) {
	p, err := gemini.NewProvider(&config.EngineConfig{APIKey: "  "})
	require.NoError(t, err)
	assert.Equal(t, gemini.Name, p.Name())

	_, err = p.NewDefault(context.Background())
	assert.ErrorContains(t, err, "api key is empty")

	params, err := p.ConstructorParams(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{gemini.ParamAPIKey, gemini.ParamModel}, params)

	_, err = p.NewWithParams(context.Background(), map[string]any{"use_hf": true})
	assert.ErrorContains(t, err, "api key is empty")
}
