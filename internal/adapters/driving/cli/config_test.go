package cli

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/services"
)

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Short key", "abc123", "****"},
		{"Exactly 8 chars", "12345678", "****"},
		{"Long key", "sk-1234567890abcdef", "sk-1...cdef"},
		{"Empty key", "", "****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskAPIKey(tt.input))
		})
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		raw     string
		want    any
		wantErr bool
	}{
		{"int", services.KeySearchTopK, "5", int64(5), false},
		{"bad int", services.KeyServerPort, "eighty", nil, true},
		{"float", services.KeySearchThreshold, "0.65", 0.65, false},
		{"bad float", services.KeySearchThreshold, "high", nil, true},
		{"list", services.KeyServerCORSOrigins, "http://a, http://b,", []string{"http://a", "http://b"}, false},
		{"numeric string stays string", services.KeyCorpusBranch, "2025", "2025", false},
		{"string", services.KeyAIProvider, " openai ", "openai", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseValue(tt.key, tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigShow(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "config", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Current Settings")
	assert.Contains(t, out, "[AI]")
	assert.Contains(t, out, "[Storage]")
	assert.Contains(t, out, "Port:")
	assert.Contains(t, out, "config.toml")
}

func TestConfigSet(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "config", "set", services.KeySearchTopK, "7")

	require.NoError(t, err)
	assert.Contains(t, out, "Set search.top_k")
	assert.Equal(t, 7, configStore.GetInt(services.KeySearchTopK))
}

func TestConfigSet_RejectsBadValue(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "config", "set", services.KeyChunkingSize, "big")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConfigSetKey(t *testing.T) {
	setupTestServices(t)
	orig := secretReader
	secretReader = func(io.Reader) string { return "sk-test-1234567890\n" }
	defer func() { secretReader = orig }()

	out, err := execute(t, "config", "set-key", "MISTRAL")

	require.NoError(t, err)
	assert.Contains(t, out, "Saved ai.mistral_api_key (sk-t...7890)")
	assert.Equal(t, "sk-test-1234567890", configStore.GetString(services.KeyMistralAPIKey))
}

func TestConfigSetKey_Errors(t *testing.T) {
	t.Run("provider without key", func(t *testing.T) {
		setupTestServices(t)

		_, err := execute(t, "config", "set-key", "ollama")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not use an API key")
	})

	t.Run("empty input", func(t *testing.T) {
		setupTestServices(t)
		orig := secretReader
		secretReader = func(io.Reader) string { return "  " }
		defer func() { secretReader = orig }()

		_, err := execute(t, "config", "set-key", "openai")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no key entered")
	})
}

func TestReadPassword_NonTerminal(t *testing.T) {
	assert.Equal(t, "sk-abc", readPassword(strings.NewReader("sk-abc\nrest")))
}

func TestConfigSet_RecoversFromInvalidFile(t *testing.T) {
	setupTestServices(t)
	_, err := execute(t, "config", "set", services.KeyChunkingOverlap, "5000")
	require.NoError(t, err)

	_, err = execute(t, "stats")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = execute(t, "config", "set", services.KeyChunkingOverlap, "100")
	require.NoError(t, err)
	assert.Equal(t, 100, configStore.GetInt(services.KeyChunkingOverlap))
}
