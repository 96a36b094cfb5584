package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrProvider", ErrProvider},
		{"ErrDimensionMismatch", ErrDimensionMismatch},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrStoreUnavailable", ErrStoreUnavailable},
		{"ErrNoContext", ErrNoContext},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "query", Message: "must not be empty"}

	assert.Equal(t, "invalid query: must not be empty", err.Error())
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.True(t, IsClientError(fmt.Errorf("ask: %w", err)))
}

func TestProviderError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewProviderError("openai", "embed", cause)

	assert.Equal(t, "openai embed: connection refused", err.Error())
	assert.True(t, errors.Is(err, ErrProvider))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, IsClientError(err))

	var providerErr *ProviderError
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &providerErr))
	assert.Equal(t, "embed", providerErr.Op)
}

func TestDimensionMismatchError(t *testing.T) {
	err := &DimensionMismatchError{Provider: "openai", Model: "text-embedding-ada-002", Expected: 1024, Got: 1536}

	assert.Contains(t, err.Error(), "produced 1536 dimensions")
	assert.Contains(t, err.Error(), "store expects 1024")
	assert.True(t, errors.Is(fmt.Errorf("chunk 3: %w", err), ErrDimensionMismatch))
	assert.False(t, errors.Is(err, ErrProvider))
}
