package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProvider indicates an upstream embedding or generation call failed.
	ErrProvider = errors.New("provider error")

	// ErrDimensionMismatch indicates a vector does not have the canonical dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrStoreUnavailable indicates the corpus store could not be opened.
	ErrStoreUnavailable = errors.New("corpus store unavailable")

	// ErrNoContext marks a query for which no chunk passed the similarity threshold.
	// It is never returned as a failure; see AnswerNoContext.
	ErrNoContext = errors.New("no relevant context")
)

// ValidationError reports missing or malformed caller input.
// Driving adapters surface it as a client error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Is reports whether target is ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ProviderError reports a failed call to an embedding or generation provider.
type ProviderError struct {
	// Provider is the provider name (openai, mistral, ollama).
	Provider string

	// Op is the operation that failed (embed, chat, ping).
	Op string

	// Err is the underlying cause.
	Err error
}

// NewProviderError wraps err as a ProviderError.
func NewProviderError(provider, op string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Op: op, Err: err}
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrProvider.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}

// DimensionMismatchError reports a vector whose length differs from the canonical dimension.
// It is fatal for ingestion and is never corrected by truncation or padding.
type DimensionMismatchError struct {
	Provider string
	Model    string
	Expected int
	Got      int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: %s/%s produced %d dimensions, store expects %d",
		e.Provider, e.Model, e.Got, e.Expected)
}

// Is reports whether target is ErrDimensionMismatch.
func (e *DimensionMismatchError) Is(target error) bool {
	return target == ErrDimensionMismatch
}

// IsClientError returns true if err should be reported to the caller as their fault.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
