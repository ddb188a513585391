package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewConfigurationError tests that configuration errors are not retryable
func TestNewConfigurationError(t *testing.T) {
	err := NewConfigurationError("walkforward", "validate", "total_start must be before total_end")

	assert.True(t, IsConfigurationError(err))
	assert.False(t, err.IsRetryable())
	assert.Contains(t, err.Error(), "[CONFIG:walkforward]")
	assert.Contains(t, err.Error(), "total_start must be before total_end")
}

// TestIsConfigurationError_Wrapped tests detection through fmt.Errorf wrapping
func TestIsConfigurationError_Wrapped(t *testing.T) {
	base := NewConfigurationError("walkforward", "validate", "bad")
	wrapped := fmt.Errorf("loading config: %w", base)

	assert.True(t, IsConfigurationError(wrapped))
	assert.False(t, IsConfigurationError(errors.New("plain")))
	assert.False(t, IsConfigurationError(nil))
}

// TestWrapError_Unwrap tests that sentinel errors survive wrapping
func TestWrapError_Unwrap(t *testing.T) {
	err := NewSelectionError("walkforward", "select", ErrNoQualifiedCandidate)

	require.NotNil(t, err)
	assert.ErrorIs(t, err, ErrNoQualifiedCandidate)
	assert.Equal(t, ErrorCategorySelection, CategoryOf(err))
	assert.Nil(t, WrapError(nil, ErrorCategoryData, "x", "y"))
}

// TestCategorizeError tests classification of collaborator failures
func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorCategory
	}{
		{"deadline", context.DeadlineExceeded, ErrorCategoryTimeout},
		{"cancelled", fmt.Errorf("fetch: %w", context.Canceled), ErrorCategoryCancelled},
		{"dial", errors.New("dial tcp 127.0.0.1:5432: connection refused"), ErrorCategoryNetwork},
		{"rate", errors.New("rate limit exceeded"), ErrorCategoryRateLimit},
		{"breaker", errors.New("circuit breaker is open"), ErrorCategoryUnavailable},
		{"parse", errors.New("invalid roi value"), ErrorCategoryData},
		{"unknown", errors.New("something odd"), ErrorCategoryTemporary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			categorized := CategorizeError(tt.err, "repository", "get_candidates")
			require.NotNil(t, categorized)
			assert.Equal(t, tt.expected, categorized.Category)
		})
	}
}

// TestCategorizeError_KeepsExisting tests that already categorized errors pass through
func TestCategorizeError_KeepsExisting(t *testing.T) {
	original := NewAnalysisError(ErrorCategoryData, "file", "load", "bad row")
	assert.Same(t, original, CategorizeError(original, "other", "op"))
	assert.Nil(t, CategorizeError(nil, "x", "y"))
}

// TestErrorStats tests category rates
func TestErrorStats(t *testing.T) {
	stats := NewErrorStats()
	assert.Equal(t, 0.0, stats.GetErrorRate(ErrorCategoryData))

	stats.RecordError(NewAnalysisError(ErrorCategoryData, "a", "b", "c"))
	stats.RecordError(NewAnalysisError(ErrorCategoryData, "a", "b", "c"))
	stats.RecordError(NewAnalysisError(ErrorCategoryNetwork, "a", "b", "c"))
	stats.RecordError(nil)

	assert.Equal(t, 3, stats.TotalErrors)
	assert.InDelta(t, 2.0/3.0, stats.GetErrorRate(ErrorCategoryData), 1e-12)
}
