package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorCategory represents different types of errors that can occur during an analysis
type ErrorCategory string

const (
	// Fatal for the whole run
	ErrorCategoryConfiguration ErrorCategory = "CONFIG"

	// Recorded against a single period, the run continues
	ErrorCategoryData       ErrorCategory = "DATA"
	ErrorCategorySelection  ErrorCategory = "SELECTION"
	ErrorCategoryEvaluation ErrorCategory = "EVALUATION"

	// Collaborator failures
	ErrorCategoryNetwork     ErrorCategory = "NETWORK"
	ErrorCategoryTimeout     ErrorCategory = "TIMEOUT"
	ErrorCategoryRateLimit   ErrorCategory = "RATE_LIMIT"
	ErrorCategoryUnavailable ErrorCategory = "UNAVAILABLE"
	ErrorCategoryCancelled   ErrorCategory = "CANCELLED"
	ErrorCategoryTemporary   ErrorCategory = "TEMPORARY"
)

// Per-period failure reasons
var (
	ErrNoCandidates           = errors.New("no candidates found for training window")
	ErrInsufficientCandidates = errors.New("insufficient candidates for training window")
	ErrNoQualifiedCandidate   = errors.New("no candidate passed the performance filters")
)

// AnalysisError represents a categorized error with context
type AnalysisError struct {
	Category   ErrorCategory
	Component  string
	Operation  string
	Message    string
	Underlying error
	Context    map[string]interface{}
	Retryable  bool
}

// Error implements the error interface
func (e *AnalysisError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s: %s: %v", e.Category, e.Component, e.Operation, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Component, e.Operation, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *AnalysisError) Unwrap() error {
	return e.Underlying
}

// IsRetryable returns whether the failed operation may succeed if repeated
func (e *AnalysisError) IsRetryable() bool {
	return e.Retryable
}

// NewAnalysisError creates a new categorized error
func NewAnalysisError(category ErrorCategory, component, operation, message string) *AnalysisError {
	return &AnalysisError{
		Category:  category,
		Component: component,
		Operation: operation,
		Message:   message,
		Context:   make(map[string]interface{}),
		Retryable: isRetryableCategory(category),
	}
}

// WrapError wraps an existing error with analysis context
func WrapError(err error, category ErrorCategory, component, operation string) *AnalysisError {
	if err == nil {
		return nil
	}

	return &AnalysisError{
		Category:   category,
		Component:  component,
		Operation:  operation,
		Message:    "operation failed",
		Underlying: err,
		Context:    make(map[string]interface{}),
		Retryable:  isRetryableCategory(category),
	}
}

// WithContext adds context information to the error
func (e *AnalysisError) WithContext(key string, value interface{}) *AnalysisError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func isRetryableCategory(category ErrorCategory) bool {
	switch category {
	case ErrorCategoryNetwork, ErrorCategoryTimeout, ErrorCategoryTemporary,
		ErrorCategoryRateLimit, ErrorCategoryUnavailable:
		return true
	default:
		return false
	}
}

// NewConfigurationError creates the fatal error returned by configuration validation
func NewConfigurationError(component, operation, message string) *AnalysisError {
	return NewAnalysisError(ErrorCategoryConfiguration, component, operation, message)
}

// NewSelectionError wraps a per-period selection failure
func NewSelectionError(component, operation string, err error) *AnalysisError {
	return WrapError(err, ErrorCategorySelection, component, operation)
}

// NewEvaluationError wraps an out-of-sample evaluation failure
func NewEvaluationError(component, operation string, err error) *AnalysisError {
	return WrapError(err, ErrorCategoryEvaluation, component, operation)
}

// IsConfigurationError reports whether err (or anything it wraps) is a configuration error
func IsConfigurationError(err error) bool {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Category == ErrorCategoryConfiguration
	}
	return false
}

// CategoryOf returns the category of err, or "" when err is not categorized
func CategoryOf(err error) ErrorCategory {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Category
	}
	return ""
}

// CategorizeError attempts to categorize a collaborator error
func CategorizeError(err error, component, operation string) *AnalysisError {
	if err == nil {
		return nil
	}

	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae
	}

	if errors.Is(err, context.Canceled) {
		return WrapError(err, ErrorCategoryCancelled, component, operation)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return WrapError(err, ErrorCategoryTimeout, component, operation)
	}

	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "timeout") {
		return WrapError(err, ErrorCategoryTimeout, component, operation)
	}

	if strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "network") ||
		strings.Contains(errMsg, "dns") || strings.Contains(errMsg, "dial") {
		return WrapError(err, ErrorCategoryNetwork, component, operation)
	}

	if strings.Contains(errMsg, "rate limit") || strings.Contains(errMsg, "too many requests") {
		return WrapError(err, ErrorCategoryRateLimit, component, operation)
	}

	if strings.Contains(errMsg, "circuit breaker") {
		return WrapError(err, ErrorCategoryUnavailable, component, operation)
	}

	if strings.Contains(errMsg, "invalid") || strings.Contains(errMsg, "parse") ||
		strings.Contains(errMsg, "malformed") {
		return WrapError(err, ErrorCategoryData, component, operation)
	}

	return WrapError(err, ErrorCategoryTemporary, component, operation)
}

// ErrorStats tracks error counts per category over a run
type ErrorStats struct {
	TotalErrors      int
	ErrorsByCategory map[ErrorCategory]int
}

// NewErrorStats creates a new error statistics tracker
func NewErrorStats() *ErrorStats {
	return &ErrorStats{
		ErrorsByCategory: make(map[ErrorCategory]int),
	}
}

// RecordError records an error in the statistics
func (es *ErrorStats) RecordError(err *AnalysisError) {
	if err == nil {
		return
	}
	es.TotalErrors++
	es.ErrorsByCategory[err.Category]++
}

// GetErrorRate returns the share of recorded errors that fall into category
func (es *ErrorStats) GetErrorRate(category ErrorCategory) float64 {
	if es.TotalErrors == 0 {
		return 0.0
	}
	return float64(es.ErrorsByCategory[category]) / float64(es.TotalErrors)
}
