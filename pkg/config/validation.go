package config

import (
	"fmt"
	"strings"

	"github.com/ducminhle1904/crypto-wfo-analyzer/internal/errors"
)

// AnalysisValidator implements validation for analysis settings
type AnalysisValidator struct{}

// NewAnalysisValidator creates a new analysis validator
func NewAnalysisValidator() *AnalysisValidator {
	return &AnalysisValidator{}
}

// Validate checks the walk-forward config and the run options.
// Formats are normalized to lower case in place.
func (v *AnalysisValidator) Validate(s *AnalysisSettings) error {
	if s == nil {
		return errors.NewConfigurationError(componentName, "validate", "settings are required")
	}

	if err := s.Config.Validate(); err != nil {
		return err
	}

	if s.Workers < 1 || s.Workers > MaxWorkers {
		return errors.NewConfigurationError(componentName, "validate",
			fmt.Sprintf("workers must be between 1 and %d, got: %d", MaxWorkers, s.Workers))
	}

	return v.validateFormats(s)
}

func (v *AnalysisValidator) validateFormats(s *AnalysisSettings) error {
	for i, f := range s.Output.Formats {
		format := strings.ToLower(strings.TrimSpace(f))
		if !isSupportedFormat(format) {
			return errors.NewConfigurationError(componentName, "validate",
				fmt.Sprintf("unsupported output format %q, expected one of %s", f, strings.Join(SupportedFormats, ", ")))
		}
		s.Output.Formats[i] = format
	}
	return nil
}

func isSupportedFormat(format string) bool {
	for _, f := range SupportedFormats {
		if f == format {
			return true
		}
	}
	return false
}

// HasFormat reports whether format is among the requested outputs
func (s *AnalysisSettings) HasFormat(format string) bool {
	for _, f := range s.Output.Formats {
		if strings.EqualFold(f, format) {
			return true
		}
	}
	return false
}
