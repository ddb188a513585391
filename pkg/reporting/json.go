package reporting

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ducminhle1904/crypto-wfo-analyzer/pkg/walkforward"
)

// DefaultJSONFormatter implements JSON output functionality
type DefaultJSONFormatter struct{}

// NewDefaultJSONFormatter creates a new JSON formatter
func NewDefaultJSONFormatter() *DefaultJSONFormatter {
	return &DefaultJSONFormatter{}
}

// FormatAnalysis formats the full analysis as indented JSON
func (f *DefaultJSONFormatter) FormatAnalysis(analysis *walkforward.AnalysisResult) ([]byte, error) {
	return json.MarshalIndent(analysis, "", "  ")
}

// PrintAnalysis writes the analysis as JSON to w
func (f *DefaultJSONFormatter) PrintAnalysis(analysis *walkforward.AnalysisResult, w io.Writer) error {
	data, err := f.FormatAnalysis(analysis)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// WriteAnalysisJSON writes the analysis to a JSON file
func (f *DefaultJSONFormatter) WriteAnalysisJSON(analysis *walkforward.AnalysisResult, path string) error {
	data, err := f.FormatAnalysis(analysis)
	if err != nil {
		return err
	}

	if err := NewDefaultPathManager().EnsureDirectoryExists(path); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ReadAnalysisJSON loads an analysis previously written by WriteAnalysisJSON
func ReadAnalysisJSON(path string) (*walkforward.AnalysisResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var analysis walkforward.AnalysisResult
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse analysis %s: %w", path, err)
	}
	return &analysis, nil
}
