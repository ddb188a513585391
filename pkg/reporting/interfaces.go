package reporting

import (
	"time"

	"github.com/ducminhle1904/crypto-wfo-analyzer/pkg/walkforward"
)

// Package reporting writes walk-forward analysis results to the console and to files

// ConsoleReporter defines interface for console output
type ConsoleReporter interface {
	PrintSummary(analysis *walkforward.AnalysisResult)
	PrintPeriodResults(analysis *walkforward.AnalysisResult)
	PrintRecommendations(analysis *walkforward.AnalysisResult)
	PrintSchedule(periods []walkforward.Period)
	PrintAll(analysis *walkforward.AnalysisResult)
}

// FileReporter defines interface for file output
type FileReporter interface {
	WriteResultsCSV(analysis *walkforward.AnalysisResult, path string) error
	WriteResultsXLSX(analysis *walkforward.AnalysisResult, path string) error
	WriteAnalysisJSON(analysis *walkforward.AnalysisResult, path string) error
}

// PathManager defines interface for output path management
type PathManager interface {
	ReportFileName(labID string, at time.Time, ext string) string
	EnsureDirectoryExists(path string) error
}

// ExcelStyles holds Excel formatting styles
type ExcelStyles struct {
	TitleStyle   int
	HeaderStyle  int
	BaseStyle    int
	NumberStyle  int
	PercentStyle int
	FailedStyle  int
}

// ReportingConfig holds configuration for reporting
type ReportingConfig struct {
	EnableConsole   bool
	EnableFiles     bool
	OutputDirectory string
	ExcelEnabled    bool
	CSVEnabled      bool
	JSONEnabled     bool
}
