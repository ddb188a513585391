package reporting

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/ducminhle1904/crypto-wfo-analyzer/pkg/walkforward"
)

// DefaultReporter implements both the console and the file reporter
type DefaultReporter struct {
	console *DefaultConsoleReporter
	csv     *DefaultCSVReporter
	excel   *DefaultExcelReporter
	json    *DefaultJSONFormatter
	paths   *DefaultPathManager
}

// NewDefaultReporter creates a reporter printing to stdout
func NewDefaultReporter() *DefaultReporter {
	return NewReporter(NewDefaultConsoleReporter())
}

// NewReporter creates a reporter with the given console output
func NewReporter(console *DefaultConsoleReporter) *DefaultReporter {
	return &DefaultReporter{
		console: console,
		csv:     NewDefaultCSVReporter(),
		excel:   NewDefaultExcelReporter(),
		json:    NewDefaultJSONFormatter(),
		paths:   NewDefaultPathManager(),
	}
}

// Console output methods
func (r *DefaultReporter) PrintSummary(a *walkforward.AnalysisResult) { r.console.PrintSummary(a) }

func (r *DefaultReporter) PrintPeriodResults(a *walkforward.AnalysisResult) {
	r.console.PrintPeriodResults(a)
}

func (r *DefaultReporter) PrintRecommendations(a *walkforward.AnalysisResult) {
	r.console.PrintRecommendations(a)
}

func (r *DefaultReporter) PrintSchedule(periods []walkforward.Period) { r.console.PrintSchedule(periods) }

func (r *DefaultReporter) PrintAll(a *walkforward.AnalysisResult) { r.console.PrintAll(a) }

// File output methods
func (r *DefaultReporter) WriteResultsCSV(a *walkforward.AnalysisResult, path string) error {
	return r.csv.WriteResultsCSV(a, path)
}

func (r *DefaultReporter) WriteResultsXLSX(a *walkforward.AnalysisResult, path string) error {
	return r.excel.WriteResultsXLSX(a, path)
}

func (r *DefaultReporter) WriteAnalysisJSON(a *walkforward.AnalysisResult, path string) error {
	return r.json.WriteAnalysisJSON(a, path)
}

// PrintJSON writes the analysis as JSON to w
func (r *DefaultReporter) PrintJSON(a *walkforward.AnalysisResult, w io.Writer) error {
	return r.json.PrintAnalysis(a, w)
}

// Path management methods
func (r *DefaultReporter) ReportFileName(labID string, a *walkforward.AnalysisResult, ext string) string {
	return r.paths.ReportFileName(labID, a.CompletedAt, ext)
}

func (r *DefaultReporter) EnsureDirectoryExists(path string) error {
	return r.paths.EnsureDirectoryExists(path)
}

var (
	_ ConsoleReporter = (*DefaultReporter)(nil)
	_ FileReporter    = (*DefaultReporter)(nil)
	_ ConsoleReporter = (*DefaultConsoleReporter)(nil)
)

// ReportingManager provides a high-level interface for all reporting needs
type ReportingManager struct {
	reporter *DefaultReporter
	config   ReportingConfig
}

// NewReportingManager creates a new reporting manager with configuration
func NewReportingManager(config ReportingConfig) *ReportingManager {
	return NewReportingManagerWith(NewDefaultReporter(), config)
}

// NewReportingManagerWith creates a manager around an existing reporter
func NewReportingManagerWith(reporter *DefaultReporter, config ReportingConfig) *ReportingManager {
	if config.OutputDirectory == "" {
		config.OutputDirectory = DefaultOutputDirectory
	}
	return &ReportingManager{
		reporter: reporter,
		config:   config,
	}
}

// Report outputs the analysis according to configuration and returns the written file paths
func (m *ReportingManager) Report(a *walkforward.AnalysisResult) ([]string, error) {
	if a == nil {
		return nil, fmt.Errorf("no analysis to report")
	}

	if m.config.EnableConsole {
		m.reporter.PrintAll(a)
	}

	if !m.config.EnableFiles {
		return nil, nil
	}

	outputs := []struct {
		enabled bool
		ext     string
		write   func(*walkforward.AnalysisResult, string) error
	}{
		{m.config.CSVEnabled, "csv", m.reporter.WriteResultsCSV},
		{m.config.ExcelEnabled, "xlsx", m.reporter.WriteResultsXLSX},
		{m.config.JSONEnabled, "json", m.reporter.WriteAnalysisJSON},
	}

	var written []string
	for _, out := range outputs {
		if !out.enabled {
			continue
		}
		path := filepath.Join(m.config.OutputDirectory, m.reporter.ReportFileName(a.LabID, a, out.ext))
		if err := out.write(a, path); err != nil {
			return written, fmt.Errorf("failed to write %s report: %w", out.ext, err)
		}
		written = append(written, path)
	}

	return written, nil
}
