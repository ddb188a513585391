package config

import "github.com/ducminhle1904/crypto-wfo-analyzer/pkg/walkforward"

// Package config loads walk-forward analysis settings from YAML or JSON files

// ConfigManager handles loading, validation and saving of analysis settings
type ConfigManager interface {
	// LoadConfig loads settings from file (optional) and applies overrides
	LoadConfig(configFile string, overrides Overrides) (*AnalysisSettings, error)

	// ValidateConfig validates the settings
	ValidateConfig(settings *AnalysisSettings) error

	// SaveConfig writes settings to a YAML or JSON file
	SaveConfig(settings *AnalysisSettings, path string) error
}

// Validator interface for settings validation
type Validator interface {
	Validate(settings *AnalysisSettings) error
}

// AnalysisSettings is everything one analysis run needs besides the environment
type AnalysisSettings struct {
	LabID   string
	Config  walkforward.Config
	Workers int
	Source  SourceSettings
	Output  OutputSettings
}

// SourceSettings selects where candidates come from; DatabaseDSN wins over Path
type SourceSettings struct {
	Path        string
	DatabaseDSN string
}

// OutputSettings selects the reports to produce
type OutputSettings struct {
	Directory string
	Formats   []string
	Console   bool
}

// Overrides are command-line values; zero values leave the file or default value untouched
type Overrides struct {
	LabID        string
	StartDate    string
	EndDate      string
	TrainingDays int
	TestingDays  int
	StepDays     int
	Mode         string
	Workers      int
	Source       string
	DatabaseDSN  string
	OutputDir    string
	Formats      []string
}

// Common configuration constants
const (
	DefaultWorkers   = 1
	MaxWorkers       = 64
	DefaultResultDir = "results"

	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatJSON = "json"
)

// SupportedFormats lists the report formats accepted in output.formats
var SupportedFormats = []string{FormatCSV, FormatXLSX, FormatJSON}
