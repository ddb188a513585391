package config

import (
	"time"

	"github.com/ducminhle1904/crypto-wfo-analyzer/pkg/walkforward"
)

// FileConfig is the on-disk layout of an analysis config. Pointer fields distinguish
// "absent" from an explicit zero so defaults survive partial files.
type FileConfig struct {
	LabID    string          `yaml:"lab_id" json:"lab_id"`
	Analysis AnalysisSection `yaml:"analysis" json:"analysis"`
	Filters  FiltersSection  `yaml:"filters" json:"filters"`
	Source   SourceSection   `yaml:"source" json:"source"`
	Output   OutputSection   `yaml:"output" json:"output"`
	Workers  *int            `yaml:"workers,omitempty" json:"workers,omitempty"`
}

type AnalysisSection struct {
	StartDate            string `yaml:"start_date" json:"start_date"`
	EndDate              string `yaml:"end_date" json:"end_date"`
	TrainingDurationDays *int   `yaml:"training_duration_days,omitempty" json:"training_duration_days,omitempty"`
	TestingDurationDays  *int   `yaml:"testing_duration_days,omitempty" json:"testing_duration_days,omitempty"`
	StepSizeDays         *int   `yaml:"step_size_days,omitempty" json:"step_size_days,omitempty"`
	Mode                 string `yaml:"mode,omitempty" json:"mode,omitempty"`
}

type FiltersSection struct {
	MinTrainingPeriods   *int     `yaml:"min_training_periods,omitempty" json:"min_training_periods,omitempty"`
	MinTrades            *int     `yaml:"min_trades,omitempty" json:"min_trades,omitempty"`
	MinWinRate           *float64 `yaml:"min_win_rate,omitempty" json:"min_win_rate,omitempty"`
	MinProfitFactor      *float64 `yaml:"min_profit_factor,omitempty" json:"min_profit_factor,omitempty"`
	MaxDrawdownThreshold *float64 `yaml:"max_drawdown_threshold,omitempty" json:"max_drawdown_threshold,omitempty"`
}

type SourceSection struct {
	Path        string `yaml:"path,omitempty" json:"path,omitempty"`
	DatabaseDSN string `yaml:"database_dsn,omitempty" json:"database_dsn,omitempty"`
}

type OutputSection struct {
	Directory string   `yaml:"directory,omitempty" json:"directory,omitempty"`
	Formats   []string `yaml:"formats,omitempty" json:"formats,omitempty"`
	Console   *bool    `yaml:"console,omitempty" json:"console,omitempty"`
}

// NewDefaultSettings returns settings with the default walk-forward config and no date range
func NewDefaultSettings() *AnalysisSettings {
	return &AnalysisSettings{
		Config:  walkforward.DefaultConfig(time.Time{}, time.Time{}),
		Workers: DefaultWorkers,
		Output: OutputSettings{
			Directory: DefaultResultDir,
			Formats:   []string{FormatCSV},
			Console:   true,
		},
	}
}

// apply copies every present field of fc onto s
func (fc *FileConfig) apply(s *AnalysisSettings) error {
	if fc.LabID != "" {
		s.LabID = fc.LabID
	}

	a := fc.Analysis
	if err := setDate(&s.Config.TotalStart, a.StartDate, "analysis.start_date"); err != nil {
		return err
	}
	if err := setDate(&s.Config.TotalEnd, a.EndDate, "analysis.end_date"); err != nil {
		return err
	}
	setInt(&s.Config.TrainingDurationDays, a.TrainingDurationDays)
	setInt(&s.Config.TestingDurationDays, a.TestingDurationDays)
	setInt(&s.Config.StepSizeDays, a.StepSizeDays)
	if a.Mode != "" {
		mode, err := walkforward.ParseMode(a.Mode)
		if err != nil {
			return err
		}
		s.Config.Mode = mode
	}

	f := fc.Filters
	setInt(&s.Config.MinTrainingPeriods, f.MinTrainingPeriods)
	setInt(&s.Config.MinTrades, f.MinTrades)
	setFloat(&s.Config.MinWinRate, f.MinWinRate)
	setFloat(&s.Config.MinProfitFactor, f.MinProfitFactor)
	setFloat(&s.Config.MaxDrawdownThreshold, f.MaxDrawdownThreshold)

	setInt(&s.Workers, fc.Workers)

	if fc.Source.Path != "" {
		s.Source.Path = fc.Source.Path
	}
	if fc.Source.DatabaseDSN != "" {
		s.Source.DatabaseDSN = fc.Source.DatabaseDSN
	}

	if fc.Output.Directory != "" {
		s.Output.Directory = fc.Output.Directory
	}
	if len(fc.Output.Formats) > 0 {
		s.Output.Formats = fc.Output.Formats
	}
	if fc.Output.Console != nil {
		s.Output.Console = *fc.Output.Console
	}

	return nil
}

// toFileConfig converts settings back into the on-disk layout
func toFileConfig(s *AnalysisSettings) *FileConfig {
	c := s.Config
	fc := &FileConfig{
		LabID: s.LabID,
		Analysis: AnalysisSection{
			TrainingDurationDays: intPtr(c.TrainingDurationDays),
			TestingDurationDays:  intPtr(c.TestingDurationDays),
			StepSizeDays:         intPtr(c.StepSizeDays),
			Mode:                 c.Mode.String(),
		},
		Filters: FiltersSection{
			MinTrainingPeriods:   intPtr(c.MinTrainingPeriods),
			MinTrades:            intPtr(c.MinTrades),
			MinWinRate:           floatPtr(c.MinWinRate),
			MinProfitFactor:      floatPtr(c.MinProfitFactor),
			MaxDrawdownThreshold: floatPtr(c.MaxDrawdownThreshold),
		},
		Source: SourceSection{
			Path:        s.Source.Path,
			DatabaseDSN: s.Source.DatabaseDSN,
		},
		Output: OutputSection{
			Directory: s.Output.Directory,
			Formats:   s.Output.Formats,
			Console:   &s.Output.Console,
		},
		Workers: intPtr(s.Workers),
	}

	if !c.TotalStart.IsZero() {
		fc.Analysis.StartDate = c.TotalStart.Format(walkforward.DateLayout)
	}
	if !c.TotalEnd.IsZero() {
		fc.Analysis.EndDate = c.TotalEnd.Format(walkforward.DateLayout)
	}

	return fc
}

func setDate(dst *time.Time, value, field string) error {
	if value == "" {
		return nil
	}
	t, err := ParseDate(value)
	if err != nil {
		return &fieldError{field: field, err: err}
	}
	*dst = t
	return nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

// ParseDate parses a YYYY-MM-DD date (RFC 3339 timestamps are truncated to their date) in UTC
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(walkforward.DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

type fieldError struct {
	field string
	err   error
}

func (e *fieldError) Error() string { return "invalid " + e.field + ": " + e.err.Error() }
func (e *fieldError) Unwrap() error { return e.err }
