package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ducminhle1904/crypto-wfo-analyzer/internal/errors"
	"github.com/ducminhle1904/crypto-wfo-analyzer/pkg/walkforward"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
lab_id: lab-42
analysis:
  start_date: 2022-01-01
  end_date: "2023-12-31"
  training_duration_days: 60
  testing_duration_days: 30
  step_size_days: 30
  mode: expanding
filters:
  min_trades: 5
  min_win_rate: 0.35
source:
  path: data/labs
output:
  directory: out
  formats: [CSV, json]
workers: 4
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_YAML(t *testing.T) {
	settings, err := LoadAnalysisConfig(writeConfig(t, "wfo.yaml", sampleYAML), Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "lab-42", settings.LabID)
	assert.Equal(t, time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), settings.Config.TotalStart)
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), settings.Config.TotalEnd)
	assert.Equal(t, 60, settings.Config.TrainingDurationDays)
	assert.Equal(t, walkforward.ExpandingWindow, settings.Config.Mode)
	assert.Equal(t, 5, settings.Config.MinTrades)
	assert.Equal(t, 0.35, settings.Config.MinWinRate)
	assert.Equal(t, 4, settings.Workers)
	assert.Equal(t, "data/labs", settings.Source.Path)
	assert.Equal(t, "out", settings.Output.Directory)
	assert.Equal(t, []string{"csv", "json"}, settings.Output.Formats)
	assert.True(t, settings.HasFormat(FormatJSON))
	assert.False(t, settings.HasFormat(FormatXLSX))

	// untouched keys keep their defaults
	assert.Equal(t, walkforward.DefaultMinTrainingPeriods, settings.Config.MinTrainingPeriods)
	assert.Equal(t, walkforward.DefaultMinProfitFactor, settings.Config.MinProfitFactor)
	assert.True(t, settings.Output.Console)
}

func TestLoadConfig_JSON(t *testing.T) {
	content := `{
  "lab_id": "lab-json",
  "analysis": {"start_date": "2022-01-01", "end_date": "2022-12-31", "mode": "FIXED_WINDOW"},
  "filters": {"min_trades": 0},
  "output": {"console": false}
}`
	settings, err := LoadAnalysisConfig(writeConfig(t, "wfo.json", content), Overrides{})
	require.NoError(t, err)

	assert.Equal(t, walkforward.FixedWindow, settings.Config.Mode)
	assert.Equal(t, 0, settings.Config.MinTrades)
	assert.Equal(t, walkforward.DefaultTrainingDurationDays, settings.Config.TrainingDurationDays)
	assert.False(t, settings.Output.Console)
}

func TestLoadConfig_Overrides(t *testing.T) {
	settings, err := LoadAnalysisConfig(writeConfig(t, "wfo.yml", sampleYAML), Overrides{
		LabID:        "lab-cli",
		StartDate:    "2022-06-01",
		TrainingDays: 90,
		Mode:         "rolling",
		Workers:      2,
		Formats:      []string{"xlsx"},
	})
	require.NoError(t, err)

	assert.Equal(t, "lab-cli", settings.LabID)
	assert.Equal(t, time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC), settings.Config.TotalStart)
	assert.Equal(t, 90, settings.Config.TrainingDurationDays)
	assert.Equal(t, 30, settings.Config.TestingDurationDays)
	assert.Equal(t, walkforward.RollingWindow, settings.Config.Mode)
	assert.Equal(t, 2, settings.Workers)
	assert.Equal(t, []string{"xlsx"}, settings.Output.Formats)
}

func TestLoadConfig_OverridesOnly(t *testing.T) {
	settings, err := LoadAnalysisConfig("", Overrides{
		LabID:     "lab-1",
		StartDate: "2022-01-01",
		EndDate:   "2024-01-01T12:30:00Z",
	})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), settings.Config.TotalEnd)
	assert.Equal(t, walkforward.DefaultStepSizeDays, settings.Config.StepSizeDays)
	assert.Equal(t, DefaultWorkers, settings.Workers)
	assert.Equal(t, DefaultResultDir, settings.Output.Directory)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		content   string
		overrides Overrides
	}{
		{name: "missing file", file: filepath.Join(os.TempDir(), "does-not-exist-wfo.yaml")},
		{name: "unknown key", file: "bad.yaml", content: "lab_id: x\nbogus: 1\n"},
		{name: "malformed json", file: "bad.json", content: "{"},
		{name: "bad date", file: "date.yaml", content: "analysis:\n  start_date: 01/02/2022\n"},
		{name: "bad mode", file: "mode.yaml", content: "analysis:\n  start_date: 2022-01-01\n  end_date: 2023-01-01\n  mode: sideways\n"},
		{name: "no dates", overrides: Overrides{LabID: "lab"}},
		{name: "start after end", overrides: Overrides{StartDate: "2023-01-01", EndDate: "2022-01-01"}},
		{name: "zero step", file: "step.yaml", content: "analysis:\n  start_date: 2022-01-01\n  end_date: 2023-01-01\n  step_size_days: 0\n"},
		{name: "too many workers", overrides: Overrides{StartDate: "2022-01-01", EndDate: "2023-01-01", Workers: 1000}},
		{name: "bad format", overrides: Overrides{StartDate: "2022-01-01", EndDate: "2023-01-01", Formats: []string{"pdf"}}},
		{name: "bad override date", overrides: Overrides{StartDate: "yesterday"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.file
			if tt.content != "" {
				path = writeConfig(t, tt.file, tt.content)
			}

			_, err := LoadAnalysisConfig(path, tt.overrides)
			require.Error(t, err)
			assert.True(t, errors.IsConfigurationError(err), "expected a configuration error, got %v", err)
		})
	}
}

func TestLoadConfig_EmptyYAMLUsesDefaults(t *testing.T) {
	settings, err := LoadAnalysisConfig(writeConfig(t, "empty.yaml", ""), Overrides{
		StartDate: "2022-01-01",
		EndDate:   "2023-01-01",
	})
	require.NoError(t, err)
	assert.Equal(t, walkforward.DefaultMode, settings.Config.Mode)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	manager := NewAnalysisConfigManager()
	original, err := manager.LoadConfig(writeConfig(t, "wfo.yaml", sampleYAML), Overrides{})
	require.NoError(t, err)

	for _, name := range []string{"saved.yaml", "saved.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			require.NoError(t, manager.SaveConfig(original, path))

			loaded, err := manager.LoadConfig(path, Overrides{})
			require.NoError(t, err)
			assert.Equal(t, original, loaded)
		})
	}
}
