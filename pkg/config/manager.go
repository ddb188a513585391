package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ducminhle1904/crypto-wfo-analyzer/internal/errors"
	"github.com/ducminhle1904/crypto-wfo-analyzer/pkg/walkforward"
	"gopkg.in/yaml.v3"
)

const componentName = "config"

// AnalysisConfigManager implements ConfigManager for walk-forward analysis settings
type AnalysisConfigManager struct {
	validator Validator
}

// NewAnalysisConfigManager creates a new analysis configuration manager
func NewAnalysisConfigManager() *AnalysisConfigManager {
	return &AnalysisConfigManager{
		validator: NewAnalysisValidator(),
	}
}

// LoadConfig starts from defaults, applies the config file if given, then the overrides, and validates.
// All failures are configuration errors.
func (m *AnalysisConfigManager) LoadConfig(configFile string, overrides Overrides) (*AnalysisSettings, error) {
	settings := NewDefaultSettings()

	if configFile != "" {
		fc, err := m.readFile(configFile)
		if err != nil {
			return nil, err
		}
		if err := fc.apply(settings); err != nil {
			return nil, errors.NewConfigurationError(componentName, "load", err.Error()).
				WithContext("file", configFile)
		}
	}

	if err := applyOverrides(settings, overrides); err != nil {
		return nil, err
	}

	if err := m.ValidateConfig(settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// readFile decodes a YAML or JSON config, rejecting unknown keys
func (m *AnalysisConfigManager) readFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigurationError(componentName, "load",
			fmt.Sprintf("could not read config file: %v", err)).WithContext("file", path)
	}

	var fc FileConfig
	if isJSON(path) {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&fc)
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&fc)
		if err == io.EOF {
			// empty file: defaults only
			err = nil
		}
	}
	if err != nil {
		return nil, errors.NewConfigurationError(componentName, "load",
			fmt.Sprintf("could not parse config file: %v", err)).WithContext("file", path)
	}

	return &fc, nil
}

// ValidateConfig validates the settings
func (m *AnalysisConfigManager) ValidateConfig(settings *AnalysisSettings) error {
	return m.validator.Validate(settings)
}

// SaveConfig writes settings as YAML, or JSON when path ends in .json
func (m *AnalysisConfigManager) SaveConfig(settings *AnalysisSettings, path string) error {
	fc := toFileConfig(settings)

	var data []byte
	var err error
	if isJSON(path) {
		data, err = json.MarshalIndent(fc, "", "  ")
	} else {
		data, err = yaml.Marshal(fc)
	}
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return os.WriteFile(path, data, 0644)
}

func applyOverrides(s *AnalysisSettings, o Overrides) error {
	if o.LabID != "" {
		s.LabID = o.LabID
	}
	if err := setDate(&s.Config.TotalStart, o.StartDate, "start date"); err != nil {
		return errors.NewConfigurationError(componentName, "override", err.Error())
	}
	if err := setDate(&s.Config.TotalEnd, o.EndDate, "end date"); err != nil {
		return errors.NewConfigurationError(componentName, "override", err.Error())
	}
	if o.TrainingDays != 0 {
		s.Config.TrainingDurationDays = o.TrainingDays
	}
	if o.TestingDays != 0 {
		s.Config.TestingDurationDays = o.TestingDays
	}
	if o.StepDays != 0 {
		s.Config.StepSizeDays = o.StepDays
	}
	if o.Mode != "" {
		mode, err := walkforward.ParseMode(o.Mode)
		if err != nil {
			return errors.NewConfigurationError(componentName, "override", err.Error())
		}
		s.Config.Mode = mode
	}
	if o.Workers != 0 {
		s.Workers = o.Workers
	}
	if o.Source != "" {
		s.Source.Path = o.Source
	}
	if o.DatabaseDSN != "" {
		s.Source.DatabaseDSN = o.DatabaseDSN
	}
	if o.OutputDir != "" {
		s.Output.Directory = o.OutputDir
	}
	if len(o.Formats) > 0 {
		s.Output.Formats = o.Formats
	}
	return nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// LoadAnalysisConfig is a convenience function using the default manager
func LoadAnalysisConfig(configFile string, overrides Overrides) (*AnalysisSettings, error) {
	return NewAnalysisConfigManager().LoadConfig(configFile, overrides)
}
