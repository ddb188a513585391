package walkforward

import (
	"fmt"
	"time"

	"github.com/ducminhle1904/crypto-wfo-analyzer/internal/errors"
)

// Default configuration values
const (
	DefaultTrainingDurationDays = 365
	DefaultTestingDurationDays  = 90
	DefaultStepSizeDays         = 30
	DefaultMode                 = RollingWindow
	DefaultMinTrainingPeriods   = 2

	DefaultMinTrades            = 10
	DefaultMinWinRate           = 0.4
	DefaultMinProfitFactor      = 1.1
	DefaultMaxDrawdownThreshold = 0.3
)

const componentName = "walkforward"

// Config holds the configuration of one walk-forward analysis
type Config struct {
	TotalStart time.Time `json:"total_start"`
	TotalEnd   time.Time `json:"total_end"`

	TrainingDurationDays int  `json:"training_duration_days"`
	TestingDurationDays  int  `json:"testing_duration_days"`
	StepSizeDays         int  `json:"step_size_days"`
	Mode                 Mode `json:"mode"`

	// Minimum number of candidates a training window must offer
	MinTrainingPeriods int `json:"min_training_periods"`

	// Performance filters
	MinTrades            int     `json:"min_trades"`
	MinWinRate           float64 `json:"min_win_rate"`
	MinProfitFactor      float64 `json:"min_profit_factor"`
	MaxDrawdownThreshold float64 `json:"max_drawdown_threshold"`
}

// DefaultConfig returns a configuration over [start, end] with default durations and filters
func DefaultConfig(start, end time.Time) Config {
	return Config{
		TotalStart:           start,
		TotalEnd:             end,
		TrainingDurationDays: DefaultTrainingDurationDays,
		TestingDurationDays:  DefaultTestingDurationDays,
		StepSizeDays:         DefaultStepSizeDays,
		Mode:                 DefaultMode,
		MinTrainingPeriods:   DefaultMinTrainingPeriods,
		MinTrades:            DefaultMinTrades,
		MinWinRate:           DefaultMinWinRate,
		MinProfitFactor:      DefaultMinProfitFactor,
		MaxDrawdownThreshold: DefaultMaxDrawdownThreshold,
	}
}

// Validate checks the configuration for internal consistency
func (c Config) Validate() error {
	if c.TotalStart.IsZero() || c.TotalEnd.IsZero() {
		return errors.NewConfigurationError(componentName, "validate", "total_start and total_end are required")
	}

	if !c.TotalStart.Before(c.TotalEnd) {
		return errors.NewConfigurationError(componentName, "validate",
			fmt.Sprintf("total_start (%s) must be before total_end (%s)",
				c.TotalStart.Format(DateLayout), c.TotalEnd.Format(DateLayout)))
	}

	if c.TrainingDurationDays <= 0 {
		return errors.NewConfigurationError(componentName, "validate",
			fmt.Sprintf("training_duration_days must be positive, got: %d", c.TrainingDurationDays))
	}

	if c.TestingDurationDays <= 0 {
		return errors.NewConfigurationError(componentName, "validate",
			fmt.Sprintf("testing_duration_days must be positive, got: %d", c.TestingDurationDays))
	}

	if c.StepSizeDays <= 0 {
		return errors.NewConfigurationError(componentName, "validate",
			fmt.Sprintf("step_size_days must be positive, got: %d", c.StepSizeDays))
	}

	if !c.Mode.Valid() {
		return errors.NewConfigurationError(componentName, "validate",
			fmt.Sprintf("mode must be one of FIXED_WINDOW, ROLLING_WINDOW, EXPANDING_WINDOW, got: %s", c.Mode))
	}

	return c.validateFilters()
}

func (c Config) validateFilters() error {
	if c.MinTrainingPeriods < 0 {
		return errors.NewConfigurationError(componentName, "validate",
			fmt.Sprintf("min_training_periods must be non-negative, got: %d", c.MinTrainingPeriods))
	}

	if c.MinTrades < 0 {
		return errors.NewConfigurationError(componentName, "validate",
			fmt.Sprintf("min_trades must be non-negative, got: %d", c.MinTrades))
	}

	if c.MinWinRate < 0 || c.MinWinRate > 1 {
		return errors.NewConfigurationError(componentName, "validate",
			fmt.Sprintf("min_win_rate must be between 0 and 1, got: %.4f", c.MinWinRate))
	}

	if c.MinProfitFactor < 0 {
		return errors.NewConfigurationError(componentName, "validate",
			fmt.Sprintf("min_profit_factor must be non-negative, got: %.4f", c.MinProfitFactor))
	}

	if c.MaxDrawdownThreshold < 0 {
		return errors.NewConfigurationError(componentName, "validate",
			fmt.Sprintf("max_drawdown_threshold must be non-negative, got: %.4f", c.MaxDrawdownThreshold))
	}

	return nil
}
