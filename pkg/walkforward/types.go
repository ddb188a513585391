package walkforward

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used in logs, reports and config files
const DateLayout = "2006-01-02"

// Mode selects how successive training windows relate to each other
type Mode int

const (
	FixedWindow Mode = iota + 1
	RollingWindow
	ExpandingWindow
)

var modeNames = map[Mode]string{
	FixedWindow:     "FIXED_WINDOW",
	RollingWindow:   "ROLLING_WINDOW",
	ExpandingWindow: "EXPANDING_WINDOW",
}

// String returns the upper-case tag of the mode
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Valid reports whether m is one of the declared modes
func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// ParseMode accepts the tag in any case, with "-" or "_" separators, and with or without the "_WINDOW" suffix
func ParseMode(s string) (Mode, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "-", "_")
	if !strings.HasSuffix(key, "_WINDOW") {
		key += "_WINDOW"
	}
	for mode, name := range modeNames {
		if name == key {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("unknown walk-forward mode %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("unknown walk-forward mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Metrics holds the performance figures of one backtest (or one synthesized testing window)
type Metrics struct {
	ROI          float64 `json:"roi"`           // percent
	WinRate      float64 `json:"win_rate"`      // 0..1
	TotalTrades  int     `json:"total_trades"`
	MaxDrawdown  float64 `json:"max_drawdown"`  // percent, loss magnitude
	ProfitFactor float64 `json:"profit_factor"`
	SharpeRatio  float64 `json:"sharpe_ratio"`
}

// IsEmpty reports whether no metric was populated
func (m Metrics) IsEmpty() bool {
	return m == Metrics{}
}

// Candidate is one parameterization backtested inside a lab
type Candidate struct {
	ID         string             `json:"id"`
	LabID      string             `json:"lab_id"`
	Parameters map[string]float64 `json:"parameters,omitempty"`
	Metrics    Metrics            `json:"metrics"`

	// Date range the backtest itself covered; zero when the collaborator does not report it
	WindowStart time.Time `json:"window_start,omitempty"`
	WindowEnd   time.Time `json:"window_end,omitempty"`
}

// Period is one training window followed by its testing window
type Period struct {
	ID            int       `json:"period_id"`
	TrainingStart time.Time `json:"training_start"`
	TrainingEnd   time.Time `json:"training_end"`
	TestingStart  time.Time `json:"testing_start"`
	TestingEnd    time.Time `json:"testing_end"`
	Mode          Mode      `json:"mode"`
}

// TrainingWindow returns the training date range
func (p Period) TrainingWindow() Window {
	return Window{Start: p.TrainingStart, End: p.TrainingEnd}
}

// TestingWindow returns the testing date range
func (p Period) TestingWindow() Window {
	return Window{Start: p.TestingStart, End: p.TestingEnd}
}

// Result is the outcome of analyzing one period
type Result struct {
	Period                 Period             `json:"period"`
	CandidateID            string             `json:"best_candidate_id"`
	Parameters             map[string]float64 `json:"parameters,omitempty"`
	TrainingMetrics        Metrics            `json:"training_metrics"`
	TestingMetrics         Metrics            `json:"testing_metrics"`
	OutOfSampleReturn      float64            `json:"out_of_sample_return"`
	OutOfSampleSharpe      float64            `json:"out_of_sample_sharpe"`
	OutOfSampleMaxDrawdown float64            `json:"out_of_sample_max_drawdown"`
	StabilityScore         float64            `json:"stability_score"`
	CandidateCount         int                `json:"candidate_count"`
	Success                bool               `json:"success"`
	Error                  string             `json:"error_message,omitempty"`
}

// failedResult builds a failure record; numeric fields stay zero
func failedResult(period Period, candidateCount int, err error) Result {
	return Result{
		Period:         period,
		CandidateCount: candidateCount,
		Success:        false,
		Error:          err.Error(),
	}
}

// Trend classifies the direction of stability scores over time
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// SummaryMetrics are descriptive statistics over successful periods
type SummaryMetrics struct {
	MeanReturn       float64 `json:"mean_return"`
	MedianReturn     float64 `json:"median_return"`
	StdReturn        float64 `json:"std_return"`
	MeanSharpe       float64 `json:"mean_sharpe"`
	MeanDrawdown     float64 `json:"mean_drawdown"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	MeanStability    float64 `json:"mean_stability"`
	ConsistencyRatio float64 `json:"consistency_ratio"`
	SuccessRate      float64 `json:"success_rate"`
}

// StabilityAnalysis describes how out-of-sample behaviour evolves across periods
type StabilityAnalysis struct {
	ReturnVolatility       float64 `json:"return_volatility"`
	ReturnConsistency      float64 `json:"return_consistency"`
	StabilitySlope         float64 `json:"stability_slope"`
	Trend                  Trend   `json:"stability_trend"`
	PerformanceDegradation float64 `json:"performance_degradation"`
}

// PerformanceAttribution splits out-of-sample performance into return, risk and drawdown parts
type PerformanceAttribution struct {
	ReturnContribution       float64 `json:"return_contribution"`
	RiskAdjustedContribution float64 `json:"risk_adjusted_contribution"`
	DrawdownImpact           float64 `json:"drawdown_impact"`
	RiskReturnRatio          float64 `json:"risk_return_ratio"`
}

// ParameterSnapshot is the parameter set selected for one period
type ParameterSnapshot struct {
	PeriodID    int                `json:"period_id"`
	CandidateID string             `json:"candidate_id"`
	Parameters  map[string]float64 `json:"parameters"`
}

// ParameterStats summarizes one parameter's values across periods
type ParameterStats struct {
	Mean                   float64 `json:"mean"`
	StdDev                 float64 `json:"std_dev"`
	CoefficientOfVariation float64 `json:"coefficient_of_variation"`
	Observations           int     `json:"observations"`
}

// ParameterEvolution traces the selected parameters through time
type ParameterEvolution struct {
	Snapshots []ParameterSnapshot         `json:"snapshots"`
	Stats     map[string]ParameterStats `json:"stats"`
}

// AnalysisResult is the full outcome of a walk-forward run
type AnalysisResult struct {
	RunID              string                 `json:"run_id"`
	LabID              string                 `json:"lab_id"`
	Config             Config                 `json:"config"`
	Periods            []Period               `json:"periods"`
	Results            []Result               `json:"results"`
	Summary            SummaryMetrics         `json:"summary_metrics"`
	Stability          StabilityAnalysis      `json:"stability_analysis"`
	ParameterEvolution ParameterEvolution     `json:"parameter_evolution"`
	Attribution        PerformanceAttribution `json:"performance_attribution"`

	TotalPeriods      int `json:"total_periods"`
	SuccessfulPeriods int `json:"successful_periods"`
	FailedPeriods     int `json:"failed_periods"`

	AverageReturn      float64  `json:"average_return"`
	BestPeriodReturn   float64  `json:"best_period_return"`
	WorstPeriodReturn  float64  `json:"worst_period_return"`
	AggregateStability float64  `json:"aggregate_stability"`
	Recommendations    []string `json:"recommendations"`

	Cancelled   bool      `json:"cancelled"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}
