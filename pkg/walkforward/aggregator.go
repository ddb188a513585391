package walkforward

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ducminhle1904/crypto-wfo-analyzer/internal/stats"
	"github.com/google/uuid"
)

// Aggregation thresholds
const (
	minRiskDenominator = 0.01

	lowSuccessRate       = 0.5
	highSuccessRate      = 0.8
	lowStability         = 0.5
	highStability        = 0.7
	highReturnVolatility = 1.0 // return std larger than the mean return
)

// Aggregation bundles the cross-period statistics
type Aggregation struct {
	Summary     SummaryMetrics
	Stability   StabilityAnalysis
	Attribution PerformanceAttribution
}

// Aggregate combines per-period results. Only successful results feed the statistics;
// the success rate is measured against all results.
func Aggregate(results []Result) Aggregation {
	successful := successfulResults(results)
	if len(successful) == 0 {
		return Aggregation{Stability: StabilityAnalysis{Trend: TrendStable}}
	}

	returns := make([]float64, len(successful))
	sharpes := make([]float64, len(successful))
	drawdowns := make([]float64, len(successful))
	stabilities := make([]float64, len(successful))
	positive := 0

	for i, r := range successful {
		returns[i] = r.OutOfSampleReturn
		sharpes[i] = r.OutOfSampleSharpe
		drawdowns[i] = r.OutOfSampleMaxDrawdown
		stabilities[i] = r.StabilityScore
		if r.OutOfSampleReturn > 0 {
			positive++
		}
	}

	summary := SummaryMetrics{
		MeanReturn:       stats.Mean(returns),
		MedianReturn:     stats.Median(returns),
		StdReturn:        stats.StdDev(returns),
		MeanSharpe:       stats.Mean(sharpes),
		MeanDrawdown:     stats.Mean(drawdowns),
		MaxDrawdown:      stats.Max(drawdowns),
		MeanStability:    stats.Mean(stabilities),
		ConsistencyRatio: float64(positive) / float64(len(successful)),
		SuccessRate:      float64(len(successful)) / float64(len(results)),
	}

	return Aggregation{
		Summary:     summary,
		Stability:   analyzeStability(returns, stabilities),
		Attribution: attributePerformance(summary),
	}
}

func successfulResults(results []Result) []Result {
	var successful []Result
	for _, r := range results {
		if r.Success {
			successful = append(successful, r)
		}
	}
	return successful
}

func analyzeStability(returns, stabilities []float64) StabilityAnalysis {
	volatility := stats.StdDev(returns)
	meanReturn := stats.Mean(returns)

	consistency := 0.0
	if meanReturn != 0 {
		consistency = 1 - volatility/meanReturn
	}

	slope := stats.Slope(stabilities)

	return StabilityAnalysis{
		ReturnVolatility:       volatility,
		ReturnConsistency:      consistency,
		StabilitySlope:         slope,
		Trend:                  classifyTrend(slope),
		PerformanceDegradation: performanceDegradation(returns),
	}
}

func classifyTrend(slope float64) Trend {
	switch {
	case slope > 0:
		return TrendImproving
	case slope < 0:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// performanceDegradation is mean(first half) - mean(second half); positive means returns fell off
func performanceDegradation(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mid := len(returns) / 2
	return stats.Mean(returns[:mid]) - stats.Mean(returns[mid:])
}

func attributePerformance(summary SummaryMetrics) PerformanceAttribution {
	return PerformanceAttribution{
		ReturnContribution:       summary.MeanReturn,
		RiskAdjustedContribution: summary.MeanSharpe,
		DrawdownImpact:           -summary.MeanDrawdown,
		RiskReturnRatio:          summary.MeanSharpe / math.Max(summary.StdReturn, minRiskDenominator),
	}
}

// TraceParameters records the parameters selected in each successful period
// and how much each parameter moved between periods.
func TraceParameters(results []Result) ParameterEvolution {
	evolution := ParameterEvolution{
		Snapshots: []ParameterSnapshot{},
		Stats:     map[string]ParameterStats{},
	}

	values := map[string][]float64{}
	for _, r := range successfulResults(results) {
		evolution.Snapshots = append(evolution.Snapshots, ParameterSnapshot{
			PeriodID:    r.Period.ID,
			CandidateID: r.CandidateID,
			Parameters:  r.Parameters,
		})
		for name, v := range r.Parameters {
			values[name] = append(values[name], v)
		}
	}

	for name, vs := range values {
		mean := stats.Mean(vs)
		std := stats.StdDev(vs)
		cv := 0.0
		if mean != 0 {
			cv = std / math.Abs(mean)
		}
		evolution.Stats[name] = ParameterStats{
			Mean:                   mean,
			StdDev:                 std,
			CoefficientOfVariation: cv,
			Observations:           len(vs),
		}
	}

	return evolution
}

// NewAnalysisResult assembles the run outcome and computes every derived field once.
// Results are ordered by period ID before aggregation.
func NewAnalysisResult(labID string, cfg Config, periods []Period, results []Result) *AnalysisResult {
	ordered := make([]Result, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Period.ID < ordered[j].Period.ID
	})

	agg := Aggregate(ordered)

	analysis := &AnalysisResult{
		RunID:              uuid.NewString(),
		LabID:              labID,
		Config:             cfg,
		Periods:            periods,
		Results:            ordered,
		Summary:            agg.Summary,
		Stability:          agg.Stability,
		ParameterEvolution: TraceParameters(ordered),
		Attribution:        agg.Attribution,
		TotalPeriods:       len(ordered),
		CompletedAt:        time.Now(),
	}

	var returns []float64
	for _, r := range ordered {
		if r.Success {
			analysis.SuccessfulPeriods++
			returns = append(returns, r.OutOfSampleReturn)
		} else {
			analysis.FailedPeriods++
		}
	}

	analysis.AverageReturn = stats.Mean(returns)
	analysis.BestPeriodReturn = stats.Max(returns)
	analysis.WorstPeriodReturn = stats.Min(returns)
	analysis.AggregateStability = agg.Summary.MeanStability
	analysis.Recommendations = Recommend(analysis)

	return analysis
}

// Recommend derives plain-language advice from success rate, stability and average return
func Recommend(a *AnalysisResult) []string {
	if a.TotalPeriods == 0 {
		return []string{"No walk-forward periods fit in the date range: extend the range or shorten the windows"}
	}
	if a.SuccessfulPeriods == 0 {
		return []string{"No period produced a qualified candidate: check the lab data and relax the performance filters"}
	}

	var recs []string
	successRate := a.Summary.SuccessRate

	if successRate < lowSuccessRate {
		recs = append(recs, fmt.Sprintf(
			"Low success rate (%.0f%% of periods): relax the performance filters or widen the parameter search", successRate*100))
	}

	switch {
	case a.AggregateStability < lowStability:
		recs = append(recs, fmt.Sprintf(
			"Low stability score (%.2f): parameters look overfit to the training windows, prefer fewer parameters or longer training windows", a.AggregateStability))
	case a.AggregateStability < highStability:
		recs = append(recs, fmt.Sprintf(
			"Moderate stability score (%.2f): out-of-sample results drift from training, monitor live performance closely", a.AggregateStability))
	default:
		recs = append(recs, fmt.Sprintf(
			"High stability score (%.2f): selected parameters carry over well out of sample", a.AggregateStability))
	}

	if a.AverageReturn < 0 {
		recs = append(recs, fmt.Sprintf(
			"Negative average out-of-sample return (%.2f%%): do not deploy this strategy", a.AverageReturn))
	} else if a.Summary.MeanReturn > 0 && a.Summary.StdReturn > a.Summary.MeanReturn*highReturnVolatility {
		recs = append(recs, "Out-of-sample returns are more volatile than their mean: size positions conservatively")
	}

	if a.Stability.Trend == TrendDeclining {
		recs = append(recs, "Stability is declining over time: re-optimize more frequently or shorten the step size")
	}

	if successRate >= highSuccessRate && a.AggregateStability >= highStability && a.AverageReturn > 0 {
		recs = append(recs, "Strategy passed walk-forward validation: suitable for live deployment")
	}

	return recs
}
