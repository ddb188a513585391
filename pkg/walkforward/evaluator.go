package walkforward

import (
	"context"
	"math"
	"math/rand"
)

// DefaultSyntheticSeed is the seed the synthetic evaluator uses when none is set
const DefaultSyntheticSeed int64 = 42

// Bounds of the synthetic degradation factor
const (
	minDegradation = 0.7
	maxDegradation = 1.1
)

// SyntheticEvaluator derives testing metrics from training metrics with a deterministic
// degradation factor instead of replaying the strategy over the testing window.
//
// The factor depends only on Seed and the period ID, so repeated runs agree and
// periods may be evaluated in any order.
type SyntheticEvaluator struct {
	Seed int64
}

// NewSyntheticEvaluator creates a synthetic evaluator with the default seed
func NewSyntheticEvaluator() *SyntheticEvaluator {
	return &SyntheticEvaluator{Seed: DefaultSyntheticSeed}
}

// DegradationFactor returns the factor applied to the given period, in [0.7, 1.1)
func (e *SyntheticEvaluator) DegradationFactor(periodID int) float64 {
	rng := rand.New(rand.NewSource(e.Seed + int64(periodID)))
	return minDegradation + rng.Float64()*(maxDegradation-minDegradation)
}

// Evaluate implements OutOfSampleEvaluator
func (e *SyntheticEvaluator) Evaluate(ctx context.Context, training Metrics, period Period, cfg Config) (Metrics, error) {
	if err := ctx.Err(); err != nil {
		return Metrics{}, err
	}
	if training.IsEmpty() {
		return Metrics{}, nil
	}

	f := e.DegradationFactor(period.ID)

	// Trade count follows the length of the testing window
	tradeScale := 1.0
	if cfg.TrainingDurationDays > 0 {
		tradeScale = float64(cfg.TestingDurationDays) / float64(cfg.TrainingDurationDays)
	}

	return Metrics{
		ROI:          training.ROI * f,
		WinRate:      training.WinRate * math.Min(f, 1),
		TotalTrades:  int(math.Round(float64(training.TotalTrades) * tradeScale)),
		MaxDrawdown:  training.MaxDrawdown / f,
		ProfitFactor: training.ProfitFactor * f,
		SharpeRatio:  training.SharpeRatio * f,
	}, nil
}
