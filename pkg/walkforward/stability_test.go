package walkforward

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStabilityScore_Identical(t *testing.T) {
	m := Metrics{ROI: 25, WinRate: 0.6, TotalTrades: 30, MaxDrawdown: 4}
	assert.Equal(t, 1.0, StabilityScore(m, m))
}

func TestStabilityScore_OppositeSign(t *testing.T) {
	training := Metrics{ROI: 50, TotalTrades: 10}
	oos := Metrics{ROI: -500, TotalTrades: 3}

	assert.Equal(t, 0.0, StabilityScore(training, oos))
}

func TestStabilityScore_Empty(t *testing.T) {
	m := Metrics{ROI: 10}
	assert.Equal(t, 0.0, StabilityScore(Metrics{}, m))
	assert.Equal(t, 0.0, StabilityScore(m, Metrics{}))
	assert.Equal(t, 0.0, StabilityScore(Metrics{WinRate: 0.5}, m))
}

func TestStabilityScore_Bounded(t *testing.T) {
	trainingROIs := []float64{-300, -20, -0.5, 0.3, 1, 15, 120, 5000}
	testingROIs := []float64{-1000, -10, 0, 0.1, 12, 90, 8000}

	for _, tr := range trainingROIs {
		for _, te := range testingROIs {
			score := StabilityScore(Metrics{ROI: tr, TotalTrades: 1}, Metrics{ROI: te, TotalTrades: 1})
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		}
	}
}

func TestStabilityScore_SmallReturnsUseUnitFloor(t *testing.T) {
	// |0.5 - 0.3| / max(0.5, 1)
	score := StabilityScore(Metrics{ROI: 0.5}, Metrics{ROI: 0.3})
	assert.InDelta(t, 0.8, score, 1e-9)
}
