package walkforward

import "math"

// StabilityScore compares training and testing returns, 1 meaning identical and 0 meaning unrelated.
// It is 0 when either metric set is empty or the training ROI is exactly zero.
func StabilityScore(training, testing Metrics) float64 {
	if training.IsEmpty() || testing.IsEmpty() || training.ROI == 0 {
		return 0
	}

	degradation := math.Abs(training.ROI-testing.ROI) / math.Max(math.Abs(training.ROI), 1)
	return clamp(1-degradation, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
