package walkforward

import "math"

// Composite score weights and caps
const (
	roiWeight    = 0.4
	winWeight    = 0.3
	tradesWeight = 0.2

	roiScale      = 1000.0
	roiScoreCap   = 5.0
	winScale      = 10.0
	tradesScale   = 100.0
	tradesCap     = 2.0
	ddPenaltyRate = 0.01
	ddPenaltyCap  = 10.0
)

// CompositeScore ranks a candidate on return, win rate, trade count and drawdown
func CompositeScore(m Metrics) float64 {
	roiScore := math.Min(m.ROI/roiScale, roiScoreCap)
	winScore := m.WinRate * winScale
	tradesScore := math.Min(float64(m.TotalTrades)/tradesScale, tradesCap)

	ddPenalty := 0.0
	if m.MaxDrawdown > 0 {
		ddPenalty = math.Min(m.MaxDrawdown*ddPenaltyRate, ddPenaltyCap)
	}

	return roiWeight*roiScore + winWeight*winScore + tradesWeight*tradesScore - ddPenalty
}

// PassesFilters reports whether m satisfies the trade-count, win-rate and drawdown filters.
// MinProfitFactor is not applied here.
func PassesFilters(m Metrics, cfg Config) bool {
	if m.TotalTrades < cfg.MinTrades {
		return false
	}
	if m.WinRate < cfg.MinWinRate {
		return false
	}
	if m.MaxDrawdown > cfg.MaxDrawdownThreshold {
		return false
	}
	return true
}

// FilterCandidates returns the candidates that pass the performance filters, in input order
func FilterCandidates(candidates []Candidate, cfg Config) []Candidate {
	var qualified []Candidate
	for _, c := range candidates {
		if PassesFilters(c.Metrics, cfg) {
			qualified = append(qualified, c)
		}
	}
	return qualified
}

// SelectBest returns the qualified candidate with the highest composite score.
// Ties keep the earliest candidate. ok is false when nothing qualifies.
func SelectBest(candidates []Candidate, cfg Config) (best *Candidate, ok bool) {
	bestScore := math.Inf(-1)

	for i := range candidates {
		c := &candidates[i]
		if !PassesFilters(c.Metrics, cfg) {
			continue
		}

		score := CompositeScore(c.Metrics)
		if best == nil || score > bestScore {
			best = c
			bestScore = score
		}
	}

	return best, best != nil
}
