package data

import (
	"fmt"
	"math"

	"github.com/ducminhle1904/crypto-wfo-analyzer/pkg/walkforward"
)

// DefaultCandidateFilter implements CandidateFilter
type DefaultCandidateFilter struct{}

// NewDefaultCandidateFilter creates a new default candidate filter
func NewDefaultCandidateFilter() *DefaultCandidateFilter {
	return &DefaultCandidateFilter{}
}

// FilterByWindow keeps candidates whose backtest range lies inside window.
// Candidates without a recorded range belong to every window; a range with only
// one recorded bound cannot be scoped and never matches.
func (f *DefaultCandidateFilter) FilterByWindow(candidates []walkforward.Candidate, window walkforward.Window) []walkforward.Candidate {
	var filtered []walkforward.Candidate
	for _, c := range candidates {
		noStart, noEnd := c.WindowStart.IsZero(), c.WindowEnd.IsZero()
		if noStart && noEnd {
			filtered = append(filtered, c)
			continue
		}
		if noStart || noEnd {
			continue
		}
		if window.Contains(c.WindowStart, c.WindowEnd) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// FilterByLab keeps candidates of labID; records without a lab ID are kept
func (f *DefaultCandidateFilter) FilterByLab(candidates []walkforward.Candidate, labID string) []walkforward.Candidate {
	var filtered []walkforward.Candidate
	for _, c := range candidates {
		if c.LabID == "" || c.LabID == labID {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// Validate checks the ranges of a candidate's metrics and dates
func (f *DefaultCandidateFilter) Validate(c walkforward.Candidate) error {
	if c.ID == "" {
		return fmt.Errorf("candidate id is empty")
	}

	m := c.Metrics
	for name, v := range map[string]float64{
		"roi": m.ROI, "win_rate": m.WinRate, "max_drawdown": m.MaxDrawdown,
		"profit_factor": m.ProfitFactor, "sharpe_ratio": m.SharpeRatio,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("candidate %s: %s is not a finite number", c.ID, name)
		}
	}

	if m.WinRate < 0 || m.WinRate > 1 {
		return fmt.Errorf("candidate %s: win_rate (%.4f) must be between 0 and 1", c.ID, m.WinRate)
	}
	if m.TotalTrades < 0 {
		return fmt.Errorf("candidate %s: total_trades (%d) cannot be negative", c.ID, m.TotalTrades)
	}
	if m.MaxDrawdown < 0 {
		return fmt.Errorf("candidate %s: max_drawdown (%.4f) cannot be negative", c.ID, m.MaxDrawdown)
	}

	if c.WindowStart.IsZero() != c.WindowEnd.IsZero() {
		return fmt.Errorf("candidate %s: window_start and window_end must both be set or both be empty", c.ID)
	}
	if !c.WindowStart.IsZero() && c.WindowEnd.Before(c.WindowStart) {
		return fmt.Errorf("candidate %s: window_end %s is before window_start %s", c.ID,
			c.WindowEnd.Format(walkforward.DateLayout), c.WindowStart.Format(walkforward.DateLayout))
	}

	return nil
}

// RemoveDuplicates removes candidates with a repeated ID, keeping the first occurrence
func (f *DefaultCandidateFilter) RemoveDuplicates(candidates []walkforward.Candidate) []walkforward.Candidate {
	if len(candidates) <= 1 {
		return candidates
	}

	var filtered []walkforward.Candidate
	seen := make(map[string]bool)

	for _, c := range candidates {
		if !seen[c.ID] {
			seen[c.ID] = true
			filtered = append(filtered, c)
		}
	}

	return filtered
}
