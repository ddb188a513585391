package data

import (
	"context"

	"github.com/ducminhle1904/crypto-wfo-analyzer/pkg/walkforward"
)

// Package data supplies lab candidates to the walk-forward analyzer from files,
// PostgreSQL, and caches layered on top of either

// CandidateCache stores candidate sets under an opaque key
type CandidateCache interface {
	// Get retrieves candidates from cache if available
	Get(ctx context.Context, key string) ([]walkforward.Candidate, bool, error)

	// Set stores candidates in cache
	Set(ctx context.Context, key string, candidates []walkforward.Candidate) error

	// Clear removes all cached entries
	Clear(ctx context.Context) error

	// Size returns the number of cached entries
	Size(ctx context.Context) (int, error)
}

// CandidateFilter narrows and cleans candidate sets
type CandidateFilter interface {
	// FilterByWindow keeps candidates whose backtest range lies inside window
	FilterByWindow(candidates []walkforward.Candidate, window walkforward.Window) []walkforward.Candidate

	// FilterByLab keeps candidates belonging to labID
	FilterByLab(candidates []walkforward.Candidate, labID string) []walkforward.Candidate

	// Validate checks a single candidate record
	Validate(candidate walkforward.Candidate) error
}

// ColumnMapping names the columns of a tabular lab export
type ColumnMapping struct {
	ID              string
	LabID           string
	WindowStart     string
	WindowEnd       string
	ROI             string
	WinRate         string
	TotalTrades     string
	MaxDrawdown     string
	ProfitFactor    string
	SharpeRatio     string
	ParameterPrefix string
	DateFormats     []string
}

// DefaultColumnMapping matches the lab export written by the optimizer
var DefaultColumnMapping = ColumnMapping{
	ID:              "id",
	LabID:           "lab_id",
	WindowStart:     "window_start",
	WindowEnd:       "window_end",
	ROI:             "roi",
	WinRate:         "win_rate",
	TotalTrades:     "total_trades",
	MaxDrawdown:     "max_drawdown",
	ProfitFactor:    "profit_factor",
	SharpeRatio:     "sharpe_ratio",
	ParameterPrefix: "param_",
	DateFormats:     []string{walkforward.DateLayout, "2006-01-02 15:04:05", "2006-01-02T15:04:05Z07:00"},
}
