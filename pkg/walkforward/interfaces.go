package walkforward

import (
	"context"
	"time"
)

// Package walkforward provides walk-forward optimization analysis for lab backtest results

// CandidateRepository supplies the candidate backtests that belong to a lab and a training window
type CandidateRepository interface {
	GetCandidates(ctx context.Context, labID string, window Window) ([]Candidate, error)
}

// CandidateRepositoryFunc adapts a plain function to CandidateRepository
type CandidateRepositoryFunc func(ctx context.Context, labID string, window Window) ([]Candidate, error)

// GetCandidates calls f
func (f CandidateRepositoryFunc) GetCandidates(ctx context.Context, labID string, window Window) ([]Candidate, error) {
	return f(ctx, labID, window)
}

// OutOfSampleEvaluator produces testing-window metrics for the candidate selected in training
type OutOfSampleEvaluator interface {
	Evaluate(ctx context.Context, training Metrics, period Period, cfg Config) (Metrics, error)
}

// EvaluatorFunc adapts a plain function to OutOfSampleEvaluator
type EvaluatorFunc func(ctx context.Context, training Metrics, period Period, cfg Config) (Metrics, error)

// Evaluate calls f
func (f EvaluatorFunc) Evaluate(ctx context.Context, training Metrics, period Period, cfg Config) (Metrics, error) {
	return f(ctx, training, period, cfg)
}

// PeriodObserver is notified after every analyzed period
type PeriodObserver interface {
	ObservePeriod(labID string, result Result, duration time.Duration)
}

// PeriodObservers fans a notification out to several observers in order
type PeriodObservers []PeriodObserver

// ObservePeriod notifies every observer
func (o PeriodObservers) ObservePeriod(labID string, result Result, duration time.Duration) {
	for _, observer := range o {
		observer.ObservePeriod(labID, result, duration)
	}
}

// Window is an inclusive date range
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether [start, end] lies within the window
func (w Window) Contains(start, end time.Time) bool {
	return !start.Before(w.Start) && !end.After(w.End)
}

// String formats the window as "2006-01-02 → 2006-01-02"
func (w Window) String() string {
	return w.Start.Format(DateLayout) + " → " + w.End.Format(DateLayout)
}
