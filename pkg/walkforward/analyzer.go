package walkforward

import (
	"context"
	"fmt"
	"time"

	"github.com/ducminhle1904/crypto-wfo-analyzer/internal/errors"
	"github.com/rs/zerolog"
)

// Analyzer runs walk-forward analysis over candidates supplied by a repository
type Analyzer struct {
	repository  CandidateRepository
	evaluator   OutOfSampleEvaluator
	observer    PeriodObserver
	logger      zerolog.Logger
	workerCount int
}

// NewAnalyzer creates an analyzer with the synthetic evaluator and sequential execution
func NewAnalyzer(repository CandidateRepository) *Analyzer {
	return &Analyzer{
		repository:  repository,
		evaluator:   NewSyntheticEvaluator(),
		logger:      zerolog.Nop(),
		workerCount: 1,
	}
}

// SetEvaluator replaces the out-of-sample evaluator
func (a *Analyzer) SetEvaluator(evaluator OutOfSampleEvaluator) {
	a.evaluator = evaluator
}

// SetObserver registers a callback invoked after every period
func (a *Analyzer) SetObserver(observer PeriodObserver) {
	a.observer = observer
}

// SetLogger sets the logger used for progress and per-period failures
func (a *Analyzer) SetLogger(logger zerolog.Logger) {
	a.logger = logger
}

// SetWorkerCount sets how many periods are analyzed concurrently; values below 2 run sequentially
func (a *Analyzer) SetWorkerCount(n int) {
	a.workerCount = n
}

// Run validates cfg, generates the periods and analyzes each of them for labID.
//
// Configuration errors abort before any period is analyzed. Per-period failures are
// recorded as unsuccessful results. When ctx is cancelled the returned analysis covers the
// completed prefix of periods, has Cancelled set, and is returned together with ctx.Err().
func (a *Analyzer) Run(ctx context.Context, labID string, cfg Config) (*AnalysisResult, error) {
	startedAt := time.Now()

	periods, err := GeneratePeriods(cfg)
	if err != nil {
		return nil, err
	}

	a.logger.Info().
		Str("lab_id", labID).
		Str("mode", cfg.Mode.String()).
		Int("periods", len(periods)).
		Int("training_days", cfg.TrainingDurationDays).
		Int("testing_days", cfg.TestingDurationDays).
		Int("step_days", cfg.StepSizeDays).
		Msg("starting walk-forward analysis")

	var results []Result
	if a.workerCount > 1 && len(periods) > 1 {
		results = a.runParallel(ctx, labID, cfg, periods)
	} else {
		results = a.runSequential(ctx, labID, cfg, periods)
	}

	analysis := NewAnalysisResult(labID, cfg, periods, results)
	analysis.StartedAt = startedAt

	if ctxErr := ctx.Err(); ctxErr != nil && len(results) < len(periods) {
		analysis.Cancelled = true
		a.logger.Warn().
			Str("lab_id", labID).
			Int("completed", len(results)).
			Int("periods", len(periods)).
			Msg("walk-forward analysis cancelled")
		return analysis, ctxErr
	}

	a.logger.Info().
		Str("lab_id", labID).
		Str("run_id", analysis.RunID).
		Int("successful", analysis.SuccessfulPeriods).
		Int("failed", analysis.FailedPeriods).
		Float64("aggregate_stability", analysis.AggregateStability).
		Float64("average_return", analysis.AverageReturn).
		Dur("elapsed", time.Since(startedAt)).
		Msg("walk-forward analysis complete")

	return analysis, nil
}

func (a *Analyzer) runSequential(ctx context.Context, labID string, cfg Config, periods []Period) []Result {
	results := make([]Result, 0, len(periods))
	tracker := NewProgressTracker(len(periods))

	for _, period := range periods {
		if ctx.Err() != nil {
			break
		}

		start := time.Now()
		result := a.AnalyzePeriod(ctx, labID, period, cfg)
		if ctx.Err() != nil && !result.Success {
			// failed because of the cancellation, not a real outcome
			break
		}
		a.record(labID, result, time.Since(start), tracker)

		results = append(results, result)
	}

	return results
}

func (a *Analyzer) runParallel(ctx context.Context, labID string, cfg Config, periods []Period) []Result {
	tracker := NewProgressTracker(len(periods))
	pool := NewWorkerPool(ctx, a.workerCount, len(periods), func(ctx context.Context, job PeriodJob) Result {
		return a.AnalyzePeriod(ctx, job.LabID, job.Period, job.Config)
	})
	pool.Start()

	go func() {
		defer pool.Stop()
		for _, period := range periods {
			if err := pool.SubmitJob(PeriodJob{LabID: labID, Period: period, Config: cfg}); err != nil {
				return
			}
		}
	}()

	// Periods are recorded in order, and only while they extend the contiguous prefix,
	// so observers of a cancelled run never see a period the analysis drops
	results := make([]Result, 0, len(periods))
	pending := make(map[int]PeriodOutcome, len(periods))
	for outcome := range pool.GetResults() {
		if ctx.Err() != nil && !outcome.Result.Success {
			continue
		}
		pending[outcome.Result.Period.ID] = outcome

		for len(results) < len(periods) {
			next, ok := pending[periods[len(results)].ID]
			if !ok {
				break
			}
			delete(pending, next.Result.Period.ID)
			a.record(labID, next.Result, next.Duration, tracker)
			results = append(results, next.Result)
		}
	}

	return results
}

func (a *Analyzer) record(labID string, result Result, duration time.Duration, tracker *ProgressTracker) {
	tracker.Increment()
	completed, total, progress, _ := tracker.GetProgress()

	event := a.logger.Debug()
	if !result.Success {
		event = a.logger.Warn().Str("error", result.Error)
	}
	event.
		Str("lab_id", labID).
		Int("period_id", result.Period.ID).
		Str("training", result.Period.TrainingWindow().String()).
		Str("testing", result.Period.TestingWindow().String()).
		Str("candidate_id", result.CandidateID).
		Float64("oos_return", result.OutOfSampleReturn).
		Float64("stability", result.StabilityScore).
		Str("progress", fmt.Sprintf("%d/%d (%.0f%%)", completed, total, progress)).
		Dur("remaining", tracker.EstimateTimeRemaining().Round(time.Second)).
		Msg("period analyzed")

	if a.observer != nil {
		a.observer.ObservePeriod(labID, result, duration)
	}
}

// AnalyzePeriod selects the best training candidate for one period and evaluates it out of sample.
// Failures never escape: they are returned as an unsuccessful Result.
func (a *Analyzer) AnalyzePeriod(ctx context.Context, labID string, period Period, cfg Config) Result {
	candidates, err := a.repository.GetCandidates(ctx, labID, period.TrainingWindow())
	if err != nil {
		categorized := errors.CategorizeError(err, componentName, "get_candidates").
			WithContext("period_id", period.ID)
		return failedResult(period, 0, categorized)
	}

	if len(candidates) == 0 {
		return failedResult(period, 0, errors.NewSelectionError(componentName, "select", errors.ErrNoCandidates))
	}

	if len(candidates) < cfg.MinTrainingPeriods {
		return failedResult(period, len(candidates), errors.NewSelectionError(componentName, "select",
			fmt.Errorf("%w: got %d, need %d", errors.ErrInsufficientCandidates, len(candidates), cfg.MinTrainingPeriods)))
	}

	best, ok := SelectBest(candidates, cfg)
	if !ok {
		return failedResult(period, len(candidates), errors.NewSelectionError(componentName, "select", errors.ErrNoQualifiedCandidate))
	}

	testing, err := a.evaluator.Evaluate(ctx, best.Metrics, period, cfg)
	if err != nil {
		return failedResult(period, len(candidates), errors.NewEvaluationError(componentName, "evaluate", err))
	}

	return Result{
		Period:                 period,
		CandidateID:            best.ID,
		Parameters:             copyParameters(best.Parameters),
		TrainingMetrics:        best.Metrics,
		TestingMetrics:         testing,
		OutOfSampleReturn:      testing.ROI,
		OutOfSampleSharpe:      testing.SharpeRatio,
		OutOfSampleMaxDrawdown: testing.MaxDrawdown,
		StabilityScore:         StabilityScore(best.Metrics, testing),
		CandidateCount:         len(candidates),
		Success:                true,
	}
}

func copyParameters(params map[string]float64) map[string]float64 {
	if params == nil {
		return nil
	}
	out := make(map[string]float64, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}
