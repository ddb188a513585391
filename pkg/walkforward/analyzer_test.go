package walkforward

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ducminhle1904/crypto-wfo-analyzer/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// labRepository serves a fixed candidate set per period, keyed by training start
type labRepository struct {
	byStart map[time.Time][]Candidate
	fail    map[time.Time]error
	calls   int
	mu      sync.Mutex
}

func (r *labRepository) GetCandidates(ctx context.Context, labID string, window Window) ([]Candidate, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()

	if err := r.fail[window.Start]; err != nil {
		return nil, err
	}
	return r.byStart[window.Start], nil
}

func goodCandidates(seed int) []Candidate {
	return []Candidate{
		{ID: fmt.Sprintf("p%d-a", seed), Parameters: map[string]float64{"tp_percent": 1.5}, Metrics: Metrics{ROI: float64(20 + seed), WinRate: 0.6, TotalTrades: 40, MaxDrawdown: 0.1, SharpeRatio: 1.1}},
		{ID: fmt.Sprintf("p%d-b", seed), Parameters: map[string]float64{"tp_percent": 2.0}, Metrics: Metrics{ROI: float64(30 + seed), WinRate: 0.7, TotalTrades: 50, MaxDrawdown: 0.2, SharpeRatio: 1.4}},
	}
}

func newLabRepository(t *testing.T, cfg Config) (*labRepository, []Period) {
	periods, err := GeneratePeriods(cfg)
	require.NoError(t, err)

	repo := &labRepository{byStart: map[time.Time][]Candidate{}, fail: map[time.Time]error{}}
	for _, p := range periods {
		repo.byStart[p.TrainingStart] = goodCandidates(p.ID)
	}
	return repo, periods
}

func TestAnalyzer_Run(t *testing.T) {
	cfg := shortConfig()
	repo, periods := newLabRepository(t, cfg)

	analysis, err := NewAnalyzer(repo).Run(context.Background(), "lab-1", cfg)
	require.NoError(t, err)

	assert.Equal(t, len(periods), analysis.TotalPeriods)
	assert.Equal(t, len(periods), analysis.SuccessfulPeriods)
	assert.Equal(t, 0, analysis.FailedPeriods)
	assert.False(t, analysis.Cancelled)
	assert.Equal(t, periods, analysis.Periods)
	assert.Equal(t, len(periods), repo.calls)

	for i, r := range analysis.Results {
		assert.Equal(t, i, r.Period.ID)
		assert.True(t, r.Success)
		assert.Equal(t, fmt.Sprintf("p%d-b", i), r.CandidateID)
		assert.Equal(t, 2, r.CandidateCount)
		assert.Equal(t, r.TestingMetrics.ROI, r.OutOfSampleReturn)
		assert.GreaterOrEqual(t, r.StabilityScore, 0.0)
		assert.LessOrEqual(t, r.StabilityScore, 1.0)
	}
}

func TestAnalyzer_PerPeriodFailures(t *testing.T) {
	cfg := shortConfig()
	repo, periods := newLabRepository(t, cfg)

	repo.fail[periods[1].TrainingStart] = fmt.Errorf("connection refused")
	repo.byStart[periods[2].TrainingStart] = nil
	repo.byStart[periods[3].TrainingStart] = goodCandidates(3)[:1]
	repo.byStart[periods[4].TrainingStart] = []Candidate{
		{ID: "thin-1", Metrics: Metrics{ROI: 90, WinRate: 0.9, TotalTrades: 1}},
		{ID: "thin-2", Metrics: Metrics{ROI: 80, WinRate: 0.9, TotalTrades: 2}},
	}

	analysis, err := NewAnalyzer(repo).Run(context.Background(), "lab-1", cfg)
	require.NoError(t, err)

	assert.Equal(t, len(periods), analysis.TotalPeriods)
	assert.Equal(t, 4, analysis.FailedPeriods)
	assert.Equal(t, analysis.TotalPeriods, analysis.SuccessfulPeriods+analysis.FailedPeriods)

	fetch := analysis.Results[1]
	assert.False(t, fetch.Success)
	assert.Contains(t, fetch.Error, "connection refused")
	assert.Contains(t, fetch.Error, "NETWORK")
	assert.Zero(t, fetch.OutOfSampleReturn)

	assert.Contains(t, analysis.Results[2].Error, errors.ErrNoCandidates.Error())
	assert.Contains(t, analysis.Results[3].Error, errors.ErrInsufficientCandidates.Error())
	assert.Equal(t, 1, analysis.Results[3].CandidateCount)
	assert.Contains(t, analysis.Results[4].Error, errors.ErrNoQualifiedCandidate.Error())

	assert.True(t, analysis.Results[0].Success)
	assert.True(t, analysis.Results[5].Success)
}

func TestAnalyzer_EvaluatorFailure(t *testing.T) {
	cfg := shortConfig()
	repo, _ := newLabRepository(t, cfg)

	analyzer := NewAnalyzer(repo)
	analyzer.SetEvaluator(EvaluatorFunc(func(ctx context.Context, training Metrics, period Period, cfg Config) (Metrics, error) {
		if period.ID == 0 {
			return Metrics{}, fmt.Errorf("replay failed")
		}
		return training, nil
	}))

	analysis, err := analyzer.Run(context.Background(), "lab", cfg)
	require.NoError(t, err)

	assert.False(t, analysis.Results[0].Success)
	assert.Contains(t, analysis.Results[0].Error, "EVALUATION")
	// identical metrics carry over perfectly
	assert.Equal(t, 1.0, analysis.Results[1].StabilityScore)
}

func TestAnalyzer_InvalidConfig(t *testing.T) {
	cfg := shortConfig()
	cfg.TotalEnd = cfg.TotalStart
	repo := &labRepository{}

	analysis, err := NewAnalyzer(repo).Run(context.Background(), "lab", cfg)
	require.Error(t, err)
	assert.Nil(t, analysis)
	assert.True(t, errors.IsConfigurationError(err))
	assert.Zero(t, repo.calls)
}

func TestAnalyzer_NoPeriods(t *testing.T) {
	cfg := DefaultConfig(date("2023-01-01"), date("2023-03-01"))

	analysis, err := NewAnalyzer(&labRepository{}).Run(context.Background(), "lab", cfg)
	require.NoError(t, err)

	assert.Equal(t, 0, analysis.TotalPeriods)
	assert.Empty(t, analysis.Results)
	assert.NotEmpty(t, analysis.Recommendations)
}

func TestAnalyzer_ParallelMatchesSequential(t *testing.T) {
	cfg := shortConfig()
	repo, periods := newLabRepository(t, cfg)
	repo.byStart[periods[6].TrainingStart] = nil

	sequential, err := NewAnalyzer(repo).Run(context.Background(), "lab", cfg)
	require.NoError(t, err)

	parallel := NewAnalyzer(repo)
	parallel.SetWorkerCount(4)
	concurrent, err := parallel.Run(context.Background(), "lab", cfg)
	require.NoError(t, err)

	assert.Equal(t, sequential.Results, concurrent.Results)
	assert.Equal(t, sequential.Summary, concurrent.Summary)
	assert.Equal(t, sequential.Stability, concurrent.Stability)
	assert.Equal(t, sequential.Recommendations, concurrent.Recommendations)
}

type recordingObserver struct {
	mu  sync.Mutex
	ids []int
}

func (o *recordingObserver) ObservePeriod(labID string, result Result, duration time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ids = append(o.ids, result.Period.ID)
}

func TestAnalyzer_Observer(t *testing.T) {
	cfg := shortConfig()
	repo, periods := newLabRepository(t, cfg)

	observer := &recordingObserver{}
	analyzer := NewAnalyzer(repo)
	analyzer.SetObserver(observer)

	_, err := analyzer.Run(context.Background(), "lab", cfg)
	require.NoError(t, err)
	assert.Len(t, observer.ids, len(periods))
}

func TestAnalyzer_CancelKeepsPrefix(t *testing.T) {
	for _, workers := range []int{1, 3} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			cfg := shortConfig()
			periods, err := GeneratePeriods(cfg)
			require.NoError(t, err)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			var once sync.Once
			repo := CandidateRepositoryFunc(func(ctx context.Context, labID string, window Window) ([]Candidate, error) {
				if window.Start.Equal(periods[3].TrainingStart) {
					once.Do(cancel)
					return nil, ctx.Err()
				}
				if window.Start.After(periods[3].TrainingStart) {
					<-ctx.Done()
					return nil, ctx.Err()
				}
				return goodCandidates(0), nil
			})

			analyzer := NewAnalyzer(repo)
			analyzer.SetWorkerCount(workers)
			analysis, err := analyzer.Run(ctx, "lab", cfg)

			require.ErrorIs(t, err, context.Canceled)
			require.NotNil(t, analysis)
			assert.True(t, analysis.Cancelled)
			assert.LessOrEqual(t, analysis.TotalPeriods, 3)
			assert.Equal(t, analysis.TotalPeriods, analysis.SuccessfulPeriods)
			for i, r := range analysis.Results {
				assert.Equal(t, i, r.Period.ID)
				assert.True(t, r.Success)
			}
			if workers == 1 {
				assert.Equal(t, 3, analysis.TotalPeriods)
			}
		})
	}
}

func TestAnalyzer_ParallelCancelObservesOnlyKeptPeriods(t *testing.T) {
	cfg := shortConfig()
	periods, err := GeneratePeriods(cfg)
	require.NoError(t, err)
	require.Greater(t, len(periods), 3)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// period 1 fails only after period 2 has been evaluated, leaving a gap before it
	evaluated2 := make(chan struct{})
	repo := CandidateRepositoryFunc(func(ctx context.Context, labID string, window Window) ([]Candidate, error) {
		switch {
		case window.Start.Equal(periods[1].TrainingStart):
			select {
			case <-evaluated2:
			case <-time.After(5 * time.Second):
			}
			cancel()
			return nil, ctx.Err()
		case window.Start.After(periods[2].TrainingStart):
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return goodCandidates(0), nil
	})

	synthetic := NewSyntheticEvaluator()
	evaluator := EvaluatorFunc(func(ctx context.Context, training Metrics, period Period, cfg Config) (Metrics, error) {
		m, err := synthetic.Evaluate(ctx, training, period, cfg)
		if period.ID == 2 {
			close(evaluated2)
		}
		return m, err
	})

	observer := &recordingObserver{}
	analyzer := NewAnalyzer(repo)
	analyzer.SetEvaluator(evaluator)
	analyzer.SetObserver(observer)
	analyzer.SetWorkerCount(3)

	analysis, err := analyzer.Run(ctx, "lab", cfg)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, analysis)

	var kept []int
	for _, r := range analysis.Results {
		kept = append(kept, r.Period.ID)
	}
	assert.LessOrEqual(t, analysis.TotalPeriods, 1)
	assert.Equal(t, kept, observer.ids, "observer sees exactly the retained prefix")
	assert.NotContains(t, observer.ids, 2)
}
