package reporting

import (
	"time"

	"github.com/ducminhle1904/crypto-wfo-analyzer/pkg/walkforward"
)

func day(s string) time.Time {
	t, err := time.Parse(walkforward.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

// sampleAnalysis has one successful and one failed period
func sampleAnalysis() *walkforward.AnalysisResult {
	cfg := walkforward.DefaultConfig(day("2022-01-01"), day("2022-06-30"))
	cfg.TrainingDurationDays = 60
	cfg.TestingDurationDays = 30
	cfg.StepSizeDays = 30

	periods := []walkforward.Period{
		{ID: 0, TrainingStart: day("2022-01-01"), TrainingEnd: day("2022-03-02"), TestingStart: day("2022-03-03"), TestingEnd: day("2022-04-02"), Mode: walkforward.RollingWindow},
		{ID: 1, TrainingStart: day("2022-01-31"), TrainingEnd: day("2022-04-01"), TestingStart: day("2022-04-02"), TestingEnd: day("2022-05-02"), Mode: walkforward.RollingWindow},
	}

	results := []walkforward.Result{
		{
			Period:      periods[0],
			CandidateID: "cand-001",
			Parameters:  map[string]float64{"tp": 0.02, "sl": 0.05},
			TrainingMetrics: walkforward.Metrics{
				ROI: 20, WinRate: 0.6, TotalTrades: 30, MaxDrawdown: 8, ProfitFactor: 1.8, SharpeRatio: 1.4,
			},
			TestingMetrics: walkforward.Metrics{
				ROI: 12.5, WinRate: 0.55, TotalTrades: 12, MaxDrawdown: 9.5, ProfitFactor: 1.5, SharpeRatio: 1.1,
			},
			OutOfSampleReturn:      12.5,
			OutOfSampleSharpe:      1.1,
			OutOfSampleMaxDrawdown: 9.5,
			StabilityScore:         0.625,
			CandidateCount:         4,
			Success:                true,
		},
		{
			Period:         periods[1],
			CandidateCount: 0,
			Error:          "[SELECTION:walkforward] select: no candidates available",
		},
	}

	a := walkforward.NewAnalysisResult("lab-abcdef123456", cfg, periods, results)
	a.StartedAt = time.Date(2024, 5, 1, 9, 59, 0, 0, time.UTC)
	a.CompletedAt = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return a
}
