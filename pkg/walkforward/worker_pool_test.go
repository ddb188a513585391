package walkforward

import (
	"context"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWorkerPool_ProcessesAllJobs(t *testing.T) {
	var calls int32
	pool := NewWorkerPool(context.Background(), 4, 16, func(ctx context.Context, job PeriodJob) Result {
		atomic.AddInt32(&calls, 1)
		return Result{Period: job.Period, Success: true}
	})
	pool.Start()

	go func() {
		defer pool.Stop()
		for i := 0; i < 16; i++ {
			_ = pool.SubmitJob(PeriodJob{LabID: "lab", Period: Period{ID: i}})
		}
	}()

	var ids []int
	for outcome := range pool.GetResults() {
		ids = append(ids, outcome.Result.Period.ID)
		assert.True(t, outcome.Result.Success)
	}

	sort.Ints(ids)
	assert.Len(t, ids, 16)
	for i, id := range ids {
		assert.Equal(t, i, id)
	}
	assert.Equal(t, int32(16), atomic.LoadInt32(&calls))
}

func TestWorkerPool_DefaultWorkerCount(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 0, 1, func(ctx context.Context, job PeriodJob) Result {
		return Result{}
	})
	assert.Greater(t, pool.workerCount, 0)
}

func TestWorkerPool_SubmitAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewWorkerPool(ctx, 1, 0, func(ctx context.Context, job PeriodJob) Result {
		return Result{}
	})
	cancel()

	err := pool.SubmitJob(PeriodJob{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProgressTracker(t *testing.T) {
	pt := NewProgressTracker(4)
	assert.Equal(t, time.Duration(0), pt.EstimateTimeRemaining())

	pt.Increment()
	completed, total, progress, elapsed := pt.GetProgress()

	assert.Equal(t, 1, completed)
	assert.Equal(t, 4, total)
	assert.Equal(t, 25.0, progress)
	assert.GreaterOrEqual(t, elapsed, time.Duration(0))
	assert.GreaterOrEqual(t, pt.EstimateTimeRemaining(), time.Duration(0))
}
