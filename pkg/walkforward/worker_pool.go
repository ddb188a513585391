package walkforward

import (
	"context"
	"runtime"
	"sync"
	"time"
)

// WorkerPool analyzes periods in parallel
type WorkerPool struct {
	workerCount int
	jobQueue    chan PeriodJob
	resultQueue chan PeriodOutcome
	process     func(ctx context.Context, job PeriodJob) Result
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

// PeriodJob represents a single period to analyze
type PeriodJob struct {
	LabID  string
	Period Period
	Config Config
}

// PeriodOutcome is the result of a period job
type PeriodOutcome struct {
	Result   Result
	Duration time.Duration
}

// NewWorkerPool creates a pool running process for each submitted job
func NewWorkerPool(ctx context.Context, workerCount, jobBufferSize int, process func(ctx context.Context, job PeriodJob) Result) *WorkerPool {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}

	poolCtx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		workerCount: workerCount,
		jobQueue:    make(chan PeriodJob, jobBufferSize),
		resultQueue: make(chan PeriodOutcome, jobBufferSize),
		process:     process,
		ctx:         poolCtx,
		cancel:      cancel,
	}
}

// Start starts the worker pool
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// Stop closes the job queue, waits for in-flight jobs and closes the result channel
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()
}

// SubmitJob submits a period job to the pool
func (wp *WorkerPool) SubmitJob(job PeriodJob) error {
	select {
	case wp.jobQueue <- job:
		return nil
	case <-wp.ctx.Done():
		return wp.ctx.Err()
	}
}

// GetResults returns the result channel for collecting completed jobs
func (wp *WorkerPool) GetResults() <-chan PeriodOutcome {
	return wp.resultQueue
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for {
		select {
		case job, ok := <-wp.jobQueue:
			if !ok {
				return
			}

			// Jobs still queued when the run is cancelled are dropped
			if wp.ctx.Err() != nil {
				continue
			}

			start := time.Now()
			result := wp.process(wp.ctx, job)

			select {
			case wp.resultQueue <- PeriodOutcome{Result: result, Duration: time.Since(start)}:
			case <-wp.ctx.Done():
				return
			}

		case <-wp.ctx.Done():
			return
		}
	}
}

// ProgressTracker tracks how many periods have been analyzed
type ProgressTracker struct {
	total     int
	completed int
	startTime time.Time
	mutex     sync.RWMutex
}

// NewProgressTracker creates a new progress tracker
func NewProgressTracker(total int) *ProgressTracker {
	return &ProgressTracker{
		total:     total,
		startTime: time.Now(),
	}
}

// Increment increments the completion count
func (pt *ProgressTracker) Increment() {
	pt.mutex.Lock()
	defer pt.mutex.Unlock()
	pt.completed++
}

// GetProgress returns completed, total, percent done and elapsed time
func (pt *ProgressTracker) GetProgress() (int, int, float64, time.Duration) {
	pt.mutex.RLock()
	defer pt.mutex.RUnlock()

	elapsed := time.Since(pt.startTime)
	progress := 0.0
	if pt.total > 0 {
		progress = float64(pt.completed) / float64(pt.total) * 100
	}

	return pt.completed, pt.total, progress, elapsed
}

// EstimateTimeRemaining estimates the remaining time based on current progress
func (pt *ProgressTracker) EstimateTimeRemaining() time.Duration {
	pt.mutex.RLock()
	defer pt.mutex.RUnlock()

	if pt.completed == 0 {
		return 0
	}

	elapsed := time.Since(pt.startTime)
	avgTimePerItem := elapsed / time.Duration(pt.completed)
	remaining := pt.total - pt.completed

	return avgTimePerItem * time.Duration(remaining)
}
