package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/ducminhle1904/crypto-wfo-analyzer/pkg/walkforward"
)

const maxRecentErrors = 10

// HealthChecker tracks the progress of the current run. It implements walkforward.PeriodObserver.
type HealthChecker struct {
	mu           sync.RWMutex
	startTime    time.Time
	labID        string
	totalPeriods int
	completed    int
	failed       int
	lastPeriod   time.Time
	finished     bool
	recentErrors []string

	// reports whether the candidate source is reachable; nil means always
	sourceUp func() bool
}

// HealthStatus is the JSON body of the health endpoint
type HealthStatus struct {
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
	LabID        string    `json:"lab_id,omitempty"`
	TotalPeriods int       `json:"total_periods"`
	Completed    int       `json:"completed_periods"`
	Failed       int       `json:"failed_periods"`
	LastPeriod   time.Time `json:"last_period,omitempty"`
	SourceUp     bool      `json:"source_up"`
	Finished     bool      `json:"finished"`
	Uptime       string    `json:"uptime"`
	Errors       []string  `json:"errors,omitempty"`
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		startTime:    time.Now(),
		recentErrors: make([]string, 0),
	}
}

// SetSourceCheck installs the candidate source health check
func (h *HealthChecker) SetSourceCheck(up func() bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sourceUp = up
}

// BeginRun resets the counters for a new run
func (h *HealthChecker) BeginRun(labID string, totalPeriods int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.labID = labID
	h.totalPeriods = totalPeriods
	h.completed = 0
	h.failed = 0
	h.finished = false
	h.recentErrors = h.recentErrors[:0]
}

// EndRun marks the current run as finished
func (h *HealthChecker) EndRun() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.finished = true
}

// ObservePeriod records one analyzed period
func (h *HealthChecker) ObservePeriod(labID string, result walkforward.Result, duration time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.completed++
	h.lastPeriod = time.Now()
	if result.Success {
		return
	}

	h.failed++
	h.recentErrors = append(h.recentErrors, result.Error)
	if len(h.recentErrors) > maxRecentErrors {
		h.recentErrors = h.recentErrors[len(h.recentErrors)-maxRecentErrors:]
	}
}

// Status computes the current health. A run whose periods all failed so far is unhealthy,
// an unreachable source is degraded.
func (h *HealthChecker) Status() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sourceUp := h.sourceUp == nil || h.sourceUp()

	status := "healthy"
	switch {
	case h.completed > 0 && h.failed == h.completed:
		status = "unhealthy"
	case !sourceUp:
		status = "degraded"
	}

	errs := make([]string, len(h.recentErrors))
	copy(errs, h.recentErrors)

	return HealthStatus{
		Status:       status,
		Timestamp:    time.Now(),
		LabID:        h.labID,
		TotalPeriods: h.totalPeriods,
		Completed:    h.completed,
		Failed:       h.failed,
		LastPeriod:   h.lastPeriod,
		SourceUp:     sourceUp,
		Finished:     h.finished,
		Uptime:       time.Since(h.startTime).String(),
		Errors:       errs,
	}
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	health := h.Status()

	w.Header().Set("Content-Type", "application/json")
	switch health.Status {
	case "degraded":
		w.WriteHeader(http.StatusServiceUnavailable)
	case "unhealthy":
		w.WriteHeader(http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusOK)
	}
	json.NewEncoder(w).Encode(health)
}
