package monitoring

import (
	"net/http"
	"strings"
	"time"

	"github.com/ducminhle1904/crypto-wfo-analyzer/pkg/walkforward"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wfo"

// Metrics holds the Prometheus collectors of the analyzer. It implements walkforward.PeriodObserver.
type Metrics struct {
	registry *prometheus.Registry

	periodsTotal   *prometheus.CounterVec
	periodDuration *prometheus.HistogramVec
	oosReturn      *prometheus.HistogramVec
	stability      *prometheus.GaugeVec
	errorsTotal    *prometheus.CounterVec

	runsTotal          *prometheus.CounterVec
	aggregateStability *prometheus.GaugeVec
	averageReturn      *prometheus.GaugeVec
	successRate        *prometheus.GaugeVec
}

// NewMetrics creates the collectors on a private registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		periodsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "periods_total",
				Help:      "Total number of analyzed walk-forward periods",
			},
			[]string{"lab_id", "status"},
		),

		periodDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "period_duration_seconds",
				Help:      "Time spent analyzing one period",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"lab_id"},
		),

		oosReturn: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "out_of_sample_return_percent",
				Help:      "Distribution of out-of-sample returns of successful periods",
				Buckets:   []float64{-50, -20, -10, -5, 0, 5, 10, 20, 50, 100},
			},
			[]string{"lab_id"},
		),

		stability: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_stability_score",
				Help:      "Stability score of the most recently analyzed successful period",
			},
			[]string{"lab_id"},
		),

		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "period_errors_total",
				Help:      "Total number of failed periods by error category",
			},
			[]string{"category"},
		),

		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of walk-forward runs by outcome",
			},
			[]string{"status"},
		),

		aggregateStability: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "aggregate_stability",
				Help:      "Mean stability score of the last run",
			},
			[]string{"lab_id"},
		),

		averageReturn: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "average_return_percent",
				Help:      "Average out-of-sample return of the last run",
			},
			[]string{"lab_id"},
		),

		successRate: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "success_rate",
				Help:      "Share of successful periods in the last run",
			},
			[]string{"lab_id"},
		),
	}

	m.registry.MustRegister(
		m.periodsTotal,
		m.periodDuration,
		m.oosReturn,
		m.stability,
		m.errorsTotal,
		m.runsTotal,
		m.aggregateStability,
		m.averageReturn,
		m.successRate,
	)

	return m
}

// Registry returns the registry holding the analyzer collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Register adds extra collectors, e.g. cache statistics, to the registry
func (m *Metrics) Register(collectors ...prometheus.Collector) error {
	for _, c := range collectors {
		if err := m.registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObservePeriod records one analyzed period
func (m *Metrics) ObservePeriod(labID string, result walkforward.Result, duration time.Duration) {
	m.periodDuration.WithLabelValues(labID).Observe(duration.Seconds())

	if !result.Success {
		m.periodsTotal.WithLabelValues(labID, "failed").Inc()
		m.errorsTotal.WithLabelValues(ErrorCategory(result.Error)).Inc()
		return
	}

	m.periodsTotal.WithLabelValues(labID, "success").Inc()
	m.oosReturn.WithLabelValues(labID).Observe(result.OutOfSampleReturn)
	m.stability.WithLabelValues(labID).Set(result.StabilityScore)
}

// RecordRun records the outcome of a whole run; a nil analysis counts as failed
func (m *Metrics) RecordRun(analysis *walkforward.AnalysisResult) {
	switch {
	case analysis == nil:
		m.runsTotal.WithLabelValues("failed").Inc()
		return
	case analysis.Cancelled:
		m.runsTotal.WithLabelValues("cancelled").Inc()
	default:
		m.runsTotal.WithLabelValues("completed").Inc()
	}

	m.aggregateStability.WithLabelValues(analysis.LabID).Set(analysis.AggregateStability)
	m.averageReturn.WithLabelValues(analysis.LabID).Set(analysis.AverageReturn)
	m.successRate.WithLabelValues(analysis.LabID).Set(analysis.Summary.SuccessRate)
}

// ErrorCategory extracts the category tag from a "[CATEGORY:component] ..." message
func ErrorCategory(message string) string {
	if !strings.HasPrefix(message, "[") {
		return "UNKNOWN"
	}
	end := strings.IndexAny(message, ":]")
	if end <= 1 {
		return "UNKNOWN"
	}
	return message[1:end]
}

// NewCacheCollectors exposes cache hit and miss counts read from stats
func NewCacheCollectors(stats func() (hits, misses int64)) []prometheus.Collector {
	return []prometheus.Collector{
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidate_cache_hits_total",
			Help:      "Candidate lookups served from the cache",
		}, func() float64 {
			hits, _ := stats()
			return float64(hits)
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidate_cache_misses_total",
			Help:      "Candidate lookups that reached the source",
		}, func() float64 {
			_, misses := stats()
			return float64(misses)
		}),
	}
}
