// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"solana-trade-agent/internal/domain"
)

// Metrics holds all Prometheus metrics for the agent.
type Metrics struct {
	// Tick metrics
	TicksTotal    *prometheus.CounterVec
	TickDuration  prometheus.Histogram
	LastTickUnix  prometheus.Gauge
	PositionsOpen prometheus.Gauge

	// Entry pipeline metrics
	CandidatesConsidered prometheus.Counter
	CandidatesScreened   prometheus.Counter
	SwapsSubmitted       prometheus.Counter
	SwapsConfirmed       prometheus.Counter
	SwapsFailed          prometheus.Counter
	TradesClosed         prometheus.Counter

	// Collaborator metrics
	CollaboratorLatency *prometheus.HistogramVec
	CollaboratorErrors  *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "trade_agent"
	}

	return &Metrics{
		TicksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tick",
			Name:      "runs_total",
			Help:      "Total number of tick invocations by terminal status",
		}, []string{"status"}),
		TickDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tick",
			Name:      "duration_seconds",
			Help:      "Tick execution duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		LastTickUnix: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "tick",
			Name:      "last_completed_timestamp",
			Help:      "Unix timestamp of the last completed tick",
		}),
		PositionsOpen: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "positions",
			Name:      "open",
			Help:      "Current number of open positions",
		}),

		CandidatesConsidered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "entry",
			Name:      "candidates_considered_total",
			Help:      "Total number of candidates that entered the per-candidate loop",
		}),
		CandidatesScreened: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "entry",
			Name:      "candidates_screened_out_total",
			Help:      "Total number of candidates rejected by the safety gate",
		}),
		SwapsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "submitted_total",
			Help:      "Total number of swap transactions submitted",
		}),
		SwapsConfirmed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "confirmed_total",
			Help:      "Total number of submitted swaps confirmed on-chain",
		}),
		SwapsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "failed_total",
			Help:      "Total number of submitted swaps that failed on-chain",
		}),
		TradesClosed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "exit",
			Name:      "trades_closed_total",
			Help:      "Total number of positions closed by the time-stop",
		}),

		CollaboratorLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "collaborator",
			Name:      "latency_seconds",
			Help:      "Outbound collaborator call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"collaborator"}),
		CollaboratorErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collaborator",
			Name:      "errors_total",
			Help:      "Total number of outbound collaborator failures",
		}, []string{"collaborator"}),
	}
}

// ObserveTick records the terminal state of one tick invocation.
func (m *Metrics) ObserveTick(r domain.TickReport) {
	m.TicksTotal.WithLabelValues(string(r.Status)).Inc()
	m.TickDuration.Observe(r.Elapsed.Seconds())
	if r.Status == domain.TickCompleted {
		m.LastTickUnix.SetToCurrentTime()
	}
	m.CandidatesConsidered.Add(float64(r.Considered))
	m.CandidatesScreened.Add(float64(r.ScreenedOut))
	m.SwapsSubmitted.Add(float64(r.Opened))
	m.SwapsConfirmed.Add(float64(r.Promoted))
	m.SwapsFailed.Add(float64(r.Dropped))
	m.TradesClosed.Add(float64(r.Closed))
}

// ObserveCollaborator records one outbound call.
func (m *Metrics) ObserveCollaborator(name string, elapsed time.Duration, err error) {
	m.CollaboratorLatency.WithLabelValues(name).Observe(elapsed.Seconds())
	if err != nil {
		m.CollaboratorErrors.WithLabelValues(name).Inc()
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
