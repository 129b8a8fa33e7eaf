package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "arb_scanner"

// Metrics holds the Prometheus collectors of the scan loop
type Metrics struct {
	Scans                   prometheus.Counter
	CycleFailures           prometheus.Counter
	CycleDuration           prometheus.Histogram
	FeedCalls               *prometheus.CounterVec
	FeedErrors              *prometheus.CounterVec
	QuotaRemaining          prometheus.Gauge
	OpportunitiesDetected   *prometheus.CounterVec
	OpportunitiesEmitted    *prometheus.CounterVec
	OpportunitiesSuppressed prometheus.Counter
	AlertsFailed            prometheus.Counter
	BestProfitPercent       prometheus.Gauge
	DedupWindowSize         prometheus.Gauge
	Paused                  prometheus.Gauge
}

// New creates the scan loop collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Scans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "Number of scan cycles started.",
		}),
		CycleFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycle_failures_total",
			Help:      "Number of scan cycles aborted by an unexpected failure.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a scan cycle, alert delays included.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		FeedCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_calls_total",
			Help:      "Number of odds feed requests per sport.",
		}, []string{"sport"}),
		FeedErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_errors_total",
			Help:      "Number of failed odds feed requests per sport.",
		}, []string{"sport"}),
		QuotaRemaining: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_quota_remaining",
			Help:      "Remaining odds feed requests as last reported by the feed.",
		}),
		OpportunitiesDetected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "opportunities_detected_total",
			Help:      "Number of arbitrage opportunities detected, before deduplication.",
		}, []string{"sport"}),
		OpportunitiesEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "opportunities_emitted_total",
			Help:      "Number of arbitrage opportunities alerted.",
		}, []string{"sport"}),
		OpportunitiesSuppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "opportunities_suppressed_total",
			Help:      "Number of opportunities suppressed by the deduplication window.",
		}),
		AlertsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_failed_total",
			Help:      "Number of opportunity alerts that could not be delivered.",
		}),
		BestProfitPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "best_profit_percent",
			Help:      "Best profit percent alerted this session.",
		}),
		DedupWindowSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dedup_window_size",
			Help:      "Fingerprints held by the deduplication window after eviction.",
		}),
		Paused: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "paused",
			Help:      "1 while scanning is paused by the operator.",
		}),
	}

	reg.MustRegister(
		m.Scans,
		m.CycleFailures,
		m.CycleDuration,
		m.FeedCalls,
		m.FeedErrors,
		m.QuotaRemaining,
		m.OpportunitiesDetected,
		m.OpportunitiesEmitted,
		m.OpportunitiesSuppressed,
		m.AlertsFailed,
		m.BestProfitPercent,
		m.DedupWindowSize,
		m.Paused,
	)

	return m
}
