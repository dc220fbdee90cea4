// Package metrics exposes sync and collection metrics to Prometheus.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/quote-manager/internal/domain"
)

const namespace = "quote_manager"

// SyncMetrics records the outcome of every sync attempt.
// It implements ports.SyncNotifier so it can be fanned out next to other notifiers.
type SyncMetrics struct {
	runs      *prometheus.CounterVec
	duration  prometheus.Histogram
	records   *prometheus.CounterVec
	conflicts *prometheus.CounterVec
	lastRun   prometheus.Gauge
	lastOK    prometheus.Gauge
}

// NewSyncMetrics creates the sync instruments and registers them with reg.
func NewSyncMetrics(reg prometheus.Registerer) (*SyncMetrics, error) {
	m := &SyncMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "runs_total",
			Help:      "Sync attempts by final status.",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "duration_seconds",
			Help:      "Wall time of sync attempts that ran.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "records_total",
			Help:      "Records handled by sync, by outcome.",
		}, []string{"outcome"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "conflicts_total",
			Help:      "Conflict notes produced by the reconciler, by kind.",
		}, []string{"kind"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last sync attempt finished.",
		}),
		lastOK: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time the last fully successful sync finished.",
		}),
	}

	for _, c := range []prometheus.Collector{m.runs, m.duration, m.records, m.conflicts, m.lastRun, m.lastOK} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// NotifySync records the summary.
func (m *SyncMetrics) NotifySync(_ context.Context, s domain.SyncSummary) {
	m.runs.WithLabelValues(string(s.Status)).Inc()

	if s.Status == domain.SyncStatusAlreadySyncing {
		return
	}

	m.duration.Observe(s.Duration.Seconds())
	m.records.WithLabelValues("fetched").Add(float64(s.Fetched))
	m.records.WithLabelValues("added").Add(float64(s.Added))
	m.records.WithLabelValues("updated").Add(float64(s.Updated))
	m.records.WithLabelValues("malformed").Add(float64(s.Malformed))
	m.records.WithLabelValues("pushed").Add(float64(s.Pushed))

	for _, c := range s.Conflicts {
		m.conflicts.WithLabelValues(string(c.Kind)).Inc()
	}

	m.lastRun.Set(float64(s.FinishedAt.Unix()))

	if s.Status == domain.SyncStatusOK {
		m.lastOK.Set(float64(s.FinishedAt.Unix()))
	}
}

// RegisterCollectionSize exposes the live quote count as a gauge.
func RegisterCollectionSize(reg prometheus.Registerer, size func() int) error {
	return reg.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "quotes",
		Help:      "Number of quotes in the local collection.",
	}, func() float64 {
		return float64(size())
	}))
}
