// Package metrics exposes Prometheus instrumentation for reconciliation runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RunMetrics tracks reconciliation activity. All methods are nil-safe, so
// one-shot invocations that never scrape can simply pass a nil *RunMetrics
// around.
type RunMetrics struct {
	runsTotal    *prometheus.CounterVec
	runsInFlight prometheus.Gauge
	grantsTotal  prometheus.Counter
	revokesTotal prometheus.Counter
	skippedTotal prometheus.Counter
	runDuration  prometheus.Histogram
	lastRunUnix  prometheus.Gauge
}

// NewRunMetrics registers the rolesync collectors on the default registry.
// Call it once per process.
func NewRunMetrics() *RunMetrics {
	return &RunMetrics{
		runsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rolesync_runs_total",
			Help: "Completed reconciliation runs by outcome.",
		}, []string{"outcome"}),
		runsInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "rolesync_runs_in_flight",
			Help: "Reconciliation runs currently executing.",
		}),
		grantsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rolesync_grants_total",
			Help: "Role grants applied.",
		}),
		revokesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rolesync_revokes_total",
			Help: "Role revokes applied.",
		}),
		skippedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rolesync_identities_skipped_total",
			Help: "Member identities skipped because the mapping rule does not cover them.",
		}),
		runDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "rolesync_run_duration_seconds",
			Help:    "Wall-clock duration of reconciliation runs.",
			Buckets: prometheus.DefBuckets,
		}),
		lastRunUnix: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "rolesync_last_run_unix",
			Help: "Unix timestamp of the last completed run.",
		}),
	}
}

// RecordRunStarted marks a run as in flight.
func (m *RunMetrics) RecordRunStarted() {
	if m == nil {
		return
	}
	m.runsInFlight.Inc()
}

// RecordRunFinished completes the in-flight run with its outcome and
// duration.
func (m *RunMetrics) RecordRunFinished(succeeded bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runsInFlight.Dec()
	outcome := "success"
	if !succeeded {
		outcome = "failure"
	}
	m.runsTotal.WithLabelValues(outcome).Inc()
	m.runDuration.Observe(elapsed.Seconds())
	m.lastRunUnix.SetToCurrentTime()
}

// RecordGrant counts one applied grant.
func (m *RunMetrics) RecordGrant() {
	if m == nil {
		return
	}
	m.grantsTotal.Inc()
}

// RecordRevoke counts one applied revoke.
func (m *RunMetrics) RecordRevoke() {
	if m == nil {
		return
	}
	m.revokesTotal.Inc()
}

// RecordSkippedIdentity counts one identity excluded from the desired set.
func (m *RunMetrics) RecordSkippedIdentity() {
	if m == nil {
		return
	}
	m.skippedTotal.Inc()
}
