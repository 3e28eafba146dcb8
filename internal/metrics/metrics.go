// Package metrics records per-run counters for node_exporter's textfile
// collector. Nothing is served; the registry is written to disk once a
// command finishes.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Account outcomes.
const (
	OutcomeDeleted  = "deleted"
	OutcomeFailed   = "failed"
	OutcomeBlocked  = "blocked"
	OutcomeImported = "imported"
	OutcomeSkipped  = "skipped"
	OutcomeError    = "error"
	OutcomeExported = "exported"
)

// Recorder collects metrics for one command run.
type Recorder struct {
	registry *prometheus.Registry
	start    time.Time

	accounts *prometheus.CounterVec
	duration prometheus.Gauge
	success  prometheus.Gauge
	lastRun  prometheus.Gauge
}

// NewRecorder starts timing a run of command.
func NewRecorder(command string) *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	labels := prometheus.Labels{"command": command}

	return &Recorder{
		registry: reg,
		start:    time.Now(),
		accounts: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "acctree_accounts_total",
			Help:        "Accounts processed by the last run, by outcome.",
			ConstLabels: labels,
		}, []string{"outcome"}),
		duration: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "acctree_run_duration_seconds",
			Help:        "Wall time of the last run.",
			ConstLabels: labels,
		}),
		success: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "acctree_run_success",
			Help:        "1 if the last run finished without errors.",
			ConstLabels: labels,
		}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "acctree_last_run_timestamp_seconds",
			Help:        "Unix time the last run finished.",
			ConstLabels: labels,
		}),
	}
}

// Add counts n accounts with the given outcome.
func (r *Recorder) Add(outcome string, n int) {
	if n <= 0 {
		return
	}
	r.accounts.WithLabelValues(outcome).Add(float64(n))
}

// Finish stamps duration, success and completion time.
func (r *Recorder) Finish(ok bool) {
	now := time.Now()
	r.duration.Set(now.Sub(r.start).Seconds())
	r.lastRun.Set(float64(now.Unix()))
	if ok {
		r.success.Set(1)
	} else {
		r.success.Set(0)
	}
}

// WriteTextfile writes the registry to path atomically. An empty path is a
// no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
