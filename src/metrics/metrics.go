// Package metrics holds the per-run Prometheus collectors.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 单次运行的指标
type Metrics struct {
	Registry *prometheus.Registry

	RowsLoaded    *prometheus.CounterVec
	RowsWritten   *prometheus.CounterVec
	JoinUnmatched *prometheus.CounterVec
	StageDuration *prometheus.GaugeVec
	Results       *prometheus.CounterVec
}

// New registers the collectors on a fresh registry so repeated runs in one
// process (watch mode) start from zero.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		RowsLoaded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flights_rows_loaded_total",
				Help: "Rows read from each input table",
			},
			[]string{"table"},
		),
		RowsWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flights_rows_written_total",
				Help: "Rows written to each output sink",
			},
			[]string{"sink"},
		),
		JoinUnmatched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flights_join_unmatched_total",
				Help: "Flight rows whose join key found no lookup row",
			},
			[]string{"join"},
		),
		StageDuration: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "flights_stage_duration_seconds",
				Help: "Wall time of each pipeline stage in seconds",
			},
			[]string{"stage"},
		),
		Results: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flights_results_total",
				Help: "Analysis results produced, by chart kind",
			},
			[]string{"kind"},
		),
	}
}

// ObserveStage records the time elapsed since start for stage.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Set(time.Since(start).Seconds())
}

// WriteTextfile writes the registry in the node_exporter textfile format.
// An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
