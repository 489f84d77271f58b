package http

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sawpanic/valuescan/internal/progress"
)

// RunMetrics mirrors progress events into gauges. It is a progress.Emitter.
type RunMetrics struct {
	Events     *prometheus.CounterVec
	Candidates prometheus.Gauge
	Processed  prometheus.Gauge
	Total      prometheus.Gauge
	Eligible   prometheus.Gauge
	Scored     prometheus.Gauge
	Selected   prometheus.Gauge
	Elapsed    prometheus.Gauge
}

// NewRunMetrics creates the run gauges and registers them on reg.
func NewRunMetrics(reg prometheus.Registerer) *RunMetrics {
	m := &RunMetrics{
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "valuescan_progress_events_total",
			Help: "Progress events emitted by type",
		}, []string{"type"}),
		Candidates: gauge("valuescan_run_candidates", "Candidates discovered"),
		Processed:  gauge("valuescan_run_processed", "Candidates processed so far"),
		Total:      gauge("valuescan_run_total", "Candidates to process"),
		Eligible:   gauge("valuescan_run_eligible", "Eligible symbols"),
		Scored:     gauge("valuescan_run_scored", "Scored symbols"),
		Selected:   gauge("valuescan_run_selected", "Symbols in the final selection"),
		Elapsed:    gauge("valuescan_run_elapsed_seconds", "Elapsed run time at the last event"),
	}
	reg.MustRegister(m.Events, m.Candidates, m.Processed, m.Total, m.Eligible, m.Scored, m.Selected, m.Elapsed)
	return m
}

func gauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
}

func (m *RunMetrics) Emit(e progress.Event) {
	m.Events.WithLabelValues(string(e.Type)).Inc()
	m.Elapsed.Set(float64(e.ElapsedMs) / 1000)

	switch e.Type {
	case progress.TypeCandidates:
		m.Candidates.Set(float64(e.Count))
		m.Total.Set(float64(e.Count))
	case progress.TypeProcessing:
		m.Processed.Set(float64(e.Processed))
		m.Total.Set(float64(e.Total))
	case progress.TypeScored:
		m.Eligible.Set(float64(e.Eligible))
		m.Scored.Set(float64(e.Scored))
	case progress.TypeDone:
		m.Selected.Set(float64(e.Selected))
	}
}
