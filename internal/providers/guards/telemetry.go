package guards

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Telemetry counts upstream calls, failures, cooldowns and cache lookups.
// Counters live on a per-run registry so repeated runs in one process start
// from zero.
type Telemetry struct {
	registry *prometheus.Registry

	calls       *prometheus.CounterVec
	successes   *prometheus.CounterVec
	failures    *prometheus.CounterVec
	exhausted   *prometheus.CounterVec
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	cooldowns   prometheus.Counter
}

// Counts is a point-in-time read of the cumulative counters.
type Counts struct {
	Calls       int `json:"calls"`
	Successes   int `json:"successes"`
	Failures    int `json:"failures"`
	Exhausted   int `json:"exhausted"`
	CacheHits   int `json:"cache_hits"`
	CacheMisses int `json:"cache_misses"`
	Cooldowns   int `json:"cooldowns"`
}

// NewTelemetry registers the fetch counters on a fresh registry.
func NewTelemetry() *Telemetry {
	t := &Telemetry{
		registry: prometheus.NewRegistry(),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "valuescan_upstream_calls_total",
			Help: "Live upstream calls attempted",
		}, []string{"kind"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "valuescan_upstream_success_total",
			Help: "Live upstream calls that returned a payload",
		}, []string{"kind"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "valuescan_upstream_failures_total",
			Help: "Failed upstream attempts by error class",
		}, []string{"kind", "class"}),
		exhausted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "valuescan_upstream_exhausted_total",
			Help: "Calls that used every attempt without success",
		}, []string{"kind"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "valuescan_cache_hits_total",
			Help: "Fresh snapshot cache hits",
		}, []string{"kind"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "valuescan_cache_misses_total",
			Help: "Snapshot cache misses or stale records",
		}, []string{"kind"}),
		cooldowns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "valuescan_cooldowns_total",
			Help: "Cooldown pauses after consecutive failures",
		}),
	}
	t.registry.MustRegister(t.calls, t.successes, t.failures, t.exhausted, t.cacheHits, t.cacheMisses, t.cooldowns)
	return t
}

// Registry exposes the registry for additional collectors and the /metrics handler.
func (t *Telemetry) Registry() *prometheus.Registry { return t.registry }

func (t *Telemetry) RecordCall(kind string)    { t.calls.WithLabelValues(kind).Inc() }
func (t *Telemetry) RecordSuccess(kind string) { t.successes.WithLabelValues(kind).Inc() }
func (t *Telemetry) RecordFailure(kind, class string) {
	t.failures.WithLabelValues(kind, class).Inc()
}
func (t *Telemetry) RecordExhausted(kind string) { t.exhausted.WithLabelValues(kind).Inc() }
func (t *Telemetry) RecordCacheHit(kind string)  { t.cacheHits.WithLabelValues(kind).Inc() }
func (t *Telemetry) RecordCacheMiss(kind string) { t.cacheMisses.WithLabelValues(kind).Inc() }
func (t *Telemetry) RecordCooldown()             { t.cooldowns.Inc() }

// Counts sums every counter across its labels.
func (t *Telemetry) Counts() Counts {
	return Counts{
		Calls:       sumCollector(t.calls),
		Successes:   sumCollector(t.successes),
		Failures:    sumCollector(t.failures),
		Exhausted:   sumCollector(t.exhausted),
		CacheHits:   sumCollector(t.cacheHits),
		CacheMisses: sumCollector(t.cacheMisses),
		Cooldowns:   sumCollector(t.cooldowns),
	}
}

// FailuresByClass returns the failure counter for one kind and class.
func (t *Telemetry) FailuresByClass(kind, class string) int {
	return sumCollector(t.failures.WithLabelValues(kind, class))
}

func sumCollector(c prometheus.Collector) int {
	ch := make(chan prometheus.Metric, 32)
	go func() {
		c.Collect(ch)
		close(ch)
	}()

	var total float64
	for m := range ch {
		var pb dto.Metric
		if err := m.Write(&pb); err != nil {
			continue
		}
		total += pb.GetCounter().GetValue()
	}
	return int(total)
}
