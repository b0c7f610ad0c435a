package sim

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds counters for every run recorded against it.
type Metrics struct {
	registry *prometheus.Registry
	accesses *prometheus.CounterVec
	hitRate  *prometheus.GaugeVec
}

const namespace = "setassoc_sim"

// NewMetrics creates a registry with the simulator's collectors.
func NewMetrics() *Metrics {
	var (
		labels   = []string{"policy", "pattern"}
		accesses = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "accesses_total",
			Help:      "Cache accesses replayed, by outcome.",
		}, append(labels, "outcome"))
		hitRate = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "hit_ratio",
			Help:      "Hit ratio of the most recent run.",
		}, labels)
		registry = prometheus.NewRegistry()
	)
	registry.MustRegister(accesses, hitRate)
	return &Metrics{
		registry: registry,
		accesses: accesses,
		hitRate:  hitRate,
	}
}

func (m *Metrics) record(result Result) {
	m.accesses.WithLabelValues(result.Policy, result.Pattern, "hit").Add(float64(result.Hits))
	m.accesses.WithLabelValues(result.Policy, result.Pattern, "miss").Add(float64(result.Misses))
	m.hitRate.WithLabelValues(result.Policy, result.Pattern).Set(result.HitRate())
}

// Gatherer exposes the registry, e.g. for an HTTP handler or tests.
func (m *Metrics) Gatherer() prometheus.Gatherer { return m.registry }

// WriteFile writes the collected metrics to path
// in the Prometheus text exposition format.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
