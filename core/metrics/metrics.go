package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects catalog counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Refreshes,
	Collisions,
	Lookups,
	Errs *prometheus.CounterVec
	Entries *prometheus.GaugeVec
}

// New creates the catalog metrics and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pattern_catalog",
			Subsystem: "index",
			Name:      "refresh_total",
			Help:      "Full listings performed by the catalog index",
		}, []string{"catalog"}),
		Collisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pattern_catalog",
			Subsystem: "index",
			Name:      "key_collision_total",
			Help:      "Entries dropped because their key was already taken",
		}, []string{"catalog"}),
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pattern_catalog",
			Subsystem: "index",
			Name:      "lookup_total",
			Help:      "Entry lookups by result",
		}, []string{"catalog", "result"}),
		Errs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pattern_catalog",
			Subsystem: "sys",
			Name:      "error_total",
			Help:      "Lister errors by catalog",
		}, []string{"catalog"}),
		Entries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "pattern_catalog",
			Subsystem: "index",
			Name:      "entries",
			Help:      "Entries currently held by the catalog index",
		}, []string{"catalog"}),
	}

	for _, c := range []prometheus.Collector{m.Refreshes, m.Collisions, m.Lookups, m.Errs, m.Entries} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Refreshed records a completed full listing holding n entries.
func (m *Metrics) Refreshed(catalog string, n int) {
	if m == nil {
		return
	}
	m.Refreshes.WithLabelValues(catalog).Inc()
	m.Entries.WithLabelValues(catalog).Set(float64(n))
}

// Collided records a dropped duplicate entry.
func (m *Metrics) Collided(catalog string) {
	if m == nil {
		return
	}
	m.Collisions.WithLabelValues(catalog).Inc()
}

// Looked records an entry lookup with result "hit", "resolved" or "not_found".
func (m *Metrics) Looked(catalog, result string) {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues(catalog, result).Inc()
}

// Failed records a lister error.
func (m *Metrics) Failed(catalog string) {
	if m == nil {
		return
	}
	m.Errs.WithLabelValues(catalog).Inc()
}
