// Package metrics exposes Prometheus counters/gauges for the shadow
// lifecycle (C10), grounded on prometheus/client_golang — a real rclone
// dependency used there to back rclone's own --rc metrics endpoint.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups every counter/gauge the shadowing engine updates.
type Metrics struct {
	ShadowsCreated   prometheus.Counter
	ShadowsPromoted  prometheus.Counter
	ShadowsDiscarded prometheus.Counter
	IndexSize        prometheus.Gauge
	RingDrops        prometheus.Counter
}

// New registers and returns a fresh Metrics set on its own registry, so
// multiple engines in the same process (e.g. under test) don't collide on
// the default global registry.
func New() (*Metrics, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		ShadowsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "shadowbackup_shadows_created_total",
			Help: "Shadows successfully created for added/renamed-in files.",
		}),
		ShadowsPromoted: factory.NewCounter(prometheus.CounterOpts{
			Name: "shadowbackup_shadows_promoted_total",
			Help: "Shadows promoted into the backup tree on deletion/rename-out.",
		}),
		ShadowsDiscarded: factory.NewCounter(prometheus.CounterOpts{
			Name: "shadowbackup_shadows_discarded_total",
			Help: "Shadows discarded unpromoted, e.g. at shutdown.",
		}),
		IndexSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "shadowbackup_index_size",
			Help: "Current number of in-flight shadow entries.",
		}),
		RingDrops: factory.NewCounter(prometheus.CounterOpts{
			Name: "shadowbackup_ring_drops_total",
			Help: "Log records dropped because the ring queue was full.",
		}),
	}, reg
}

// Serve starts an HTTP server exposing reg on addr under /metrics. It
// blocks until the server stops; callers typically run it in a goroutine.
func Serve(addr string, reg *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return http.ListenAndServe(addr, mux)
}
