package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SubstitutionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vnbot_substitutions_total",
			Help: "Total number of identity substitutions started on join",
		},
	)

	RestoresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vnbot_restores_total",
			Help: "Total number of identity restorations started on leave",
		},
	)

	ApplyFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vnbot_identity_apply_failures_total",
			Help: "Total number of connector identity changes that failed",
		},
		[]string{"action"},
	)

	TrackedUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vnbot_tracked_users",
			Help: "Number of users currently carrying a substitute identity",
		},
	)
)

// Serve exposes the default registry on addr under /metrics. Blocks.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
