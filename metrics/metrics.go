package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values shared by the counters below.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	// ScheduleFetches counts scoreboard fetch attempts by outcome.
	ScheduleFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pickem_schedule_fetches_total",
		Help: "Schedule feed fetch attempts by outcome.",
	}, []string{"outcome"})

	// PickUpserts counts remote pick writes by outcome.
	PickUpserts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pickem_pick_upserts_total",
		Help: "Remote pick upserts by outcome.",
	}, []string{"outcome"})

	// ReconcileRuns counts reconciliation passes.
	ReconcileRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pickem_reconcile_runs_total",
		Help: "Reconciliation passes against the remote store.",
	})

	// SSEClients tracks currently connected event-stream clients.
	SSEClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pickem_sse_clients",
		Help: "Currently connected SSE clients.",
	})
)

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
