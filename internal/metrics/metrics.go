package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the service's prometheus collectors. Dispatch outcomes are
// only observable here and in logs, because submission endpoints return
// before the dispatch runs.
type Registry struct {
	DispatchesTotal    *prometheus.CounterVec
	WebhookEventsTotal *prometheus.CounterVec
}

// Dispatch and webhook outcome label values.
const (
	OutcomeAccepted     = "accepted"
	OutcomeRejected     = "rejected"
	OutcomeDropped      = "dropped"
	OutcomeGenerated    = "generated"
	OutcomeFailed       = "failed"
	OutcomeUnknownJob   = "unknown_job"
	OutcomeDuplicate    = "duplicate"
	OutcomeUnauthorized = "unauthorized"
)

// New registers the service collectors against the given registerer.
func New(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)
	return &Registry{
		DispatchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pixgen_dispatches_total",
			Help: "Outbound provider dispatches by job kind and outcome.",
		}, []string{"kind", "outcome"}),
		WebhookEventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pixgen_webhook_events_total",
			Help: "Inbound provider callbacks by job kind and outcome.",
		}, []string{"kind", "outcome"}),
	}
}

// Default registers against the global prometheus registry.
func Default() *Registry {
	return New(prometheus.DefaultRegisterer)
}

// Handler exposes the global registry over HTTP.
func Handler() http.Handler {
	return promhttp.Handler()
}
