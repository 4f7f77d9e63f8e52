package rest

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups everything NewRouter mounts.
type Handlers struct {
	Matching *MatchingHandler
	Waiting  *WaitingHandler
	Admin    *AdminHandler
	Health   *HealthHandler
}

// NewRouter mounts the API behind api and leaves the probes and /metrics
// outside of it, so they are neither authenticated nor rate limited.
func NewRouter(h Handlers, gatherer prometheus.Gatherer, api func(http.Handler) http.Handler) http.Handler {
	apiMux := http.NewServeMux()

	apiMux.HandleFunc("POST /matchings", h.Matching.Request)
	apiMux.HandleFunc("GET /matchings", h.Matching.List)
	apiMux.HandleFunc("GET /matchings/{id}", h.Matching.Get)
	apiMux.HandleFunc("POST /matchings/{id}/accept", h.Matching.Accept)
	apiMux.HandleFunc("POST /matchings/{id}/reject", h.Matching.Reject)
	apiMux.HandleFunc("POST /matchings/{id}/cancel", h.Matching.Cancel)
	apiMux.HandleFunc("POST /matchings/{id}/complete", h.Matching.Complete)

	apiMux.HandleFunc("POST /waiting", h.Waiting.Enqueue)
	apiMux.HandleFunc("GET /waiting", h.Waiting.List)
	apiMux.HandleFunc("DELETE /waiting/{role}", h.Waiting.Leave)

	apiMux.HandleFunc("POST /admin/matchings/{id}/reject-pending", h.Admin.RejectPending)
	apiMux.HandleFunc("POST /admin/presence/rebuild", h.Admin.RebuildPresence)
	apiMux.HandleFunc("GET /admin/relay", h.Admin.RelayStats)

	root := http.NewServeMux()
	root.HandleFunc("GET /live", h.Health.Live)
	root.HandleFunc("GET /ready", h.Health.Ready)
	root.HandleFunc("GET /health", h.Health.Health)
	root.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	root.Handle("/", api(apiMux))

	return root
}
