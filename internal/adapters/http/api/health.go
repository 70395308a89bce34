// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"

	"github.com/okian/flagmap/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	stats   StatsProvider
	metrics http.Handler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(stats StatsProvider) *HealthHandler {
	return &HealthHandler{
		stats:   stats,
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

type healthResponse struct {
	Status  string `json:"status"`
	Running bool   `json:"running"`
	Runs    int    `json:"runs"`
}

// HandleHealth handles GET /healthz requests. A JSON Accept header gets a
// status document; anything else gets the Prometheus exposition.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if !strings.Contains(r.Header.Get("Accept"), "application/json") {
		h.metrics.ServeHTTP(w, r)
		return
	}
	resp := healthResponse{Status: "ok"}
	if h.stats != nil {
		s := h.stats.GetStats()
		resp.Running, _ = s["running"].(bool)
		resp.Runs, _ = s["runs"].(int)
	}
	writeJSON(w, http.StatusOK, resp)
}
