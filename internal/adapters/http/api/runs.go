package api

import (
	"context"
	"net/http"

	"github.com/okian/flagmap/internal/domain/types"
)

// RunDependencies defines the run operations the API exposes.
type RunDependencies interface {
	Run(ctx context.Context) (types.RunReport, error)
	LatestReport(ctx context.Context) (types.RunReport, error)
}

// RunsHandler handles run requests.
type RunsHandler struct {
	deps RunDependencies
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(deps RunDependencies) *RunsHandler {
	return &RunsHandler{deps: deps}
}

// HandleTriggerRun handles POST /runs. The request blocks until the run
// finishes; a concurrent request gets 409.
func (h *RunsHandler) HandleTriggerRun(w http.ResponseWriter, r *http.Request) {
	report, err := h.deps.Run(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleLatestRun handles GET /runs/latest.
func (h *RunsHandler) HandleLatestRun(w http.ResponseWriter, r *http.Request) {
	report, err := h.deps.LatestReport(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
