package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/flagmap/internal/domain/types"
)

// TeamDependencies defines the team read operation.
type TeamDependencies interface {
	Team(ctx context.Context, alias string) (types.TeamView, error)
}

// TeamsHandler handles team requests.
type TeamsHandler struct {
	deps TeamDependencies
}

// NewTeamsHandler creates a new teams handler.
func NewTeamsHandler(deps TeamDependencies) *TeamsHandler {
	return &TeamsHandler{deps: deps}
}

// HandleGetTeam handles GET /teams/{alias}. Any registered spelling works:
// code, city label, slug or retired name.
func (h *TeamsHandler) HandleGetTeam(w http.ResponseWriter, r *http.Request) {
	alias := strings.TrimSpace(r.PathValue("alias"))
	if alias == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	view, err := h.deps.Team(r.Context(), alias)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
