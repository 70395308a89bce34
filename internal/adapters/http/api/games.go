package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/flagmap/internal/domain/types"
)

// GameDependencies defines the per-game read operation.
type GameDependencies interface {
	GameDrives(ctx context.Context, key string) ([]types.DriveView, error)
}

// GamesHandler handles game requests.
type GamesHandler struct {
	deps GameDependencies
}

// NewGamesHandler creates a new games handler.
func NewGamesHandler(deps GameDependencies) *GamesHandler {
	return &GamesHandler{deps: deps}
}

// HandleGameDrives handles GET /games/{key}/drives. The key may use retired
// team codes or either team order.
func (h *GamesHandler) HandleGameDrives(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(r.PathValue("key"))
	if key == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	drives, err := h.deps.GameDrives(r.Context(), key)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := gameDrivesResponse{GameID: key, Drives: drives}
	if len(drives) > 0 {
		resp.GameID = drives[0].GameID
	}
	writeJSON(w, http.StatusOK, resp)
}
