// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/flagmap/internal/adapters/repository"
	service "github.com/okian/flagmap/internal/app"
	"github.com/okian/flagmap/internal/domain/gamekey"
	"github.com/okian/flagmap/internal/domain/team"
	"github.com/okian/flagmap/internal/domain/types"
	"github.com/okian/flagmap/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RunDependencies
	GameDependencies
	TeamDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	runsHandler   *RunsHandler
	gamesHandler  *GamesHandler
	teamsHandler  *TeamsHandler

	logger logger.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the logger used for failed requests. Without it failures
// are only counted in metrics.
func WithLogger(l logger.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler: NewHealthHandler(statsProvider),
		statsHandler:  NewStatsHandler(statsProvider),
		runsHandler:   NewRunsHandler(deps),
		gamesHandler:  NewGamesHandler(deps),
		teamsHandler:  NewTeamsHandler(deps),
		logger:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz", s.logger))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats", s.logger))
	mux.HandleFunc("POST /runs", MetricsMiddleware(s.runsHandler.HandleTriggerRun, "runs", s.logger))
	mux.HandleFunc("GET /runs/latest", MetricsMiddleware(s.runsHandler.HandleLatestRun, "runs_latest", s.logger))
	mux.HandleFunc("GET /games/{key}/drives", MetricsMiddleware(s.gamesHandler.HandleGameDrives, "game_drives", s.logger))
	mux.HandleFunc("GET /teams/{alias}", MetricsMiddleware(s.teamsHandler.HandleGetTeam, "team", s.logger))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError maps service and domain errors onto status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrRunInProgress):
		writeError(w, http.StatusConflict, "run_in_progress", err)
	case errors.Is(err, repository.ErrNoRun):
		writeError(w, http.StatusNotFound, "no_run", err)
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, team.ErrUnknownTeam),
		errors.Is(err, gamekey.ErrUnresolvedGame):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, gamekey.ErrMalformedKey):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// gameDrivesResponse is the body of GET /games/{key}/drives.
type gameDrivesResponse struct {
	GameID string            `json:"game_id"`
	Drives []types.DriveView `json:"drives"`
}
