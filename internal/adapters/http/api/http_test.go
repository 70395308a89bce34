package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/flagmap/internal/adapters/http/api"
	"github.com/okian/flagmap/internal/adapters/repository"
	service "github.com/okian/flagmap/internal/app"
	"github.com/okian/flagmap/internal/domain/gamekey"
	"github.com/okian/flagmap/internal/domain/team"
	"github.com/okian/flagmap/internal/domain/types"
	"github.com/okian/flagmap/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing
type mockDependencies struct {
	report    types.RunReport
	runErr    error
	latestErr error
	drives    map[string][]types.DriveView
	teams     map[string]types.TeamView
	runs      int
}

func (m *mockDependencies) Run(context.Context) (types.RunReport, error) {
	m.runs++
	if m.runErr != nil {
		return types.RunReport{}, m.runErr
	}
	return m.report, nil
}

func (m *mockDependencies) LatestReport(context.Context) (types.RunReport, error) {
	if m.latestErr != nil {
		return types.RunReport{}, m.latestErr
	}
	return m.report, nil
}

func (m *mockDependencies) GameDrives(_ context.Context, key string) ([]types.DriveView, error) {
	if strings.Count(key, "_") != 3 {
		return nil, fmt.Errorf("%w: %q", gamekey.ErrMalformedKey, key)
	}
	d, ok := m.drives[key]
	if !ok {
		return nil, fmt.Errorf("game %s: %w", key, repository.ErrNotFound)
	}
	return d, nil
}

func (m *mockDependencies) Team(_ context.Context, alias string) (types.TeamView, error) {
	v, ok := m.teams[alias]
	if !ok {
		return types.TeamView{}, &team.UnknownTeamError{Alias: alias}
	}
	return v, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newMux(deps *mockDependencies, stats api.StatsProvider) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, stats).Register(context.Background(), mux)
	return mux
}

func serve(mux *http.ServeMux, method, path string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, http.NoBody)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) string {
	var body struct {
		Code string `json:"code"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body.Code
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDependencies{}
		stats := &mockStatsProvider{stats: map[string]interface{}{"running": false, "runs": 2}}
		mux := newMux(deps, stats)

		Convey("Health serves Prometheus metrics by default", func() {
			w := serve(mux, http.MethodGet, "/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/plain")
		})

		Convey("Health serves a JSON status on request", func() {
			w := serve(mux, http.MethodGet, "/healthz", "Accept", "application/json")
			So(w.Code, ShouldEqual, http.StatusOK)
			var body map[string]interface{}
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			So(body["status"], ShouldEqual, "ok")
			So(body["runs"], ShouldEqual, float64(2))
		})

		Convey("Stats returns the provider's map", func() {
			w := serve(mux, http.MethodGet, "/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")
			var body map[string]interface{}
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			So(body["runs"], ShouldEqual, float64(2))
		})

		Convey("Wrong methods are rejected", func() {
			So(serve(mux, http.MethodGet, "/runs").Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(serve(mux, http.MethodPost, "/stats").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestRunsHandler(t *testing.T) {
	Convey("Given a service that completes runs", t, func() {
		deps := &mockDependencies{report: types.RunReport{RunID: "r1", Games: 3, Assigned: 12}}
		mux := newMux(deps, nil)

		Convey("POST /runs returns the report", func() {
			w := serve(mux, http.MethodPost, "/runs")
			So(w.Code, ShouldEqual, http.StatusOK)
			var r types.RunReport
			So(json.Unmarshal(w.Body.Bytes(), &r), ShouldBeNil)
			So(r.RunID, ShouldEqual, "r1")
			So(r.Assigned, ShouldEqual, 12)
			So(deps.runs, ShouldEqual, 1)
		})

		Convey("GET /runs/latest returns the stored report", func() {
			w := serve(mux, http.MethodGet, "/runs/latest")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"run_id":"r1"`)
		})
	})

	Convey("Given a service with a run in flight", t, func() {
		deps := &mockDependencies{runErr: service.ErrRunInProgress}
		w := serve(newMux(deps, nil), http.MethodPost, "/runs")
		So(w.Code, ShouldEqual, http.StatusConflict)
		So(decodeError(w), ShouldEqual, "run_in_progress")
	})

	Convey("Given a service with no completed run", t, func() {
		deps := &mockDependencies{latestErr: repository.ErrNoRun}
		w := serve(newMux(deps, nil), http.MethodGet, "/runs/latest")
		So(w.Code, ShouldEqual, http.StatusNotFound)
		So(decodeError(w), ShouldEqual, "no_run")
	})

	Convey("Given a run that fails", t, func() {
		deps := &mockDependencies{runErr: fmt.Errorf("read games: %w", context.DeadlineExceeded)}
		w := serve(newMux(deps, nil), http.MethodPost, "/runs")
		So(w.Code, ShouldEqual, http.StatusInternalServerError)
		So(decodeError(w), ShouldEqual, "internal_error")
	})
}

func TestGamesHandler(t *testing.T) {
	Convey("Given one stored game", t, func() {
		deps := &mockDependencies{drives: map[string][]types.DriveView{
			"2019_1_PIT_NE": {
				{GameID: "2019_1_PIT_NE", Seq: 1, TeamID: "PIT", Totals: types.Totals{TotalOffPen: 1}},
				{GameID: "2019_1_PIT_NE", Seq: 2, TeamID: "NE"},
			},
		}}
		mux := newMux(deps, nil)

		Convey("Its drives are returned with the canonical id", func() {
			w := serve(mux, http.MethodGet, "/games/2019_1_PIT_NE/drives")
			So(w.Code, ShouldEqual, http.StatusOK)
			var body struct {
				GameID string            `json:"game_id"`
				Drives []types.DriveView `json:"drives"`
			}
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			So(body.GameID, ShouldEqual, "2019_1_PIT_NE")
			So(body.Drives, ShouldHaveLength, 2)
			So(body.Drives[0].TotalOffPen, ShouldEqual, 1)
		})

		Convey("An unknown game is not found", func() {
			w := serve(mux, http.MethodGet, "/games/2019_2_PIT_NE/drives")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decodeError(w), ShouldEqual, "not_found")
		})

		Convey("A malformed key is a bad request", func() {
			w := serve(mux, http.MethodGet, "/games/pit-ne/drives")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w), ShouldEqual, "bad_request")
		})
	})
}

func TestTeamsHandler(t *testing.T) {
	Convey("Given one known team", t, func() {
		deps := &mockDependencies{teams: map[string]types.TeamView{
			"Oakland": {TeamID: "LV", Name: "Las Vegas Raiders", Games: []types.TeamGameView{{GameID: "2019_1_LV_DEN"}}},
		}}
		mux := newMux(deps, nil)

		Convey("It resolves by alias", func() {
			w := serve(mux, http.MethodGet, "/teams/Oakland")
			So(w.Code, ShouldEqual, http.StatusOK)
			var v types.TeamView
			So(json.Unmarshal(w.Body.Bytes(), &v), ShouldBeNil)
			So(v.TeamID, ShouldEqual, "LV")
			So(v.Games, ShouldHaveLength, 1)
		})

		Convey("An unknown alias is not found", func() {
			w := serve(mux, http.MethodGet, "/teams/Gotham")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

// recordingLogger keeps the messages of debug records.
type recordingLogger struct {
	debug []string
}

func (l *recordingLogger) Info(context.Context, string, ...logger.Field) {}
func (l *recordingLogger) Error(context.Context, string, ...logger.Field) {}
func (l *recordingLogger) Warn(context.Context, string, ...logger.Field) {}
func (l *recordingLogger) Fatal(context.Context, string, ...logger.Field) {}
func (l *recordingLogger) Debug(_ context.Context, msg string, _ ...logger.Field) {
	l.debug = append(l.debug, msg)
}
func (l *recordingLogger) Named(string) logger.Logger { return l }
func (l *recordingLogger) With(...logger.Field) logger.Logger { return l }

func TestMetricsMiddleware(t *testing.T) {
	notFound := func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}

	Convey("Given a failing handler and no global logger", t, func() {
		Convey("A nil logger serves the error without logging", func() {
			h := api.MetricsMiddleware(notFound, "missing", nil)
			w := httptest.NewRecorder()
			So(func() { h(w, httptest.NewRequest(http.MethodGet, "/missing", http.NoBody)) }, ShouldNotPanic)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("An injected logger records the failure", func() {
			log := &recordingLogger{}
			h := api.MetricsMiddleware(notFound, "missing", log)
			w := httptest.NewRecorder()
			h(w, httptest.NewRequest(http.MethodGet, "/missing", http.NoBody))
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(log.debug, ShouldResemble, []string{"request failed"})
		})

		Convey("A server built with WithLogger logs unknown teams", func() {
			log := &recordingLogger{}
			mux := http.NewServeMux()
			api.NewServer(&mockDependencies{}, nil, api.WithLogger(log)).Register(context.Background(), mux)
			w := serve(mux, http.MethodGet, "/teams/Gotham")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(log.debug, ShouldHaveLength, 1)
		})
	})
}
