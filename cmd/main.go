package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/flagmap/internal/adapters/http/api"
	"github.com/okian/flagmap/internal/adapters/http/swagger"
	"github.com/okian/flagmap/internal/adapters/publisher"
	"github.com/okian/flagmap/internal/adapters/repository"
	app "github.com/okian/flagmap/internal/app"
	"github.com/okian/flagmap/internal/config"
	"github.com/okian/flagmap/pkg/logger"
)

// HTTP server timeout constants. POST /runs blocks for a full pass, so the
// write timeout is generous.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 5 * time.Minute
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger isn't configured yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		stop()
		os.Exit(2) //nolint:gocritic // stop called above
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithLevel(cfg.LogLevel)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		stop()
		os.Exit(2) //nolint:gocritic // stop called above
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "flagmap failed", logger.Error(err))
		_ = logger.Sync()
		stop()
		os.Exit(1) //nolint:gocritic // stop called above
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	svc, closeExporters, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeExporters()

	report, err := svc.Run(ctx)
	if err != nil {
		return fmt.Errorf("initial run: %w", err)
	}
	log.Info(ctx, "initial run finished",
		logger.String("run_id", report.RunID),
		logger.Int("games", report.Games),
		logger.Int("assigned", report.Assigned),
		logger.Int("unassigned", report.Unassigned),
		logger.String("output_dir", cfg.OutputDir))

	if !cfg.Serve {
		return nil
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("%w: %w", api.ErrServe, err)
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// newService builds the service from cfg. The returned func closes any
// exporters that were opened.
func newService(ctx context.Context, cfg *config.Config) (*app.Service, func(), error) {
	var exporters []repository.Exporter
	closeAll := func() {
		for _, e := range exporters {
			if c, ok := e.(interface{ Close() error }); ok {
				_ = c.Close()
			}
		}
	}

	if cfg.PostgresDSN != "" {
		sink, err := repository.NewPostgresSink(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres export: %w", err)
		}
		exporters = append(exporters, sink)
	}
	if cfg.RedisURL != "" {
		pub, err := publisher.NewRedisPublisher(ctx, cfg.RedisURL, cfg.RedisStream)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("redis export: %w", err)
		}
		exporters = append(exporters, pub)
	}

	svc := app.New(
		app.WithLogger(logger.Named("service")),
		app.WithInputs(app.Inputs{
			Teams:            cfg.Path(cfg.TeamsFile),
			Games:            cfg.Path(cfg.GamesFile),
			Drives:           cfg.Path(cfg.DrivesFile),
			Penalties:        cfg.Path(cfg.PenaltiesFile),
			TeamPerformances: cfg.Path(cfg.TeamPerformancesFile),
		}),
		app.WithOutputDir(cfg.OutputDir),
		app.WithClockOptions(cfg.ClockOptions()...),
		app.WithAssignOptions(cfg.AssignOptions()...),
		app.WithMinCategorySupport(cfg.MinCategorySupport),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithStore(repository.NewMemoryStore(repository.WithHistory(cfg.HistorySize))),
		app.WithExporters(exporters...),
	)
	return svc, closeAll, nil
}

// newMux registers the docs and business routes.
func newMux(ctx context.Context, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc, api.WithLogger(logger.Named("http"))).Register(ctx, mux)
	return mux
}
