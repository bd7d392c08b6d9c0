package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"empdir/internal/domain/employee"
	"empdir/internal/platform/config"
	"empdir/internal/platform/db"
	"empdir/internal/platform/metrics"
	"empdir/internal/transport/http/api"
	employeeshandler "empdir/internal/transport/http/handlers/employees"
	"empdir/internal/transport/http/middleware"
)

const readyTimeout = 2 * time.Second

// Backend is what the router needs from storage: the directory operations
// plus a liveness check for /readyz.
type Backend interface {
	employeeshandler.Directory
	Ping(ctx context.Context) error
}

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Metrics *metrics.Collector

	logger zerolog.Logger
}

// New connects to PostgreSQL, creates the directory tables if needed and
// assembles the HTTP router. Table creation failures are logged and
// reported through metrics but do not stop startup.
func New(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*App, error) {
	pool, err := db.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}
	for _, result := range db.EnsureSchema(ctx, pool, logger) {
		if collector != nil {
			collector.SetTableReady(result.Table, result.Err == nil)
		}
	}

	return &App{
		Config:  cfg,
		DB:      pool,
		Router:  NewRouter(cfg, logger, employee.NewStore(pool), collector),
		Metrics: collector,
		logger:  logger,
	}, nil
}

// NewRouter wires middleware and routes. collector may be nil, in which
// case request metrics and /metrics are disabled.
func NewRouter(cfg config.Config, logger zerolog.Logger, backend Backend, collector *metrics.Collector) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recoverer)
	if collector != nil {
		router.Use(middleware.Metrics(collector))
	}
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.Fail(w, http.StatusNotFound, "Route not found", middleware.GetRequestID(r.Context()))
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		api.Fail(w, http.StatusMethodNotAllowed, "Method not allowed", middleware.GetRequestID(r.Context()))
	})

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := backend.Ping(ctx); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("readiness check failed")
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if collector != nil {
		router.Method(http.MethodGet, "/metrics", collector.Handler())
	}

	employeeshandler.NewHandler(backend).RegisterRoutes(router)
	return router
}

// Run serves until ctx is cancelled, then drains in-flight requests for up
// to ShutdownTimeout.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadTimeout:       a.Config.ReadTimeout,
		ReadHeaderTimeout: a.Config.ReadTimeout,
		WriteTimeout:      a.Config.WriteTimeout,
		IdleTimeout:       2 * a.Config.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", a.Config.Addr).Msg("employee directory listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: listen: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}
