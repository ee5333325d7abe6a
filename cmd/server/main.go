package main

import (
	"context"
	"errors"
	"fmt"
	"location-capture-service/internal/adapters/position"
	"location-capture-service/internal/adapters/preferences"
	"location-capture-service/internal/adapters/repositories"
	"location-capture-service/internal/api"
	"location-capture-service/internal/config"
	"location-capture-service/internal/domain"
	"location-capture-service/internal/platform/logging"
	"location-capture-service/internal/platform/obs"
	"location-capture-service/internal/ports"
	"location-capture-service/internal/services"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// main is the application composition root.
// It wires concrete adapters (SQLite, YAML, gpsd) behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := openStore(ctx, cfg, logger)
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn().Err(err).Msg("close location store")
		}
	}()

	prefs, err := preferences.OpenYAMLPreferenceStore(cfg.PrefsPath, logger.With().Str("component", "preferences").Logger())
	if err != nil {
		return err
	}
	darkMode, err := services.NewDarkModeService(prefs)
	if err != nil {
		return err
	}

	provider, err := newProvider(cfg, logger)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := obs.NewCaptureMetrics(registry)
	if err != nil {
		return err
	}

	controller, err := services.NewCaptureController(store, provider, services.CaptureOptions{
		SampleTimeout: cfg.SampleTimeout,
		Logger:        logger.With().Str("component", "capture").Logger(),
		Metrics:       metrics,
		OnTransition: func(attemptID string, s domain.CaptureState) {
			logger.Debug().Str("attempt_id", attemptID).Str("state", string(s)).Msg("capture state")
		},
	})
	if err != nil {
		return err
	}

	// Prime the published snapshot so /locations/published is warm from the start.
	if _, err := controller.ListAll(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial location load failed")
	}

	router := api.NewRouter(api.Deps{
		Locations: controller,
		Published: controller,
		Captures:  controller,
		DarkMode:  darkMode,
		Metrics:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Logger:    logger,
	})

	// WriteTimeout leaves room for a full sample timeout plus persistence.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.SampleTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", srv.Addr).Str("position_source", cfg.PositionSource).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openStore returns the SQLite store, or a transient in-memory one when the
// database cannot be opened or its schema cannot be created.
func openStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) ports.LocationStore {
	repoLog := logger.With().Str("component", "store").Logger()

	var primary ports.LocationStore
	repo, err := repositories.OpenSqliteLocationRepository(ctx, cfg.DBPath, repoLog)
	if err != nil {
		logger.Warn().Err(err).Str("db_path", cfg.DBPath).Msg("open location database failed")
	} else {
		primary = repo
	}

	store, degraded := services.EnsureStore(ctx, primary, repoLog)
	if !degraded {
		logger.Info().Str("db_path", cfg.DBPath).Msg("location store ready")
	}
	return store
}

func newProvider(cfg config.Config, logger zerolog.Logger) (*position.Provider, error) {
	if cfg.Permission == config.PermissionPrompt {
		return nil, errors.New("LOCATION_PERMISSION=prompt needs a terminal; use dbtool capture")
	}
	status, err := domain.ParsePermissionStatus(cfg.Permission)
	if err != nil {
		return nil, err
	}
	gate := position.StaticGate{Status: status}

	var source position.FixSource
	switch cfg.PositionSource {
	case config.SourceGpsd:
		source, err = position.NewGpsdSource(cfg.GpsdAddr, logger.With().Str("component", "gpsd").Logger())
		if err != nil {
			return nil, err
		}
	default:
		source = position.StaticSource{Fix: domain.Coordinates{Lat: cfg.StaticLatitude, Lon: cfg.StaticLongitude}}
	}

	return position.NewProvider(gate, source)
}
