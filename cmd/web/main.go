package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/piyushjoshi9351/sikkim-final-rebuild/data"
	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/cms"
	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/config"
	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/gazetteer"
	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/i18n"
	mw "github.com/piyushjoshi9351/sikkim-final-rebuild/internal/middleware"
	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/observability"
	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/secrets"
)

const (
	contentCacheTTL = 5 * time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "web: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Server.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := resolveSigningKey(ctx, &cfg, secrets.WithLogger(logger)); err != nil {
		return err
	}

	metrics := observability.NewMetrics()

	source, err := gazetteer.ParseLocation(cfg.Dataset.Location, data.Monasteries())
	if err != nil {
		return fmt.Errorf("dataset source: %w", err)
	}
	loader := gazetteer.NewLoader(source,
		gazetteer.WithTimeout(cfg.Dataset.FetchTimeout),
		gazetteer.WithObserver(datasetObserver(logger, metrics)),
	)

	bundle, err := i18n.Load(cfg.Paths.Locales, cfg.I18n.Default, cfg.I18n.Supported)
	if err != nil {
		return fmt.Errorf("load locales: %w", err)
	}

	a, err := newApp(cfg, appDeps{
		Logger:  logger,
		Metrics: metrics,
		Loader:  loader,
		Bundle:  bundle,
		Pages:   cms.NewStore(cfg.Paths.Content, cfg.I18n.Default, contentCacheTTL),
	})
	if err != nil {
		return err
	}

	// Warm the dataset in the background so /readyz flips without a page hit.
	go func() {
		if _, err := loader.Load(ctx); err != nil {
			logger.Warn("dataset warm-up failed", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           newRouter(a),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("web listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("env", cfg.Server.Environment),
			zap.Bool("dev", cfg.Server.Dev),
			zap.String("dataset", loader.SourceName()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// resolveSigningKey swaps a secret:// session signing key for its value.
// Plain keys are left untouched and no Secret Manager client is created.
func resolveSigningKey(ctx context.Context, cfg *config.Config, opts ...secrets.Option) error {
	if !secrets.IsReference(cfg.Session.SigningKey) {
		return nil
	}
	opts = append([]secrets.Option{
		secrets.WithProject(cfg.Cloud.ProjectID),
		secrets.WithFallbackFile(cfg.Cloud.SecretsFallbackFile),
	}, opts...)
	resolver := secrets.NewResolver(ctx, opts...)
	defer func() { _ = resolver.Close() }()

	key, err := resolver.Resolve(ctx, cfg.Session.SigningKey)
	if err != nil {
		return fmt.Errorf("resolve session signing key: %w", err)
	}
	if key == "" {
		return errors.New("resolve session signing key: secret is empty")
	}
	cfg.Session.SigningKey = key
	return nil
}

// datasetObserver logs and records every dataset fetch attempt.
func datasetObserver(logger *zap.Logger, metrics *observability.Metrics) gazetteer.LoadObserver {
	return func(source string, elapsed time.Duration, records int, err error) {
		metrics.ObserveDatasetLoad(elapsed, records, err)
		if err != nil {
			logger.Error("dataset load failed",
				zap.String("source", source),
				zap.Duration("elapsed", elapsed),
				zap.Error(err),
			)
			return
		}
		logger.Info("dataset loaded",
			zap.String("source", source),
			zap.Duration("elapsed", elapsed),
			zap.Int("records", records),
		)
	}
}

// newRouter wires middleware and routes. Tests build the same router.
func newRouter(a *app) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// RealIP trusts X-Forwarded-For; deploy behind a proxy that sets it.
	r.Use(chimw.RealIP)
	r.Use(observability.InjectLogger(a.logger))
	r.Use(observability.TraceMiddleware(a.cfg.Cloud.ProjectID))
	r.Use(observability.RequestLogger(a.metrics))
	r.Use(observability.Recovery)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(a.cfg.Server.RequestTimeout))

	r.Get("/healthz", a.HealthzHandler)
	r.Get("/readyz", a.ReadyzHandler)
	r.Handle("/metrics", a.metrics.Handler())

	assets := http.StripPrefix("/assets", mw.AssetsWithCache(filepath.Join(a.cfg.Paths.Public, "assets"), a.cfg.Server.Dev))
	r.Handle("/assets/*", assets)

	r.Group(func(r chi.Router) {
		r.Use(mw.HTMX)
		r.Use(mw.Session)
		r.Use(mw.Locale(a.bundle))
		r.Use(mw.CSRF)

		r.Get("/", a.HomeHandler)
		r.Get("/explore", a.ExploreHandler)
		r.Get("/explore/results", a.ExploreResultsFrag)
		r.Post("/map/focus", a.MapFocusHandler)
		r.Get("/map", a.MapHandler)
		r.Get("/map/markers.json", a.MapMarkersHandler)
		r.Get("/monasteries/{id}/modal", a.ModalFrag)
		r.Get("/monasteries/{id}/modal/image", a.ModalImageFrag)
		r.Post("/modal/close", a.ModalCloseHandler)
		r.Get("/view360", a.PanoHandler)
		r.Get("/pages/{slug}", a.ContentPageHandler)
	})

	r.NotFound(a.NotFoundHandler)
	return r
}
