package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
	"wastescanner/internal/config"
	"wastescanner/internal/logger"
	"wastescanner/internal/observability"
	"wastescanner/internal/routes"
	"wastescanner/internal/service/ai"
	"wastescanner/internal/service/waste"
	"wastescanner/internal/service/websocket"

	"golang.org/x/sync/errgroup"
)

const readHeaderTimeout = 10 * time.Second

type App struct {
	config     *config.Config
	logger     *logger.Logger
	metrics    *observability.Metrics
	detectors  *ai.Pool
	classifier *waste.Classifier
	hubService *websocket.HubService
	server     *http.Server
}

// NewApp loads the catalog and the detector pool and builds the HTTP server.
func NewApp(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	a, err := newApp(cfg, log)
	if err != nil {
		log.Error("Startup failed: %v", err)
		log.Close()
		return nil, err
	}
	return a, nil
}

func newApp(cfg *config.Config, log *logger.Logger) (*App, error) {
	metrics, err := observability.NewMetrics()
	if err != nil {
		return nil, err
	}

	catalog, err := LoadCatalog(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load waste catalog: %w", err)
	}

	labels, err := LoadLabels(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load labels: %w", err)
	}

	pool, err := ai.NewPool(cfg.DetectorWorkers, func() (ai.Detector, error) {
		return NewDetector(cfg, labels)
	})
	if err != nil {
		return nil, err
	}
	log.Info("Loaded %d %s detector(s) from %s", pool.Size(), cfg.DetectorBackend, cfg.ModelPath)

	resolver := waste.NewResolver(catalog, log, metrics)
	classifier := waste.NewClassifier(pool, resolver, metrics, log)
	hub := websocket.NewHubService(log)

	a := &App{
		config:     cfg,
		logger:     log,
		metrics:    metrics,
		detectors:  pool,
		classifier: classifier,
		hubService: hub,
	}
	a.server = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           routes.SetupRoutes(classifier, hub, metrics, cfg, log),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return a, nil
}

// Run serves HTTP until ctx is done, then shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.hubService.Run(gctx)
		return nil
	})

	g.Go(func() error {
		a.logger.Info("Waste scanner listening on http://%s", a.config.Addr())
		a.logger.Info("Backend: %s, model: %s, workers: %d", a.config.DetectorBackend, a.config.ModelPath, a.config.DetectorWorkers)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.ShutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close releases the detectors and log files.
func (a *App) Close() error {
	return errors.Join(a.detectors.Close(), a.logger.Close())
}
