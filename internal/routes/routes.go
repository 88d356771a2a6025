package routes

import (
	"net/http"
	"wastescanner/internal/config"
	"wastescanner/internal/handler"
	"wastescanner/internal/logger"
	"wastescanner/internal/middleware"
	"wastescanner/internal/observability"
	"wastescanner/internal/service/waste"
	"wastescanner/internal/service/websocket"
)

// SetupRoutes registers the API endpoints and wraps the mux with the
// middleware chain.
func SetupRoutes(classifier *waste.Classifier, hub *websocket.HubService, metrics *observability.Metrics, cfg *config.Config, logger *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("/api/detect-waste", handler.DetectWasteHandler(classifier, hub, metrics, cfg, logger))
	mux.HandleFunc("/api/categories", handler.CategoriesHandler(classifier.Catalog()))
	mux.HandleFunc("/api/scans/live", handler.ViewScansHandler(hub, logger))
	mux.HandleFunc("/health", handler.HealthHandler(cfg, classifier.Catalog(), hub))

	// Log endpoints
	mux.HandleFunc("/logs/info", handler.ShowLogsHandler(cfg, "info.log"))
	mux.HandleFunc("/logs/warning", handler.ShowLogsHandler(cfg, "warning.log"))
	mux.HandleFunc("/logs/error", handler.ShowLogsHandler(cfg, "error.log"))

	metrics.RegisterHandlers(mux)

	return middleware.Chain(mux,
		middleware.CORS,
		middleware.RequestID(logger),
		middleware.Recover(logger),
	)
}
