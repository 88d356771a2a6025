package handler

import (
	"net/http"
	"path/filepath"
	"wastescanner/internal/config"
	"wastescanner/internal/dto"
	"wastescanner/internal/service/waste"
)

// ViewerCounter reports how many live-feed viewers are connected.
type ViewerCounter interface {
	GetClientCount() int
}

// HealthHandler reports the detector setup and catalog size.
func HealthHandler(cfg *config.Config, catalog *waste.Catalog, viewers ViewerCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			respondError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		resp := dto.HealthResponse{
			Status:     "ok",
			Backend:    cfg.DetectorBackend,
			Model:      filepath.Base(cfg.ModelPath),
			Workers:    cfg.DetectorWorkers,
			Categories: len(catalog.Keys()),
			Classes:    len(catalog.Classes()),
		}
		if viewers != nil {
			resp.Viewers = viewers.GetClientCount()
		}
		respondJSON(w, resp, http.StatusOK)
	}
}
