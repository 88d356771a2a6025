package app

import (
	"fmt"
	"wastescanner/internal/config"
	"wastescanner/internal/service/ai"
	"wastescanner/internal/service/ai/onnx"
	"wastescanner/internal/service/ai/opencv"
	"wastescanner/internal/service/waste"
)

// LoadLabels returns the detector vocabulary: the file at LABELS_PATH, or the
// built-in COCO names when it is unset.
func LoadLabels(cfg *config.Config) (ai.Labels, error) {
	if cfg.LabelsPath == "" {
		return ai.COCOLabels(), nil
	}
	return ai.LoadLabels(cfg.LabelsPath)
}

// LoadCatalog returns the waste catalog: the file at CATEGORIES_PATH, or the
// embedded default when it is unset.
func LoadCatalog(cfg *config.Config) (*waste.Catalog, error) {
	if cfg.CategoriesPath == "" {
		return waste.DefaultCatalog()
	}
	return waste.LoadCatalogFile(cfg.CategoriesPath)
}

// DetectorOptions converts the configuration into backend options.
func DetectorOptions(cfg *config.Config, labels ai.Labels) ai.Options {
	return ai.Options{
		ModelPath:           cfg.ModelPath,
		ConfigPath:          cfg.ModelConfigPath,
		Labels:              labels,
		InputSize:           cfg.ModelInputSize,
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		IoUThreshold:        cfg.IoUThreshold,
	}
}

// NewDetector loads one detector instance for the configured backend.
func NewDetector(cfg *config.Config, labels ai.Labels) (ai.Detector, error) {
	opts := DetectorOptions(cfg, labels)

	switch cfg.DetectorBackend {
	case config.BackendOpenCV:
		return opencv.New(opts)
	case config.BackendONNX:
		return onnx.New(opts, cfg.ONNXLibraryPath)
	default:
		return nil, fmt.Errorf("unknown detector backend %q", cfg.DetectorBackend)
	}
}
