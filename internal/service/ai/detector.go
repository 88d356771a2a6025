package ai

import (
	"context"
	"errors"
	"image"
	"wastescanner/internal/model"
)

const (
	// DefaultConfidenceThreshold is the minimum class score kept by post-processing.
	DefaultConfidenceThreshold = 0.25
	// DefaultIoUThreshold is the overlap above which same-class boxes are suppressed.
	DefaultIoUThreshold = 0.7
	// DefaultInputSize is the square input resolution of YOLOv8 exports.
	DefaultInputSize = 640
	// MaxDetections caps the number of boxes returned per image.
	MaxDetections = 300
)

// ErrDetectorClosed is returned by detectors used after Close.
var ErrDetectorClosed = errors.New("detector is closed")

// Detector runs an object-detection model over a decoded image.
type Detector interface {
	// Detect returns every object found in img. An empty slice means nothing was found.
	Detect(ctx context.Context, img image.Image) ([]model.Detection, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Options holds the settings shared by every detector backend.
type Options struct {
	ModelPath           string
	ConfigPath          string
	Labels              Labels
	InputSize           int
	ConfidenceThreshold float64
	IoUThreshold        float64
}

// WithDefaults fills zero values with the package defaults.
func (o Options) WithDefaults() Options {
	if o.InputSize <= 0 {
		o.InputSize = DefaultInputSize
	}
	if o.ConfidenceThreshold <= 0 {
		o.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if o.IoUThreshold <= 0 {
		o.IoUThreshold = DefaultIoUThreshold
	}
	if len(o.Labels) == 0 {
		o.Labels = COCOLabels()
	}
	return o
}
