package waste

import (
	"context"
	"fmt"
	"image"
	"time"
	"wastescanner/internal/logger"
	"wastescanner/internal/observability"
	"wastescanner/internal/service/ai"
)

// Classifier runs the detect, resolve and select steps for one image.
type Classifier struct {
	detector ai.Detector
	resolver *Resolver
	metrics  *observability.Metrics
	logger   *logger.Logger
}

// NewClassifier wires a detector to a resolver. metrics may be nil.
func NewClassifier(detector ai.Detector, resolver *Resolver, metrics *observability.Metrics, logger *logger.Logger) *Classifier {
	return &Classifier{
		detector: detector,
		resolver: resolver,
		metrics:  metrics,
		logger:   logger,
	}
}

// Catalog returns the catalog used for resolution.
func (c *Classifier) Catalog() *Catalog {
	return c.resolver.Catalog()
}

// Classify detects objects in img and returns the best waste category.
// A detector failure is returned as an error; unmapped detections are not.
func (c *Classifier) Classify(ctx context.Context, img image.Image) (Result, error) {
	log := logger.FromContext(ctx, c.logger)

	start := time.Now()
	detections, err := c.detector.Detect(ctx, img)
	c.metrics.ObserveDetect(time.Since(start), err)
	if err != nil {
		return Result{}, fmt.Errorf("detection failed: %w", err)
	}

	for _, d := range detections {
		log.Info("Detected class ID: %d, Name: %s, Confidence: %.4f", d.ClassID, d.Label, d.Confidence)
	}

	result := Select(c.resolver.WithLogger(log).ResolveAll(detections))

	if result.Found {
		log.Info("Selected best detection: %s (%s) from %s, confidence %.4f",
			result.Category.Type, result.Key, result.OriginalClass, result.Confidence)
	} else {
		log.Info("No detections found in the image")
	}
	c.metrics.RecordResult(result.Category.Type)

	return result, nil
}
