package waste

import (
	"context"
	"image"
	"io"
	"testing"
	"wastescanner/internal/logger"
	"wastescanner/internal/model"

	"github.com/stretchr/testify/require"
)

// stubDetector returns fixed detections, or err when set.
type stubDetector struct {
	detections []model.Detection
	err        error
	calls      int
}

func (s *stubDetector) Detect(ctx context.Context, img image.Image) ([]model.Detection, error) {
	s.calls++
	return s.detections, s.err
}

func (s *stubDetector) Close() error { return nil }

func quietLogger() *logger.Logger {
	return logger.NewWriterLogger(io.Discard)
}

func defaultResolver(t *testing.T) *Resolver {
	t.Helper()

	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	return NewResolver(catalog, quietLogger(), nil)
}
