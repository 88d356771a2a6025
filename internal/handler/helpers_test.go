package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"io"
	"sync"
	"testing"
	"wastescanner/internal/config"
	"wastescanner/internal/logger"
	"wastescanner/internal/model"
	"wastescanner/internal/service/waste"

	"github.com/stretchr/testify/require"
)

type stubDetector struct {
	detections []model.Detection
	err        error
}

func (s *stubDetector) Detect(ctx context.Context, img image.Image) ([]model.Detection, error) {
	return s.detections, s.err
}

func (s *stubDetector) Close() error { return nil }

type recordingPublisher struct {
	mu       sync.Mutex
	messages [][]byte
}

func (p *recordingPublisher) Broadcast(message []byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, message)
	return true
}

func (p *recordingPublisher) sent() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.messages
}

func quietLogger() *logger.Logger {
	return logger.NewWriterLogger(io.Discard)
}

func testConfig() *config.Config {
	return &config.Config{
		DetectorBackend: config.BackendOpenCV,
		ModelPath:       "/models/yolov8x.onnx",
		DetectorWorkers: 2,
		MaxUploadBytes:  1 << 20,
		MaxImagePixels:  1 << 20,
	}
}

func newClassifier(t *testing.T, det *stubDetector) *waste.Classifier {
	t.Helper()

	catalog, err := waste.DefaultCatalog()
	require.NoError(t, err)
	resolver := waste.NewResolver(catalog, quietLogger(), nil)
	return waste.NewClassifier(det, resolver, nil, quietLogger())
}

func pngBase64(t *testing.T) string {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}
