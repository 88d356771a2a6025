package waste

import (
	"bytes"
	"context"
	"errors"
	"image"
	"testing"
	"wastescanner/internal/logger"
	"wastescanner/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifier_BestMappedDetection(t *testing.T) {
	det := &stubDetector{detections: []model.Detection{
		{ClassID: 0, Label: "person", Confidence: 0.97},
		{ClassID: 39, Label: "bottle", Confidence: 0.92},
		{ClassID: 41, Label: "cup", Confidence: 0.35},
	}}
	c := NewClassifier(det, defaultResolver(t), nil, quietLogger())

	res, err := c.Classify(context.Background(), image.NewRGBA(image.Rect(0, 0, 2, 2)))

	require.NoError(t, err)
	assert.Equal(t, 1, det.calls)
	assert.True(t, res.Found)
	assert.Equal(t, Category{Type: "Plastic Bottle", DisposalMethod: "Recycle in blue bin", Recyclability: 85}, res.Category)
	assert.Equal(t, "bottle", res.OriginalClass)
	assert.InDelta(t, 0.92, res.Confidence, 1e-9)
}

func TestClassifier_NothingMapped(t *testing.T) {
	det := &stubDetector{detections: []model.Detection{{ClassID: 2, Label: "car", Confidence: 0.9}}}
	c := NewClassifier(det, defaultResolver(t), nil, quietLogger())

	res, err := c.Classify(context.Background(), image.NewRGBA(image.Rect(0, 0, 2, 2)))

	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Equal(t, NothingFound, res.Category)
}

func TestClassifier_DetectorError(t *testing.T) {
	det := &stubDetector{err: errors.New("inference failed")}
	c := NewClassifier(det, defaultResolver(t), nil, quietLogger())

	_, err := c.Classify(context.Background(), image.NewRGBA(image.Rect(0, 0, 2, 2)))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "inference failed")
}

func TestClassifier_LogsWithRequestLogger(t *testing.T) {
	det := &stubDetector{detections: []model.Detection{{ClassID: 73, Label: "book", Confidence: 0.6}}}
	c := NewClassifier(det, defaultResolver(t), nil, quietLogger())

	var buf bytes.Buffer
	ctx := logger.NewContext(context.Background(), logger.NewWriterLogger(&buf).With("req-42"))

	_, err := c.Classify(ctx, image.NewRGBA(image.Rect(0, 0, 2, 2)))

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "[req-42] Detected class ID: 73, Name: book")
	assert.Contains(t, buf.String(), "[req-42] Selected best detection: Books & Paper")
}
