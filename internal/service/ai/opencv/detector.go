// Package opencv runs YOLO object detection through the OpenCV DNN module.
package opencv

import (
	"context"
	"fmt"
	"image"
	"os"
	"wastescanner/internal/model"
	"wastescanner/internal/service/ai"

	"gocv.io/x/gocv"
)

type Detector struct {
	net    gocv.Net
	opts   ai.Options
	closed bool
}

// New loads the network at opts.ModelPath (with the optional opts.ConfigPath)
// and sets CPU backend/target preferences.
func New(opts ai.Options) (*Detector, error) {
	opts = opts.WithDefaults()

	if _, err := os.Stat(opts.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", opts.ModelPath)
	}
	if opts.ConfigPath != "" {
		if _, err := os.Stat(opts.ConfigPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", opts.ConfigPath)
		}
	}

	net := gocv.ReadNet(opts.ModelPath, opts.ConfigPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load network from %s", opts.ModelPath)
	}

	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
	if errBackend != nil || errTarget != nil {
		net.Close()
		return nil, fmt.Errorf("failed to set preferable backend or target")
	}

	return &Detector{net: net, opts: opts}, nil
}

// Detect runs the network on img and decodes the YOLO output.
func (d *Detector) Detect(ctx context.Context, img image.Image) ([]model.Detection, error) {
	if d.closed {
		return nil, ai.ErrDetectorClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image to mat: %w", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, fmt.Errorf("converted image is empty")
	}

	// The Mat holds OpenCV's BGR order; YOLO expects RGB scaled to [0,1].
	size := d.opts.InputSize
	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(size, size), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")

	output := d.net.Forward("")
	defer output.Close()

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("failed to read network output: %w", err)
	}

	dims := output.Size()
	shape := make([]int64, len(dims))
	for i, v := range dims {
		shape[i] = int64(v)
	}

	return ai.DecodeYOLO(data, shape, img.Bounds(), d.opts)
}

// Close releases the network.
func (d *Detector) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.net.Close()
}
