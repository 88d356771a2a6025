// Package onnx runs YOLO object detection through ONNX Runtime.
package onnx

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"
	"wastescanner/internal/model"
	"wastescanner/internal/service/ai"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	envMu    sync.Mutex
	envUsers int
)

// acquireEnvironment initializes the process-wide ONNX Runtime environment on
// first use. Every successful call must be paired with releaseEnvironment.
func acquireEnvironment(libraryPath string) error {
	envMu.Lock()
	defer envMu.Unlock()

	if envUsers == 0 {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("failed to initialize ONNX environment: %w", err)
		}
	}
	envUsers++
	return nil
}

func releaseEnvironment() {
	envMu.Lock()
	defer envMu.Unlock()

	envUsers--
	if envUsers == 0 {
		ort.DestroyEnvironment()
	}
}

type Detector struct {
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	opts         ai.Options
	closed       bool
}

// New creates an inference session for the model at opts.ModelPath. The
// input and output names and the output shape are read from the model.
func New(opts ai.Options, libraryPath string) (*Detector, error) {
	opts = opts.WithDefaults()

	if _, err := os.Stat(opts.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", opts.ModelPath)
	}

	if err := acquireEnvironment(libraryPath); err != nil {
		return nil, err
	}

	d, err := newDetector(opts)
	if err != nil {
		releaseEnvironment()
		return nil, err
	}
	return d, nil
}

func newDetector(opts ai.Options) (*Detector, error) {
	inputs, outputs, err := ort.GetInputOutputInfo(opts.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read model inputs and outputs: %w", err)
	}
	if len(inputs) != 1 || len(outputs) != 1 {
		return nil, fmt.Errorf("expected one input and one output, model has %d and %d", len(inputs), len(outputs))
	}

	size := int64(opts.InputSize)
	inputShape := ort.NewShape(1, 3, size, size)

	outputShape := outputs[0].Dimensions
	for _, dim := range outputShape {
		if dim <= 0 {
			return nil, fmt.Errorf("model output %q has dynamic shape %v", outputs[0].Name, outputShape)
		}
	}

	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(opts.ModelPath,
		[]string{inputs[0].Name}, []string{outputs[0].Name},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &Detector{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
		opts:         opts,
	}, nil
}

// Detect runs the session on img and decodes the YOLO output.
func (d *Detector) Detect(ctx context.Context, img image.Image) ([]model.Detection, error) {
	if d.closed {
		return nil, ai.ErrDetectorClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	copy(d.inputTensor.GetData(), ai.ToTensor(img, d.opts.InputSize))

	if err := d.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	return ai.DecodeYOLO(d.outputTensor.GetData(), d.outputTensor.GetShape(), img.Bounds(), d.opts)
}

// Close destroys the session and its tensors.
func (d *Detector) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true

	d.inputTensor.Destroy()
	d.outputTensor.Destroy()
	err := d.session.Destroy()
	releaseEnvironment()
	return err
}
