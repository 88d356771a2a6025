package ai

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"wastescanner/internal/model"
)

// Pool shares a fixed set of detector instances between concurrent callers.
// Model backends keep per-inference state, so each call borrows one instance
// for its whole duration.
type Pool struct {
	detectors chan Detector
	size      int
	closeOnce sync.Once
	closeErr  error
}

// NewPool builds size detectors with factory. If any of them fails, the ones
// already built are closed.
func NewPool(size int, factory func() (Detector, error)) (*Pool, error) {
	if size < 1 {
		return nil, fmt.Errorf("pool size must be at least 1, got %d", size)
	}

	p := &Pool{
		detectors: make(chan Detector, size),
		size:      size,
	}
	for i := 0; i < size; i++ {
		d, err := factory()
		if err != nil {
			close(p.detectors)
			for built := range p.detectors {
				built.Close()
			}
			return nil, fmt.Errorf("failed to create detector %d: %w", i, err)
		}
		p.detectors <- d
	}
	return p, nil
}

// Detect waits for a free detector, or for ctx to be done, and runs it on img.
func (p *Pool) Detect(ctx context.Context, img image.Image) ([]model.Detection, error) {
	select {
	case d, ok := <-p.detectors:
		if !ok {
			return nil, ErrDetectorClosed
		}
		defer func() { p.detectors <- d }()
		return d.Detect(ctx, img)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Size returns the number of detector instances.
func (p *Pool) Size() int {
	return p.size
}

// Close waits for every borrowed detector to be returned and closes them all.
func (p *Pool) Close() error {
	p.closeOnce.Do(func() {
		var errs []error
		for i := 0; i < p.size; i++ {
			d := <-p.detectors
			if err := d.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		close(p.detectors)
		p.closeErr = errors.Join(errs...)
	})
	return p.closeErr
}
