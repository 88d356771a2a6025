package ai

import (
	"fmt"
	"image"
	"math"
	"sort"
	"wastescanner/internal/model"
)

// box is an axis-aligned rectangle in source-image pixels.
type box struct {
	x1, y1, x2, y2 float64
}

func (b box) area() float64 {
	return math.Max(0, b.x2-b.x1) * math.Max(0, b.y2-b.y1)
}

func iou(a, b box) float64 {
	ix1 := math.Max(a.x1, b.x1)
	iy1 := math.Max(a.y1, b.y1)
	ix2 := math.Min(a.x2, b.x2)
	iy2 := math.Min(a.y2, b.y2)

	inter := math.Max(0, ix2-ix1) * math.Max(0, iy2-iy1)
	union := a.area() + b.area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

type candidate struct {
	classID int
	score   float32
	box     box
}

// DecodeYOLO turns a raw YOLOv8 output tensor into detections.
//
// The tensor is either [1, 4+C, N] (the default export, one column per anchor)
// or its transpose [1, N, 4+C]. Each anchor holds cx, cy, w, h in model input
// pixels followed by C class scores. Boxes are scaled back to frame, which is
// the bounds of the image that was resized to opts.InputSize x opts.InputSize.
func DecodeYOLO(data []float32, shape []int64, frame image.Rectangle, opts Options) ([]model.Detection, error) {
	opts = opts.WithDefaults()

	if len(shape) == 3 {
		if shape[0] != 1 {
			return nil, fmt.Errorf("unsupported batch size %d", shape[0])
		}
		shape = shape[1:]
	}
	if len(shape) != 2 {
		return nil, fmt.Errorf("unexpected output shape %v", shape)
	}

	rows, cols := int(shape[0]), int(shape[1])
	if rows*cols != len(data) {
		return nil, fmt.Errorf("output shape %v does not match %d values", shape, len(data))
	}

	// Prefer the label count to tell the layouts apart; otherwise anchors
	// outnumber features in every real export.
	var channelsFirst bool
	switch classes := len(opts.Labels); {
	case rows == 4+classes:
		channelsFirst = true
	case cols == 4+classes:
		channelsFirst = false
	default:
		channelsFirst = rows < cols
	}
	features, anchors := rows, cols
	if !channelsFirst {
		features, anchors = cols, rows
	}
	if features <= 4 {
		return nil, fmt.Errorf("output has %d features per anchor, need at least 5", features)
	}

	at := func(feature, anchor int) float32 {
		if channelsFirst {
			return data[feature*anchors+anchor]
		}
		return data[anchor*features+feature]
	}

	scaleX := float64(frame.Dx()) / float64(opts.InputSize)
	scaleY := float64(frame.Dy()) / float64(opts.InputSize)
	threshold := float32(opts.ConfidenceThreshold)

	var candidates []candidate
	for a := 0; a < anchors; a++ {
		bestClass, bestScore := -1, float32(0)
		for c := 4; c < features; c++ {
			if s := at(c, a); s > bestScore {
				bestClass, bestScore = c-4, s
			}
		}
		if bestClass < 0 || bestScore < threshold {
			continue
		}

		cx, cy := float64(at(0, a))*scaleX, float64(at(1, a))*scaleY
		w, h := float64(at(2, a))*scaleX, float64(at(3, a))*scaleY
		candidates = append(candidates, candidate{
			classID: bestClass,
			score:   bestScore,
			box: box{
				x1: clamp(cx-w/2, frame.Min.X, frame.Max.X),
				y1: clamp(cy-h/2, frame.Min.Y, frame.Max.Y),
				x2: clamp(cx+w/2, frame.Min.X, frame.Max.X),
				y2: clamp(cy+h/2, frame.Min.Y, frame.Max.Y),
			},
		})
	}

	kept := nonMaxSuppression(candidates, opts.IoUThreshold, MaxDetections)

	detections := make([]model.Detection, 0, len(kept))
	for _, c := range kept {
		detections = append(detections, model.Detection{
			ClassID:    c.classID,
			Label:      opts.Labels.Name(c.classID),
			Confidence: float64(c.score),
			Box:        image.Rect(int(c.box.x1), int(c.box.y1), int(math.Round(c.box.x2)), int(math.Round(c.box.y2))),
		})
	}
	return detections, nil
}

// nonMaxSuppression keeps the highest-scoring boxes, dropping any box that
// overlaps an already kept box of the same class by more than threshold.
// The result is ordered by descending score.
func nonMaxSuppression(candidates []candidate, threshold float64, limit int) []candidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	kept := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		if len(kept) == limit {
			break
		}
		suppressed := false
		for _, k := range kept {
			if k.classID == c.classID && iou(k.box, c.box) > threshold {
				suppressed = true
				break
			}
		}
		if !suppressed {
			kept = append(kept, c)
		}
	}
	return kept
}

func clamp(v float64, lo, hi int) float64 {
	return math.Min(math.Max(v, float64(lo)), float64(hi))
}
