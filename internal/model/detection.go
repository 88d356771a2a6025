package model

import "image"

// Detection represents an object found in an image by the detector.
type Detection struct {
	ClassID    int             `json:"class_id"`
	Label      string          `json:"label"`
	Confidence float64         `json:"confidence"`
	Box        image.Rectangle `json:"box"`
}
