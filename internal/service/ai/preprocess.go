package ai

import (
	"image"

	"github.com/nfnt/resize"
)

// ToTensor resizes img to size x size and returns its pixels as a planar
// RGB float32 tensor (CHW order) normalized to [0,1].
func ToTensor(img image.Image, size int) []float32 {
	resized := resize.Resize(uint(size), uint(size), img, resize.Bilinear)

	bounds := resized.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	plane := width * height

	data := make([]float32, 3*plane)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()

			i := y*width + x
			data[i] = float32(r) / 65535.0
			data[plane+i] = float32(g) / 65535.0
			data[2*plane+i] = float32(b) / 65535.0
		}
	}
	return data
}
