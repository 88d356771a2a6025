// Package imagecodec turns transport payloads into raster images.
package imagecodec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"

	// Registered raster formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrNoImage means the payload was empty.
	ErrNoImage = errors.New("no image provided")
	// ErrInvalidImage means the payload could not be decoded to a raster image.
	ErrInvalidImage = errors.New("invalid image data")
)

// DefaultMaxPixels bounds the decoded raster size of the package-level decoders.
const DefaultMaxPixels = 40_000_000

// dataURLMarker separates a data URL header ("data:image/png;base64,") from its body.
const dataURLMarker = "base64,"

// DecodeResult is either an image (Err == nil) or the reason decoding failed.
type DecodeResult struct {
	Image  image.Image
	Format string
	Err    error
}

// OK reports whether decoding produced an image.
func (r DecodeResult) OK() bool {
	return r.Err == nil && r.Image != nil
}

func failed(err error) DecodeResult {
	return DecodeResult{Err: err}
}

// Decoder decodes images whose raster holds at most MaxPixels pixels. The
// dimensions are read from the image header before any pixel data is
// allocated. MaxPixels <= 0 disables the limit.
type Decoder struct {
	MaxPixels int64
}

// DecodePayload decodes payload with DefaultMaxPixels.
func DecodePayload(payload string) DecodeResult {
	return Decoder{MaxPixels: DefaultMaxPixels}.DecodePayload(payload)
}

// DecodeBytes decodes raw with DefaultMaxPixels.
func DecodeBytes(raw []byte) DecodeResult {
	return Decoder{MaxPixels: DefaultMaxPixels}.DecodeBytes(raw)
}

// DecodePayload decodes a base64 payload, optionally carrying a data URL prefix.
func (d Decoder) DecodePayload(payload string) DecodeResult {
	if _, body, found := strings.Cut(payload, dataURLMarker); found {
		payload = body
	}

	payload = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, payload)
	if payload == "" {
		return failed(ErrNoImage)
	}

	raw, err := decodeBase64(payload)
	if err != nil {
		return failed(fmt.Errorf("%w: %v", ErrInvalidImage, err))
	}
	return d.DecodeBytes(raw)
}

// DecodeBytes decodes an encoded raster image (JPEG, PNG, GIF, BMP, TIFF or WebP).
func (d Decoder) DecodeBytes(raw []byte) DecodeResult {
	if len(raw) == 0 {
		return failed(ErrNoImage)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return failed(fmt.Errorf("%w: %v", ErrInvalidImage, err))
	}
	if d.MaxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > d.MaxPixels {
		return failed(fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidImage, cfg.Width, cfg.Height, d.MaxPixels))
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return failed(fmt.Errorf("%w: %v", ErrInvalidImage, err))
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return failed(fmt.Errorf("%w: empty image", ErrInvalidImage))
	}

	return DecodeResult{Image: img, Format: format}
}

// decodeBase64 accepts padded and unpadded input in both the standard and URL alphabets.
func decodeBase64(s string) ([]byte, error) {
	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}

	var firstErr error
	for _, enc := range encodings {
		raw, err := enc.DecodeString(s)
		if err == nil {
			return raw, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}
