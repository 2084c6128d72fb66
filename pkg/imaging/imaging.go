// Package imaging decodes uploaded raster images and re-encodes them as
// bounded-size JPEGs.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"

	// Registered decoders for formats accepted from browsers.
	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var (
	ErrDecode = errors.New("imaging: failed to decode image")
	ErrEncode = errors.New("imaging: failed to encode image")
	ErrBounds = errors.New("imaging: invalid target bounds")

	// ErrTooLarge is returned before decoding when the declared dimensions
	// exceed the pixel limit. Compressed formats can declare huge canvases
	// in a few kilobytes.
	ErrTooLarge = errors.New("imaging: image dimensions too large")
)

// DefaultMaxPixels caps width*height of images accepted for decoding.
const DefaultMaxPixels = 40_000_000

// Options controls Fit.
type Options struct {
	// MaxWidth and MaxHeight bound the output; neither may be exceeded.
	MaxWidth  int
	MaxHeight int

	// Quality is the JPEG quality, 1..100.
	Quality int

	// MaxPixels bounds the source image; 0 means DefaultMaxPixels.
	MaxPixels int
}

// Decode parses data in any registered format and returns the image and
// format name. Images over DefaultMaxPixels are rejected with ErrTooLarge.
func Decode(data []byte) (image.Image, string, error) {
	return decode(data, DefaultMaxPixels)
}

func decode(data []byte, maxPixels int) (image.Image, string, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", fmt.Errorf("%w: empty canvas %dx%d", ErrDecode, cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, "", fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooLarge, cfg.Width, cfg.Height, maxPixels)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, format, nil
}

// Fit decodes data, scales it down so it fits inside MaxWidth x MaxHeight while
// keeping its aspect ratio, and encodes the result as JPEG. Images already
// inside the bounds keep their dimensions; they are still re-encoded.
func Fit(data []byte, opts Options) ([]byte, error) {
	if opts.MaxWidth <= 0 || opts.MaxHeight <= 0 {
		return nil, ErrBounds
	}

	maxPixels := opts.MaxPixels
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	src, _, err := decode(data, maxPixels)
	if err != nil {
		return nil, err
	}

	b := src.Bounds()
	w, h := ContainSize(b.Dx(), b.Dy(), opts.MaxWidth, opts.MaxHeight)

	// JPEG has no alpha channel; transparent regions end up white.
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	}

	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = jpeg.DefaultQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return buf.Bytes(), nil
}

// ContainSize returns the largest size with the aspect ratio of w x h that fits
// inside maxW x maxH without upscaling. Each side is at least 1.
func ContainSize(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	if w <= maxW && h <= maxH {
		return w, h
	}

	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := max(int(math.Round(float64(w)*scale)), 1)
	nh := max(int(math.Round(float64(h)*scale)), 1)

	return min(nw, maxW), min(nh, maxH)
}
