package userfiles

import "github.com/dmitrymomot/resumestore/pkg/imaging"

// Image output limits.
const (
	MaxImageSide = 600
	JPEGQuality  = 80
)

// Transform prepares bytes for storage. Images are scaled to fit inside
// MaxImageSide x MaxImageSide, never upscaled, and re-encoded as JPEG.
// Documents are returned unchanged.
func Transform(data []byte, c Category) ([]byte, error) {
	if err := validateCategory(c); err != nil {
		return nil, err
	}
	if !c.IsImage() {
		return data, nil
	}
	return imaging.Fit(data, imaging.Options{
		MaxWidth:  MaxImageSide,
		MaxHeight: MaxImageSide,
		Quality:   JPEGQuality,
	})
}
