package userfiles_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/resumestore/pkg/imaging"
	"github.com/dmitrymomot/resumestore/pkg/userfiles"
)

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func decodeSize(t *testing.T, data []byte) (string, int, int) {
	t.Helper()

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return format, cfg.Width, cfg.Height
}

func TestTransform_Images(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		input         []byte
		wantW, wantH  int
		category      userfiles.Category
		originalRatio float64
	}{
		{"wide jpeg", jpegBytes(t, 2000, 1000), 600, 300, userfiles.Pictures, 2},
		{"tall png", pngBytes(t, 700, 1400), 300, 600, userfiles.Previews, 0.5},
		{"square", jpegBytes(t, 1200, 1200), 600, 600, userfiles.Pictures, 1},
		{"small is not upscaled", jpegBytes(t, 320, 240), 320, 240, userfiles.Pictures, 4.0 / 3},
		{"odd ratio", jpegBytes(t, 1000, 333), 600, 200, userfiles.Previews, 1000.0 / 333},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := userfiles.Transform(tt.input, tt.category)
			require.NoError(t, err)

			format, w, h := decodeSize(t, out)
			assert.Equal(t, "jpeg", format)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
			assert.LessOrEqual(t, w, userfiles.MaxImageSide)
			assert.LessOrEqual(t, h, userfiles.MaxImageSide)
			assert.InEpsilon(t, tt.originalRatio, float64(w)/float64(h), 0.01)
		})
	}
}

func TestTransform_DocumentIsIdentity(t *testing.T) {
	t.Parallel()

	in := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF")
	out, err := userfiles.Transform(in, userfiles.Resumes)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	// Even image bytes pass through untouched for documents.
	img := jpegBytes(t, 2000, 1000)
	out, err = userfiles.Transform(img, userfiles.Resumes)
	require.NoError(t, err)
	assert.Equal(t, img, out)
}

func TestTransform_Errors(t *testing.T) {
	t.Parallel()

	_, err := userfiles.Transform([]byte("not an image"), userfiles.Pictures)
	require.ErrorIs(t, err, imaging.ErrDecode)

	_, err = userfiles.Transform(jpegBytes(t, 10, 10), userfiles.Category("avatars"))
	require.ErrorIs(t, err, userfiles.ErrInvalidCategory)
}
