package storage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateContent(t *testing.T) {
	t.Parallel()

	t.Run("all rules pass", func(t *testing.T) {
		t.Parallel()

		err := ValidateContent(1024, "image/jpeg", NotEmpty(), MaxSize(5<<20), ImageOnly())
		require.NoError(t, err)
	})

	t.Run("size rule fails", func(t *testing.T) {
		t.Parallel()

		err := ValidateContent(10<<20, "image/jpeg", NotEmpty(), MaxSize(5<<20))
		var verr *FileValidationError
		require.True(t, errors.As(err, &verr))
		require.Equal(t, ErrCodeFileTooLarge, verr.Code)
		require.ErrorIs(t, err, ErrFileTooLarge)
		require.Equal(t, int64(5<<20), verr.Details["limit"])
	})

	t.Run("empty content fails first", func(t *testing.T) {
		t.Parallel()

		err := ValidateContent(0, MIMEOctetStream, NotEmpty(), PDFOnly())
		require.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("pdf only rejects images", func(t *testing.T) {
		t.Parallel()

		err := ValidateContent(100, "image/png", PDFOnly())
		var verr *FileValidationError
		require.True(t, errors.As(err, &verr))
		require.Equal(t, ErrCodeInvalidMIME, verr.Code)
		require.Equal(t, "file", verr.Field)
		require.ErrorIs(t, err, ErrInvalidMIME)
	})

	t.Run("image only rejects svg", func(t *testing.T) {
		t.Parallel()

		require.ErrorIs(t, ValidateContent(100, "image/svg+xml", ImageOnly()), ErrInvalidMIME)
	})

	t.Run("no rules", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, ValidateContent(0, ""))
	})
}
