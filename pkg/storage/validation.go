package storage

import (
	"fmt"
	"slices"
)

// Error codes carried by FileValidationError; the HTTP layer returns them
// to clients as-is.
const (
	ErrCodeFileTooLarge = "file_too_large"
	ErrCodeInvalidMIME  = "invalid_mime"
	ErrCodeEmptyFile    = "empty_file"
)

// FileValidationError describes content rejected before upload.
type FileValidationError struct {
	Err     error // ErrFileTooLarge, ErrInvalidMIME or ErrEmptyFile
	Details map[string]any
	Field   string
	Code    string
	Message string
}

func (e *FileValidationError) Error() string { return e.Message }
func (e *FileValidationError) Unwrap() error { return e.Err }

func rejected(sentinel error, code, msg string, details map[string]any) *FileValidationError {
	if details == nil {
		details = map[string]any{}
	}
	return &FileValidationError{Err: sentinel, Field: "file", Code: code, Message: msg, Details: details}
}

// ValidationRule checks the size and sniffed MIME type of an upload.
type ValidationRule func(size int64, mimeType string) error

// ValidateContent applies rules in order and stops at the first failure.
// mimeType should come from DetectContentType, not from the client.
func ValidateContent(size int64, mimeType string, rules ...ValidationRule) error {
	for _, rule := range rules {
		if err := rule(size, mimeType); err != nil {
			return err
		}
	}
	return nil
}

func MaxSize(limit int64) ValidationRule {
	return func(size int64, _ string) error {
		if size <= limit {
			return nil
		}
		return rejected(ErrFileTooLarge, ErrCodeFileTooLarge,
			fmt.Sprintf("file size %d exceeds limit of %d bytes", size, limit),
			map[string]any{"limit": limit, "got": size})
	}
}

func NotEmpty() ValidationRule {
	return func(size int64, _ string) error {
		if size > 0 {
			return nil
		}
		return rejected(ErrEmptyFile, ErrCodeEmptyFile, "file is empty", nil)
	}
}

// AllowedTypes accepts MIME types matching one of patterns; "image/*"
// style wildcards are supported.
func AllowedTypes(patterns ...string) ValidationRule {
	patterns = slices.Clone(patterns)
	return func(_ int64, mimeType string) error {
		if matchesMIME(mimeType, patterns) {
			return nil
		}
		return rejected(ErrInvalidMIME, ErrCodeInvalidMIME,
			fmt.Sprintf("file type %q is not allowed", mimeType),
			map[string]any{"type": mimeType, "allowed": patterns})
	}
}

// ImageOnly accepts ImageMIMETypes.
func ImageOnly() ValidationRule { return AllowedTypes(ImageMIMETypes...) }

// PDFOnly accepts application/pdf.
func PDFOnly() ValidationRule { return AllowedTypes(MIMEPDF) }
