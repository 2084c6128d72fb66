package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		ErrInvalidConfig,
		ErrEmptyKey,
		ErrEmptyFile,
		ErrFileTooLarge,
		ErrInvalidMIME,
		ErrBucketNotFound,
		ErrBucketCheckFailed,
		ErrCreateBucketFailed,
		ErrPolicyFailed,
		ErrNotFound,
		ErrAccessDenied,
		ErrUploadFailed,
		ErrDownloadFailed,
		ErrDeleteFailed,
		ErrListFailed,
	}

	seen := make(map[string]bool)
	for _, err := range sentinels {
		msg := err.Error()
		require.False(t, seen[msg], "duplicate error message: %s", msg)
		seen[msg] = true
	}
}

// mockAPIError implements smithy.APIError for testing.
type mockAPIError struct {
	code    string
	message string
}

func (e *mockAPIError) ErrorCode() string             { return e.code }
func (e *mockAPIError) ErrorMessage() string          { return e.message }
func (e *mockAPIError) ErrorFault() smithy.ErrorFault { return smithy.FaultUnknown }
func (e *mockAPIError) Error() string                 { return fmt.Sprintf("%s: %s", e.code, e.message) }

func TestWrapS3Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		fallback error
		want     error
	}{
		{"NoSuchKey code", &mockAPIError{code: "NoSuchKey"}, ErrUploadFailed, ErrNotFound},
		{"NotFound code", &mockAPIError{code: "NotFound"}, ErrUploadFailed, ErrNotFound},
		{"NoSuchBucket code", &mockAPIError{code: "NoSuchBucket"}, ErrUploadFailed, ErrBucketNotFound},
		{"AccessDenied code", &mockAPIError{code: "AccessDenied"}, ErrUploadFailed, ErrAccessDenied},
		{"Forbidden code", &mockAPIError{code: "Forbidden"}, ErrDeleteFailed, ErrAccessDenied},
		{"NoSuchKey typed error", &types.NoSuchKey{}, ErrUploadFailed, ErrNotFound},
		{"NoSuchBucket typed error", &types.NoSuchBucket{}, ErrListFailed, ErrBucketNotFound},
		{"fallback error", errors.New("connection reset"), ErrUploadFailed, ErrUploadFailed},
		{"unknown API error code", &mockAPIError{code: "SlowDown"}, ErrDeleteFailed, ErrDeleteFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.ErrorIs(t, wrapS3Error(tt.err, tt.fallback), tt.want)
		})
	}

	t.Run("original error is not exposed as a wrapped type", func(t *testing.T) {
		t.Parallel()
		wrapped := wrapS3Error(&mockAPIError{code: "SlowDown"}, ErrUploadFailed)
		var apiErr smithy.APIError
		require.False(t, errors.As(wrapped, &apiErr))
		require.Contains(t, wrapped.Error(), "SlowDown")
	})
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	require.True(t, isNotFound(&types.NotFound{}))
	require.True(t, isNotFound(&types.NoSuchKey{}))
	require.True(t, isNotFound(&mockAPIError{code: "NoSuchBucket"}))
	require.True(t, isNotFound(fmt.Errorf("head bucket: %w", &mockAPIError{code: "NotFound"})))
	require.False(t, isNotFound(&mockAPIError{code: "AccessDenied"}))
	require.False(t, isNotFound(errors.New("timeout")))
}
