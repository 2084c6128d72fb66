package api

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/resumestore/internal"
	"github.com/dmitrymomot/resumestore/middlewares"
	"github.com/dmitrymomot/resumestore/pkg/document"
	"github.com/dmitrymomot/resumestore/pkg/imaging"
	"github.com/dmitrymomot/resumestore/pkg/storage"
	"github.com/dmitrymomot/resumestore/pkg/userfiles"
)

var (
	errRouteNotFound    = internal.ErrNotFound("route not found")
	errMethodNotAllowed = internal.NewHTTPError(http.StatusMethodNotAllowed, "method not allowed")
)

// fail renders err with the request ID attached.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	internal.WriteError(w, r, h.logger, toHTTPError(err), middlewares.GetRequestID(r.Context()))
}

// toHTTPError maps domain errors to client-facing ones. Store failures keep
// their stable message and never expose the cause.
func toHTTPError(err error) *internal.HTTPError {
	if httpErr := internal.AsHTTPError(err); httpErr != nil {
		return httpErr
	}

	var fve *storage.FileValidationError
	if errors.As(err, &fve) {
		return internal.ErrUnprocessable(fve.Message,
			internal.WithError(err),
			internal.WithErrorCode(fve.Code),
			internal.WithDetails(fve.Details),
		)
	}

	switch {
	case errors.Is(err, userfiles.ErrInvalidCategory):
		return internal.ErrBadRequest("unknown file category", internal.WithError(err), internal.WithErrorCode("invalid_category"))
	case errors.Is(err, userfiles.ErrInvalidFilename):
		return internal.ErrBadRequest("invalid filename", internal.WithError(err), internal.WithErrorCode("invalid_filename"))
	case errors.Is(err, userfiles.ErrInvalidTenant):
		return internal.ErrUnauthorized("token subject is not a valid tenant id", internal.WithError(err))
	case errors.Is(err, userfiles.ErrInvalidPrefix):
		return internal.ErrBadRequest("invalid prefix", internal.WithError(err))
	case errors.Is(err, document.ErrTooManyPages):
		return internal.ErrUnprocessable("resume has too many pages", internal.WithError(err), internal.WithErrorCode("too_many_pages"))
	case errors.Is(err, document.ErrInvalidPDF), errors.Is(err, document.ErrNoPages):
		return internal.ErrUnprocessable("resume is not a readable PDF", internal.WithError(err), internal.WithErrorCode("invalid_pdf"))
	case errors.Is(err, imaging.ErrTooLarge):
		return internal.ErrUnprocessable("image dimensions are too large", internal.WithError(err),
			internal.WithErrorCode("image_too_large"),
			internal.WithDetails(map[string]any{"max_pixels": imaging.DefaultMaxPixels}),
		)
	case errors.Is(err, imaging.ErrDecode):
		return internal.ErrUnprocessable("image could not be decoded", internal.WithError(err), internal.WithErrorCode("invalid_image"))
	}

	var ufErr *userfiles.Error
	if errors.As(err, &ufErr) {
		return internal.ErrBadGateway(ufErr.Error(), internal.WithError(err), internal.WithErrorCode(failureCode(ufErr.Kind)))
	}

	return internal.ErrInternal("internal server error", internal.WithError(err))
}

func failureCode(kind error) string {
	switch kind {
	case userfiles.ErrUploadFailed:
		return "upload_failed"
	case userfiles.ErrDeleteFailed:
		return "delete_failed"
	case userfiles.ErrFolderDeleteFailed:
		return "folder_delete_failed"
	default:
		return "storage_failed"
	}
}
