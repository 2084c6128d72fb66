package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/resumestore/internal"
	"github.com/dmitrymomot/resumestore/middlewares"
	"github.com/dmitrymomot/resumestore/pkg/document"
	"github.com/dmitrymomot/resumestore/pkg/storage"
	"github.com/dmitrymomot/resumestore/pkg/userfiles"
)

type uploadResponse struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type purgeResponse struct {
	Deleted int `json:"deleted"`
}

// upload accepts multipart field "file" and optional field "filename".
// Resumes without a filename fall back to the uploaded file's name.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	c, err := userfiles.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(w, r, internal.ErrRequestTooLarge("request body too large",
				internal.WithErrorCode(storage.ErrCodeFileTooLarge),
				internal.WithDetails(map[string]any{"max_size": h.cfg.MaxUploadBytes}),
			))
			return
		}
		h.fail(w, r, internal.ErrBadRequest("multipart field \"file\" is required", internal.WithError(err)))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.cfg.MaxUploadBytes+1))
	if err != nil {
		h.fail(w, r, internal.ErrBadRequest("failed to read upload", internal.WithError(err)))
		return
	}

	if err := h.validate(c, data); err != nil {
		h.fail(w, r, err)
		return
	}

	filename := r.FormValue("filename")
	if filename == "" && !c.IsImage() {
		filename = header.Filename
	}

	res, err := h.files.Upload(r.Context(), middlewares.Subject(r.Context()), c, data, filename)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	internal.WriteJSON(w, http.StatusCreated, uploadResponse{
		URL:         res.URL,
		Key:         res.Key,
		ContentType: res.ContentType,
		Size:        res.Size,
	})
}

// validate checks the upload against the size limit and the category's
// content rules before anything is sent to the store.
func (h *Handler) validate(c userfiles.Category, data []byte) error {
	typeRule := storage.ImageOnly()
	if !c.IsImage() {
		typeRule = storage.PDFOnly()
	}

	mimeType := storage.DetectContentType(data)
	if err := storage.ValidateContent(int64(len(data)), mimeType,
		storage.NotEmpty(),
		storage.MaxSize(h.cfg.MaxUploadBytes),
		typeRule,
	); err != nil {
		return err
	}

	if c == userfiles.Resumes {
		if _, err := document.ValidatePDF(data, h.cfg.MaxResumePages); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) deleteFile(w http.ResponseWriter, r *http.Request) {
	c, err := userfiles.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.files.Delete(r.Context(), middlewares.Subject(r.Context()), c, chi.URLParam(r, "filename")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) purgeCategory(w http.ResponseWriter, r *http.Request) {
	c, err := userfiles.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	n, err := h.files.PurgeCategory(r.Context(), middlewares.Subject(r.Context()), c)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	internal.WriteJSON(w, http.StatusOK, purgeResponse{Deleted: n})
}

func (h *Handler) purgeTenant(w http.ResponseWriter, r *http.Request) {
	n, err := h.files.PurgeTenant(r.Context(), middlewares.Subject(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	internal.WriteJSON(w, http.StatusOK, purgeResponse{Deleted: n})
}
