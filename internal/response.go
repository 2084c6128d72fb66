package internal

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// errorBody is the JSON envelope for error responses.
type errorBody struct {
	Error *HTTPError `json:"error"`
}

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError renders err as a JSON error envelope. Errors that are not an
// *HTTPError become a generic 500 and are logged with their cause.
func WriteError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error, requestID string) {
	httpErr := AsHTTPError(err)
	if httpErr == nil {
		httpErr = ErrInternal("internal server error", WithError(err))
	}

	// Copy so the request ID never leaks into a shared error value.
	body := *httpErr
	if body.RequestID == "" {
		body.RequestID = requestID
	}

	if log != nil {
		attrs := []any{
			slog.Int("status", body.Code),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		}
		if body.Err != nil {
			attrs = append(attrs, slog.Any("error", body.Err))
		}
		if body.Code >= http.StatusInternalServerError {
			log.ErrorContext(r.Context(), body.Message, attrs...)
		} else {
			log.DebugContext(r.Context(), body.Message, attrs...)
		}
	}

	WriteJSON(w, body.Code, errorBody{Error: &body})
}
