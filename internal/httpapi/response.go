package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"scanid.app/internal/companies"
	"scanid.app/internal/delegates"
	"scanid.app/internal/obs"
	"scanid.app/internal/pagination"
	"scanid.app/internal/tags"
	"scanid.app/internal/users"
)

// envelope is the uniform response shape for every endpoint.
type envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp string `json:"timestamp"`
}

// listPayload wraps collection results with pagination metadata.
type listPayload struct {
	Items any             `json:"items"`
	Meta  pagination.Meta `json:"meta"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, r *http.Request, code int, data any) {
	writeJSON(w, code, envelope{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func writeMessage(w http.ResponseWriter, r *http.Request, code int, msg string) {
	writeJSON(w, code, envelope{
		Success:   true,
		Message:   msg,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	writeJSON(w, code, envelope{
		Success:   false,
		Error:     msg,
		RequestID: RequestIDFromContext(r.Context()),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

// handleServiceError maps service sentinel errors onto HTTP status codes.
// Unknown errors become opaque 500s; the detail stays in the logs.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, users.ErrInvalidCredentials):
		writeError(w, r, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, companies.ErrPinMismatch):
		writeError(w, r, http.StatusForbidden, "pin mismatch")
	case errors.Is(err, delegates.ErrExpired):
		writeError(w, r, http.StatusGone, "invite expired")
	case errors.Is(err, delegates.ErrInvalidToken):
		writeError(w, r, http.StatusBadRequest, "invalid invite token")
	case errors.Is(err, users.ErrInvalidInput),
		errors.Is(err, companies.ErrInvalidInput),
		errors.Is(err, tags.ErrInvalidInput),
		errors.Is(err, delegates.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, users.ErrNotFound),
		errors.Is(err, companies.ErrNotFound),
		errors.Is(err, tags.ErrNotFound),
		errors.Is(err, delegates.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, users.ErrConflict),
		errors.Is(err, companies.ErrConflict),
		errors.Is(err, tags.ErrConflict),
		errors.Is(err, delegates.ErrConflict):
		writeError(w, r, http.StatusConflict, err.Error())
	default:
		obs.LogError("operation failed", map[string]any{
			"error":      err.Error(),
			"path":       r.URL.Path,
			"request_id": RequestIDFromContext(r.Context()),
		})
		writeError(w, r, http.StatusInternalServerError, "operation failed")
	}
}

// parseListFilter reads the uniform page/limit/search query parameters.
func parseListFilter(r *http.Request) (pagination.Filter, error) {
	q := r.URL.Query()
	return pagination.Parse(q.Get("page"), q.Get("limit"), q.Get("search"))
}

func metaFor(f pagination.Filter, total int) pagination.Meta {
	return pagination.MetaFor(f, total)
}
