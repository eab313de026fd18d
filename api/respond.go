// Package api exposes the launcher settings stores, backups, gesture dial and
// widget layout over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/CreativeUnicorns/launcherprefs"
)

const maxBodyBytes = 8 << 20

// decodeBody decodes the JSON request body into v, rejecting unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func intParam(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, errors.Join(launcherprefs.ErrInvalidInput, err)
	}
	return n, nil
}

// statusFor maps settings errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, launcherprefs.ErrUnknownStore),
		errors.Is(err, launcherprefs.ErrUnknownKey),
		errors.Is(err, launcherprefs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, launcherprefs.ErrInvalidInput),
		errors.Is(err, launcherprefs.ErrInvalidValue),
		errors.Is(err, launcherprefs.ErrKindMismatch),
		errors.Is(err, launcherprefs.ErrDecodeTypeMismatch):
		return http.StatusBadRequest
	case errors.Is(err, launcherprefs.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondWithError sends a JSON error response. A *DecodeError adds the
// offending key to the payload.
func (s *Server) respondWithError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	body := map[string]any{"message": message}
	if err != nil {
		body["details"] = err.Error()
		var de *launcherprefs.DecodeError
		if errors.As(err, &de) {
			body["key"] = de.Key
			body["expected"] = de.Expected
		}
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("API Error", "status", status, "message", message, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("API request rejected", "status", status, "message", message, "path", r.URL.Path, "error", err)
	}
	respondWithJSONRaw(w, status, map[string]any{"error": body})
}

// fail responds with the status statusFor derives from err.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	s.respondWithError(w, r, statusFor(err), message, err)
}

// respondWithJSON is a helper to send JSON responses.
func (s *Server) respondWithJSON(w http.ResponseWriter, _ *http.Request, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("Failed to marshal JSON response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"Failed to marshal response"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func respondWithJSONRaw(w http.ResponseWriter, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"Critical: Failed to marshal error response"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
