package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/FSlyne/gnote/internal/session"
	"github.com/FSlyne/gnote/internal/source"
	"github.com/FSlyne/gnote/internal/store"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// statusFor maps fetch and sync failures to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, source.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, source.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, source.ErrTransient), errors.Is(err, store.ErrTransient):
		return http.StatusServiceUnavailable
	case errors.Is(err, session.ErrNothingToSync):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
