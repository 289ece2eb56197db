package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleOpenScan scans the document named by the rest of the path and
// returns the displayed snapshot. Fetch failures still update the display.
func (s *Server) handleOpenScan(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "*")
	if docID == "" {
		jsonError(w, "document id is required", http.StatusBadRequest)
		return
	}
	snap, applied := s.session.Open(r.Context(), docID)
	if snap.Err != nil {
		writeJSON(w, statusFor(snap.Err), map[string]any{
			"error":    snap.Status,
			"snapshot": snap,
			"applied":  applied,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"snapshot": snap,
		"applied":  applied,
	})
}

func (s *Server) handleCurrentScan(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Current())
}

func (s *Server) handleSyncScan(w http.ResponseWriter, r *http.Request) {
	snap, err := s.session.Sync(r.Context())
	if err != nil {
		writeJSON(w, statusFor(err), map[string]any{
			"error":    err.Error(),
			"snapshot": snap,
		})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
