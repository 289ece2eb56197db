package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleRefresh queues a scan and sync of every source document.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.orchestrator == nil {
		jsonError(w, "bulk refresh unavailable", http.StatusServiceUnavailable)
		return
	}
	jobs, err := s.orchestrator.Refresh(r.Context())
	results := make([]map[string]any, 0, len(jobs))
	for _, job := range jobs {
		snap := job.Snapshot()
		results = append(results, map[string]any{
			"job_id":   snap.ID,
			"doc_id":   snap.DocID,
			"status":   snap.Status,
			"poll_url": fmt.Sprintf("/api/jobs/%s", snap.ID),
		})
	}
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error": err.Error(),
			"jobs":  results,
		})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"jobs": results})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	if s.orchestrator == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleScanStats(w http.ResponseWriter, r *http.Request) {
	if s.latency == nil {
		jsonError(w, "scan stats unavailable", http.StatusServiceUnavailable)
		return
	}
	resp := map[string]any{"latency": s.latency.Snapshot()}
	if s.orchestrator != nil {
		resp["queue_depth"] = s.orchestrator.QueueDepth()
	}
	writeJSON(w, http.StatusOK, resp)
}

