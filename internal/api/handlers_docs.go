package api

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/FSlyne/gnote/internal/parser"
	"github.com/FSlyne/gnote/internal/source"
)

// handleListDocuments lists every document the source can serve.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	ids, err := s.src.List(r.Context())
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), statusFor(err))
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": ids, "count": len(ids)})
}

// handleUpload stores a multipart-uploaded file in the source and queues a
// scan and sync of it. An optional "folder" field places it in a
// subdirectory.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	saver, ok := s.src.(source.Saver)
	if !ok {
		jsonError(w, "source does not accept uploads", http.StatusNotImplemented)
		return
	}

	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	docID := filename
	if folder := strings.Trim(r.FormValue("folder"), "/"); folder != "" {
		docID = path.Join(folder, filename)
	}
	if err := saver.Save(r.Context(), docID, data); err != nil {
		jsonError(w, "failed to store document: "+err.Error(), statusFor(err))
		return
	}

	resp := map[string]any{"doc_id": docID}
	if s.orchestrator != nil {
		job, err := s.orchestrator.Submit(docID)
		if err != nil {
			jsonError(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		resp["job_id"] = job.ID
		resp["status"] = job.Snapshot().Status
		resp["poll_url"] = fmt.Sprintf("/api/jobs/%s", job.ID)
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
