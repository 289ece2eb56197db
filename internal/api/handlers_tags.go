package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/FSlyne/gnote/internal/dashboard"
	"github.com/FSlyne/gnote/internal/tagindex"
	"github.com/go-chi/chi/v5"
)

// index rebuilds the tag index from the sink's corpus.
func (s *Server) index(r *http.Request) (*tagindex.Index, error) {
	corpus, err := s.sink.Corpus(r.Context())
	if err != nil {
		return nil, err
	}
	return tagindex.Build(corpus), nil
}

// handleListTags returns every tag with its documents. ?tags=a,b narrows to
// documents carrying all of the given tags.
func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	idx, err := s.index(r)
	if err != nil {
		jsonError(w, "failed to load corpus: "+err.Error(), statusFor(err))
		return
	}
	if q := r.URL.Query().Get("tags"); q != "" {
		var tags []string
		for _, t := range strings.Split(q, ",") {
			if t = normalizeTag(t); t != "#" {
				tags = append(tags, t)
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"tags":      tags,
			"documents": idx.Filter(tags...),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tags":  idx.Map(),
		"count": idx.Len(),
	})
}

func (s *Server) handleTagDocuments(w http.ResponseWriter, r *http.Request) {
	raw, err := url.PathUnescape(chi.URLParam(r, "tag"))
	if err != nil {
		jsonError(w, "invalid tag", http.StatusBadRequest)
		return
	}
	tag := normalizeTag(raw)
	idx, err := s.index(r)
	if err != nil {
		jsonError(w, "failed to load corpus: "+err.Error(), statusFor(err))
		return
	}
	docs := idx.Documents(tag)
	if len(docs) == 0 {
		jsonError(w, "tag not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tag": tag, "documents": docs})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	idx, err := s.index(r)
	if err != nil {
		jsonError(w, "failed to load corpus: "+err.Error(), statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, idx.Graph())
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	status, err := dashboard.ParseStatusFilter(r.URL.Query().Get("status"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	sortKey, err := dashboard.ParseSortKey(r.URL.Query().Get("sort"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	rows, err := s.sink.TaskRows(r.Context())
	if err != nil {
		jsonError(w, "failed to load tasks: "+err.Error(), statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, dashboard.Aggregate(rows, dashboard.Query{Status: status, Sort: sortKey}))
}

// normalizeTag accepts tags with or without the leading '#'.
func normalizeTag(t string) string {
	t = strings.TrimSpace(t)
	if !strings.HasPrefix(t, "#") {
		t = "#" + t
	}
	return t
}
