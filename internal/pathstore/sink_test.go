package pathstore

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/FSlyne/gnote/internal/dashboard"
	"github.com/FSlyne/gnote/internal/scanner"
	"github.com/FSlyne/gnote/internal/store"
)

// fakeKV is a minimal in-memory pathstore.
type fakeKV struct {
	mu    sync.Mutex
	nodes map[string]json.RawMessage
	auth  []string
}

func newFakeKV() *fakeKV { return &fakeKV{nodes: make(map[string]json.RawMessage)} }

func (f *fakeKV) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.auth = append(f.auth, r.Header.Get("Authorization"))

	key := strings.TrimPrefix(r.URL.EscapedPath(), "/kv/")
	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(key, "/*"):
		prefix := strings.TrimSuffix(key, "*")
		var nodes []Node
		for k, v := range f.nodes {
			if strings.HasPrefix(k, prefix) {
				nodes = append(nodes, Node{Key: k, Value: v})
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"nodes": nodes})
	case r.Method == http.MethodGet:
		v, ok := f.nodes[key]
		if !ok {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(Node{Key: key, Value: v})
	case r.Method == http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.nodes[key] = req.Value
		w.WriteHeader(http.StatusCreated)
	case r.Method == http.MethodDelete:
		delete(f.nodes, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestSink_SyncAndRead(t *testing.T) {
	kv := newFakeKV()
	srv := httptest.NewServer(kv)
	defer srv.Close()

	sink := NewSink(NewClient(srv.URL, "secret"))
	clock := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	sink.now = func() time.Time { return clock }
	ctx := context.Background()

	docID := "notes/week 1.md"
	items := []scanner.Item{
		{Kind: scanner.KindTag, Text: "#errand"},
		{Kind: scanner.KindTask, Text: "call bank", SectionID: "h.todo"},
	}
	if err := sink.Sync(ctx, docID, items); err != nil {
		t.Fatalf("sync: %v", err)
	}

	corpus, err := sink.Corpus(ctx)
	if err != nil {
		t.Fatalf("corpus: %v", err)
	}
	if got := corpus[docID]; len(got) != 2 || got[1] != items[1] {
		t.Errorf("expected stored items for %q, got %+v", docID, corpus)
	}

	clock = clock.Add(time.Hour)
	items[1].Done = true
	if err := sink.Sync(ctx, docID, items); err != nil {
		t.Fatalf("resync: %v", err)
	}
	rows, err := sink.TaskRows(ctx)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Status != dashboard.StatusClosed || rows[0].ClosedAt == nil || !rows[0].ClosedAt.Equal(clock) {
		t.Errorf("expected row closed at %v, got %+v", clock, rows[0])
	}

	for _, a := range kv.auth {
		if a != "Bearer secret" {
			t.Errorf("expected bearer auth, got %q", a)
		}
	}
}

func TestSink_ItemsAndRemove(t *testing.T) {
	srv := httptest.NewServer(newFakeKV())
	defer srv.Close()
	sink := NewSink(NewClient(srv.URL, ""))
	ctx := context.Background()

	if _, ok, err := sink.Items(ctx, "a"); err != nil || ok {
		t.Fatalf("expected unknown document, got ok=%v err=%v", ok, err)
	}
	items := []scanner.Item{{Kind: scanner.KindTask, Text: "water plants", SectionID: "h.todo"}}
	if err := sink.Sync(ctx, "a", items); err != nil {
		t.Fatalf("sync a: %v", err)
	}
	if err := sink.Sync(ctx, "b", nil); err != nil {
		t.Fatalf("sync b: %v", err)
	}

	got, ok, err := sink.Items(ctx, "a")
	if err != nil || !ok {
		t.Fatalf("items: ok=%v err=%v", ok, err)
	}
	if len(got) != 1 || got[0] != items[0] {
		t.Errorf("expected %+v, got %+v", items, got)
	}

	if err := sink.Remove(ctx, "a"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := sink.Remove(ctx, "missing"); err != nil {
		t.Errorf("expected removing unknown document to succeed, got %v", err)
	}
	corpus, err := sink.Corpus(ctx)
	if err != nil {
		t.Fatalf("corpus: %v", err)
	}
	if _, ok := corpus["a"]; ok || len(corpus) != 1 {
		t.Errorf("expected only b after remove, got %+v", corpus)
	}
	rows, err := sink.TaskRows(ctx)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected removed document's rows gone, got %+v", rows)
	}
}

func TestSink_ServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	sink := NewSink(NewClient(srv.URL, ""))
	err := sink.Sync(context.Background(), "doc", nil)
	if !errors.Is(err, store.ErrTransient) {
		t.Errorf("expected ErrTransient, got %v", err)
	}
}

func TestClient_GetMissing(t *testing.T) {
	srv := httptest.NewServer(newFakeKV())
	defer srv.Close()

	node, err := NewClient(srv.URL, "").GetNode(context.Background(), "gnote/none")
	if err != nil || node != nil {
		t.Errorf("expected nil, nil for missing key, got %v, %v", node, err)
	}
}

func TestClient_DeleteNode(t *testing.T) {
	kv := newFakeKV()
	srv := httptest.NewServer(kv)
	defer srv.Close()
	c := NewClient(srv.URL, "")
	ctx := context.Background()

	if err := c.PutNode(ctx, "gnote/x", NodeRequest{Value: 1}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := c.DeleteNode(ctx, "gnote/x", false); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if node, _ := c.GetNode(ctx, "gnote/x"); node != nil {
		t.Errorf("expected node deleted, got %+v", node)
	}
}
