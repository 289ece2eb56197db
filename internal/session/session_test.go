package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/FSlyne/gnote/internal/dashboard"
	"github.com/FSlyne/gnote/internal/doctree"
	"github.com/FSlyne/gnote/internal/scanner"
	"github.com/FSlyne/gnote/internal/source"
	"github.com/FSlyne/gnote/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSource serves fixed documents; fetches for ids in gates block until
// the gate is closed.
type fakeSource struct {
	mu       sync.Mutex
	docs     map[string]*doctree.Document
	comments map[string][]scanner.Comment
	gates    map[string]chan struct{}
	started  chan string
	err      error
}

func (f *fakeSource) FetchDocument(ctx context.Context, id string) (*doctree.Document, error) {
	f.mu.Lock()
	gate := f.gates[id]
	f.mu.Unlock()
	if f.started != nil {
		f.started <- id
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	doc, ok := f.docs[id]
	if !ok {
		return nil, source.ErrNotFound
	}
	return doc, nil
}

func (f *fakeSource) FetchComments(ctx context.Context, id string) ([]scanner.Comment, error) {
	return f.comments[id], nil
}

func (f *fakeSource) List(ctx context.Context) ([]string, error) {
	var ids []string
	for id := range f.docs {
		ids = append(ids, id)
	}
	return ids, nil
}

func docWith(lines ...string) *doctree.Document {
	doc := &doctree.Document{Body: &doctree.Body{}}
	for _, l := range lines {
		doc.Body.Content = append(doc.Body.Content, doctree.NewParagraph(l))
	}
	return doc
}

type failingSink struct{ err error }

func (f failingSink) Sync(context.Context, string, []scanner.Item) error { return f.err }
func (f failingSink) Corpus(context.Context) (map[string][]scanner.Item, error) {
	return nil, nil
}
func (f failingSink) TaskRows(context.Context) ([]dashboard.Row, error) { return nil, nil }
func (f failingSink) Items(context.Context, string) ([]scanner.Item, bool, error) {
	return nil, false, f.err
}
func (f failingSink) Remove(context.Context, string) error { return f.err }

func TestOpen_DisplaysResult(t *testing.T) {
	src := &fakeSource{
		docs:     map[string]*doctree.Document{"a": docWith("[ ] Buy milk", "#errand")},
		comments: map[string][]scanner.Comment{"a": {{Content: "TODO: reply"}}},
	}
	s := New(src, store.NewMemory(), nil, testLogger())

	snap, applied := s.Open(context.Background(), "a")
	if !applied {
		t.Fatal("expected result to be applied")
	}
	if len(snap.Result.Items) != 3 {
		t.Fatalf("expected 3 items, got %+v", snap.Result.Items)
	}
	if last := snap.Result.Items[2]; last.Kind != scanner.KindCommentTask || last.Text != "reply (Comment by Unknown)" {
		t.Errorf("unexpected comment item %+v", last)
	}
	if cur := s.Current(); cur.Generation != snap.Generation || !cur.Loaded {
		t.Errorf("expected current to be the opened snapshot, got %+v", cur)
	}
}

func TestOpen_FetchFailureShowsEmptyResult(t *testing.T) {
	src := &fakeSource{docs: map[string]*doctree.Document{"a": docWith("[ ] x")}}
	s := New(src, store.NewMemory(), nil, testLogger())
	s.Open(context.Background(), "a")

	snap, applied := s.Open(context.Background(), "missing")
	if !applied {
		t.Fatal("expected failure snapshot to be applied")
	}
	if !errors.Is(snap.Err, source.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", snap.Err)
	}
	if len(snap.Result.Items) != 0 || snap.Loaded || snap.Status == "" {
		t.Errorf("expected empty result with status, got %+v", snap)
	}
	if _, err := s.Sync(context.Background()); !errors.Is(err, ErrNothingToSync) {
		t.Errorf("expected ErrNothingToSync, got %v", err)
	}
}

func TestOpen_StaleScanDiscarded(t *testing.T) {
	gate := make(chan struct{})
	src := &fakeSource{
		docs: map[string]*doctree.Document{
			"slow": docWith("[ ] old"),
			"fast": docWith("[ ] new"),
		},
		gates:   map[string]chan struct{}{"slow": gate},
		started: make(chan string, 4),
	}
	s := New(src, store.NewMemory(), nil, testLogger())

	done := make(chan bool)
	go func() {
		_, applied := s.Open(context.Background(), "slow")
		done <- applied
	}()
	<-src.started // slow fetch is in flight

	if _, applied := s.Open(context.Background(), "fast"); !applied {
		t.Fatal("expected newer scan to apply")
	}
	<-src.started
	close(gate)

	if applied := <-done; applied {
		t.Error("expected stale scan to be discarded")
	}
	cur := s.Current()
	if cur.DocumentID != "fast" || cur.Result.Items[0].Text != "new" {
		t.Errorf("expected newer scan displayed, got %+v", cur)
	}
}

func TestSync_FailureKeepsResult(t *testing.T) {
	src := &fakeSource{docs: map[string]*doctree.Document{"a": docWith("[ ] keep me")}}
	s := New(src, failingSink{err: store.ErrTransient}, nil, testLogger())
	s.Open(context.Background(), "a")

	snap, err := s.Sync(context.Background())
	if !errors.Is(err, store.ErrTransient) {
		t.Fatalf("expected ErrTransient, got %v", err)
	}
	if len(snap.Result.Items) != 1 || snap.Result.Items[0].Text != "keep me" {
		t.Errorf("expected items retained, got %+v", snap.Result.Items)
	}
	if snap.Status == "" || snap.Err == nil {
		t.Errorf("expected failure status, got %+v", snap)
	}
}

func TestSync_WritesToSink(t *testing.T) {
	src := &fakeSource{docs: map[string]*doctree.Document{"a": docWith("[x] done", "[ ] open")}}
	sink := store.NewMemory()
	s := New(src, sink, nil, testLogger())
	s.Open(context.Background(), "a")

	if _, err := s.Sync(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}
	rows, _ := sink.TaskRows(context.Background())
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	view := dashboard.Aggregate(rows, dashboard.Query{Status: dashboard.FilterOpen})
	if view.Count != 1 || view.Rows[0].Content != "open" {
		t.Errorf("expected one open row, got %+v", view)
	}
}
