// Package session holds the scan result currently on display and guards it
// against stale scans finishing out of order.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/FSlyne/gnote/internal/doctree"
	"github.com/FSlyne/gnote/internal/scanner"
	"github.com/FSlyne/gnote/internal/source"
	"github.com/FSlyne/gnote/internal/stats"
	"github.com/FSlyne/gnote/internal/store"
	"golang.org/x/sync/errgroup"
)

// ErrNothingToSync is returned by Sync when no document is displayed.
var ErrNothingToSync = errors.New("no scanned document to sync")

// Snapshot is the displayed scan state.
type Snapshot struct {
	Generation uint64         `json:"generation"`
	DocumentID string         `json:"document_id,omitempty"`
	Result     scanner.Result `json:"result"`
	Status     string         `json:"status"`
	ScannedAt  time.Time      `json:"scanned_at,omitempty"`

	// Loaded is false when nothing has been fetched or the fetch failed.
	Loaded bool `json:"loaded"`

	// Err is the fetch or sync failure behind Status, if any.
	Err error `json:"-"`
}

// Session serializes what is displayed; scans themselves run concurrently.
type Session struct {
	src     source.Source
	sink    store.Sink
	log     *slog.Logger
	latency *stats.Recorder

	gen atomic.Uint64

	mu  sync.Mutex
	cur Snapshot
}

func New(src source.Source, sink store.Sink, latency *stats.Recorder, log *slog.Logger) *Session {
	if latency == nil {
		latency = stats.NewRecorder(time.Hour)
	}
	s := &Session{src: src, sink: sink, log: log, latency: latency}
	s.cur = emptySnapshot(0, "", "idle")
	return s
}

func emptySnapshot(gen uint64, docID, status string) Snapshot {
	return Snapshot{
		Generation: gen,
		DocumentID: docID,
		Result:     scanner.Result{Items: []scanner.Item{}, LocalTags: []string{}},
		Status:     status,
	}
}

// Open scans docID and displays the result unless a newer Open started in
// the meantime, in which case the result is discarded and applied is false.
// Fetch failures display an empty result with a status message.
func (s *Session) Open(ctx context.Context, docID string) (snap Snapshot, applied bool) {
	gen := s.gen.Add(1)
	log := s.log.With("doc_id", docID, "generation", gen)
	start := time.Now()

	var (
		doc      *doctree.Document
		comments []scanner.Comment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		doc, err = s.src.FetchDocument(gctx, docID)
		return err
	})
	g.Go(func() error {
		var err error
		comments, err = s.src.FetchComments(gctx, docID)
		return err
	})

	if err := g.Wait(); err != nil {
		log.Warn("fetch failed", "error", err)
		snap = emptySnapshot(gen, docID, fmt.Sprintf("could not load document: %v", err))
		snap.Err = err
	} else {
		res := scanner.Scan(doc, comments)
		s.latency.Observe("scan", time.Since(start))
		snap = Snapshot{
			Generation: gen,
			DocumentID: docID,
			Result:     res,
			Status:     scanStatus(res),
			ScannedAt:  time.Now().UTC(),
			Loaded:     true,
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen.Load() != gen {
		log.Debug("discarding stale scan")
		return snap, false
	}
	s.cur = snap
	log.Info("scan displayed", "items", len(snap.Result.Items), "recognized", snap.Result.Recognized)
	return snap, true
}

func scanStatus(res scanner.Result) string {
	if !res.Worthwhile() {
		return "nothing found"
	}
	return fmt.Sprintf("found %d items", len(res.Items))
}

// Current returns the displayed snapshot.
func (s *Session) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Sync pushes the displayed items to the sink. On failure the displayed
// result is kept and its status reports the error so the caller can retry.
func (s *Session) Sync(ctx context.Context) (Snapshot, error) {
	cur := s.Current()
	if !cur.Loaded {
		return cur, ErrNothingToSync
	}

	start := time.Now()
	err := s.sink.Sync(ctx, cur.DocumentID, cur.Result.Items)
	s.latency.Observe("sync", time.Since(start))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur.Generation != cur.Generation {
		// A newer scan replaced the display while syncing.
		return s.cur, err
	}
	log := s.log.With("doc_id", cur.DocumentID, "generation", cur.Generation)
	if err != nil {
		log.Warn("sync failed", "error", err)
		s.cur.Status = fmt.Sprintf("sync failed: %v", err)
		s.cur.Err = err
		return s.cur, err
	}
	s.cur.Status = fmt.Sprintf("synced %d items", len(cur.Result.Items))
	s.cur.Err = nil
	log.Info("synced", "items", len(cur.Result.Items))
	return s.cur, nil
}
