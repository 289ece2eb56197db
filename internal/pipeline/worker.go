package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/FSlyne/gnote/internal/doctree"
	"github.com/FSlyne/gnote/internal/scanner"
	"github.com/FSlyne/gnote/internal/source"
	"github.com/FSlyne/gnote/internal/stats"
	"github.com/FSlyne/gnote/internal/store"
)

// Worker scans one document and syncs it to the sink.
type Worker struct {
	src     source.Source
	sink    store.Sink
	log     *slog.Logger
	latency *stats.Recorder
	backoff func(int) time.Duration
}

func NewWorker(src source.Source, sink store.Sink, latency *stats.Recorder, log *slog.Logger) *Worker {
	return &Worker{
		src:     src,
		sink:    sink,
		log:     log,
		latency: latency,
		backoff: Backoff,
	}
}

// Process fetches, scans and syncs a job's document. A document whose
// scanned items equal what the sink already holds is not synced again.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)

	// Phase 1: Fetch
	job.SetStatus(StatusFetching, "fetching")
	var (
		doc      *doctree.Document
		comments []scanner.Comment
	)
	err := retry(ctx, log, "fetch", w.backoff, func() error {
		job.IncrAttempts()
		var err error
		if doc, err = w.src.FetchDocument(ctx, job.DocID); err != nil {
			return err
		}
		comments, err = w.src.FetchComments(ctx, job.DocID)
		return err
	})
	if err != nil {
		log.Error("fetch failed", "error", err)
		job.AddError(fmt.Sprintf("fetch: %s", err))
		job.SetStatus(StatusFailed, "fetching")
		return
	}

	// Phase 2: Scan
	job.SetStatus(StatusScanning, "scanning")
	start := time.Now()
	res := scanner.Scan(doc, comments)
	if w.latency != nil {
		w.latency.Observe("scan", time.Since(start))
	}
	job.SetCounts(len(res.Items), len(res.Tasks()), len(res.LocalTags))

	data, err := json.Marshal(res.Items)
	if err != nil {
		job.AddError(fmt.Sprintf("hash: %s", err))
		job.SetStatus(StatusFailed, "scanning")
		return
	}
	hash := ContentHashHex(data)
	job.setHash(hash)
	if w.unchanged(ctx, log, job.DocID, res.Items) {
		log.Info("document unchanged, skipping sync")
		job.SetStatus(StatusUnchanged, "done")
		return
	}

	// Phase 3: Sync
	job.SetStatus(StatusSyncing, "syncing")
	start = time.Now()
	err = retry(ctx, log, "sync", w.backoff, func() error {
		job.IncrAttempts()
		return w.sink.Sync(ctx, job.DocID, res.Items)
	})
	if w.latency != nil {
		w.latency.Observe("sync", time.Since(start))
	}
	if err != nil {
		log.Error("sync failed", "error", err)
		job.AddError(fmt.Sprintf("sync: %s", err))
		job.SetStatus(StatusFailed, "syncing")
		return
	}
	log.Info("document synced", "items", len(res.Items), "recognized", res.Recognized)
	job.SetStatus(StatusCompleted, "done")
}

// unchanged reports whether the sink already holds exactly items for
// docID. The sink is read each time since other writers share it. A failed
// read counts as changed.
func (w *Worker) unchanged(ctx context.Context, log *slog.Logger, docID string, items []scanner.Item) bool {
	stored, ok, err := w.sink.Items(ctx, docID)
	if err != nil {
		log.Warn("reading stored items failed, syncing anyway", "error", err)
		return false
	}
	return ok && slices.Equal(stored, items)
}
