// Package store persists synced scan results and the task rows derived
// from them.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/FSlyne/gnote/internal/dashboard"
	"github.com/FSlyne/gnote/internal/scanner"
	"github.com/google/uuid"
)

// ErrTransient marks sync failures worth retrying.
var ErrTransient = errors.New("transient sync failure")

// Sink is the persistent record of synced documents. After a successful
// Sync the sink's copy is the source of truth for tag index and dashboard
// rebuilds.
type Sink interface {
	Sync(ctx context.Context, docID string, items []scanner.Item) error
	// Items returns docID's stored items; ok is false when it was never synced.
	Items(ctx context.Context, docID string) (items []scanner.Item, ok bool, err error)
	// Remove forgets docID with its items and task rows. Removing an
	// unknown document is not an error.
	Remove(ctx context.Context, docID string) error
	Corpus(ctx context.Context) (map[string][]scanner.Item, error)
	TaskRows(ctx context.Context) ([]dashboard.Row, error)
}

// Reconcile computes docID's task rows after a sync, given the rows it had
// before. New tasks open (or close immediately when already done), done
// tasks close, reappearing open tasks reopen, and tasks missing from items
// close. Rows are keyed by section and content.
func Reconcile(existing []dashboard.Row, docID string, items []scanner.Item, now time.Time) []dashboard.Row {
	type want struct {
		sectionID string
		content   string
		done      bool
	}
	var order []string
	desired := make(map[string]*want)
	for _, it := range items {
		if !it.IsTask() {
			continue
		}
		k := rowKey(it.SectionID, it.Text)
		if w, ok := desired[k]; ok {
			// Duplicates stay open while any copy is open.
			w.done = w.done && it.Done
			continue
		}
		desired[k] = &want{sectionID: it.SectionID, content: it.Text, done: it.Done}
		order = append(order, k)
	}

	out := make([]dashboard.Row, 0, len(existing)+len(order))
	seen := make(map[string]bool)
	for _, row := range existing {
		k := rowKey(row.SectionID, row.Content)
		if seen[k] {
			continue
		}
		seen[k] = true
		w, ok := desired[k]
		switch {
		case !ok || w.done:
			if row.Status != dashboard.StatusClosed {
				row.Status = dashboard.StatusClosed
				closed := now
				row.ClosedAt = &closed
			}
		default:
			row.Status = dashboard.StatusOpen
			row.ClosedAt = nil
		}
		row.DocumentID = docID
		out = append(out, row)
	}
	for _, k := range order {
		if seen[k] {
			continue
		}
		w := desired[k]
		row := dashboard.Row{
			ID:         uuid.NewString(),
			Status:     dashboard.StatusOpen,
			Content:    w.content,
			CreatedAt:  now,
			DocumentID: docID,
			SectionID:  w.sectionID,
		}
		if w.done {
			row.Status = dashboard.StatusClosed
			closed := now
			row.ClosedAt = &closed
		}
		out = append(out, row)
	}
	return out
}

func rowKey(sectionID, content string) string {
	return sectionID + "\x00" + content
}
