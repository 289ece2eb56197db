package pathstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/FSlyne/gnote/internal/dashboard"
	"github.com/FSlyne/gnote/internal/scanner"
	"github.com/FSlyne/gnote/internal/store"
)

const documentsPrefix = "gnote/documents"

// record is the value stored per document. The document id is carried in
// the value so keys never need unescaping.
type record struct {
	DocumentID string          `json:"document_id"`
	SyncedAt   time.Time       `json:"synced_at"`
	Items      []scanner.Item  `json:"items"`
	Tasks      []dashboard.Row `json:"tasks"`
}

// Sink stores one record per document under gnote/documents/.
type Sink struct {
	client *Client
	now    func() time.Time
}

var _ store.Sink = (*Sink)(nil)

func NewSink(client *Client) *Sink {
	return &Sink{client: client, now: time.Now}
}

func documentKey(docID string) string {
	return documentsPrefix + "/" + url.PathEscape(docID)
}

func (s *Sink) Sync(ctx context.Context, docID string, items []scanner.Item) error {
	key := documentKey(docID)
	var existing []dashboard.Row
	node, err := s.client.GetNode(ctx, key)
	if err != nil {
		return transient(err)
	}
	if node != nil {
		var prev record
		if err := json.Unmarshal(node.Value, &prev); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
		existing = prev.Tasks
	}

	now := s.now()
	rec := record{
		DocumentID: docID,
		SyncedAt:   now,
		Items:      append([]scanner.Item{}, items...),
		Tasks:      store.Reconcile(existing, docID, items, now),
	}
	if err := s.client.PutNode(ctx, key, NodeRequest{Value: rec, Source: "gnote"}); err != nil {
		return transient(err)
	}
	return nil
}

func (s *Sink) Items(ctx context.Context, docID string) ([]scanner.Item, bool, error) {
	key := documentKey(docID)
	node, err := s.client.GetNode(ctx, key)
	if err != nil {
		return nil, false, transient(err)
	}
	if node == nil {
		return nil, false, nil
	}
	var rec record
	if err := json.Unmarshal(node.Value, &rec); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", key, err)
	}
	if rec.Items == nil {
		rec.Items = []scanner.Item{}
	}
	return rec.Items, true, nil
}

func (s *Sink) Remove(ctx context.Context, docID string) error {
	if err := s.client.DeleteNode(ctx, documentKey(docID), false); err != nil {
		return transient(err)
	}
	return nil
}

func (s *Sink) Corpus(ctx context.Context) (map[string][]scanner.Item, error) {
	recs, err := s.records(ctx)
	if err != nil {
		return nil, err
	}
	corpus := make(map[string][]scanner.Item, len(recs))
	for _, r := range recs {
		if r.Items == nil {
			r.Items = []scanner.Item{}
		}
		corpus[r.DocumentID] = r.Items
	}
	return corpus, nil
}

func (s *Sink) TaskRows(ctx context.Context) ([]dashboard.Row, error) {
	recs, err := s.records(ctx)
	if err != nil {
		return nil, err
	}
	var rows []dashboard.Row
	for _, r := range recs {
		rows = append(rows, r.Tasks...)
	}
	return rows, nil
}

func (s *Sink) records(ctx context.Context) ([]record, error) {
	nodes, err := s.client.ListChildren(ctx, documentsPrefix, 0)
	if err != nil {
		return nil, transient(err)
	}
	out := make([]record, 0, len(nodes))
	for _, n := range nodes {
		var r record
		if err := json.Unmarshal(n.Value, &r); err != nil || r.DocumentID == "" {
			// Foreign or corrupt nodes under the prefix are ignored.
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func transient(err error) error {
	if errors.Is(err, ErrUnavailable) {
		return fmt.Errorf("%w: %v", store.ErrTransient, err)
	}
	return err
}
