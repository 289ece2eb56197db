package store

import (
	"context"
	"sync"
	"time"

	"github.com/FSlyne/gnote/internal/dashboard"
	"github.com/FSlyne/gnote/internal/scanner"
)

// Memory is an in-process Sink.
type Memory struct {
	mu    sync.Mutex
	items map[string][]scanner.Item
	rows  map[string][]dashboard.Row
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		items: make(map[string][]scanner.Item),
		rows:  make(map[string][]dashboard.Row),
		now:   time.Now,
	}
}

func (m *Memory) Sync(ctx context.Context, docID string, items []scanner.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[docID] = append([]scanner.Item(nil), items...)
	m.rows[docID] = Reconcile(m.rows[docID], docID, items, m.now())
	return nil
}

func (m *Memory) Items(ctx context.Context, docID string) ([]scanner.Item, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items, ok := m.items[docID]
	if !ok {
		return nil, false, nil
	}
	return append([]scanner.Item{}, items...), true, nil
}

func (m *Memory) Remove(ctx context.Context, docID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, docID)
	delete(m.rows, docID)
	return nil
}

func (m *Memory) Corpus(ctx context.Context) (map[string][]scanner.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string][]scanner.Item, len(m.items))
	for id, items := range m.items {
		out[id] = append([]scanner.Item(nil), items...)
	}
	return out, nil
}

func (m *Memory) TaskRows(ctx context.Context) ([]dashboard.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []dashboard.Row
	for _, rows := range m.rows {
		out = append(out, rows...)
	}
	return out, nil
}
