package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/FSlyne/gnote/internal/dashboard"
	"github.com/FSlyne/gnote/internal/scanner"

	_ "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLite is a Sink backed by a local SQLite database.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path and applies
// migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps writers serialized.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %q: %w", p, err)
		}
	}
	s := &SQLite{db: db, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			doc_id TEXT PRIMARY KEY,
			synced_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS items (
			doc_id TEXT NOT NULL REFERENCES documents(doc_id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			kind TEXT NOT NULL,
			text TEXT NOT NULL,
			section_id TEXT NOT NULL,
			done INTEGER NOT NULL,
			PRIMARY KEY(doc_id, position)
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			doc_id TEXT NOT NULL REFERENCES documents(doc_id) ON DELETE CASCADE,
			section_id TEXT NOT NULL,
			content TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at_unixms INTEGER NOT NULL,
			closed_at_unixms INTEGER,
			UNIQUE(doc_id, section_id, content)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_items_kind ON items(kind, text);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status, created_at_unixms);`,
	}
	for _, st := range stmts {
		if _, err := s.db.ExecContext(ctx, st); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Sync replaces docID's items and reconciles its task rows in one
// transaction.
func (s *SQLite) Sync(ctx context.Context, docID string, items []scanner.Item) error {
	if err := s.sync(ctx, docID, items); err != nil {
		return wrapSQLite("sync "+docID, err)
	}
	return nil
}

// wrapSQLite marks busy, locked and I/O failures as ErrTransient. Other
// failures (constraints, schema, cancellation) are returned as is.
func wrapSQLite(op string, err error) error {
	if isTransientSQLite(err) {
		return fmt.Errorf("%w: %s: %v", ErrTransient, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isTransientSQLite(err error) bool {
	var coded interface{ Code() int }
	if !errors.As(err, &coded) {
		return false
	}
	switch coded.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_IOERR:
		return true
	}
	return false
}

func (s *SQLite) Items(ctx context.Context, docID string) ([]scanner.Item, bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM documents WHERE doc_id = ?`, docID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrapSQLite("lookup "+docID, err)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, text, section_id, done FROM items WHERE doc_id = ? ORDER BY position`, docID)
	if err != nil {
		return nil, false, wrapSQLite("query items "+docID, err)
	}
	defer rows.Close()
	items := []scanner.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, false, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, false, wrapSQLite("iterate items "+docID, err)
	}
	return items, true, nil
}

// Remove deletes docID; items and task rows go with it by cascade.
func (s *SQLite) Remove(ctx context.Context, docID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE doc_id = ?`, docID); err != nil {
		return wrapSQLite("remove "+docID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(r rowScanner) (scanner.Item, error) {
	var (
		it   scanner.Item
		kind string
		done int
	)
	if err := r.Scan(&kind, &it.Text, &it.SectionID, &done); err != nil {
		return scanner.Item{}, err
	}
	it.Kind = scanner.Kind(kind)
	it.Done = done != 0
	return it, nil
}

func (s *SQLite) sync(ctx context.Context, docID string, items []scanner.Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	existing, err := queryRows(ctx, tx, `WHERE doc_id = ?`, docID)
	if err != nil {
		return err
	}
	now := s.now()
	rows := Reconcile(existing, docID, items, now)

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO documents(doc_id, synced_at_unixms) VALUES(?, ?)
		 ON CONFLICT(doc_id) DO UPDATE SET synced_at_unixms = excluded.synced_at_unixms`,
		docID, now.UnixMilli()); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE doc_id = ?`, docID); err != nil {
		return err
	}
	for i, it := range items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO items(doc_id, position, kind, text, section_id, done) VALUES(?, ?, ?, ?, ?, ?)`,
			docID, i, string(it.Kind), it.Text, it.SectionID, boolInt(it.Done)); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE doc_id = ?`, docID); err != nil {
		return err
	}
	for _, r := range rows {
		var closed any
		if r.ClosedAt != nil {
			closed = r.ClosedAt.UnixMilli()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tasks(id, doc_id, section_id, content, status, created_at_unixms, closed_at_unixms)
			 VALUES(?, ?, ?, ?, ?, ?, ?)`,
			r.ID, docID, r.SectionID, r.Content, string(r.Status), r.CreatedAt.UnixMilli(), closed); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLite) Corpus(ctx context.Context) (map[string][]scanner.Item, error) {
	corpus := make(map[string][]scanner.Item)

	docs, err := s.db.QueryContext(ctx, `SELECT doc_id FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	for docs.Next() {
		var id string
		if err := docs.Scan(&id); err != nil {
			docs.Close()
			return nil, fmt.Errorf("scan document: %w", err)
		}
		corpus[id] = []scanner.Item{}
	}
	docs.Close()
	if err := docs.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT doc_id, kind, text, section_id, done FROM items ORDER BY doc_id, position`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			docID, kind string
			it          scanner.Item
			done        int
		)
		if err := rows.Scan(&docID, &kind, &it.Text, &it.SectionID, &done); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		it.Kind = scanner.Kind(kind)
		it.Done = done != 0
		corpus[docID] = append(corpus[docID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return corpus, nil
}

func (s *SQLite) TaskRows(ctx context.Context) ([]dashboard.Row, error) {
	rows, err := queryRows(ctx, s.db, "")
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	return rows, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryRows(ctx context.Context, q queryer, where string, args ...any) ([]dashboard.Row, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, doc_id, section_id, content, status, created_at_unixms, closed_at_unixms
		 FROM tasks `+where+` ORDER BY created_at_unixms, id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dashboard.Row
	for rows.Next() {
		var (
			r       dashboard.Row
			status  string
			created int64
			closed  sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.DocumentID, &r.SectionID, &r.Content, &status, &created, &closed); err != nil {
			return nil, err
		}
		r.Status = dashboard.Status(status)
		r.CreatedAt = time.UnixMilli(created).UTC()
		if closed.Valid {
			t := time.UnixMilli(closed.Int64).UTC()
			r.ClosedAt = &t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
