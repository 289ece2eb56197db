// Package source fetches document trees and comment lists.
package source

import (
	"context"
	"errors"

	"github.com/FSlyne/gnote/internal/doctree"
	"github.com/FSlyne/gnote/internal/scanner"
)

// Fetch failures. Callers classify with errors.Is.
var (
	ErrNotFound         = errors.New("document not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrTransient        = errors.New("transient fetch failure")
)

// Source is the remote document store as seen by the scanner.
type Source interface {
	FetchDocument(ctx context.Context, docID string) (*doctree.Document, error)
	FetchComments(ctx context.Context, docID string) ([]scanner.Comment, error)
	List(ctx context.Context) ([]string, error)
}

// Saver is implemented by sources that accept uploaded documents.
type Saver interface {
	Save(ctx context.Context, docID string, data []byte) error
}

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransient)
}
