package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/FSlyne/gnote/internal/doctree"
	"github.com/FSlyne/gnote/internal/parser"
	"github.com/FSlyne/gnote/internal/scanner"
)

// Dir serves documents from files under a root directory. A document's id
// is its slash-separated path relative to the root; its comments live in a
// sidecar file named <document>.comments.json.
type Dir struct {
	Root string
	Opts parser.Options
}

func NewDir(root string, opts parser.Options) *Dir {
	return &Dir{Root: root, Opts: opts}
}

func (d *Dir) FetchDocument(ctx context.Context, docID string) (*doctree.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	path, err := d.resolve(docID)
	if err != nil {
		return nil, err
	}
	p, err := parser.ForFileWithOptions(path, d.Opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, docID)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, classify(docID, err)
	}
	defer f.Close()

	doc, err := p.Parse(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", docID, err)
	}
	if doc.DocumentID == "" {
		doc.DocumentID = docID
	}
	return doc, nil
}

func (d *Dir) FetchComments(ctx context.Context, docID string) ([]scanner.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	path, err := d.resolve(docID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path + parser.CommentsSuffix)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(docID, err)
	}
	var comments []scanner.Comment
	if err := json.Unmarshal(data, &comments); err != nil {
		return nil, fmt.Errorf("decode comments for %s: %w", docID, err)
	}
	return comments, nil
}

// List returns every importable document under the root, sorted.
func (d *Dir) List(ctx context.Context) ([]string, error) {
	var ids []string
	err := filepath.WalkDir(d.Root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			if path != d.Root && strings.HasPrefix(entry.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !parser.IsSupportedExtension(entry.Name()) {
			return nil
		}
		rel, err := filepath.Rel(d.Root, path)
		if err != nil {
			return err
		}
		ids = append(ids, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", d.Root, err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Save writes data as document docID, creating parent directories.
func (d *Dir) Save(ctx context.Context, docID string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	path, err := d.resolve(docID)
	if err != nil {
		return err
	}
	if !parser.IsSupportedExtension(path) {
		return fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return classify(docID, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return classify(docID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return classify(docID, err)
	}
	return nil
}

// resolve maps a document id to a path, refusing ids that escape the root.
func (d *Dir) resolve(docID string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(docID, "/")))
	if docID == "" || clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrNotFound, docID)
	}
	return filepath.Join(d.Root, clean), nil
}

func classify(docID string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrNotFound, docID)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s", ErrPermissionDenied, docID)
	}
	return fmt.Errorf("%w: %s: %v", ErrTransient, docID, err)
}
