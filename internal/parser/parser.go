package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/FSlyne/gnote/internal/doctree"
)

// Parser converts raw document bytes into a document tree.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Document, error)
}

// SupportedExtensions lists file extensions this service can import.
var SupportedExtensions = map[string]bool{
	".json":     true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// CommentsSuffix marks a sidecar file holding a document's comment list.
const CommentsSuffix = ".comments.json"

// Options tunes importer behavior.
type Options struct {
	PDFFallbackPdftotext bool
}

// ForFile returns the appropriate parser for a filename with default options.
func ForFile(filename string) (Parser, error) {
	return ForFileWithOptions(filename, Options{})
}

// ForFileWithOptions returns the appropriate parser for a filename.
func ForFileWithOptions(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return &JSONParser{}, nil
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file can be imported as a document.
// Comment sidecars are not documents.
func IsSupportedExtension(filename string) bool {
	if strings.HasSuffix(strings.ToLower(filename), CommentsSuffix) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func newDocument(filename string) *doctree.Document {
	return &doctree.Document{
		Title: titleFromFilename(filename),
		Body:  &doctree.Body{},
	}
}
