package parser

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/FSlyne/gnote/internal/doctree"
)

// JSONParser decodes documents exported in the Docs API JSON shape.
type JSONParser struct{}

func (p *JSONParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	var doc doctree.Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document json: %w", err)
	}
	if doc.Title == "" {
		doc.Title = titleFromFilename(filename)
	}
	return &doc, nil
}
