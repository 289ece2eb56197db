package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/FSlyne/gnote/internal/doctree"
)

// TextParser handles plain text files. Every non-blank line becomes one
// paragraph so line-oriented task conventions survive.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	doc := newDocument(filename)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		doc.Body.Content = append(doc.Body.Content, doctree.NewParagraph(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return doc, nil
}
