package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/FSlyne/gnote/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Heading styles become headings and
// tables keep their cell structure.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	// go-docx needs a ReaderAt+size, so write to temp file.
	tmp, err := os.CreateTemp("", "gnote-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	parsed, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	doc := newDocument(filename)
	b := &docxBuilder{ids: newSlugger()}
	for _, item := range parsed.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			if el, ok := b.paragraph(it); ok {
				doc.Body.Content = append(doc.Body.Content, el)
			}
		case *docx.Table:
			doc.Body.Content = append(doc.Body.Content, b.table(it))
		}
	}
	return doc, nil
}

type docxBuilder struct {
	ids *slugger
}

func (b *docxBuilder) paragraph(para *docx.Paragraph) (doctree.StructuralElement, bool) {
	text := docxParagraphText(para)
	if text == "" {
		return doctree.StructuralElement{}, false
	}
	if level := docxHeadingLevel(para); level > 0 {
		return doctree.NewHeading(level, text, b.ids.id(text)), true
	}
	return doctree.NewParagraph(text), true
}

func (b *docxBuilder) table(tbl *docx.Table) doctree.StructuralElement {
	table := &doctree.Table{}
	for _, r := range tbl.TableRows {
		if r == nil {
			continue
		}
		var row doctree.TableRow
		for _, c := range r.TableCells {
			var cell doctree.TableCell
			if c != nil {
				for _, para := range c.Paragraphs {
					if el, ok := b.paragraph(para); ok {
						cell.Content = append(cell.Content, el)
					}
				}
			}
			row.TableCells = append(row.TableCells, cell)
		}
		table.TableRows = append(table.TableRows, row)
	}
	return doctree.StructuralElement{Table: table}
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if !strings.HasPrefix(style, "heading") {
		return 0
	}
	switch strings.TrimPrefix(style, "heading") {
	case "1":
		return 1
	case "2":
		return 2
	case "3":
		return 3
	case "4":
		return 4
	case "5":
		return 5
	case "6":
		return 6
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	if para == nil {
		return ""
	}
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
