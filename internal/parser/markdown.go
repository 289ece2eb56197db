package parser

import (
	"io"
	"strings"

	"github.com/FSlyne/gnote/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark with GFM extensions.
// Task list items become bracket-prefixed paragraphs, ~~text~~ becomes a
// struck run, and GFM tables become tables.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	root := md.Parser().Parse(text.NewReader(src))

	doc := newDocument(filename)
	b := &mdBuilder{src: src, ids: newSlugger()}
	doc.Body.Content = b.blocks(root)
	return doc, nil
}

type mdBuilder struct {
	src []byte
	ids *slugger
}

// blocks converts the block children of n into structural elements.
func (b *mdBuilder) blocks(n ast.Node) []doctree.StructuralElement {
	var out []doctree.StructuralElement
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Heading:
			title := strings.TrimSpace(runsText(b.inline(node, false)))
			if title == "" {
				continue
			}
			out = append(out, doctree.NewHeading(node.Level, title, b.ids.id(title)))
		case *ast.Paragraph, *ast.TextBlock:
			if el, ok := b.paragraph(node); ok {
				out = append(out, el)
			}
		case *ast.List, *ast.ListItem, *ast.Blockquote:
			out = append(out, b.blocks(node)...)
		case *extast.Table:
			out = append(out, b.table(node))
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock, *ast.ThematicBreak:
			// Not prose.
		default:
			out = append(out, b.blocks(node)...)
		}
	}
	return out
}

func (b *mdBuilder) paragraph(n ast.Node) (doctree.StructuralElement, bool) {
	runs := b.inline(n, false)
	if strings.TrimSpace(runsText(runs)) == "" {
		return doctree.StructuralElement{}, false
	}
	return doctree.StructuralElement{Paragraph: &doctree.Paragraph{Elements: runs}}, true
}

func (b *mdBuilder) table(t *extast.Table) doctree.StructuralElement {
	table := &doctree.Table{}
	for r := t.FirstChild(); r != nil; r = r.NextSibling() {
		var row doctree.TableRow
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			cell := doctree.TableCell{}
			if el, ok := b.paragraph(c); ok {
				cell.Content = []doctree.StructuralElement{el}
			}
			row.TableCells = append(row.TableCells, cell)
		}
		table.TableRows = append(table.TableRows, row)
	}
	return doctree.StructuralElement{Table: table}
}

// inline flattens the inline children of n into text runs.
func (b *mdBuilder) inline(n ast.Node, struck bool) []doctree.ParagraphElement {
	var runs []doctree.ParagraphElement
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			s := string(node.Segment.Value(b.src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				s += " "
			}
			runs = append(runs, doctree.Text(s, struck))
		case *ast.String:
			runs = append(runs, doctree.Text(string(node.Value), struck))
		case *extast.TaskCheckBox:
			mark := "[ ] "
			if node.IsChecked {
				mark = "[x] "
			}
			runs = append(runs, doctree.Text(mark, false))
		case *extast.Strikethrough:
			runs = append(runs, b.inline(node, true)...)
		default:
			runs = append(runs, b.inline(node, struck)...)
		}
	}
	return runs
}

func runsText(runs []doctree.ParagraphElement) string {
	var sb strings.Builder
	for _, r := range runs {
		if r.TextRun != nil {
			sb.WriteString(r.TextRun.Content)
		}
	}
	return sb.String()
}
