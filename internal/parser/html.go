package parser

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/FSlyne/gnote/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. Top-level <header> and <footer> elements
// become header and footer regions; <s>, <del> and <strike> mark struck
// text; checkbox inputs become bracket prefixes.
type HTMLParser struct{}

var collapseSpace = regexp.MustCompile(`\s+`)

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := newDocument(filename)
	if title := findTitle(root); title != "" {
		doc.Title = title
	}

	b := &htmlBuilder{doc: doc, ids: newSlugger()}
	body := findBody(root)
	if body == nil {
		body = root
	}
	doc.Body.Content = b.blocks(body)
	return doc, nil
}

type htmlBuilder struct {
	doc     *doctree.Document
	ids     *slugger
	headers int
	footers int
}

// blockState accumulates elements and the inline runs of the paragraph
// currently being built.
type blockState struct {
	out  []doctree.StructuralElement
	runs []doctree.ParagraphElement
}

func (s *blockState) flush() {
	if strings.TrimSpace(runsText(s.runs)) != "" {
		s.out = append(s.out, doctree.StructuralElement{Paragraph: &doctree.Paragraph{Elements: s.runs}})
	}
	s.runs = nil
}

func (b *htmlBuilder) blocks(n *html.Node) []doctree.StructuralElement {
	st := &blockState{}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.visit(c, st, false)
	}
	st.flush()
	return st.out
}

func (b *htmlBuilder) visit(n *html.Node, st *blockState, struck bool) {
	switch n.Type {
	case html.TextNode:
		if s := collapseSpace.ReplaceAllString(n.Data, " "); s != "" {
			st.runs = append(st.runs, doctree.Text(s, struck))
		}
		return
	case html.ElementNode:
	default:
		return
	}

	if level := headingLevel(n.Data); level > 0 {
		st.flush()
		if title := textContent(n); title != "" {
			st.out = append(st.out, doctree.NewHeading(level, title, b.ids.id(title)))
		}
		return
	}

	switch n.Data {
	case "script", "style", "nav", "template", "head":
		return
	case "header", "footer":
		if n.Parent != nil && n.Parent.Data == "body" {
			st.flush()
			b.region(n)
			return
		}
	case "table":
		st.flush()
		st.out = append(st.out, b.table(n))
		return
	case "br":
		st.flush()
		return
	case "input":
		if strings.EqualFold(attr(n, "type"), "checkbox") {
			mark := "[ ] "
			if hasAttr(n, "checked") {
				mark = "[x] "
			}
			st.runs = append(st.runs, doctree.Text(mark, false))
		}
		return
	case "s", "del", "strike":
		struck = true
	}

	block := isBlock(n.Data)
	if block {
		st.flush()
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.visit(c, st, struck)
	}
	if block {
		st.flush()
	}
}

func (b *htmlBuilder) region(n *html.Node) {
	content := b.blocks(n)
	if n.Data == "header" {
		b.headers++
		if b.doc.Headers == nil {
			b.doc.Headers = make(map[string]doctree.Region)
		}
		id := "header-" + strconv.Itoa(b.headers)
		b.doc.Headers[id] = doctree.Region{HeaderID: id, Content: content}
		return
	}
	b.footers++
	if b.doc.Footers == nil {
		b.doc.Footers = make(map[string]doctree.Region)
	}
	id := "footer-" + strconv.Itoa(b.footers)
	b.doc.Footers[id] = doctree.Region{FooterID: id, Content: content}
}

func (b *htmlBuilder) table(n *html.Node) doctree.StructuralElement {
	table := &doctree.Table{}
	for _, tr := range rowsOf(n) {
		var row doctree.TableRow
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
				row.TableCells = append(row.TableCells, doctree.TableCell{Content: b.blocks(c)})
			}
		}
		table.TableRows = append(table.TableRows, row)
	}
	return doctree.StructuralElement{Table: table}
}

// rowsOf returns the rows of a table, looking through thead/tbody/tfoot but
// not into nested tables.
func rowsOf(table *html.Node) []*html.Node {
	var rows []*html.Node
	for c := table.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "tr":
			rows = append(rows, c)
		case "thead", "tbody", "tfoot":
			rows = append(rows, rowsOf(c)...)
		}
	}
	return rows
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "li", "ul", "ol", "blockquote", "section", "article", "main",
		"aside", "header", "footer", "pre", "dl", "dt", "dd", "figure", "figcaption", "form":
		return true
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(collapseSpace.ReplaceAllString(buf.String(), " "))
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
