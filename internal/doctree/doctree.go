// Package doctree models a rich document content tree. The shapes follow the
// Docs API JSON layout so exported documents decode without translation.
package doctree

import (
	"sort"
	"strconv"
	"strings"
)

// Document is the root of a fetched document.
type Document struct {
	DocumentID string            `json:"documentId,omitempty"`
	Title      string            `json:"title,omitempty"`
	Body       *Body             `json:"body,omitempty"`
	Headers    map[string]Region `json:"headers,omitempty"`
	Footers    map[string]Region `json:"footers,omitempty"`
	Lists      map[string]List   `json:"lists,omitempty"`
}

// Body holds the main content sequence.
type Body struct {
	Content []StructuralElement `json:"content,omitempty"`
}

// Region is a header or footer.
type Region struct {
	HeaderID string              `json:"headerId,omitempty"`
	FooterID string              `json:"footerId,omitempty"`
	Content  []StructuralElement `json:"content,omitempty"`
}

// ElementKind tags which variant a StructuralElement holds.
type ElementKind int

const (
	KindUnknown ElementKind = iota
	KindParagraph
	KindTable
)

// StructuralElement is exactly one of a paragraph or a table.
type StructuralElement struct {
	Paragraph *Paragraph `json:"paragraph,omitempty"`
	Table     *Table     `json:"table,omitempty"`
}

// Kind reports the element variant. Elements carrying both or neither
// variant are malformed and report KindUnknown.
func (e StructuralElement) Kind() ElementKind {
	switch {
	case e.Paragraph != nil && e.Table == nil:
		return KindParagraph
	case e.Table != nil && e.Paragraph == nil:
		return KindTable
	}
	return KindUnknown
}

// Paragraph is a run of styled text with optional list membership.
type Paragraph struct {
	Elements       []ParagraphElement `json:"elements,omitempty"`
	ParagraphStyle *ParagraphStyle    `json:"paragraphStyle,omitempty"`
	Bullet         *Bullet            `json:"bullet,omitempty"`
}

// ParagraphElement wraps one inline element. Only text runs carry text.
type ParagraphElement struct {
	TextRun *TextRun `json:"textRun,omitempty"`
}

// TextRun is a contiguous run of text sharing one style.
type TextRun struct {
	Content   string     `json:"content"`
	TextStyle *TextStyle `json:"textStyle,omitempty"`
}

// Struck reports whether the run is rendered with strikethrough.
func (r *TextRun) Struck() bool {
	return r != nil && r.TextStyle != nil && r.TextStyle.Strikethrough
}

type TextStyle struct {
	Strikethrough bool `json:"strikethrough,omitempty"`
}

// ParagraphStyle carries the named style and, for headings, the heading id.
type ParagraphStyle struct {
	NamedStyleType string `json:"namedStyleType,omitempty"`
	HeadingID      string `json:"headingId,omitempty"`
}

const headingPrefix = "HEADING_"

// HeadingLevel returns N for a HEADING_N named style (1..6) and 0 otherwise.
func (s *ParagraphStyle) HeadingLevel() int {
	if s == nil || !strings.HasPrefix(s.NamedStyleType, headingPrefix) {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimPrefix(s.NamedStyleType, headingPrefix))
	if err != nil || n < 1 || n > 6 {
		return 0
	}
	return n
}

// HeadingStyle returns the named style for heading level n.
func HeadingStyle(n int) string {
	return headingPrefix + strconv.Itoa(n)
}

// Bullet links a paragraph to a list definition.
type Bullet struct {
	ListID       string `json:"listId"`
	NestingLevel int    `json:"nestingLevel,omitempty"`
}

// List is a list definition keyed by list id in Document.Lists.
type List struct {
	ListProperties ListProperties `json:"listProperties"`
}

type ListProperties struct {
	NestingLevels []NestingLevel `json:"nestingLevels,omitempty"`
}

// NestingLevel describes the glyph used at one list depth.
type NestingLevel struct {
	GlyphType   string `json:"glyphType,omitempty"`
	GlyphSymbol string `json:"glyphSymbol,omitempty"`
}

// Glyph types relevant to checkbox detection.
const (
	GlyphCheckbox    = "CHECKBOX"
	GlyphUnspecified = "GLYPH_TYPE_UNSPECIFIED"
)

// IsCheckbox reports whether the glyph renders as a checkbox. Checklists are
// encoded either explicitly or as an unspecified glyph with no symbol.
func (n NestingLevel) IsCheckbox() bool {
	switch n.GlyphType {
	case GlyphCheckbox:
		return true
	case "", GlyphUnspecified:
		return n.GlyphSymbol == ""
	}
	return false
}

// Table is a grid of cells; each cell holds nested content.
type Table struct {
	TableRows []TableRow `json:"tableRows,omitempty"`
}

type TableRow struct {
	TableCells []TableCell `json:"tableCells,omitempty"`
}

type TableCell struct {
	Content []StructuralElement `json:"content,omitempty"`
}

// HeaderRegions returns header regions in sorted key order.
func (d *Document) HeaderRegions() []Region {
	return sortedRegions(d.Headers)
}

// FooterRegions returns footer regions in sorted key order.
func (d *Document) FooterRegions() []Region {
	return sortedRegions(d.Footers)
}

func sortedRegions(m map[string]Region) []Region {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Region, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

// Text builds a paragraph element list from plain strings, for importers.
func Text(s string, struck bool) ParagraphElement {
	run := &TextRun{Content: s}
	if struck {
		run.TextStyle = &TextStyle{Strikethrough: true}
	}
	return ParagraphElement{TextRun: run}
}

// NewParagraph returns a paragraph element with a single unstyled run.
func NewParagraph(s string) StructuralElement {
	return StructuralElement{Paragraph: &Paragraph{Elements: []ParagraphElement{Text(s, false)}}}
}

// NewHeading returns a heading paragraph element.
func NewHeading(level int, title, id string) StructuralElement {
	return StructuralElement{Paragraph: &Paragraph{
		Elements:       []ParagraphElement{Text(title, false)},
		ParagraphStyle: &ParagraphStyle{NamedStyleType: HeadingStyle(level), HeadingID: id},
	}}
}
