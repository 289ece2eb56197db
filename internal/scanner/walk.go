package scanner

import "github.com/FSlyne/gnote/internal/doctree"

// walker owns the traversal state for one scan: the current section cursor,
// the items emitted so far and the recognized-line counter. It is never
// shared between scans.
type walker struct {
	lists      map[string]doctree.List
	section    Section
	items      []Item
	recognized int
}

func newWalker(lists map[string]doctree.List) *walker {
	return &walker{lists: lists}
}

// walk visits a content sequence depth first. Table cells are entered
// row-major before the next sibling element is visited.
func (w *walker) walk(content []doctree.StructuralElement) {
	for _, el := range content {
		switch el.Kind() {
		case doctree.KindParagraph:
			w.paragraph(el.Paragraph)
		case doctree.KindTable:
			w.table(el.Table)
		}
	}
}

func (w *walker) table(t *doctree.Table) {
	for _, row := range t.TableRows {
		for _, cell := range row.TableCells {
			w.walk(cell.Content)
		}
	}
}

func (w *walker) paragraph(p *doctree.Paragraph) {
	c := Classify(p, w.lists)
	switch c.Class {
	case ClassHeading:
		w.section = c.Section
		w.recognized++
		w.items = append(w.items, Item{Kind: KindHeading, Text: c.Section.Title, SectionID: c.Section.ID})
	case ClassTask:
		if c.Text == "" {
			return
		}
		w.recognized++
		w.items = append(w.items, Item{Kind: KindTask, Text: c.Text, SectionID: w.section.ID, Done: c.Done})
	case ClassTags:
		w.recognized++
		for _, tag := range c.Tags {
			w.items = append(w.items, Item{Kind: KindTag, Text: tag, SectionID: w.section.ID})
		}
	}
}
