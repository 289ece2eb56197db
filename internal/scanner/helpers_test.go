package scanner

import "github.com/FSlyne/gnote/internal/doctree"

func para(text string) *doctree.Paragraph {
	return &doctree.Paragraph{Elements: []doctree.ParagraphElement{doctree.Text(text, false)}}
}

func el(p *doctree.Paragraph) doctree.StructuralElement {
	return doctree.StructuralElement{Paragraph: p}
}

func text(s string) doctree.StructuralElement { return doctree.NewParagraph(s) }

func heading(title, id string) doctree.StructuralElement {
	return doctree.NewHeading(1, title, id)
}

func table(rows ...[][]doctree.StructuralElement) doctree.StructuralElement {
	t := &doctree.Table{}
	for _, cells := range rows {
		var row doctree.TableRow
		for _, content := range cells {
			row.TableCells = append(row.TableCells, doctree.TableCell{Content: content})
		}
		t.TableRows = append(t.TableRows, row)
	}
	return doctree.StructuralElement{Table: t}
}

func checklist(id string) map[string]doctree.List {
	return map[string]doctree.List{
		id: {ListProperties: doctree.ListProperties{NestingLevels: []doctree.NestingLevel{
			{GlyphType: doctree.GlyphCheckbox},
			{GlyphType: doctree.GlyphUnspecified},
		}}},
	}
}
