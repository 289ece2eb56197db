package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/FSlyne/gnote/internal/doctree"
)

// CSVParser handles CSV files as a single table, one paragraph per cell.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := newDocument(filename)
	if len(records) == 0 {
		return doc, nil
	}

	table := &doctree.Table{}
	for _, record := range records {
		row := doctree.TableRow{}
		for _, cell := range record {
			row.TableCells = append(row.TableCells, doctree.TableCell{
				Content: []doctree.StructuralElement{doctree.NewParagraph(cell)},
			})
		}
		table.TableRows = append(table.TableRows, row)
	}
	doc.Body.Content = append(doc.Body.Content, doctree.StructuralElement{Table: table})
	return doc, nil
}
