package parser

import (
	"strings"
	"testing"

	"github.com/FSlyne/gnote/internal/scanner"
)

func TestHTMLParser_Structure(t *testing.T) {
	input := `<html><head><title>Weekly</title></head><body>
<header><p>[ ] header task</p></header>
<h1>Plan</h1>
<ul>
  <li><input type="checkbox" checked> Ship release</li>
  <li><input type="checkbox"> Write notes #docs</li>
</ul>
<table>
  <tbody>
    <tr><td>#cell-one</td><td><p>todo: nested <s>struck</s></p></td></tr>
  </tbody>
</table>
<script>var x = "#nope";</script>
<footer><p>#footer-tag</p></footer>
</body></html>`

	p := &HTMLParser{}
	doc, err := p.Parse(strings.NewReader(input), "weekly.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "Weekly" {
		t.Errorf("expected title %q, got %q", "Weekly", doc.Title)
	}
	if len(doc.Headers) != 1 || len(doc.Footers) != 1 {
		t.Fatalf("expected one header and one footer, got %d and %d", len(doc.Headers), len(doc.Footers))
	}

	res := scanner.Scan(doc, nil)
	want := []scanner.Item{
		{Kind: scanner.KindHeading, Text: "Plan", SectionID: "h.plan"},
		{Kind: scanner.KindTask, Text: "Ship release", SectionID: "h.plan", Done: true},
		{Kind: scanner.KindTask, Text: "Write notes #docs", SectionID: "h.plan"},
		{Kind: scanner.KindTag, Text: "#cell-one", SectionID: "h.plan"},
		{Kind: scanner.KindTask, Text: "nested struck", SectionID: "h.plan"},
		{Kind: scanner.KindTask, Text: "header task", SectionID: "h.plan"},
		{Kind: scanner.KindTag, Text: "#footer-tag", SectionID: "h.plan"},
	}
	if len(res.Items) != len(want) {
		t.Fatalf("expected %d items, got %d: %+v", len(want), len(res.Items), res.Items)
	}
	for i := range want {
		if res.Items[i] != want[i] {
			t.Errorf("item[%d]: expected %+v, got %+v", i, want[i], res.Items[i])
		}
	}
}

func TestHTMLParser_NoBody(t *testing.T) {
	p := &HTMLParser{}
	doc, err := p.Parse(strings.NewReader("plain words #tag"), "frag.htm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res := scanner.Scan(doc, nil)
	if len(res.Items) != 1 || res.Items[0].Text != "#tag" {
		t.Errorf("expected one tag item, got %+v", res.Items)
	}
}
