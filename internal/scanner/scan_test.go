package scanner

import (
	"reflect"
	"testing"

	"github.com/FSlyne/gnote/internal/doctree"
)

func doc(content ...doctree.StructuralElement) *doctree.Document {
	return &doctree.Document{Body: &doctree.Body{Content: content}}
}

func TestScan_SectionAttribution(t *testing.T) {
	res := Scan(doc(
		text("[ ] before any heading"),
		heading("Intro", "h.1"),
		text("[x] first"),
		text("#alpha"),
		heading("Later", "h.2"),
		text("todo: second"),
	), nil)

	want := []Item{
		{Kind: KindTask, Text: "before any heading", SectionID: ""},
		{Kind: KindHeading, Text: "Intro", SectionID: "h.1"},
		{Kind: KindTask, Text: "first", SectionID: "h.1", Done: true},
		{Kind: KindTag, Text: "#alpha", SectionID: "h.1"},
		{Kind: KindHeading, Text: "Later", SectionID: "h.2"},
		{Kind: KindTask, Text: "second", SectionID: "h.2"},
	}
	if !reflect.DeepEqual(res.Items, want) {
		t.Errorf("unexpected items:\n got  %+v\n want %+v", res.Items, want)
	}
	if res.Recognized != 6 {
		t.Errorf("expected 6 recognized lines, got %d", res.Recognized)
	}
	if !res.Worthwhile() {
		t.Error("expected result to be worthwhile")
	}
}

func TestScan_TagLine(t *testing.T) {
	res := Scan(doc(text("Buy milk #errand #today")), nil)
	want := []Item{
		{Kind: KindTag, Text: "#errand"},
		{Kind: KindTag, Text: "#today"},
	}
	if !reflect.DeepEqual(res.Items, want) {
		t.Errorf("expected %+v, got %+v", want, res.Items)
	}
	// One recognized line even though it expands to two items.
	if res.Recognized != 1 {
		t.Errorf("expected 1 recognized line, got %d", res.Recognized)
	}
	if !reflect.DeepEqual(res.LocalTags, []string{"#errand", "#today"}) {
		t.Errorf("unexpected local tags %v", res.LocalTags)
	}
}

func TestScan_TaskWithTags(t *testing.T) {
	res := Scan(doc(text("[x] Buy milk #errand")), nil)
	want := []Item{{Kind: KindTask, Text: "Buy milk #errand", Done: true}}
	if !reflect.DeepEqual(res.Items, want) {
		t.Errorf("expected %+v, got %+v", want, res.Items)
	}
	if len(res.LocalTags) != 0 {
		t.Errorf("expected no local tags, got %v", res.LocalTags)
	}
}

func TestScan_NestedTable(t *testing.T) {
	nested := table([][]doctree.StructuralElement{{text("deep #nested")}})
	res := Scan(doc(
		heading("Plan", "h.plan"),
		table(
			[][]doctree.StructuralElement{{text("[ ] r1c1")}, {text("[ ] r1c2"), nested}},
			[][]doctree.StructuralElement{{text("[ ] r2c1")}, {text("[ ] r2c2")}},
		),
		text("[ ] after"),
	), nil)

	var order []string
	for _, it := range res.Items {
		order = append(order, it.Text)
		if it.SectionID != "h.plan" {
			t.Errorf("%q: expected section h.plan, got %q", it.Text, it.SectionID)
		}
	}
	want := []string{"Plan", "r1c1", "r1c2", "#nested", "r2c1", "r2c2", "after"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("expected order %v, got %v", want, order)
	}
}

func TestScan_HeadingInsideTableMovesCursor(t *testing.T) {
	res := Scan(doc(
		table([][]doctree.StructuralElement{{heading("Cell heading", "h.cell")}}),
		text("[ ] outside"),
	), nil)
	last := res.Items[len(res.Items)-1]
	if last.SectionID != "h.cell" {
		t.Errorf("expected cursor to persist after table, got %q", last.SectionID)
	}
}

func TestScan_MalformedNodesSkipped(t *testing.T) {
	res := Scan(doc(
		doctree.StructuralElement{},
		doctree.StructuralElement{Paragraph: &doctree.Paragraph{}, Table: &doctree.Table{}},
		doctree.StructuralElement{Table: &doctree.Table{TableRows: []doctree.TableRow{{}, {TableCells: []doctree.TableCell{{}}}}}},
		el(&doctree.Paragraph{Elements: []doctree.ParagraphElement{{}}}),
		text("[ ] survivor"),
	), nil)
	if len(res.Items) != 1 || res.Items[0].Text != "survivor" {
		t.Errorf("expected only the survivor task, got %+v", res.Items)
	}
}

func TestScan_EmptyTaskTextDropped(t *testing.T) {
	res := Scan(doc(text("[x]"), text("todo:   ")), nil)
	if len(res.Items) != 0 {
		t.Errorf("expected no items, got %+v", res.Items)
	}
	if res.Worthwhile() {
		t.Error("expected result not to be worthwhile")
	}
}

func TestScan_HeadersAndFootersInheritSection(t *testing.T) {
	d := doc(heading("Body end", "h.body"))
	d.Headers = map[string]doctree.Region{
		"kix.h2": {Content: []doctree.StructuralElement{text("[ ] header two")}},
		"kix.h1": {Content: []doctree.StructuralElement{text("[ ] header one")}},
	}
	d.Footers = map[string]doctree.Region{
		"kix.f1": {Content: []doctree.StructuralElement{text("#footer")}},
	}
	comments := []Comment{{Content: "TODO: review", Author: CommentAuthor{DisplayName: "Sam"}}}

	res := Scan(d, comments)
	want := []Item{
		{Kind: KindHeading, Text: "Body end", SectionID: "h.body"},
		{Kind: KindTask, Text: "header one", SectionID: "h.body"},
		{Kind: KindTask, Text: "header two", SectionID: "h.body"},
		{Kind: KindTag, Text: "#footer", SectionID: "h.body"},
		{Kind: KindCommentTask, Text: "review (Comment by Sam)"},
	}
	if !reflect.DeepEqual(res.Items, want) {
		t.Errorf("unexpected items:\n got  %+v\n want %+v", res.Items, want)
	}
	if res.Recognized != 4 {
		t.Errorf("expected comment tasks to be excluded from recognized, got %d", res.Recognized)
	}
}

func TestScan_NativeCheckboxDoneFromStrike(t *testing.T) {
	d := doc(el(&doctree.Paragraph{
		Elements: []doctree.ParagraphElement{doctree.Text("Finished chore\n", true)},
		Bullet:   &doctree.Bullet{ListID: "kix.1"},
	}))
	d.Lists = checklist("kix.1")
	res := Scan(d, nil)
	if len(res.Items) != 1 || !res.Items[0].Done || res.Items[0].Text != "Finished chore" {
		t.Errorf("expected one done task, got %+v", res.Items)
	}
}

func TestScan_NilDocument(t *testing.T) {
	res := Scan(nil, nil)
	if res.Items == nil || res.LocalTags == nil {
		t.Error("expected non-nil empty slices")
	}
	if len(res.Items) != 0 {
		t.Errorf("expected no items, got %d", len(res.Items))
	}
}

func TestResult_Tasks(t *testing.T) {
	res := Scan(doc(text("[ ] a"), text("#b"), heading("c", "")), []Comment{{Content: "todo: d"}})
	tasks := res.Tasks()
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[1].Text != "d (Comment by Unknown)" {
		t.Errorf("unexpected comment task text %q", tasks[1].Text)
	}
}
