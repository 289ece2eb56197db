package scanner

import (
	"sort"

	"github.com/FSlyne/gnote/internal/doctree"
)

// Result is the scan output for one document.
type Result struct {
	Items     []Item   `json:"items"`
	LocalTags []string `json:"local_tags"`

	// Recognized counts headings, tasks and tag-bearing lines (one per line).
	Recognized int `json:"recognized"`
}

// Worthwhile reports whether the document has anything to show.
func (r Result) Worthwhile() bool {
	return r.Recognized > 0
}

// Tasks returns the task and comment task items.
func (r Result) Tasks() []Item {
	var out []Item
	for _, it := range r.Items {
		if it.IsTask() {
			out = append(out, it)
		}
	}
	return out
}

// Scan walks the body, then every header, then every footer, and appends
// comment tasks last. The section cursor carries over from the body into
// header and footer passes.
func Scan(doc *doctree.Document, comments []Comment) Result {
	res := Result{Items: []Item{}, LocalTags: []string{}}
	if doc != nil {
		w := newWalker(doc.Lists)
		if doc.Body != nil {
			w.walk(doc.Body.Content)
		}
		for _, r := range doc.HeaderRegions() {
			w.walk(r.Content)
		}
		for _, r := range doc.FooterRegions() {
			w.walk(r.Content)
		}
		res.Items = append(res.Items, w.items...)
		res.Recognized = w.recognized
	}
	res.Items = append(res.Items, AnnotateComments(comments)...)
	res.LocalTags = LocalTags(res.Items)
	return res
}

// LocalTags returns the distinct tag texts in items, sorted.
func LocalTags(items []Item) []string {
	seen := make(map[string]struct{})
	for _, it := range items {
		if it.Kind == KindTag {
			seen[it.Text] = struct{}{}
		}
	}
	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}
