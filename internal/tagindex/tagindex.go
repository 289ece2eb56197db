// Package tagindex aggregates tags across documents into a tag -> documents map.
package tagindex

import (
	"sort"

	"github.com/FSlyne/gnote/internal/scanner"
)

// Index maps a tag (including its leading '#') to the set of document ids
// whose last synced items contain it. A document id appears under a tag iff
// at least one tag item with that text exists for that document.
type Index struct {
	tags map[string]map[string]struct{}
	docs map[string]map[string]struct{} // reverse: doc -> tags
}

func New() *Index {
	return &Index{
		tags: make(map[string]map[string]struct{}),
		docs: make(map[string]map[string]struct{}),
	}
}

// Build computes the index from the full corpus of docID -> synced items.
func Build(corpus map[string][]scanner.Item) *Index {
	idx := New()
	for docID, items := range corpus {
		idx.Replace(docID, items)
	}
	return idx
}

// Replace sets docID's tag membership to exactly the tags in items, dropping
// any tags the document no longer carries.
func (idx *Index) Replace(docID string, items []scanner.Item) {
	idx.Remove(docID)
	for _, it := range items {
		if it.Kind != scanner.KindTag || it.Text == "" {
			continue
		}
		set, ok := idx.tags[it.Text]
		if !ok {
			set = make(map[string]struct{})
			idx.tags[it.Text] = set
		}
		set[docID] = struct{}{}

		rev, ok := idx.docs[docID]
		if !ok {
			rev = make(map[string]struct{})
			idx.docs[docID] = rev
		}
		rev[it.Text] = struct{}{}
	}
}

// Remove drops every membership of docID.
func (idx *Index) Remove(docID string) {
	for tag := range idx.docs[docID] {
		set := idx.tags[tag]
		delete(set, docID)
		if len(set) == 0 {
			delete(idx.tags, tag)
		}
	}
	delete(idx.docs, docID)
}

// Tags returns all tags, sorted.
func (idx *Index) Tags() []string {
	return sortedKeys(idx.tags)
}

// Documents returns the documents carrying tag, sorted.
func (idx *Index) Documents(tag string) []string {
	return sortedSet(idx.tags[tag])
}

// TagsFor returns the tags carried by docID, sorted.
func (idx *Index) TagsFor(docID string) []string {
	return sortedSet(idx.docs[docID])
}

// Has reports whether docID carries tag.
func (idx *Index) Has(tag, docID string) bool {
	_, ok := idx.tags[tag][docID]
	return ok
}

// Len returns the number of distinct tags.
func (idx *Index) Len() int { return len(idx.tags) }

// Map returns a copy of the index as tag -> sorted document ids.
func (idx *Index) Map() map[string][]string {
	out := make(map[string][]string, len(idx.tags))
	for tag, set := range idx.tags {
		out[tag] = sortedSet(set)
	}
	return out
}

// Filter returns the documents carrying every one of tags. An empty tag list
// matches nothing.
func (idx *Index) Filter(tags ...string) []string {
	if len(tags) == 0 {
		return []string{}
	}
	var out []string
	for doc := range idx.tags[tags[0]] {
		all := true
		for _, t := range tags[1:] {
			if !idx.Has(t, doc) {
				all = false
				break
			}
		}
		if all {
			out = append(out, doc)
		}
	}
	sort.Strings(out)
	if out == nil {
		out = []string{}
	}
	return out
}

func sortedKeys(m map[string]map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
