// Package scanner extracts headings, tasks and tags from a document tree.
package scanner

// Kind classifies an extracted item.
type Kind string

const (
	KindHeading     Kind = "heading"
	KindTask        Kind = "task"
	KindTag         Kind = "tag"
	KindCommentTask Kind = "comment_task"
)

// Item is one classified unit extracted from a document.
type Item struct {
	Kind      Kind   `json:"kind"`
	Text      string `json:"text"`
	SectionID string `json:"section_id"`
	Done      bool   `json:"done,omitempty"`
}

// IsTask reports whether the item belongs on the task dashboard.
func (it Item) IsTask() bool {
	return it.Kind == KindTask || it.Kind == KindCommentTask
}

// Section is the heading context items are attributed to. The zero value is
// the top-level section.
type Section struct {
	Title string `json:"title"`
	ID    string `json:"section_id"`
}

// Comment is a document comment as returned by the comment list.
type Comment struct {
	Content string        `json:"content"`
	Author  CommentAuthor `json:"author"`
}

type CommentAuthor struct {
	DisplayName string `json:"displayName"`
}

func (c Comment) Text() string       { return c.Content }
func (c Comment) AuthorName() string { return c.Author.DisplayName }
