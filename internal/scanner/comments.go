package scanner

import (
	"fmt"
	"regexp"
	"strings"
)

var commentTodo = regexp.MustCompile(`(?i)todo:`)

const unknownAuthor = "Unknown"

// AnnotateComments returns a comment task for every comment carrying a todo
// marker. Comments are not section scoped; other comments are ignored.
func AnnotateComments(comments []Comment) []Item {
	var items []Item
	for _, c := range comments {
		text := strings.TrimSpace(c.Text())
		if text == "" {
			continue
		}
		loc := commentTodo.FindStringIndex(text)
		if loc == nil {
			continue
		}
		body := strings.TrimSpace(strings.TrimSpace(text[:loc[0]]) + " " + strings.TrimSpace(text[loc[1]:]))
		if body == "" {
			continue
		}
		author := strings.TrimSpace(c.AuthorName())
		if author == "" {
			author = unknownAuthor
		}
		items = append(items, Item{
			Kind: KindCommentTask,
			Text: fmt.Sprintf("%s (Comment by %s)", body, author),
		})
	}
	return items
}
