package scanner

import (
	"regexp"
	"strings"

	"github.com/FSlyne/gnote/internal/doctree"
)

// Class is the outcome category of classifying one paragraph.
type Class int

const (
	ClassNone Class = iota
	ClassHeading
	ClassTask
	ClassTags
)

func (c Class) String() string {
	switch c {
	case ClassHeading:
		return "heading"
	case ClassTask:
		return "task"
	case ClassTags:
		return "tags"
	}
	return "none"
}

// Classification is the result of Classify. Only the fields relevant to
// Class are set.
type Classification struct {
	Class   Class
	Section Section  // ClassHeading
	Text    string   // ClassTask
	Done    bool     // ClassTask
	Tags    []string // ClassTags
	Rule    string   // name of the rule that matched
}

var (
	checkedBracket = regexp.MustCompile(`^\[\s*[xX]\s*\]`)
	emptyBracket   = regexp.MustCompile(`^\[\s*\]`)
	todoPrefix     = regexp.MustCompile(`(?i)^todo:`)
	tagToken       = regexp.MustCompile(`#[A-Za-z0-9_-]+`)
)

// paragraphText is the flattened view of a paragraph the rules inspect.
type paragraphText struct {
	text   string
	struck bool
	para   *doctree.Paragraph
	lists  map[string]doctree.List
}

// Rule is one step of the classification chain.
type Rule struct {
	Name  string
	Match func(pt *paragraphText) (Classification, bool)
}

// Rules is the ordered classification chain. The first matching rule wins:
// explicit bracket and todo conventions take precedence over native
// checkboxes, and tag extraction only applies to lines that are not tasks.
var Rules = []Rule{
	{Name: "heading", Match: matchHeading},
	{Name: "checked-bracket", Match: matchPrefix(checkedBracket, true)},
	{Name: "empty-bracket", Match: matchPrefix(emptyBracket, false)},
	{Name: "todo-prefix", Match: matchPrefix(todoPrefix, false)},
	{Name: "native-checkbox", Match: matchNativeCheckbox},
	{Name: "tags", Match: matchTags},
}

// Classify decides what a paragraph represents. lists is the document's
// list lookup used to resolve native checkbox glyphs; it may be nil.
func Classify(p *doctree.Paragraph, lists map[string]doctree.List) Classification {
	if p == nil {
		return Classification{}
	}
	pt := flatten(p, lists)
	if pt.text == "" {
		return Classification{}
	}
	for _, r := range Rules {
		if c, ok := r.Match(pt); ok {
			c.Rule = r.Name
			return c
		}
	}
	return Classification{}
}

func flatten(p *doctree.Paragraph, lists map[string]doctree.List) *paragraphText {
	var buf strings.Builder
	struck := false
	for _, el := range p.Elements {
		if el.TextRun == nil {
			continue
		}
		buf.WriteString(el.TextRun.Content)
		if el.TextRun.Struck() {
			struck = true
		}
	}
	return &paragraphText{
		text:   strings.TrimSpace(buf.String()),
		struck: struck,
		para:   p,
		lists:  lists,
	}
}

func matchHeading(pt *paragraphText) (Classification, bool) {
	style := pt.para.ParagraphStyle
	if style.HeadingLevel() == 0 {
		return Classification{}, false
	}
	return Classification{
		Class:   ClassHeading,
		Section: Section{Title: pt.text, ID: style.HeadingID},
	}, true
}

func matchPrefix(re *regexp.Regexp, done bool) func(*paragraphText) (Classification, bool) {
	return func(pt *paragraphText) (Classification, bool) {
		loc := re.FindStringIndex(pt.text)
		if loc == nil {
			return Classification{}, false
		}
		return Classification{
			Class: ClassTask,
			Text:  strings.TrimSpace(pt.text[loc[1]:]),
			Done:  done,
		}, true
	}
}

func matchNativeCheckbox(pt *paragraphText) (Classification, bool) {
	if !isNativeCheckbox(pt.para.Bullet, pt.lists) {
		return Classification{}, false
	}
	return Classification{Class: ClassTask, Text: pt.text, Done: pt.struck}, true
}

func isNativeCheckbox(b *doctree.Bullet, lists map[string]doctree.List) bool {
	if b == nil || b.ListID == "" {
		return false
	}
	list, ok := lists[b.ListID]
	if !ok {
		return false
	}
	levels := list.ListProperties.NestingLevels
	if b.NestingLevel < 0 || b.NestingLevel >= len(levels) {
		return false
	}
	return levels[b.NestingLevel].IsCheckbox()
}

func matchTags(pt *paragraphText) (Classification, bool) {
	tags := tagToken.FindAllString(pt.text, -1)
	if len(tags) == 0 {
		return Classification{}, false
	}
	return Classification{Class: ClassTags, Tags: tags}, true
}
