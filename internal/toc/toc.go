// Package toc builds a table of contents for a markdown document and
// resolves heading anchors to source lines.
package toc

import (
	"bytes"
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Entry is one heading in the document. Line is zero-based.
type Entry struct {
	Slug  string
	Text  string
	Level int
	Line  int
}

// TableOfContents holds the headings of a single document in source order.
type TableOfContents struct {
	entries []Entry
}

var parser = goldmark.New(goldmark.WithExtensions(extension.GFM)).Parser()

// New parses the source and collects its headings.
func New(source []byte) *TableOfContents {
	doc := parser.Parse(text.NewReader(source))

	t := &TableOfContents{}
	used := make(map[string]int)

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		label := headingText(heading, source)
		slug := Slugify(label)
		if count := used[slug]; count > 0 {
			used[slug] = count + 1
			slug = slug + "-" + strconv.Itoa(count)
		} else {
			used[slug] = 1
		}

		line := 0
		if lines := heading.Lines(); lines.Len() > 0 {
			line = offsetToLine(source, lines.At(0).Start)
		}

		t.entries = append(t.entries, Entry{
			Slug:  slug,
			Text:  label,
			Level: heading.Level,
			Line:  line,
		})
		return ast.WalkSkipChildren, nil
	})

	return t
}

// Entries returns the headings in source order.
func (t *TableOfContents) Entries() []Entry { return t.entries }

// Lookup resolves a fragment to its heading. The fragment is slugified
// before comparison, so "My Heading", "my-heading" and "MY-HEADING" all
// resolve to the same entry.
func (t *TableOfContents) Lookup(fragment string) (Entry, bool) {
	want := Slugify(fragment)
	for _, e := range t.entries {
		if e.Slug == want {
			return e, true
		}
	}
	return Entry{}, false
}

// Slugify derives the anchor form of a heading: lowercase, spaces become
// hyphens, everything but letters, digits, hyphens and underscores dropped.
func Slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(strings.ToLower(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte('-')
		}
	}
	return b.String()
}

func headingText(n ast.Node, source []byte) string {
	var b bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// offsetToLine converts a byte offset to a zero-based line number.
func offsetToLine(source []byte, offset int) int {
	if offset < 0 {
		offset = 0
	}
	if offset > len(source) {
		offset = len(source)
	}
	return bytes.Count(source[:offset], []byte{'\n'})
}
