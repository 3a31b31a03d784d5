package toc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doc = `# Title

intro text

## Getting Started

body

## Getting Started

duplicate heading

### API & Usage!
`

func TestEntries(t *testing.T) {
	entries := New([]byte(doc)).Entries()
	require.Len(t, entries, 4)

	assert.Equal(t, Entry{Slug: "title", Text: "Title", Level: 1, Line: 0}, entries[0])
	assert.Equal(t, Entry{Slug: "getting-started", Text: "Getting Started", Level: 2, Line: 4}, entries[1])
	assert.Equal(t, Entry{Slug: "getting-started-1", Text: "Getting Started", Level: 2, Line: 8}, entries[2])
	assert.Equal(t, "api--usage", entries[3].Slug)
	assert.Equal(t, 3, entries[3].Level)
}

func TestLookup(t *testing.T) {
	toc := New([]byte(doc))

	entry, ok := toc.Lookup("getting-started")
	require.True(t, ok)
	assert.Equal(t, 4, entry.Line)

	// Fragments are slugified before matching.
	entry, ok = toc.Lookup("Getting Started")
	require.True(t, ok)
	assert.Equal(t, 4, entry.Line)

	_, ok = toc.Lookup("no-such-heading")
	assert.False(t, ok)
}

func TestLookupEmptyDocument(t *testing.T) {
	_, ok := New(nil).Lookup("anything")
	assert.False(t, ok)
	assert.Empty(t, New(nil).Entries())
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"API & Usage!", "api--usage"},
		{"snake_case stays", "snake_case-stays"},
		{"Ünïcödé läuft", "ünïcödé-läuft"},
		{"  spaced  ", "spaced"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "input %q", tt.in)
	}
}
