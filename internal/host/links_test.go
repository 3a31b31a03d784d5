package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nvim-markdown-preview/internal/contracts"
	"nvim-markdown-preview/internal/preview"
)

func TestGoToLineInActiveDocument(t *testing.T) {
	c := newTestCoordinator(&fakePublisher{})
	ed := newFakeEditor()
	ed.path = "/home/user/doc.md"

	c.goToLine(ed, "/home/user/doc.md", 41.7)

	require.Len(t, ed.revealed, 1)
	assert.Equal(t, revealCall{line: 42, mode: RevealCenter}, ed.revealed[0])
	assert.Empty(t, ed.opened)
}

func TestGoToLineResolvesPreviewURI(t *testing.T) {
	c := newTestCoordinator(&fakePublisher{})
	ed := newFakeEditor()
	ed.path = "/home/user/doc.md"

	c.goToLine(ed, preview.URI("/home/user/doc.md"), 3.0)

	require.Len(t, ed.revealed, 1)
	assert.Equal(t, 4, ed.revealed[0].line)
}

func TestGoToLineOpensOtherDocument(t *testing.T) {
	c := newTestCoordinator(&fakePublisher{})
	ed := newFakeEditor()
	ed.path = "/home/user/doc.md"
	ed.files["/home/user/other.md"] = nil

	c.goToLine(ed, "/home/user/other.md", 0)

	assert.Equal(t, []string{"/home/user/other.md"}, ed.opened)
	require.Len(t, ed.revealed, 1)
	assert.Equal(t, 1, ed.revealed[0].line)
}

func TestGoToLineUnopenableTargetIsSwallowed(t *testing.T) {
	c := newTestCoordinator(&fakePublisher{})
	ed := newFakeEditor()
	ed.path = "/home/user/doc.md"

	c.goToLine(ed, "/home/user/missing.md", 5)

	assert.Empty(t, ed.revealed)
}

func TestOpenDocumentLinkFragmentInActiveDocument(t *testing.T) {
	c := newTestCoordinator(&fakePublisher{})
	ed := newFakeEditor()
	ed.path = "/home/user/doc.md"
	ed.filetype = "markdown"
	ed.source = []byte("# Top\n\ntext\n\n## Setup\n\nmore\n")

	c.openDocumentLink(ed, contracts.DocumentLink{Path: "/home/user/doc.md", Fragment: "setup"})

	require.Len(t, ed.revealed, 1)
	// Heading "## Setup" sits on zero-based line 4; reveal is one-based.
	assert.Equal(t, revealCall{line: 5, mode: RevealTop}, ed.revealed[0])
	assert.Empty(t, ed.opened)
}

func TestOpenDocumentLinkUnknownFragmentIsNoOp(t *testing.T) {
	c := newTestCoordinator(&fakePublisher{})
	ed := newFakeEditor()
	ed.path = "/home/user/doc.md"
	ed.filetype = "markdown"
	ed.source = []byte("# Top\n")

	c.openDocumentLink(ed, contracts.DocumentLink{Path: "/home/user/doc.md", Fragment: "missing-anchor"})

	assert.Empty(t, ed.revealed)
	assert.Empty(t, ed.warns)
}

func TestOpenDocumentLinkOpensTarget(t *testing.T) {
	c := newTestCoordinator(&fakePublisher{})
	ed := newFakeEditor()
	ed.path = "/home/user/doc.md"
	ed.files["/home/user/other.md"] = []byte("# Other\n\n## Part\n")

	c.openDocumentLink(ed, contracts.DocumentLink{Path: "/home/user/other.md", Fragment: "part"})

	assert.Equal(t, []string{"/home/user/other.md"}, ed.opened)
	require.Len(t, ed.revealed, 1)
	assert.Equal(t, 3, ed.revealed[0].line)
}

func TestOpenDocumentLinkRetriesWithMarkdownSuffix(t *testing.T) {
	c := newTestCoordinator(&fakePublisher{})
	ed := newFakeEditor()
	ed.path = "/home/user/doc.md"
	ed.files["/home/user/guide.md"] = nil

	c.openDocumentLink(ed, contracts.DocumentLink{Path: "/home/user/guide"})

	assert.Equal(t, []string{"/home/user/guide.md"}, ed.opened)
	assert.Empty(t, ed.external)
}

func TestOpenDocumentLinkNoRetryWhenExtensionPresent(t *testing.T) {
	c := newTestCoordinator(&fakePublisher{})
	ed := newFakeEditor()
	ed.path = "/home/user/doc.md"
	ed.files["/home/user/guide.txt.md"] = nil

	c.openDocumentLink(ed, contracts.DocumentLink{Path: "/home/user/guide.txt"})

	// The target has an extension, so the failure goes straight to the
	// generic opener.
	assert.Empty(t, ed.opened)
	assert.Equal(t, []string{"/home/user/guide.txt"}, ed.external)
}

func TestOpenDocumentLinkFallsBackToExternalOpener(t *testing.T) {
	c := newTestCoordinator(&fakePublisher{})
	ed := newFakeEditor()
	ed.path = "/home/user/doc.md"

	c.openDocumentLink(ed, contracts.DocumentLink{Path: "/home/user/absent"})

	assert.Empty(t, ed.opened)
	assert.Equal(t, []string{"/home/user/absent"}, ed.external)
}

func TestOpenDocumentLinkEmptyPath(t *testing.T) {
	c := newTestCoordinator(&fakePublisher{})
	ed := newFakeEditor()

	c.openDocumentLink(ed, contracts.DocumentLink{})

	assert.Empty(t, ed.opened)
	assert.Empty(t, ed.external)
}

func TestStyleLoadErrorWarnsOnce(t *testing.T) {
	c := newTestCoordinator(&fakePublisher{})
	ed := newFakeEditor()

	c.onStyleLoadError(ed, []string{"/opt/ext/a.css", "https://cdn.example.com/b.css"})

	require.Len(t, ed.warns, 1)
	assert.Contains(t, ed.warns[0], "markdown.previewStyles")
	assert.Contains(t, ed.warns[0], "/opt/ext/a.css, https://cdn.example.com/b.css")
}

func TestStyleLoadErrorEmptyList(t *testing.T) {
	c := newTestCoordinator(&fakePublisher{})
	ed := newFakeEditor()

	c.onStyleLoadError(ed, nil)
	assert.Empty(t, ed.warns)
}
