package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nvim-markdown-preview/internal/preview"
)

func TestOpenPreviewPublishesAndOpensBrowser(t *testing.T) {
	pub := &fakePublisher{}
	c := newTestCoordinator(pub)
	ed := newFakeEditor()
	ed.path = "/home/user/doc.md"
	ed.filetype = "markdown"
	ed.source = []byte("# Doc\n")

	require.NoError(t, c.showPreview(ed, nil))

	assert.Equal(t, []string{"/home/user/doc.md"}, pub.refreshed)
	assert.Equal(t, []string{"http://127.0.0.1:7788/preview/test"}, ed.external)
	require.Len(t, ed.echoes, 1)
	assert.Contains(t, ed.echoes[0], "http://127.0.0.1:7788/preview/test")
}

func TestOpenPreviewRejectsNonMarkdown(t *testing.T) {
	pub := &fakePublisher{}
	c := newTestCoordinator(pub)
	ed := newFakeEditor()
	ed.path = "/home/user/main.go"
	ed.filetype = "go"

	require.NoError(t, c.showPreview(ed, nil))

	assert.Empty(t, pub.refreshed)
	assert.Empty(t, ed.external)
	require.Len(t, ed.echoes, 1)
	assert.Contains(t, ed.echoes[0], "not a markdown document")
}

func TestShowSourceWithPreviewURI(t *testing.T) {
	c := newTestCoordinator(&fakePublisher{})
	ed := newFakeEditor()
	ed.files["/home/user/doc.md"] = nil

	require.NoError(t, c.showSource(ed, []string{preview.URI("/home/user/doc.md")}))
	assert.Equal(t, []string{"/home/user/doc.md"}, ed.opened)
}

func TestShowSourceWithBadURI(t *testing.T) {
	c := newTestCoordinator(&fakePublisher{})
	ed := newFakeEditor()

	require.NoError(t, c.showSource(ed, []string{"https://example.com"}))
	assert.Empty(t, ed.opened)
}

func TestShowSourceWithoutArgumentReportsActive(t *testing.T) {
	c := newTestCoordinator(&fakePublisher{})
	ed := newFakeEditor()
	ed.path = "/home/user/doc.md"

	require.NoError(t, c.showSource(ed, nil))
	require.Len(t, ed.echoes, 1)
	assert.Contains(t, ed.echoes[0], "/home/user/doc.md")
}

func TestRefreshPreview(t *testing.T) {
	pub := &fakePublisher{}
	c := newTestCoordinator(pub)
	ed := newFakeEditor()
	ed.path = "/home/user/doc.md"
	ed.filetype = "markdown"
	ed.source = []byte("# Doc\n")

	require.NoError(t, c.refreshPreview(ed, nil))
	assert.Equal(t, []string{"/home/user/doc.md"}, pub.refreshed)

	ed.filetype = "go"
	ed.path = "/home/user/main.go"
	require.NoError(t, c.refreshPreview(ed, nil))
	assert.Len(t, pub.refreshed, 1)
}

func TestRevealLineFloorsFraction(t *testing.T) {
	c := newTestCoordinator(&fakePublisher{})
	ed := newFakeEditor()

	require.NoError(t, c.revealLine(ed, []string{"6.8"}))

	require.Len(t, ed.revealed, 1)
	assert.Equal(t, revealCall{line: 7, mode: RevealTop}, ed.revealed[0])
}

func TestRevealLineHonorsSyncToggle(t *testing.T) {
	c := newTestCoordinator(&fakePublisher{})
	c.cfg.SetScrollPreviewToEditor(false)
	ed := newFakeEditor()

	require.NoError(t, c.revealLine(ed, []string{"6.8"}))
	assert.Empty(t, ed.revealed)
}

func TestRevealLineBadArguments(t *testing.T) {
	c := newTestCoordinator(&fakePublisher{})
	ed := newFakeEditor()

	assert.Error(t, c.revealLine(ed, nil))
	assert.Error(t, c.revealLine(ed, []string{"eleven"}))
}

func TestMoveCursorToPosition(t *testing.T) {
	c := newTestCoordinator(&fakePublisher{})
	ed := newFakeEditor()

	require.NoError(t, c.moveCursorToPosition(ed, []string{"4", "2"}))
	assert.Equal(t, [2]int{5, 2}, ed.cursor)

	assert.Error(t, c.moveCursorToPosition(ed, []string{"4"}))
	assert.Error(t, c.moveCursorToPosition(ed, []string{"x", "y"}))
}
