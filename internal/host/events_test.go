package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentEventRefreshesMarkdown(t *testing.T) {
	pub := &fakePublisher{}
	c := newTestCoordinator(pub)
	ed := newFakeEditor()
	ed.buffers[3] = []byte("# Doc\n")

	c.handleDocumentEvent(ed, "/home/user/doc.md", "markdown", 3)

	assert.Equal(t, []string{"/home/user/doc.md"}, pub.refreshed)
	require.Len(t, pub.sources, 1)
	assert.Equal(t, []byte("# Doc\n"), pub.sources[0])
}

func TestDocumentEventReadsEventBufferNotActive(t *testing.T) {
	pub := &fakePublisher{}
	c := newTestCoordinator(pub)
	ed := newFakeEditor()
	ed.path = "/home/user/active.md"
	ed.source = []byte("# ACTIVE BUFFER\n")
	ed.buffers[7] = []byte("# Background doc\n")

	c.handleDocumentEvent(ed, "/home/user/other.md", "markdown", 7)

	require.Equal(t, []string{"/home/user/other.md"}, pub.refreshed)
	require.Len(t, pub.sources, 1)
	assert.Equal(t, []byte("# Background doc\n"), pub.sources[0])
}

func TestDocumentEventIgnoresOtherFiletypes(t *testing.T) {
	pub := &fakePublisher{}
	c := newTestCoordinator(pub)
	ed := newFakeEditor()

	c.handleDocumentEvent(ed, "/home/user/main.go", "go", 1)
	c.handleDocumentEvent(ed, "/home/user/notes.txt", "", 2)

	assert.Empty(t, pub.refreshed)
}

func TestDocumentEventRefreshErrorIsSwallowed(t *testing.T) {
	pub := &fakePublisher{refreshErr: assert.AnError}
	c := newTestCoordinator(pub)
	ed := newFakeEditor()

	c.handleDocumentEvent(ed, "/home/user/doc.md", "markdown", 1)
	assert.Equal(t, []string{"/home/user/doc.md"}, pub.refreshed)
}

func TestSelectionChangedForwardsZeroBasedLine(t *testing.T) {
	pub := &fakePublisher{}
	c := newTestCoordinator(pub)

	c.handleSelectionChanged("/home/user/doc.md", "markdown", 12)

	require.Len(t, pub.scrolled, 1)
	assert.Equal(t, scrollCall{path: "/home/user/doc.md", line: 11}, pub.scrolled[0])
}

func TestSelectionChangedIgnoresOtherFiletypes(t *testing.T) {
	pub := &fakePublisher{}
	c := newTestCoordinator(pub)

	c.handleSelectionChanged("/home/user/main.go", "go", 12)
	assert.Empty(t, pub.scrolled)
}

func TestSelectionChangedHonorsSyncToggle(t *testing.T) {
	pub := &fakePublisher{}
	c := newTestCoordinator(pub)
	c.cfg.SetScrollEditorToPreview(false)

	c.handleSelectionChanged("/home/user/doc.md", "markdown", 12)
	assert.Empty(t, pub.scrolled)
}
