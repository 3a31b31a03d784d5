package host

import (
	"os"

	"nvim-markdown-preview/internal/config"
	"nvim-markdown-preview/internal/logger"
)

// fakeEditor is an in-memory Editor for handler tests.
type fakeEditor struct {
	path     string
	filetype string
	source   []byte

	// files that exist for OpenDocument; opening one makes it active.
	files map[string][]byte

	// buffers keyed by buffer number for BufferSource.
	buffers map[int][]byte

	opened   []string
	revealed []revealCall
	cursor   [2]int
	echoes   []string
	warns    []string
	external []string
	selected func(title string, items []string) (int, error)

	pathErr error
}

type revealCall struct {
	line int
	mode RevealMode
}

func newFakeEditor() *fakeEditor {
	return &fakeEditor{
		files:   make(map[string][]byte),
		buffers: make(map[int][]byte),
	}
}

func (e *fakeEditor) ActiveBufferPath() (string, error) {
	if e.pathErr != nil {
		return "", e.pathErr
	}
	return e.path, nil
}

func (e *fakeEditor) ActiveFiletype() (string, error) { return e.filetype, nil }

func (e *fakeEditor) ActiveBufferSource() ([]byte, error) { return e.source, nil }

func (e *fakeEditor) BufferSource(buffer int) ([]byte, error) {
	if content, ok := e.buffers[buffer]; ok {
		return content, nil
	}
	return e.source, nil
}

func (e *fakeEditor) OpenDocument(path string) error {
	content, ok := e.files[path]
	if !ok {
		return os.ErrNotExist
	}
	e.opened = append(e.opened, path)
	e.path = path
	e.filetype = ""
	e.source = content
	return nil
}

func (e *fakeEditor) RevealLine(line int, mode RevealMode) error {
	e.revealed = append(e.revealed, revealCall{line: line, mode: mode})
	return nil
}

func (e *fakeEditor) SetCursor(line, col int) error {
	e.cursor = [2]int{line, col}
	return nil
}

func (e *fakeEditor) Echo(msg string) error {
	e.echoes = append(e.echoes, msg)
	return nil
}

func (e *fakeEditor) Warn(msg string) error {
	e.warns = append(e.warns, msg)
	return nil
}

func (e *fakeEditor) SelectFromList(title string, items []string) (int, error) {
	if e.selected != nil {
		return e.selected(title, items)
	}
	return -1, nil
}

func (e *fakeEditor) OpenExternal(target string) error {
	e.external = append(e.external, target)
	return nil
}

// fakePublisher records provider calls.
type fakePublisher struct {
	refreshed  []string
	sources    [][]byte
	rerendered []string
	scrolled   []scrollCall
	reloads    int
	refreshErr error
}

type scrollCall struct {
	path string
	line int
}

func (p *fakePublisher) Refresh(sourcePath string, source []byte) error {
	p.refreshed = append(p.refreshed, sourcePath)
	p.sources = append(p.sources, source)
	return p.refreshErr
}

func (p *fakePublisher) Rerender(sourcePath string) {
	p.rerendered = append(p.rerendered, sourcePath)
}

func (p *fakePublisher) ScrollTo(sourcePath string, line int) {
	p.scrolled = append(p.scrolled, scrollCall{path: sourcePath, line: line})
}

func (p *fakePublisher) PreviewURLFor(sourcePath string) string {
	return "http://127.0.0.1:7788/preview/test"
}

func (p *fakePublisher) ReloadConfig() { p.reloads++ }

func newTestCoordinator(pub *fakePublisher) *Coordinator {
	c := newCoordinator(config.Default(), logger.New("test"))
	c.provider = pub
	return c
}
