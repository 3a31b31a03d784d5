package host

import (
	"github.com/neovim/go-client/nvim"
)

// bufferEvent carries the evaluated state of the buffer an autocmd fired
// for. That buffer is not necessarily the active one, e.g. during :wa.
type bufferEvent struct {
	Path     string `eval:"expand('<afile>:p')"`
	Filetype string `eval:"getbufvar(str2nr(expand('<abuf>')), '&filetype')"`
	Buffer   int    `eval:"str2nr(expand('<abuf>'))"`
}

// cursorEvent carries the active cursor position for selection events.
type cursorEvent struct {
	Path     string `eval:"expand('%:p')"`
	Filetype string `eval:"&filetype"`
	Line     int    `eval:"line('.')"`
}

func (c *Coordinator) onDocumentSaved(v *nvim.Nvim, ev *bufferEvent) {
	c.handleDocumentEvent(c.editor(v), ev.Path, ev.Filetype, ev.Buffer)
}

func (c *Coordinator) onDocumentChanged(v *nvim.Nvim, ev *bufferEvent) {
	c.handleDocumentEvent(c.editor(v), ev.Path, ev.Filetype, ev.Buffer)
}

// handleDocumentEvent republishes a markdown document after its content
// changed. One event produces at most one render. Content is read from the
// event buffer so the published source matches the event path even when the
// user has since focused another buffer.
func (c *Coordinator) handleDocumentEvent(ed Editor, path, filetype string, buffer int) {
	if !IsMarkdownFile(path, filetype) {
		return
	}
	source, err := ed.BufferSource(buffer)
	if err != nil {
		c.log.Warnf("document event %s: %v", path, err)
		return
	}
	if err := c.provider.Refresh(path, source); err != nil {
		c.log.Warnf("refresh %s: %v", path, err)
	}
}

func (c *Coordinator) onCursorMoved(v *nvim.Nvim, ev *cursorEvent) {
	c.handleSelectionChanged(ev.Path, ev.Filetype, ev.Line)
}

// handleSelectionChanged forwards the active line to the preview so it can
// track the editor viewport. Lines cross the wire zero-based.
func (c *Coordinator) handleSelectionChanged(path, filetype string, line int) {
	if !c.cfg.ScrollEditorToPreview() {
		return
	}
	if !IsMarkdownFile(path, filetype) {
		return
	}
	c.log.Debugf("selection changed: %s:%d", path, line)
	c.provider.ScrollTo(path, line-1)
}
