package host

import (
	"fmt"
	"math"
	"strconv"

	"github.com/neovim/go-client/nvim"
	"github.com/neovim/go-client/nvim/plugin"

	"nvim-markdown-preview/internal/preview"
)

// Delegated command names. The preview page and other front ends address
// commands by these identifiers; the Neovim user commands map onto them.
const (
	cmdShowPreview       = "showPreview"
	cmdShowPreviewToSide = "showPreviewToSide"
	cmdShowSource        = "showSource"
	cmdRefresh           = "refresh"
	cmdRevealLine        = "revealLine"
	cmdMoveCursor        = "moveCursorToPosition"
)

// registerCommands fills the command manager and exposes each entry as a
// Neovim user command.
func (c *Coordinator) registerCommands(p *plugin.Plugin) error {
	entries := []struct {
		id      string
		nvimCmd string
		handler func(ed Editor, args []string) error
	}{
		{cmdShowPreview, "MarkdownPreview", c.showPreview},
		{cmdShowPreviewToSide, "MarkdownPreviewToSide", c.showPreviewToSide},
		{cmdShowSource, "MarkdownPreviewShowSource", c.showSource},
		{cmdRefresh, "MarkdownPreviewRefresh", c.refreshPreview},
		{cmdRevealLine, "MarkdownPreviewRevealLine", c.revealLine},
		{cmdMoveCursor, "MarkdownPreviewMoveCursor", c.moveCursorToPosition},
	}

	for _, entry := range entries {
		handler := entry.handler
		if err := c.commands.Register(entry.id, func(v *nvim.Nvim, args []string) error {
			return handler(c.editor(v), args)
		}); err != nil {
			return err
		}
		id := entry.id
		p.HandleCommand(&plugin.CommandOptions{Name: entry.nvimCmd, NArgs: "*"}, func(v *nvim.Nvim, args []string) error {
			return c.commands.Dispatch(id, v, args)
		})
	}
	return nil
}

func (c *Coordinator) showPreview(ed Editor, _ []string) error {
	return c.openPreview(ed, "tab")
}

func (c *Coordinator) showPreviewToSide(ed Editor, _ []string) error {
	return c.openPreview(ed, "side")
}

func (c *Coordinator) openPreview(ed Editor, placement string) error {
	path, ft, err := c.activeDocument(ed)
	if err != nil {
		return err
	}
	if !IsMarkdownFile(path, ft) {
		return ed.Echo("markdown preview: not a markdown document")
	}
	source, err := ed.ActiveBufferSource()
	if err != nil {
		return err
	}
	if err := c.provider.Refresh(path, source); err != nil {
		return err
	}
	url := c.provider.PreviewURLFor(path)
	if err := ed.OpenExternal(url); err != nil {
		c.log.Warnf("open preview %s: %v", url, err)
	}
	c.reporter.SendEvent("preview.show", map[string]string{"where": placement})
	return ed.Echo("markdown preview: " + url)
}

// showSource jumps from a preview back to its source document. With no
// argument it reports the active document instead.
func (c *Coordinator) showSource(ed Editor, args []string) error {
	if len(args) == 0 || args[0] == "" {
		path, _, err := c.activeDocument(ed)
		if err != nil {
			return err
		}
		return ed.Echo("markdown preview source: " + path)
	}
	source, err := preview.SourceFromURI(args[0])
	if err != nil {
		c.log.Warnf("show source: %v", err)
		return nil
	}
	if err := ed.OpenDocument(source); err != nil {
		return ed.Warn("markdown preview: cannot open " + source)
	}
	return nil
}

func (c *Coordinator) refreshPreview(ed Editor, _ []string) error {
	path, ft, err := c.activeDocument(ed)
	if err != nil {
		return err
	}
	if !IsMarkdownFile(path, ft) {
		return nil
	}
	source, err := ed.ActiveBufferSource()
	if err != nil {
		return err
	}
	return c.provider.Refresh(path, source)
}

// revealLine syncs the editor viewport to a preview scroll position. The
// argument is a zero-based, possibly fractional source line.
func (c *Coordinator) revealLine(ed Editor, args []string) error {
	if !c.cfg.ScrollPreviewToEditor() {
		return nil
	}
	if len(args) == 0 {
		return fmt.Errorf("revealLine: missing line argument")
	}
	line, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("revealLine: %w", err)
	}
	return ed.RevealLine(int(math.Floor(line))+1, RevealTop)
}

// moveCursorToPosition places the cursor at a zero-based line and column.
func (c *Coordinator) moveCursorToPosition(ed Editor, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("moveCursorToPosition: need line and column")
	}
	line, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("moveCursorToPosition: %w", err)
	}
	col, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("moveCursorToPosition: %w", err)
	}
	return ed.SetCursor(line+1, col)
}

func (c *Coordinator) activeDocument(ed Editor) (path, filetype string, err error) {
	path, err = ed.ActiveBufferPath()
	if err != nil {
		return "", "", err
	}
	filetype, err = ed.ActiveFiletype()
	if err != nil {
		return "", "", err
	}
	return path, filetype, nil
}
