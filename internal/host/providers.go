package host

import (
	"github.com/neovim/go-client/nvim"

	"nvim-markdown-preview/internal/render"
	"nvim-markdown-preview/internal/toc"
)

// DocumentSymbol is one heading of the active document, msgpack-shaped for
// consumption from Vimscript or Lua.
type DocumentSymbol struct {
	Name  string `msgpack:"name"`
	Level int    `msgpack:"level"`
	Line  int    `msgpack:"line"`
	Slug  string `msgpack:"slug"`
}

// documentSymbols returns the heading outline of the active markdown
// document. Non-markdown buffers yield an empty list.
func (c *Coordinator) documentSymbols(v *nvim.Nvim) ([]DocumentSymbol, error) {
	ed := c.editor(v)
	path, ft, err := c.activeDocument(ed)
	if err != nil {
		return nil, err
	}
	if !IsMarkdownFile(path, ft) {
		return []DocumentSymbol{}, nil
	}
	source, err := ed.ActiveBufferSource()
	if err != nil {
		return nil, err
	}

	entries := toc.New(source).Entries()
	symbols := make([]DocumentSymbol, 0, len(entries))
	for _, e := range entries {
		symbols = append(symbols, DocumentSymbol{
			Name:  e.Text,
			Level: e.Level,
			Line:  e.Line,
			Slug:  e.Slug,
		})
	}
	return symbols, nil
}

// documentLinks returns the local links of the active markdown document.
func (c *Coordinator) documentLinks(v *nvim.Nvim) ([]render.Link, error) {
	ed := c.editor(v)
	path, ft, err := c.activeDocument(ed)
	if err != nil {
		return nil, err
	}
	if !IsMarkdownFile(path, ft) {
		return []render.Link{}, nil
	}
	source, err := ed.ActiveBufferSource()
	if err != nil {
		return nil, err
	}
	return c.renderer.ExtractLinks(source, path), nil
}
