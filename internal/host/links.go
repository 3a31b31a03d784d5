package host

import (
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/neovim/go-client/nvim"

	"nvim-markdown-preview/internal/contracts"
	"nvim-markdown-preview/internal/preview"
)

// handleDidClick is the Neovim-facing wrapper for preview double-clicks.
// args: target URI (preview or plain path), fractional zero-based line.
func (c *Coordinator) handleDidClick(v *nvim.Nvim, args []string) error {
	if len(args) < 2 {
		return nil
	}
	line, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		c.log.Warnf("didClick: bad line %q: %v", args[1], err)
		return nil
	}
	c.goToLine(c.editor(v), args[0], line)
	return nil
}

// goToLine jumps the editor to the clicked source line. The fractional
// part of line is display precision only and is dropped.
func (c *Coordinator) goToLine(ed Editor, target string, line float64) {
	source := target
	if strings.HasPrefix(target, preview.Scheme+"://") {
		resolved, err := preview.SourceFromURI(target)
		if err != nil {
			c.log.Warnf("goToLine: %v", err)
			return
		}
		source = resolved
	}

	active, err := ed.ActiveBufferPath()
	if err != nil {
		c.log.Warnf("goToLine: %v", err)
		return
	}
	if !samePath(active, source) {
		if err := ed.OpenDocument(source); err != nil {
			c.log.Warnf("goToLine: open %s: %v", source, err)
			return
		}
	}
	if err := ed.RevealLine(int(math.Floor(line))+1, RevealCenter); err != nil {
		c.log.Warnf("goToLine: reveal: %v", err)
	}
}

// handleOpenDocumentLink is the Neovim-facing wrapper for preview link
// clicks. args: path, optional fragment.
func (c *Coordinator) handleOpenDocumentLink(v *nvim.Nvim, args []string) error {
	if len(args) == 0 {
		return nil
	}
	link := contracts.DocumentLink{Path: args[0]}
	if len(args) > 1 {
		link.Fragment = args[1]
	}
	c.openDocumentLink(c.editor(v), link)
	return nil
}

// openDocumentLink follows a clicked document link. Links into the active
// document reveal the fragment in place. Other targets are opened in the
// editor, retrying with a .md suffix for extension-less paths and falling
// back to the generic opener as the last resort.
func (c *Coordinator) openDocumentLink(ed Editor, link contracts.DocumentLink) {
	if link.Path == "" {
		return
	}

	active, err := ed.ActiveBufferPath()
	if err == nil && samePath(active, link.Path) {
		ft, _ := ed.ActiveFiletype()
		if IsMarkdownFile(active, ft) {
			c.revealFragment(ed, link.Fragment)
			return
		}
	}

	if err := c.openWithFallback(ed, link.Path); err != nil {
		c.log.Debugf("open link %s: %v", link.Path, err)
		_ = ed.OpenExternal(link.Path)
		return
	}
	c.revealFragment(ed, link.Fragment)
}

// openWithFallback opens path in the editor. An extension-less path that
// does not exist is retried with .md appended before giving up.
func (c *Coordinator) openWithFallback(ed Editor, path string) error {
	err := ed.OpenDocument(path)
	if err == nil {
		return nil
	}
	if filepath.Ext(path) == "" {
		if retryErr := ed.OpenDocument(path + ".md"); retryErr == nil {
			return nil
		}
	}
	return err
}

// revealFragment scrolls an open markdown document to a heading anchor.
// Unresolvable fragments are a silent no-op.
func (c *Coordinator) revealFragment(ed Editor, fragment string) {
	if fragment == "" {
		return
	}
	source, err := ed.ActiveBufferSource()
	if err != nil {
		return
	}
	line, ok := c.resolveAnchor(source, fragment)
	if !ok {
		return
	}
	_ = ed.RevealLine(line+1, RevealTop)
}

// handleSecuritySelector shows the trust level picker. An optional preview
// URI argument selects the document; otherwise the active markdown
// document is used.
func (c *Coordinator) handleSecuritySelector(v *nvim.Nvim, args []string) error {
	ed := c.editor(v)

	var source string
	if len(args) > 0 && args[0] != "" {
		resolved, err := preview.SourceFromURI(args[0])
		if err != nil {
			c.log.Warnf("security selector: %v", err)
			return nil
		}
		source = resolved
	} else {
		path, ft, err := c.activeDocument(ed)
		if err != nil || !IsMarkdownFile(path, ft) {
			return nil
		}
		source = path
	}

	c.reporter.SendEvent("security.selector", nil)
	return c.selector.Show(source, ed.SelectFromList)
}

// handleStyleLoadError surfaces contributed stylesheets that failed to
// load. args: the failing resource identifiers.
func (c *Coordinator) handleStyleLoadError(v *nvim.Nvim, args []string) error {
	c.onStyleLoadError(c.editor(v), args)
	return nil
}

func (c *Coordinator) onStyleLoadError(ed Editor, resources []string) {
	if len(resources) == 0 {
		return
	}
	msg := "markdown preview: could not load 'markdown.previewStyles': " + strings.Join(resources, ", ")
	if err := ed.Warn(msg); err != nil {
		c.log.Warnf("style load warning: %v", err)
	}
}

// samePath compares two paths after cleaning. Case is significant; the
// preview identity round-trips paths byte for byte.
func samePath(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}
