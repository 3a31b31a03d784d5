package render

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Link is a document link discovered in a markdown source. Line is the
// zero-based source line of the enclosing block.
type Link struct {
	Path     string `msgpack:"path"`
	Fragment string `msgpack:"fragment"`
	Line     int    `msgpack:"line"`
}

// rewriteImages redirects local image destinations through the asset route
// so the browser can load files from the user's disk.
func rewriteImages(doc ast.Node, sourcePath string) {
	baseDir := ""
	if sourcePath != "" {
		baseDir = filepath.Dir(sourcePath)
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		img, ok := n.(*ast.Image)
		if !ok {
			return ast.WalkContinue, nil
		}

		dest := strings.TrimSpace(string(img.Destination))
		if dest == "" || hasScheme(dest) {
			return ast.WalkContinue, nil
		}

		resolved, ok := resolveLocal(baseDir, dest)
		if !ok {
			return ast.WalkContinue, nil
		}
		img.Destination = []byte(AssetURL(resolved))
		img.SetAttributeString("loading", "lazy")
		img.SetAttributeString("decoding", "async")
		return ast.WalkContinue, nil
	})
}

// decorateLinks tags links to local documents with path and fragment
// attributes. The preview page intercepts clicks on tagged links and routes
// them back to the editor instead of navigating.
func decorateLinks(doc ast.Node, sourcePath string) {
	baseDir := ""
	if sourcePath != "" {
		baseDir = filepath.Dir(sourcePath)
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}

		path, fragment, ok := splitLocalDest(baseDir, string(link.Destination))
		if !ok {
			return ast.WalkContinue, nil
		}
		link.SetAttributeString("data-link-path", path)
		link.SetAttributeString("data-link-fragment", fragment)
		return ast.WalkContinue, nil
	})
}

// ExtractLinks parses the source and returns every local document link with
// its source line. This backs the document-link provider surface.
func (r *Renderer) ExtractLinks(source []byte, sourcePath string) []Link {
	r.mu.RLock()
	md := r.md
	r.mu.RUnlock()

	doc := md.Parser().Parse(text.NewReader(source))
	annotateLines(doc, source)

	baseDir := ""
	if sourcePath != "" {
		baseDir = filepath.Dir(sourcePath)
	}

	var links []Link
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		path, fragment, ok := splitLocalDest(baseDir, string(link.Destination))
		if !ok {
			return ast.WalkContinue, nil
		}
		links = append(links, Link{
			Path:     path,
			Fragment: fragment,
			Line:     nearestLine(link),
		})
		return ast.WalkContinue, nil
	})
	return links
}

// splitLocalDest splits a link destination into a resolved local path and an
// optional fragment. Destinations with a scheme and pure in-page anchors are
// not local document links.
func splitLocalDest(baseDir, dest string) (path, fragment string, ok bool) {
	dest = strings.TrimSpace(dest)
	if dest == "" || hasScheme(dest) {
		return "", "", false
	}

	if i := strings.IndexByte(dest, '#'); i >= 0 {
		fragment = dest[i+1:]
		dest = dest[:i]
	}
	if dest == "" {
		return "", "", false
	}

	resolved, ok := resolveLocal(baseDir, dest)
	if !ok {
		return "", "", false
	}
	return resolved, fragment, true
}

// resolveLocal turns a bare destination into an absolute path when enough
// context exists.
func resolveLocal(baseDir, dest string) (string, bool) {
	if filepath.IsAbs(dest) {
		return filepath.Clean(dest), true
	}
	if baseDir == "" {
		return "", false
	}
	return filepath.Clean(filepath.Join(baseDir, dest)), true
}

// nearestLine walks up from a node to the closest annotated ancestor.
func nearestLine(n ast.Node) int {
	for cur := n; cur != nil; cur = cur.Parent() {
		if v, ok := cur.AttributeString(LineAttribute); ok {
			switch typed := v.(type) {
			case string:
				if line, err := strconv.Atoi(typed); err == nil {
					return line
				}
			case []byte:
				if line, err := strconv.Atoi(string(typed)); err == nil {
					return line
				}
			}
		}
	}
	return 0
}
