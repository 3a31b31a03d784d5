// Package render wraps the goldmark markdown engine with the extensions and
// AST decoration the preview needs: source-line attributes for scroll sync,
// local image rewriting to the asset route, and document-link metadata.
package render

import (
	"bytes"
	"encoding/base64"
	"strconv"
	"strings"
	"sync"

	chromahtml "github.com/alecthomas/chroma/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extensionast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

const (
	// LineAttribute marks block elements with their zero-based source line.
	LineAttribute = "data-md-line"
	// AssetRoute is the URL prefix serving local files referenced by the document.
	AssetRoute = "/@asset/"
)

// Renderer converts markdown into decorated HTML fragments. Extenders
// arriving from activated plugin hooks are folded into the pipeline as they
// land; renders and registrations may interleave.
type Renderer struct {
	mu        sync.RWMutex
	md        goldmark.Markdown
	extenders []goldmark.Extender
}

// NewRenderer builds the engine with the base extension set.
func NewRenderer() *Renderer {
	r := &Renderer{}
	r.md = r.build()
	return r
}

// AddExtender folds a plugin-hook extender into the pipeline. May be called
// after rendering has begun; later conversions pick it up.
func (r *Renderer) AddExtender(ext goldmark.Extender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extenders = append(r.extenders, ext)
	r.md = r.build()
}

func (r *Renderer) build() goldmark.Markdown {
	exts := []goldmark.Extender{
		extension.GFM,
		extension.Table,
		extension.Strikethrough,
		extension.TaskList,
		extension.Linkify,
		highlighting.NewHighlighting(
			highlighting.WithWrapperRenderer(highlightWrapper),
			highlighting.WithFormatOptions(
				chromahtml.WithClasses(true),
			),
		),
	}
	exts = append(exts, r.extenders...)

	return goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
}

// Convert parses markdown and returns the decorated HTML fragment.
// sourcePath, when set, anchors relative image and link destinations.
func (r *Renderer) Convert(source []byte, sourcePath string) (string, error) {
	r.mu.RLock()
	md := r.md
	r.mu.RUnlock()

	doc := md.Parser().Parse(text.NewReader(source))
	annotateLines(doc, source)
	rewriteImages(doc, sourcePath)
	decorateLinks(doc, sourcePath)

	var buf bytes.Buffer
	if err := md.Renderer().Render(&buf, source, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// annotateLines attaches the source-line attribute to block-level elements.
func annotateLines(doc ast.Node, source []byte) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || !isAnnotatedKind(n) {
			return ast.WalkContinue, nil
		}
		if offset, ok := firstOffset(n); ok {
			n.SetAttributeString(LineAttribute, strconv.Itoa(lineAt(source, offset)))
		}
		return ast.WalkContinue, nil
	})
}

// isAnnotatedKind reports whether a node maps directly to source lines.
func isAnnotatedKind(n ast.Node) bool {
	switch n.Kind() {
	case ast.KindHeading,
		ast.KindParagraph,
		ast.KindBlockquote,
		ast.KindFencedCodeBlock,
		ast.KindList,
		ast.KindListItem,
		ast.KindThematicBreak,
		extensionast.KindTable:
		return true
	default:
		return false
	}
}

// firstOffset finds the byte offset of the first source line inside a node,
// recursing into children for container nodes like lists.
func firstOffset(n ast.Node) (int, bool) {
	if n == nil {
		return 0, false
	}
	if lines := n.Lines(); lines != nil && lines.Len() > 0 {
		return lines.At(0).Start, true
	}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if offset, ok := firstOffset(child); ok {
			return offset, true
		}
	}
	return 0, false
}

// lineAt converts a byte offset to a zero-based line number.
func lineAt(source []byte, offset int) int {
	if offset < 0 {
		offset = 0
	}
	if offset > len(source) {
		offset = len(source)
	}
	return bytes.Count(source[:offset], []byte{'\n'})
}

// AssetURL encodes an absolute local path into the asset route form.
func AssetURL(path string) string {
	return AssetRoute + base64.RawURLEncoding.EncodeToString([]byte(path))
}

// highlightWrapper wraps highlighted code blocks in a div carrying the
// source-line attribute, which the highlighting extension would otherwise
// drop from the replaced code element.
func highlightWrapper(w util.BufWriter, context highlighting.CodeBlockContext, entering bool) {
	line, ok := wrapperLine(context)
	if !ok {
		return
	}
	if entering {
		_, _ = w.WriteString(`<div ` + LineAttribute + `="`)
		_, _ = w.WriteString(line)
		_, _ = w.WriteString(`">`)
		return
	}
	_, _ = w.WriteString("</div>")
}

func wrapperLine(context highlighting.CodeBlockContext) (string, bool) {
	if context == nil {
		return "", false
	}
	attrs := context.Attributes()
	if attrs == nil {
		return "", false
	}
	v, ok := attrs.GetString(LineAttribute)
	if !ok {
		return "", false
	}
	switch typed := v.(type) {
	case string:
		return typed, typed != ""
	case []byte:
		return string(typed), len(typed) > 0
	default:
		return "", false
	}
}

// hasScheme reports whether a destination already names a protocol or a
// special browser form that must pass through untouched.
func hasScheme(dest string) bool {
	lower := strings.ToLower(dest)
	for _, prefix := range []string{
		"http://", "https://", "data:", "blob:", "file://", "mailto:", "//", "#",
	} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return strings.HasPrefix(lower, AssetRoute)
}
