// Package preview owns the preview surface: the identity mapping between
// source documents and their previews, and the HTTP/WebSocket server
// delivering rendered content to the browser.
package preview

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Scheme is the fixed URI scheme preview surfaces are registered under.
const Scheme = "markdown-preview"

var ErrNotPreviewURI = errors.New("preview: not a preview URI")

// ID derives the stable surface identifier for a source document. The same
// source always maps to the same preview.
func ID(sourcePath string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(sourcePath))
}

// SourceFromID inverts ID.
func SourceFromID(id string) (string, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(id)
	if err != nil {
		return "", fmt.Errorf("preview: bad surface id: %w", err)
	}
	return string(decoded), nil
}

// URI returns the full preview URI for a source document. The query
// component carries the source path so consumers can recover it without
// decoding the identifier.
func URI(sourcePath string) string {
	return Scheme + "://preview/" + ID(sourcePath) + "?source=" + url.QueryEscape(sourcePath)
}

// SourceFromURI recovers the source document path from a preview URI,
// preferring the query component and falling back to the encoded identifier.
func SourceFromURI(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("preview: %w", err)
	}
	if u.Scheme != Scheme {
		return "", ErrNotPreviewURI
	}

	if source := u.Query().Get("source"); source != "" {
		return source, nil
	}

	id := strings.TrimPrefix(strings.TrimPrefix(u.Path, "/"), "preview/")
	if id == "" {
		id = u.Host
	}
	return SourceFromID(id)
}
