package host

import (
	"path/filepath"
	"strings"
)

// markdownExtensions are the file extensions treated as markdown when the
// buffer carries no usable filetype.
var markdownExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".mdown":    true,
	".mkd":      true,
	".mdwn":     true,
}

// IsMarkdownFile reports whether a document should be handled by the
// preview. The filetype wins when set; the extension decides otherwise.
func IsMarkdownFile(path, filetype string) bool {
	if filetype == "markdown" {
		return true
	}
	if filetype != "" {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	return markdownExtensions[ext]
}
