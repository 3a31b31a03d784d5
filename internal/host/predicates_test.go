package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMarkdownFile(t *testing.T) {
	tests := []struct {
		path     string
		filetype string
		want     bool
	}{
		{"/home/user/doc.md", "markdown", true},
		{"/home/user/scratch", "markdown", true},
		{"/home/user/doc.md", "", true},
		{"/home/user/DOC.MD", "", true},
		{"/home/user/doc.markdown", "", true},
		{"/home/user/doc.mdown", "", true},
		{"/home/user/doc.mkd", "", true},
		{"/home/user/doc.mdwn", "", true},
		{"/home/user/doc.md", "yaml", false},
		{"/home/user/main.go", "go", false},
		{"/home/user/main.go", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsMarkdownFile(tt.path, tt.filetype), "path=%q filetype=%q", tt.path, tt.filetype)
	}
}
