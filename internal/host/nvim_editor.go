package host

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/neovim/go-client/nvim"
)

// nvimEditor adapts a live Neovim connection to the Editor interface.
type nvimEditor struct {
	v *nvim.Nvim
}

// NewEditor wraps a Neovim connection.
func NewEditor(v *nvim.Nvim) Editor {
	return &nvimEditor{v: v}
}

func (e *nvimEditor) ActiveBufferPath() (string, error) {
	return e.v.BufferName(0)
}

func (e *nvimEditor) ActiveFiletype() (string, error) {
	var ft string
	if err := e.v.BufferOption(0, "filetype", &ft); err != nil {
		return "", err
	}
	return ft, nil
}

func (e *nvimEditor) ActiveBufferSource() ([]byte, error) {
	buf, err := e.v.CurrentBuffer()
	if err != nil {
		return nil, err
	}
	return e.bufferContent(buf)
}

func (e *nvimEditor) BufferSource(buffer int) ([]byte, error) {
	return e.bufferContent(nvim.Buffer(buffer))
}

func (e *nvimEditor) bufferContent(buf nvim.Buffer) ([]byte, error) {
	lines, err := e.v.BufferLines(buf, 0, -1, true)
	if err != nil {
		return nil, err
	}
	return bytes.Join(lines, []byte{'\n'}), nil
}

func (e *nvimEditor) OpenDocument(path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	escaped, err := e.escape(path)
	if err != nil {
		return err
	}
	return e.v.Command("edit " + escaped)
}

func (e *nvimEditor) RevealLine(line int, mode RevealMode) error {
	if line < 1 {
		line = 1
	}
	win, err := e.v.CurrentWindow()
	if err != nil {
		return err
	}
	if err := e.v.SetWindowCursor(win, [2]int{line, 0}); err != nil {
		return err
	}
	scroll := "normal! zz"
	if mode == RevealTop {
		scroll = "normal! zt"
	}
	return e.v.Command(scroll)
}

func (e *nvimEditor) SetCursor(line, col int) error {
	if line < 1 {
		line = 1
	}
	if col < 0 {
		col = 0
	}
	win, err := e.v.CurrentWindow()
	if err != nil {
		return err
	}
	return e.v.SetWindowCursor(win, [2]int{line, col})
}

func (e *nvimEditor) Echo(msg string) error {
	return e.v.Command(fmt.Sprintf("echomsg %q", msg))
}

func (e *nvimEditor) Warn(msg string) error {
	return e.v.Command(fmt.Sprintf("echohl WarningMsg | echomsg %q | echohl None", msg))
}

func (e *nvimEditor) SelectFromList(title string, items []string) (int, error) {
	prompt := make([]string, 0, len(items)+1)
	prompt = append(prompt, title)
	for i, item := range items {
		prompt = append(prompt, fmt.Sprintf("%d. %s", i+1, item))
	}
	var choice int
	if err := e.v.Call("inputlist", &choice, prompt); err != nil {
		return -1, err
	}
	// inputlist returns 0 when the prompt is dismissed.
	return choice - 1, nil
}

func (e *nvimEditor) OpenExternal(target string) error {
	opener := "xdg-open"
	if runtime.GOOS == "darwin" {
		opener = "open"
	}
	if _, err := exec.LookPath(opener); err != nil {
		return err
	}
	var jobID int
	return e.v.Call("jobstart", &jobID, []string{opener, target})
}

func (e *nvimEditor) escape(path string) (string, error) {
	var escaped string
	if err := e.v.Call("fnameescape", &escaped, path); err != nil {
		// Conservative fallback when the RPC call itself fails.
		return strings.ReplaceAll(path, " ", `\ `), nil
	}
	return escaped, nil
}
