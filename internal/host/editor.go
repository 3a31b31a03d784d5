package host

// RevealMode controls where a revealed line lands in the viewport.
type RevealMode int

const (
	// RevealCenter centers the line in the viewport.
	RevealCenter RevealMode = iota
	// RevealTop puts the line at the top of the viewport.
	RevealTop
)

// Editor is the slice of the editor surface the coordinator's handlers
// touch. The live implementation wraps the Neovim RPC connection; tests
// substitute a fake.
type Editor interface {
	// ActiveBufferPath returns the absolute path of the active buffer.
	ActiveBufferPath() (string, error)

	// ActiveFiletype returns the active buffer's filetype.
	ActiveFiletype() (string, error)

	// ActiveBufferSource returns the active buffer's full content.
	ActiveBufferSource() ([]byte, error)

	// BufferSource returns the full content of the numbered buffer, which
	// need not be the active one.
	BufferSource(buffer int) ([]byte, error)

	// OpenDocument opens the document at path in the current window and
	// fails when no such file exists.
	OpenDocument(path string) error

	// RevealLine moves the cursor to the start of a one-based line and
	// scrolls it into view. Moving the cursor collapses any selection.
	RevealLine(line int, mode RevealMode) error

	// SetCursor places the cursor at a one-based line and zero-based column.
	SetCursor(line, col int) error

	// Echo shows an informational message.
	Echo(msg string) error

	// Warn shows a non-blocking warning message.
	Warn(msg string) error

	// SelectFromList prompts the user to pick an item. Returns a negative
	// index when the user cancels.
	SelectFromList(title string, items []string) (int, error)

	// OpenExternal hands a resource to the host's generic opener.
	OpenExternal(target string) error
}
