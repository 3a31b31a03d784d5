// Package contracts defines the message types exchanged between the editor
// host, the preview server, and the browser page.
package contracts

const (
	// MessageTypeRender replaces the preview content with rendered HTML.
	MessageTypeRender = "render"
	// MessageTypeScroll synchronizes the preview scroll position to a source line.
	MessageTypeScroll = "scroll"
	// MessageTypeGoToLine asks the editor to move its cursor to a source line.
	MessageTypeGoToLine = "go_to_line"
	// MessageTypeOpenLink asks the editor to open a linked document.
	MessageTypeOpenLink = "open_link"
	// MessageTypeStyleError reports contributed stylesheets that failed to load.
	MessageTypeStyleError = "style_error"
)

// IncomingMessage is the minimal envelope used to route browser messages.
type IncomingMessage struct {
	Type string `json:"type"`
}

// RenderMessage carries rendered HTML and revision metadata to the browser.
type RenderMessage struct {
	Type     string `json:"type"`
	HTML     string `json:"html"`
	Filename string `json:"filename"`
	Rev      uint64 `json:"rev"`
}

// ScrollMessage asks the browser to bring a source line into view.
// Line is zero-based, matching the editor's selection reporting.
type ScrollMessage struct {
	Type string `json:"type"`
	Line int    `json:"line"`
	Rev  uint64 `json:"rev"`
}

// GoToLineMessage requests a cursor jump in the editor. The line is
// fractional: the browser interpolates between annotated block elements and
// the editor rounds down.
type GoToLineMessage struct {
	Type string  `json:"type"`
	Line float64 `json:"line"`
}

// DocumentLink identifies a link target inside or between documents.
// Fragment is an optional in-document heading anchor.
type DocumentLink struct {
	Path     string `json:"path"`
	Fragment string `json:"fragment"`
}

// OpenLinkMessage asks the editor to navigate to a linked document.
type OpenLinkMessage struct {
	Type string `json:"type"`
	DocumentLink
}

// StyleErrorMessage lists contributed style resources the browser could not load.
type StyleErrorMessage struct {
	Type      string   `json:"type"`
	Resources []string `json:"resources"`
}
