package preview

import (
	"context"
	"crypto/rand"
	"embed"
	"encoding/base64"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"nvim-markdown-preview/internal/contracts"
	"nvim-markdown-preview/internal/logger"
	"nvim-markdown-preview/internal/render"
)

//go:embed page.html
var pageFS embed.FS

// Policy resolves the security posture of a preview: the CSP meta content
// (empty disables the policy, nonce authorizes the page bootstrap script)
// and whether contributed scripts are injected.
type Policy func(sourcePath, nonce string) (csp string, allowScripts bool)

type renderUpdate struct {
	id       string
	html     string
	filename string
}

type scrollUpdate struct {
	id   string
	line int
}

type clientConn struct {
	id   string
	conn *websocket.Conn
}

type clientRaw struct {
	id  string
	raw []byte
}

// Server delivers rendered previews to the browser. Each preview surface is
// addressed by its derived identifier; one browser connection per surface,
// the newest connection wins. A single run loop serializes all surface
// state and socket writes.
type Server struct {
	addr   string
	shell  string
	policy Policy
	log    *logger.Logger

	mu      sync.Mutex
	styles  []string
	scripts []string

	started bool
	server  *http.Server

	onGoToLine   func(sourcePath string, line float64)
	onOpenLink   func(sourcePath string, link contracts.DocumentLink)
	onStyleError func(resources []string)

	updates    chan renderUpdate
	scrolls    chan scrollUpdate
	register   chan clientConn
	unregister chan clientConn
	inbound    chan clientRaw
	stopLoop   chan struct{}

	upgrader websocket.Upgrader
}

// NewServer creates a preview server bound to addr. policy gates what each
// surface's page may load.
func NewServer(addr string, policy Policy, log *logger.Logger) *Server {
	shell, err := pageFS.ReadFile("page.html")
	if err != nil {
		panic(err)
	}

	return &Server{
		addr:   addr,
		shell:  string(shell),
		policy: policy,
		log:    log.WithField("component", "preview"),

		updates:    make(chan renderUpdate, 8),
		scrolls:    make(chan scrollUpdate, 32),
		register:   make(chan clientConn),
		unregister: make(chan clientConn),
		inbound:    make(chan clientRaw, 64),
		stopLoop:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// SetGoToLineHandler registers the callback for browser cursor-jump requests.
func (s *Server) SetGoToLineHandler(fn func(sourcePath string, line float64)) {
	s.onGoToLine = fn
}

// SetOpenLinkHandler registers the callback for document-link clicks.
func (s *Server) SetOpenLinkHandler(fn func(sourcePath string, link contracts.DocumentLink)) {
	s.onOpenLink = fn
}

// SetStyleErrorHandler registers the callback for failed style resources.
func (s *Server) SetStyleErrorHandler(fn func(resources []string)) {
	s.onStyleError = fn
}

// RegisterStylesheet adds a contributed stylesheet to every preview page.
func (s *Server) RegisterStylesheet(resource string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.styles = append(s.styles, resource)
}

// RegisterScript adds a contributed script, injected only where the policy
// allows scripts.
func (s *Server) RegisterScript(resource string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts = append(s.scripts, resource)
}

// URL returns the server's base browser URL.
func (s *Server) URL() string {
	return "http://" + s.addr
}

// SurfaceURL returns the browser URL of one preview surface.
func (s *Server) SurfaceURL(id string) string {
	return s.URL() + "/preview/" + id
}

// Start binds the listener and begins serving. The bind happens
// synchronously so registration failures surface to the caller.
func (s *Server) Start() error {
	if s.started {
		return nil
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/preview/", s.handleShell)
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc(render.AssetRoute, s.handleAsset)

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.addr = ln.Addr().String()
	s.server = &http.Server{Handler: mux}
	s.started = true

	go s.runLoop()
	go func() {
		_ = s.server.Serve(ln)
	}()
	return nil
}

// Update publishes new HTML for one preview surface.
func (s *Server) Update(id, html, filename string) {
	if !s.started {
		return
	}
	s.updates <- renderUpdate{id: id, html: html, filename: filename}
}

// Scroll brings a source line into view on one preview surface.
func (s *Server) Scroll(id string, line int) {
	if !s.started {
		return
	}
	select {
	case s.scrolls <- scrollUpdate{id: id, line: line}:
	default:
	}
}

// Stop shuts down the HTTP server and the run loop.
func (s *Server) Stop() error {
	if !s.started || s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := s.server.Shutdown(ctx)
	close(s.stopLoop)

	s.started = false
	s.server = nil
	return err
}

// handleShell serves the HTML shell for one preview surface.
func (s *Server) handleShell(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/preview/")
	sourcePath, err := SourceFromID(id)
	if err != nil || sourcePath == "" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(s.buildShell(id, sourcePath)))
}

// buildShell fills the page template for one surface: security policy meta,
// contributed styles, and contributed scripts where the policy allows them.
func (s *Server) buildShell(id, sourcePath string) string {
	nonce := newNonce()
	csp, allowScripts := "", false
	if s.policy != nil {
		csp, allowScripts = s.policy(sourcePath, nonce)
	}

	meta := ""
	if csp != "" {
		meta = `<meta http-equiv="Content-Security-Policy" content="` + csp + `">`
	}

	s.mu.Lock()
	styles := make([]string, len(s.styles))
	copy(styles, s.styles)
	scripts := make([]string, len(s.scripts))
	copy(scripts, s.scripts)
	s.mu.Unlock()

	var styleTags strings.Builder
	for _, res := range styles {
		styleTags.WriteString(`<link rel="stylesheet" class="markdown-contributed-style" href="`)
		styleTags.WriteString(resourceHref(res))
		styleTags.WriteString("\">\n")
	}

	var scriptTags strings.Builder
	if allowScripts {
		for _, res := range scripts {
			scriptTags.WriteString(`<script src="`)
			scriptTags.WriteString(resourceHref(res))
			scriptTags.WriteString("\"></script>\n")
		}
	}

	page := s.shell
	page = strings.Replace(page, "{{CSP}}", meta, 1)
	page = strings.Replace(page, "{{TITLE}}", filepath.Base(sourcePath), 1)
	page = strings.Replace(page, "{{PREVIEW_ID}}", id, 1)
	page = strings.Replace(page, "{{STYLES}}", styleTags.String(), 1)
	page = strings.Replace(page, "{{SCRIPTS}}", scriptTags.String(), 1)
	page = strings.Replace(page, "{{NONCE}}", nonce, 1)
	return page
}

// newNonce returns a fresh CSP nonce for one shell response.
func newNonce() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return base64.RawStdEncoding.EncodeToString(buf)
}

// resourceHref maps a registered resource to something the page can fetch:
// remote URLs as-is, local paths through the asset route.
func resourceHref(resource string) string {
	if strings.Contains(resource, "://") {
		return resource
	}
	return render.AssetURL(resource)
}

// handleWS upgrades a surface connection and pumps browser messages into
// the run loop.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("preview")
	if id == "" {
		http.Error(w, "missing preview id", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	select {
	case s.register <- clientConn{id: id, conn: conn}:
	case <-s.stopLoop:
		conn.Close()
		return
	}
	defer func() {
		select {
		case s.unregister <- clientConn{id: id, conn: conn}:
		case <-s.stopLoop:
			conn.Close()
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		select {
		case s.inbound <- clientRaw{id: id, raw: msg}:
		case <-s.stopLoop:
			return
		}
	}
}

// handleAsset serves local files referenced by documents via encoded
// absolute paths.
func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, render.AssetRoute)
	if id == "" {
		http.NotFound(w, r)
		return
	}

	assetPath, err := SourceFromID(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	assetPath = filepath.Clean(assetPath)
	if assetPath == "." || !filepath.IsAbs(assetPath) {
		http.NotFound(w, r)
		return
	}

	info, err := os.Stat(assetPath)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, assetPath)
}

// runLoop serializes surface state and websocket writes on one goroutine.
func (s *Server) runLoop() {
	conns := make(map[string]*websocket.Conn)
	renders := make(map[string]contracts.RenderMessage)
	scrolls := make(map[string]contracts.ScrollMessage)

	drop := func(id string) {
		if conn := conns[id]; conn != nil {
			_ = conn.Close()
		}
		delete(conns, id)
	}

	for {
		select {
		case update := <-s.updates:
			msg := renders[update.id]
			msg.Type = contracts.MessageTypeRender
			msg.Rev++
			msg.HTML = update.html
			msg.Filename = update.filename
			renders[update.id] = msg

			conn := conns[update.id]
			if conn == nil {
				continue
			}
			if !writeJSON(conn, msg) {
				drop(update.id)
				continue
			}
			if scroll, ok := scrolls[update.id]; ok {
				scroll.Rev = msg.Rev
				if !writeJSON(conn, scroll) {
					drop(update.id)
				}
			}

		case scroll := <-s.scrolls:
			msg := contracts.ScrollMessage{
				Type: contracts.MessageTypeScroll,
				Line: scroll.line,
			}
			scrolls[scroll.id] = msg

			conn := conns[scroll.id]
			renderMsg, rendered := renders[scroll.id]
			if conn == nil || !rendered {
				continue
			}
			msg.Rev = renderMsg.Rev
			if !writeJSON(conn, msg) {
				drop(scroll.id)
			}

		case c := <-s.register:
			if prev := conns[c.id]; prev != nil {
				_ = prev.Close()
			}
			conns[c.id] = c.conn

			if msg, ok := renders[c.id]; ok {
				if !writeJSON(c.conn, msg) {
					drop(c.id)
					continue
				}
				if scroll, hasScroll := scrolls[c.id]; hasScroll {
					scroll.Rev = msg.Rev
					if !writeJSON(c.conn, scroll) {
						drop(c.id)
					}
				}
			}

		case c := <-s.unregister:
			if conns[c.id] == c.conn {
				_ = c.conn.Close()
				delete(conns, c.id)
			}

		case in := <-s.inbound:
			s.dispatchInbound(in)

		case <-s.stopLoop:
			for id := range conns {
				drop(id)
			}
			return
		}
	}
}

// dispatchInbound routes one browser message to the registered callback.
func (s *Server) dispatchInbound(in clientRaw) {
	sourcePath, err := SourceFromID(in.id)
	if err != nil {
		return
	}

	var envelope contracts.IncomingMessage
	if err := json.Unmarshal(in.raw, &envelope); err != nil {
		return
	}

	switch envelope.Type {
	case contracts.MessageTypeGoToLine:
		var msg contracts.GoToLineMessage
		if err := json.Unmarshal(in.raw, &msg); err != nil {
			return
		}
		if s.onGoToLine != nil {
			s.onGoToLine(sourcePath, msg.Line)
		}

	case contracts.MessageTypeOpenLink:
		var msg contracts.OpenLinkMessage
		if err := json.Unmarshal(in.raw, &msg); err != nil {
			return
		}
		if s.onOpenLink != nil {
			s.onOpenLink(sourcePath, msg.DocumentLink)
		}

	case contracts.MessageTypeStyleError:
		var msg contracts.StyleErrorMessage
		if err := json.Unmarshal(in.raw, &msg); err != nil {
			return
		}
		if s.onStyleError != nil && len(msg.Resources) > 0 {
			s.onStyleError(msg.Resources)
		}
	}
}

// writeJSON writes a message and reports whether the connection is usable.
func writeJSON(conn *websocket.Conn, v any) bool {
	if err := conn.WriteJSON(v); err != nil {
		_ = conn.Close()
		return false
	}
	return true
}
