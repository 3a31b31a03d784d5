// Package app coordinates the preview content provider: it binds the
// rendering engine, the security arbiter, the logger and the configuration
// to the preview server and exposes the operations the host wires to editor
// events.
package app

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/yuin/goldmark"

	"nvim-markdown-preview/internal/config"
	"nvim-markdown-preview/internal/contracts"
	"nvim-markdown-preview/internal/logger"
	"nvim-markdown-preview/internal/preview"
	"nvim-markdown-preview/internal/render"
	"nvim-markdown-preview/internal/security"
)

// Provider is the preview content provider. One instance serves every
// preview surface; surfaces are addressed by the derived preview identity.
type Provider struct {
	renderer *render.Renderer
	arbiter  *security.Arbiter
	cfg      *config.Config
	log      *logger.Logger
	server   *preview.Server

	mu      sync.Mutex
	sources map[string][]byte // source path -> last published source
}

// NewProvider constructs the provider over its collaborators.
func NewProvider(renderer *render.Renderer, arbiter *security.Arbiter, cfg *config.Config, log *logger.Logger) *Provider {
	p := &Provider{
		renderer: renderer,
		arbiter:  arbiter,
		cfg:      cfg,
		log:      log.WithField("component", "provider"),
		sources:  make(map[string][]byte),
	}

	p.server = preview.NewServer(cfg.PreviewAddr(), p.policyFor, log)
	return p
}

// policyFor resolves the security posture of a surface's page.
func (p *Provider) policyFor(sourcePath, nonce string) (string, bool) {
	level := p.arbiter.LevelFor(sourcePath)
	return p.arbiter.CSP(level, nonce), p.arbiter.AllowScripts(level)
}

// Register binds the preview server. This is the provider's registration
// under the fixed preview URI scheme; a failed bind is the one activation
// error nothing downstream can survive.
func (p *Provider) Register() error {
	if err := p.server.Start(); err != nil {
		return fmt.Errorf("register content provider: %w", err)
	}
	p.log.Infof("preview provider serving at %s", p.server.URL())
	return nil
}

// Refresh renders a document and publishes it to its preview surface.
// Called exactly once per save or change event.
func (p *Provider) Refresh(sourcePath string, source []byte) error {
	html, err := p.renderer.Convert(source, sourcePath)
	if err != nil {
		return fmt.Errorf("render %s: %w", sourcePath, err)
	}

	p.mu.Lock()
	p.sources[sourcePath] = source
	p.mu.Unlock()

	p.server.Update(preview.ID(sourcePath), html, filepath.Base(sourcePath))
	return nil
}

// Rerender republishes a document from its last known source, picking up
// policy or pipeline changes. Unknown documents are a no-op.
func (p *Provider) Rerender(sourcePath string) {
	p.mu.Lock()
	source, ok := p.sources[sourcePath]
	p.mu.Unlock()
	if !ok {
		return
	}
	if err := p.Refresh(sourcePath, source); err != nil {
		p.log.Warnf("rerender: %v", err)
	}
}

// ScrollTo forwards a source line to a document's preview surface.
// line is zero-based.
func (p *Provider) ScrollTo(sourcePath string, line int) {
	p.server.Scroll(preview.ID(sourcePath), line)
}

// PreviewURLFor returns the browser URL of a document's preview surface.
func (p *Provider) PreviewURLFor(sourcePath string) string {
	return p.server.SurfaceURL(preview.ID(sourcePath))
}

// RegisterStylesheet adds a contributed stylesheet resource.
func (p *Provider) RegisterStylesheet(resource string) {
	p.server.RegisterStylesheet(resource)
}

// RegisterScript adds a contributed script resource.
func (p *Provider) RegisterScript(resource string) {
	p.server.RegisterScript(resource)
}

// AddExtender folds an activated plugin-hook extender into the rendering
// pipeline and refreshes everything already rendered.
func (p *Provider) AddExtender(ext goldmark.Extender) {
	p.renderer.AddExtender(ext)
	p.rerenderAll()
}

// ReloadConfig is invoked on configuration changes. Open previews are
// republished so a changed security default takes effect.
func (p *Provider) ReloadConfig() {
	p.log.Debugf("configuration changed, republishing previews")
	p.rerenderAll()
}

func (p *Provider) rerenderAll() {
	p.mu.Lock()
	paths := make([]string, 0, len(p.sources))
	for path := range p.sources {
		paths = append(paths, path)
	}
	p.mu.Unlock()

	for _, path := range paths {
		p.Rerender(path)
	}
}

// SetGoToLineHandler forwards browser cursor-jump requests to the host.
func (p *Provider) SetGoToLineHandler(fn func(sourcePath string, line float64)) {
	p.server.SetGoToLineHandler(fn)
}

// SetOpenLinkHandler forwards document-link clicks to the host.
func (p *Provider) SetOpenLinkHandler(fn func(sourcePath string, link contracts.DocumentLink)) {
	p.server.SetOpenLinkHandler(fn)
}

// SetStyleErrorHandler forwards failed style resources to the host.
func (p *Provider) SetStyleErrorHandler(fn func(resources []string)) {
	p.server.SetStyleErrorHandler(fn)
}

// Dispose stops the preview server.
func (p *Provider) Dispose() error {
	return p.server.Stop()
}
