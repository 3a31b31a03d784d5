package host

import (
	"github.com/neovim/go-client/nvim"

	"nvim-markdown-preview/internal/command"
	"nvim-markdown-preview/internal/config"
	"nvim-markdown-preview/internal/extension"
	"nvim-markdown-preview/internal/logger"
	"nvim-markdown-preview/internal/render"
	"nvim-markdown-preview/internal/security"
	"nvim-markdown-preview/internal/telemetry"
	"nvim-markdown-preview/internal/toc"
)

// publisher is the slice of the preview provider the coordinator drives.
type publisher interface {
	Refresh(sourcePath string, source []byte) error
	Rerender(sourcePath string)
	ScrollTo(sourcePath string, line int)
	PreviewURLFor(sourcePath string) string
	ReloadConfig()
}

// Coordinator wires editor events, commands, and the preview provider
// together. All of its handlers swallow editor errors after logging so a
// broken buffer never takes the plugin host down.
type Coordinator struct {
	cfg      *config.Config
	log      *logger.Logger
	reporter *telemetry.Reporter
	arbiter  *security.Arbiter
	provider publisher
	selector *security.Selector
	commands *command.Manager
	renderer *render.Renderer

	activation *extension.Activation
	cfgSub     *config.Subscription

	// editor builds the Editor facade for a connection. Tests replace it
	// with a fake factory.
	editor func(v *nvim.Nvim) Editor

	// resolveAnchor maps a link fragment to a zero-based source line.
	resolveAnchor func(source []byte, fragment string) (int, bool)
}

func newCoordinator(cfg *config.Config, log *logger.Logger) *Coordinator {
	return &Coordinator{
		cfg:      cfg,
		log:      log,
		commands: command.NewManager(),
		editor:   NewEditor,
		resolveAnchor: func(source []byte, fragment string) (int, bool) {
			entry, ok := toc.New(source).Lookup(fragment)
			if !ok {
				return 0, false
			}
			return entry.Line, true
		},
	}
}

// Dispose releases everything the coordinator owns. Safe to call once.
func (c *Coordinator) Dispose() {
	if c.cfgSub != nil {
		c.cfgSub.Unsubscribe()
	}
	if c.activation != nil {
		c.activation.Close()
	}
	c.commands.Dispose()
	if d, ok := c.provider.(interface{ Dispose() error }); ok {
		_ = d.Dispose()
	}
	c.reporter.Dispose()
}
