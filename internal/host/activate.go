package host

import (
	"os"

	"github.com/neovim/go-client/nvim/plugin"

	"nvim-markdown-preview/internal/app"
	"nvim-markdown-preview/internal/config"
	"nvim-markdown-preview/internal/contracts"
	"nvim-markdown-preview/internal/extension"
	"nvim-markdown-preview/internal/logger"
	"nvim-markdown-preview/internal/render"
	"nvim-markdown-preview/internal/security"
	"nvim-markdown-preview/internal/telemetry"
)

const autocmdGroup = "NvimMarkdownPreview"

// Register is the plugin entry point. It builds the full preview stack and
// registers every command, function and autocmd handler with the host.
// Individual failures along the way are logged and skipped; only a preview
// server that cannot bind aborts registration.
func Register(p *plugin.Plugin) error {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}

	log := logger.New("markdown-preview")
	log.SetLevel(logger.ParseLevel(cfg.LogLevel()))
	if path := cfg.LogFile(); path != "" {
		if f, ferr := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); ferr == nil {
			log.SetOutput(f)
		}
	}
	if err != nil {
		log.Warnf("config unreadable, using defaults: %v", err)
	}

	c := newCoordinator(cfg, log)

	if cfg.TelemetryEnabled() {
		if meta := extension.HostMetadata(); meta != nil {
			c.reporter = telemetry.New(telemetry.Metadata{
				Name:    meta.Name,
				Version: meta.Version,
				Key:     meta.TelemetryKey,
			}, log)
		}
	}

	c.arbiter = security.NewArbiter(cfg, log)
	c.renderer = render.NewRenderer()
	provider := app.NewProvider(c.renderer, c.arbiter, cfg, log)
	c.provider = provider

	if err := provider.Register(); err != nil {
		return err
	}
	c.selector = security.NewSelector(c.arbiter, provider.Rerender, log)

	hooks := extension.NewHookRegistry()
	extension.RegisterBuiltins(hooks)
	c.activation = extension.NewActivation(hooks, provider.AddExtender, log)

	loader := extension.NewLoader(log, extension.WithPaths(cfg.ExtensionPaths()...))
	c.registerContributions(provider, loader.Discover())

	nv := p.Nvim
	provider.SetGoToLineHandler(func(sourcePath string, line float64) {
		c.goToLine(c.editor(nv), sourcePath, line)
	})
	provider.SetOpenLinkHandler(func(sourcePath string, link contracts.DocumentLink) {
		c.openDocumentLink(c.editor(nv), link)
	})
	provider.SetStyleErrorHandler(func(resources []string) {
		c.onStyleLoadError(c.editor(nv), resources)
	})

	p.Handle("poll", func() (string, error) {
		return "ok", nil
	})

	p.HandleFunction(&plugin.FunctionOptions{
		Name: "MarkdownPreviewDocumentSymbols",
	}, c.documentSymbols)
	p.HandleFunction(&plugin.FunctionOptions{
		Name: "MarkdownPreviewDocumentLinks",
	}, c.documentLinks)

	if err := c.registerCommands(p); err != nil {
		return err
	}

	p.HandleFunction(&plugin.FunctionOptions{
		Name: "MarkdownPreviewDidClick",
	}, c.handleDidClick)
	p.HandleFunction(&plugin.FunctionOptions{
		Name: "MarkdownPreviewOpenDocumentLink",
	}, c.handleOpenDocumentLink)
	p.HandleFunction(&plugin.FunctionOptions{
		Name: "MarkdownPreviewSecuritySelector",
	}, c.handleSecuritySelector)
	p.HandleFunction(&plugin.FunctionOptions{
		Name: "MarkdownPreviewStyleLoadError",
	}, c.handleStyleLoadError)

	p.HandleAutocmd(&plugin.AutocmdOptions{
		Event: "BufWritePost", Group: autocmdGroup, Pattern: "*", Eval: "*",
	}, c.onDocumentSaved)
	p.HandleAutocmd(&plugin.AutocmdOptions{
		Event: "TextChanged", Group: autocmdGroup, Pattern: "*", Eval: "*",
	}, c.onDocumentChanged)
	p.HandleAutocmd(&plugin.AutocmdOptions{
		Event: "TextChangedI", Group: autocmdGroup, Pattern: "*", Eval: "*",
	}, c.onDocumentChanged)
	p.HandleAutocmd(&plugin.AutocmdOptions{
		Event: "CursorMoved", Group: autocmdGroup, Pattern: "*", Eval: "*",
	}, c.onCursorMoved)
	p.HandleAutocmd(&plugin.AutocmdOptions{
		Event: "VimLeave", Group: autocmdGroup, Pattern: "*",
	}, func() {
		c.Dispose()
	})

	cfg.Watch()
	c.cfgSub = cfg.Subscribe(c.onConfigChanged)

	c.reporter.SendEvent("activate", nil)
	log.Infof("activation complete")
	return nil
}

// contributionSink receives resolved preview resources.
type contributionSink interface {
	RegisterStylesheet(resource string)
	RegisterScript(resource string)
}

// registerContributions applies every discovered extension's preview
// contributions. Each resource is handled in isolation so one broken
// extension cannot block the rest.
func (c *Coordinator) registerContributions(sink contributionSink, manifests []*extension.Manifest) {
	for _, m := range manifests {
		contrib := m.Contributions
		for _, style := range contrib.PreviewStyles {
			resolved, err := extension.ResolveResource(m.Dir(), style)
			if err != nil {
				c.log.Warnf("extension %s: bad style %q: %v", m.Name, style, err)
				continue
			}
			sink.RegisterStylesheet(resolved)
		}
		for _, script := range contrib.PreviewScripts {
			resolved, err := extension.ResolveResource(m.Dir(), script)
			if err != nil {
				c.log.Warnf("extension %s: bad script %q: %v", m.Name, script, err)
				continue
			}
			sink.RegisterScript(resolved)
		}
		if name := contrib.MarkdownExtender; name != "" {
			c.activation.Enqueue(name)
		}
	}
}

func (c *Coordinator) onConfigChanged() {
	c.log.SetLevel(logger.ParseLevel(c.cfg.LogLevel()))
	c.provider.ReloadConfig()
	c.log.Debugf("configuration reloaded")
}
