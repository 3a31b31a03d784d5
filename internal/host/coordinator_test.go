package host

import (
	"testing"

	"github.com/neovim/go-client/nvim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"

	"nvim-markdown-preview/internal/config"
	"nvim-markdown-preview/internal/extension"
	"nvim-markdown-preview/internal/logger"
)

// disposablePublisher is a fakePublisher whose Dispose calls are counted,
// matching the optional interface the coordinator probes for.
type disposablePublisher struct {
	fakePublisher
	disposed int
}

func (p *disposablePublisher) Dispose() error {
	p.disposed++
	return nil
}

func TestCoordinatorDisposeReleasesEverything(t *testing.T) {
	pub := &disposablePublisher{}
	c := newCoordinator(config.Default(), logger.New("test"))
	c.provider = pub

	require.NoError(t, c.commands.Register("showPreview", func(v *nvim.Nvim, args []string) error { return nil }))
	hooks := extension.NewHookRegistry()
	c.activation = extension.NewActivation(hooks, func(goldmark.Extender) {}, logger.New("test"))
	c.cfgSub = c.cfg.Subscribe(func() {})

	c.Dispose()

	assert.Equal(t, 1, pub.disposed)
	assert.Empty(t, c.commands.Names())
}

func TestCoordinatorDisposeWithoutActivation(t *testing.T) {
	pub := &fakePublisher{}
	c := newTestCoordinator(pub)

	assert.NotPanics(t, func() { c.Dispose() })
}
