package extension

import (
	"sync"

	"github.com/yuin/goldmark"

	"nvim-markdown-preview/internal/logger"
)

// Activation runs plugin-hook activations on a background queue. Enqueue is
// fire-and-forget: a registration may land after host activation has already
// returned, and no ordering relative to the first render is guaranteed.
type Activation struct {
	registry *HookRegistry
	apply    func(goldmark.Extender)
	log      *logger.Logger

	queue chan string
	once  sync.Once
	wg    sync.WaitGroup
}

// NewActivation creates the queue. apply receives each successfully
// activated extender, typically the rendering engine's AddExtender.
func NewActivation(registry *HookRegistry, apply func(goldmark.Extender), log *logger.Logger) *Activation {
	a := &Activation{
		registry: registry,
		apply:    apply,
		log:      log.WithField("component", "activation"),
		queue:    make(chan string, 16),
	}
	a.wg.Add(1)
	go a.run()
	return a
}

// Enqueue schedules the named extender for activation. Never blocks; a full
// queue drops the request and logs it.
func (a *Activation) Enqueue(name string) {
	select {
	case a.queue <- name:
	default:
		a.log.Warnf("activation queue full, dropping %q", name)
	}
}

// Close stops the queue after draining pending activations.
func (a *Activation) Close() {
	a.once.Do(func() {
		close(a.queue)
		a.wg.Wait()
	})
}

func (a *Activation) run() {
	defer a.wg.Done()
	for name := range a.queue {
		exports, err := a.registry.Activate(name)
		if err != nil {
			a.log.Debugf("activate %q: %v", name, err)
			continue
		}
		ext, ok := exports.(MarkdownExtender)
		if !ok {
			a.log.Debugf("activate %q: module exports no markdown extender", name)
			continue
		}
		a.apply(ext.ExtendMarkdown())
		a.log.Infof("registered markdown extender %q", name)
	}
}
