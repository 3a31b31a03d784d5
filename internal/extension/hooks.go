package extension

import (
	"fmt"
	"sync"

	"github.com/yuin/goldmark"
)

// Exports is whatever an activated extension module hands back. Modules that
// extend the rendering engine additionally implement MarkdownExtender; the
// capability is checked for presence, never assumed.
type Exports interface{}

// MarkdownExtender is the optional capability of an activated extension to
// plug into the markdown rendering pipeline.
type MarkdownExtender interface {
	ExtendMarkdown() goldmark.Extender
}

// Activator produces the exports of an extension module on activation.
type Activator func() (Exports, error)

// HookRegistry maps extender names to their activators.
type HookRegistry struct {
	mu         sync.RWMutex
	activators map[string]Activator
}

// NewHookRegistry creates an empty registry.
func NewHookRegistry() *HookRegistry {
	return &HookRegistry{activators: make(map[string]Activator)}
}

// Register binds an extender name to its activator. Later registrations for
// the same name win, mirroring how a reinstalled extension replaces itself.
func (r *HookRegistry) Register(name string, fn Activator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activators[name] = fn
}

// Activate runs the named activator.
func (r *HookRegistry) Activate(name string) (Exports, error) {
	r.mu.RLock()
	fn, ok := r.activators[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("extension: no extender registered as %q", name)
	}
	return fn()
}

// markdownExports adapts a bare goldmark extender into module exports.
type markdownExports struct {
	ext goldmark.Extender
}

func (e markdownExports) ExtendMarkdown() goldmark.Extender { return e.ext }

// ExportExtender wraps a goldmark extender as activatable module exports.
// Built-in extender modules register through this.
func ExportExtender(ext goldmark.Extender) Activator {
	return func() (Exports, error) {
		return markdownExports{ext: ext}, nil
	}
}
