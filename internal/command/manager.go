// Package command provides the registry the user-invokable preview commands
// are dispatched through.
package command

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/neovim/go-client/nvim"
)

var (
	ErrDuplicate = errors.New("command: already registered")
	ErrUnknown   = errors.New("command: not registered")
)

// Handler executes one command against the live editor connection.
type Handler func(v *nvim.Nvim, args []string) error

// Manager holds the registered commands by name.
type Manager struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewManager creates an empty command manager.
func NewManager() *Manager {
	return &Manager{handlers: make(map[string]Handler)}
}

// Register binds a handler to a command name. Duplicate names are rejected.
func (m *Manager) Register(name string, h Handler) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.handlers[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	m.handlers[name] = h
	return nil
}

// Dispatch runs the named command.
func (m *Manager) Dispatch(name string, v *nvim.Nvim, args []string) error {
	m.mu.RLock()
	h, ok := m.handlers[name]
	m.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknown, name)
	}
	return h(v, args)
}

// Names returns the registered command names, sorted.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.handlers))
	for name := range m.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispose drops every registration.
func (m *Manager) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = make(map[string]Handler)
}
