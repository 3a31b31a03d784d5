// Package config holds the plugin host settings. Settings come from a YAML
// file under the user config directory with sane defaults for everything, so
// a missing file is not an error. Components subscribe to be told when the
// file changes on disk.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const (
	keyPreviewAddr       = "preview.addr"
	keyLogLevel          = "log.level"
	keyLogFile           = "log.file"
	keySecurityDefault   = "security.default_level"
	keySecurityOverrides = "security.overrides"
	keyExtensionPaths    = "extensions.paths"
	keyScrollEditorSync  = "scroll.editor_to_preview"
	keyScrollPreviewSync = "scroll.preview_to_editor"
	keyTelemetryEnabled  = "telemetry.enabled"
)

// Observer is called after the configuration has been reloaded.
type Observer func()

// Subscription is an active observer registration.
type Subscription struct {
	id  uint64
	cfg *Config
}

// Unsubscribe removes the observer.
func (s *Subscription) Unsubscribe() {
	if s.cfg != nil {
		s.cfg.unsubscribe(s.id)
	}
}

// Config is the live view of the host settings.
type Config struct {
	v   *viper.Viper
	dir string

	mu        sync.Mutex
	observers map[uint64]Observer
	nextID    uint64
	watching  bool
}

// Load reads the configuration file from the user config directory.
func Load() (*Config, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(dir)
}

// Default returns a configuration carrying only the built-in defaults,
// detached from any file on disk. Overrides set on it are not persisted.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	return &Config{v: v, observers: make(map[uint64]Observer)}
}

// LoadFrom reads the configuration file from dir if one exists and returns
// the settings. A missing file yields defaults.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return &Config{v: v, dir: dir, observers: make(map[uint64]Observer)}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyPreviewAddr, "127.0.0.1:7788")
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogFile, "")
	v.SetDefault(keySecurityDefault, "strict")
	v.SetDefault(keySecurityOverrides, map[string]string{})
	v.SetDefault(keyExtensionPaths, []string{})
	v.SetDefault(keyScrollEditorSync, true)
	v.SetDefault(keyScrollPreviewSync, true)
	v.SetDefault(keyTelemetryEnabled, true)
}

// configDir returns the directory holding the host config file.
func configDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "nvim-markdown-preview"), nil
}

// PreviewAddr is the listen address for the preview server.
func (c *Config) PreviewAddr() string { return c.v.GetString(keyPreviewAddr) }

// LogLevel is the configured minimum log level name.
func (c *Config) LogLevel() string { return c.v.GetString(keyLogLevel) }

// LogFile is an optional log sink path. Empty means stderr.
func (c *Config) LogFile() string { return c.v.GetString(keyLogFile) }

// DefaultLevel is the security level used when no override matches.
func (c *Config) DefaultLevel() string { return c.v.GetString(keySecurityDefault) }

// ScrollEditorToPreview reports whether editor cursor moves sync the preview.
func (c *Config) ScrollEditorToPreview() bool { return c.v.GetBool(keyScrollEditorSync) }

// ScrollPreviewToEditor reports whether preview clicks move the editor cursor.
func (c *Config) ScrollPreviewToEditor() bool { return c.v.GetBool(keyScrollPreviewSync) }

// TelemetryEnabled reports whether the telemetry reporter may run.
func (c *Config) TelemetryEnabled() bool { return c.v.GetBool(keyTelemetryEnabled) }

// ExtensionPaths returns extra directories scanned for installed extensions.
func (c *Config) ExtensionPaths() []string { return c.v.GetStringSlice(keyExtensionPaths) }

// SetScrollEditorToPreview toggles editor-to-preview scroll sync.
func (c *Config) SetScrollEditorToPreview(on bool) {
	c.v.Set(keyScrollEditorSync, on)
}

// SetScrollPreviewToEditor toggles preview-to-editor scroll sync.
func (c *Config) SetScrollPreviewToEditor(on bool) {
	c.v.Set(keyScrollPreviewSync, on)
}

// Override returns the persisted security level for a source root, if any.
func (c *Config) Override(root string) (string, bool) {
	overrides := c.v.GetStringMapString(keySecurityOverrides)
	level, ok := overrides[overrideKey(root)]
	return level, ok
}

// SetOverride persists a security level decision for a source root.
// Persistence is best effort; the in-memory value always takes.
func (c *Config) SetOverride(root, level string) error {
	overrides := c.v.GetStringMapString(keySecurityOverrides)
	updated := make(map[string]string, len(overrides)+1)
	for k, v := range overrides {
		updated[k] = v
	}
	updated[overrideKey(root)] = level
	c.v.Set(keySecurityOverrides, updated)
	return c.persist()
}

// overrideKey normalizes a root path for use as a flat settings key. Viper
// lowercases map keys and treats dots as separators, so the path is folded
// into a stable token via its cleaned form.
func overrideKey(root string) string {
	key := filepath.ToSlash(filepath.Clean(root))
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, ".", "·")
	return key
}

func (c *Config) persist() error {
	if c.dir == "" {
		return nil
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return c.v.WriteConfigAs(filepath.Join(c.dir, "config.yaml"))
}

// Watch starts watching the config file for changes. Observers registered
// via Subscribe are notified after each reload.
func (c *Config) Watch() {
	if c.dir == "" {
		return
	}
	c.mu.Lock()
	if c.watching {
		c.mu.Unlock()
		return
	}
	c.watching = true
	c.mu.Unlock()

	c.v.OnConfigChange(func(fsnotify.Event) {
		c.notify()
	})
	c.v.WatchConfig()
}

// Subscribe registers an observer for configuration changes.
func (c *Config) Subscribe(fn Observer) *Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID
	c.observers[id] = fn
	return &Subscription{id: id, cfg: c}
}

func (c *Config) unsubscribe(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.observers, id)
}

func (c *Config) notify() {
	c.mu.Lock()
	observers := make([]Observer, 0, len(c.observers))
	for _, fn := range c.observers {
		observers = append(observers, fn)
	}
	c.mu.Unlock()

	for _, fn := range observers {
		fn()
	}
}
