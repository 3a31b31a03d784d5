package extension

import (
	"os"
	"path/filepath"
	"sort"

	"nvim-markdown-preview/internal/logger"
)

// Loader discovers installed extensions on the filesystem.
type Loader struct {
	paths []string
	log   *logger.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithPaths adds extra search paths ahead of the defaults.
func WithPaths(paths ...string) LoaderOption {
	return func(l *Loader) {
		l.paths = append(paths, l.paths...)
	}
}

// NewLoader creates a loader over the default search paths.
func NewLoader(log *logger.Logger, opts ...LoaderOption) *Loader {
	l := &Loader{
		paths: DefaultSearchPaths(),
		log:   log.WithField("component", "extensions"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// DefaultSearchPaths returns the directories scanned for extensions.
func DefaultSearchPaths() []string {
	paths := make([]string, 0, 2)
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "nvim-markdown-preview", "extensions"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".local", "share", "nvim-markdown-preview", "extensions"))
	}
	return paths
}

// Discover scans the search paths and returns every readable manifest,
// sorted by name. Directories without a manifest and manifests that fail to
// parse are skipped; one broken extension never hides the others.
func (l *Loader) Discover() []*Manifest {
	seen := make(map[string]*Manifest)

	for _, base := range l.paths {
		entries, err := os.ReadDir(base)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			dir := filepath.Join(base, entry.Name())
			m, err := LoadManifestFromDir(dir)
			if err != nil {
				l.log.Debugf("skipping %s: %v", dir, err)
				continue
			}
			if _, dup := seen[m.Name]; dup {
				continue
			}
			seen[m.Name] = m
		}
	}

	manifests := make([]*Manifest, 0, len(seen))
	for _, m := range seen {
		manifests = append(manifests, m)
	}
	sort.Slice(manifests, func(i, j int) bool {
		return manifests[i].Name < manifests[j].Name
	})
	return manifests
}
