package extension

import (
	"os"
	"path/filepath"
)

// HostMetadata resolves this extension's own manifest: name, version and
// telemetry key. The manifest is looked up next to the running binary and
// one directory up. Fails open: a missing or malformed record returns nil
// and telemetry is simply disabled.
func HostMetadata() *Manifest {
	exe, err := os.Executable()
	if err != nil {
		return nil
	}

	dir := filepath.Dir(exe)
	for _, candidate := range []string{dir, filepath.Dir(dir)} {
		if m, err := LoadManifestFromDir(candidate); err == nil {
			return m
		}
	}
	return nil
}
