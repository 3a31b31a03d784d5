// Package extension discovers installed extensions and reads the markdown
// preview contributions they declare. Third-party manifests are arbitrary
// JSON the loader must not choke on, so fields are pulled out with gjson
// path queries instead of a rigid struct decode.
package extension

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
)

// ManifestFile is the manifest filename inside an extension directory.
const ManifestFile = "extension.json"

var (
	ErrInvalidManifest = errors.New("extension: manifest is not valid JSON")
	ErrMissingName     = errors.New("extension: manifest name is required")
)

// Contributions are the preview-related declarations from a manifest's
// contributes block. All of it is optional.
type Contributions struct {
	// PreviewStyles are stylesheet resources injected into the preview page.
	PreviewStyles []string
	// PreviewScripts are script resources injected into the preview page,
	// subject to the security level.
	PreviewScripts []string
	// MarkdownExtender names a registered markdown plugin hook. Empty means
	// the extension does not extend the rendering engine.
	MarkdownExtender string
}

// Manifest is the read-only record of one installed extension.
type Manifest struct {
	Name          string
	Version       string
	DisplayName   string
	TelemetryKey  string
	Contributions Contributions

	dir string
}

// Dir returns the extension's install directory.
func (m *Manifest) Dir() string { return m.dir }

// ParseManifest reads an extension manifest from raw JSON. dir is the
// extension's install directory, used later for resource resolution.
func ParseManifest(data []byte, dir string) (*Manifest, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidManifest
	}

	root := gjson.ParseBytes(data)
	name := root.Get("name").String()
	if name == "" {
		return nil, ErrMissingName
	}

	m := &Manifest{
		Name:         name,
		Version:      root.Get("version").String(),
		DisplayName:  root.Get("displayName").String(),
		TelemetryKey: root.Get("telemetryKey").String(),
		dir:          dir,
	}

	md := root.Get("contributes.markdown")
	if md.Exists() {
		for _, s := range md.Get("previewStyles").Array() {
			if v := s.String(); v != "" {
				m.Contributions.PreviewStyles = append(m.Contributions.PreviewStyles, v)
			}
		}
		for _, s := range md.Get("previewScripts").Array() {
			if v := s.String(); v != "" {
				m.Contributions.PreviewScripts = append(m.Contributions.PreviewScripts, v)
			}
		}
		m.Contributions.MarkdownExtender = extenderName(name, md.Get("plugin"))
	}

	return m, nil
}

// extenderName interprets the plugin hook declaration. A string names the
// registered extender directly; a boolean-like truthy value means the
// extension itself is the extender name.
func extenderName(name string, v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.String()
	case gjson.True:
		return name
	default:
		return ""
	}
}

// LoadManifestFromDir reads and parses dir/extension.json.
func LoadManifestFromDir(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("extension: read manifest: %w", err)
	}
	return ParseManifest(data, dir)
}
