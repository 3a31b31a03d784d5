package extension

import (
	"errors"
	"net/url"
	"path/filepath"
)

// ErrEmptyResource marks a contributed resource with no usable value.
var ErrEmptyResource = errors.New("extension: empty resource path")

// ResolveResource maps a contributed style or script path to a location the
// preview can load. Paths that already carry a URI scheme pass through
// verbatim; bare paths resolve relative to the extension's install directory.
func ResolveResource(extDir, resource string) (string, error) {
	if resource == "" {
		return "", ErrEmptyResource
	}

	u, err := url.Parse(resource)
	if err != nil {
		return "", err
	}
	if u.Scheme != "" {
		return resource, nil
	}

	if filepath.IsAbs(resource) {
		return filepath.Clean(resource), nil
	}
	return filepath.Join(extDir, resource), nil
}
