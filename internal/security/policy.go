// Package security decides what content the preview surface may load. The
// user picks a trust level per source root; the arbiter turns that level
// into a content security policy and a script-injection decision.
package security

import (
	"fmt"
	"path/filepath"
	"strings"

	"nvim-markdown-preview/internal/logger"
)

// TrustLevel is the user-chosen trust for previews under a source root.
type TrustLevel int

const (
	// TrustStrict loads only local, secure content. The default.
	TrustStrict TrustLevel = iota
	// TrustAllowInsecureLocalContent additionally loads http content from
	// localhost.
	TrustAllowInsecureLocalContent
	// TrustAllowInsecureContent loads remote content over plain http.
	TrustAllowInsecureContent
	// TrustAllowScriptsAndContent disables the policy entirely, including
	// contributed scripts.
	TrustAllowScriptsAndContent
)

var levelNames = map[TrustLevel]string{
	TrustStrict:                    "strict",
	TrustAllowInsecureLocalContent: "allowInsecureLocalContent",
	TrustAllowInsecureContent:      "allowInsecureContent",
	TrustAllowScriptsAndContent:    "allowScriptsAndAllContent",
}

// String returns the level's settings name.
func (l TrustLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "strict"
}

// Description returns the user-facing explanation of a level.
func (l TrustLevel) Description() string {
	switch l {
	case TrustAllowInsecureLocalContent:
		return "Allow insecure local content"
	case TrustAllowInsecureContent:
		return "Allow insecure content"
	case TrustAllowScriptsAndContent:
		return "Allow all content and scripts"
	default:
		return "Only load secure content"
	}
}

// Levels lists all trust levels in increasing permissiveness.
func Levels() []TrustLevel {
	return []TrustLevel{
		TrustStrict,
		TrustAllowInsecureLocalContent,
		TrustAllowInsecureContent,
		TrustAllowScriptsAndContent,
	}
}

// ParseTrustLevel resolves a settings name to its level.
func ParseTrustLevel(s string) (TrustLevel, error) {
	for level, name := range levelNames {
		if name == s {
			return level, nil
		}
	}
	return TrustStrict, fmt.Errorf("security: unknown trust level %q", s)
}

// Store is the persistence surface for trust decisions, backed by the
// configuration file.
type Store interface {
	DefaultLevel() string
	Override(root string) (string, bool)
	SetOverride(root, level string) error
}

// Arbiter resolves the effective trust level for a document and derives the
// policy the preview page runs under.
type Arbiter struct {
	store Store
	log   *logger.Logger
}

// NewArbiter creates the arbiter over a decision store.
func NewArbiter(store Store, log *logger.Logger) *Arbiter {
	return &Arbiter{store: store, log: log.WithField("component", "security")}
}

// LevelFor resolves the trust level for a source document. The longest
// persisted root prefix covering the document wins; otherwise the configured
// default applies. Unparseable persisted values degrade to strict.
func (a *Arbiter) LevelFor(sourcePath string) TrustLevel {
	dir := filepath.Dir(filepath.Clean(sourcePath))

	bestLen := -1
	best := ""
	for probe := dir; ; probe = filepath.Dir(probe) {
		if name, ok := a.store.Override(probe); ok && len(probe) > bestLen {
			bestLen = len(probe)
			best = name
		}
		if probe == filepath.Dir(probe) {
			break
		}
	}

	name := best
	if bestLen < 0 {
		name = a.store.DefaultLevel()
	}

	level, err := ParseTrustLevel(name)
	if err != nil {
		a.log.Warnf("invalid trust level %q, using strict", name)
		return TrustStrict
	}
	return level
}

// SetLevelFor persists a trust decision for the root directory of a source
// document.
func (a *Arbiter) SetLevelFor(sourcePath string, level TrustLevel) error {
	root := filepath.Dir(filepath.Clean(sourcePath))
	a.log.Infof("trust level for %s set to %s", root, level)
	return a.store.SetOverride(root, level.String())
}

// AllowScripts reports whether contributed preview scripts may be injected
// under the given level.
func (a *Arbiter) AllowScripts(level TrustLevel) bool {
	return level == TrustAllowScriptsAndContent
}

// CSP returns the content of the preview page's security policy meta tag.
// nonce authorizes the page's own bootstrap script. Empty means no policy
// is applied.
func (a *Arbiter) CSP(level TrustLevel, nonce string) string {
	const local = "'self' 'unsafe-inline'"
	scriptSrc := "script-src 'self' 'nonce-" + nonce + "'"
	switch level {
	case TrustAllowInsecureLocalContent:
		return strings.Join([]string{
			"default-src 'none'",
			"img-src 'self' data: https: http://localhost:* http://127.0.0.1:*",
			"media-src 'self' data: https: http://localhost:* http://127.0.0.1:*",
			"style-src " + local + " https: http://localhost:* http://127.0.0.1:*",
			"font-src 'self' data: https:",
			scriptSrc,
			"connect-src 'self' ws: wss:",
		}, "; ")
	case TrustAllowInsecureContent:
		return strings.Join([]string{
			"default-src 'none'",
			"img-src 'self' data: http: https:",
			"media-src 'self' data: http: https:",
			"style-src " + local + " http: https:",
			"font-src 'self' data: http: https:",
			scriptSrc,
			"connect-src 'self' ws: wss:",
		}, "; ")
	case TrustAllowScriptsAndContent:
		return ""
	default:
		return strings.Join([]string{
			"default-src 'none'",
			"img-src 'self' data: https:",
			"media-src 'self' data: https:",
			"style-src " + local + " https:",
			"font-src 'self' data: https:",
			scriptSrc,
			"connect-src 'self' ws: wss:",
		}, "; ")
	}
}
