package security

import (
	"fmt"

	"nvim-markdown-preview/internal/logger"
)

// PresentFunc shows a pick list to the user and returns the chosen index,
// or a negative index when the user cancels.
type PresentFunc func(title string, items []string) (int, error)

// Selector lets the user change the trust level for a previewed document.
// It is bound to the arbiter for decisions and to the content provider for
// re-rendering once a decision lands.
type Selector struct {
	arbiter *Arbiter
	refresh func(sourcePath string)
	log     *logger.Logger
}

// NewSelector creates the selector. refresh is invoked with the source path
// after a level change so its preview picks up the new policy.
func NewSelector(arbiter *Arbiter, refresh func(sourcePath string), log *logger.Logger) *Selector {
	return &Selector{
		arbiter: arbiter,
		refresh: refresh,
		log:     log.WithField("component", "security"),
	}
}

// Show presents the trust level choices for a source document and persists
// the selection. Cancelling is a no-op.
func (s *Selector) Show(sourcePath string, present PresentFunc) error {
	current := s.arbiter.LevelFor(sourcePath)

	levels := Levels()
	items := make([]string, len(levels))
	for i, level := range levels {
		marker := "  "
		if level == current {
			marker = "• "
		}
		items[i] = marker + level.Description()
	}

	choice, err := present("Select security settings for the markdown preview", items)
	if err != nil {
		return fmt.Errorf("security: selector: %w", err)
	}
	if choice < 0 || choice >= len(levels) {
		return nil
	}

	if err := s.arbiter.SetLevelFor(sourcePath, levels[choice]); err != nil {
		s.log.Warnf("persisting trust level: %v", err)
	}
	if s.refresh != nil {
		s.refresh(sourcePath)
	}
	return nil
}
