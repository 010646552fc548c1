package dqswitch

import (
	"errors"
	"fmt"
	"go.uber.org/zap"
	"time"
)

var ErrUnknownLayout = errors.New("current layout is unknown")

const (
	ReasonStartup        = "startup"
	ReasonKey            = "key"
	ReasonMetaDelay      = "meta-delay"
	ReasonRelease        = "release"
	ReasonFocusDefault   = "focus-default"
	ReasonFocusAlternate = "focus-alternate"
	ReasonFocusLeave     = "focus-leave"
)

// Switcher remembers which of the two layouts it last asked for. That intent can
// drift from the real layout if the user changes it through the desktop.
type Switcher struct {
	backend LayoutSwitcher
	journal Journal
	log     *zap.SugaredLogger
	now     func() time.Time

	defaultLayout   Layout
	alternateLayout Layout
	alternativeOn   bool
}

func NewSwitcher(
	backend LayoutSwitcher,
	defaultLayout, alternateLayout Layout,
	journal Journal,
	log *zap.SugaredLogger,
) *Switcher {
	if journal == nil {
		journal = nopJournal{}
	}

	return &Switcher{
		backend:         backend,
		journal:         journal,
		log:             log,
		now:             time.Now,
		defaultLayout:   defaultLayout,
		alternateLayout: alternateLayout,
	}
}

func (s *Switcher) SwitchToDefault(reason string) {
	s.switchTo(s.defaultLayout, reason)
	s.alternativeOn = false
}

func (s *Switcher) SwitchToAlternative(reason string) {
	s.switchTo(s.alternateLayout, reason)
	s.alternativeOn = true
}

func (s *Switcher) AlternativeIsOn() bool {
	return s.alternativeOn
}

func (s *Switcher) IsSwitchable() bool {
	current, err := s.backend.CurrentLayout()
	if err != nil {
		s.log.Debugw("could not query current layout", "error", err)
		return false
	}

	return current == s.defaultLayout || current == s.alternateLayout
}

// switchTo is best effort: failures are logged and journaled, never returned.
func (s *Switcher) switchTo(layout Layout, reason string) {
	entry := Entry{
		Time:   s.now(),
		Target: layout,
		Reason: reason,
	}

	err := s.backend.SwitchTo(layout)
	if err != nil {
		s.log.Warnw("switch layout failed", "layout", layout, "reason", reason, "error", err)
		entry.Err = err.Error()
	} else {
		s.log.Infow("switched layout", "layout", layout, "reason", reason)
	}

	if err := s.journal.Record(entry); err != nil {
		s.log.Warnw("record journal entry", "error", fmt.Errorf("journal: %w", err))
	}
}

type nopJournal struct{}

func (nopJournal) Record(Entry) error { return nil }
