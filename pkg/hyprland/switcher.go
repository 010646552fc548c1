package hyprland

import (
	"codeberg.org/miketth/dqswitch/pkg/dqswitch"
	"codeberg.org/miketth/dqswitch/pkg/xkblayouts"
	"errors"
	"fmt"
)

var ErrNoKeyboard = errors.New("no keyboard reported by hyprland")

// LayoutSwitcher switches every keyboard at once and reads the current layout
// from the main keyboard.
type LayoutSwitcher struct {
	ctl      *Hyprctl
	registry *xkblayouts.XkbConfigRegistry
}

// NewLayoutSwitcher takes an optional registry, only needed for Hyprland releases
// that do not report active_layout_index.
func NewLayoutSwitcher(ctl *Hyprctl, registry *xkblayouts.XkbConfigRegistry) *LayoutSwitcher {
	return &LayoutSwitcher{ctl: ctl, registry: registry}
}

func (s *LayoutSwitcher) SwitchTo(layout dqswitch.Layout) error {
	if err := s.ctl.SwitchToLayout("all", int(layout)); err != nil {
		return fmt.Errorf("switch layout: %w", err)
	}
	return nil
}

func (s *LayoutSwitcher) CurrentLayout() (dqswitch.Layout, error) {
	keyboards, err := s.ctl.GetKeyboards()
	if err != nil {
		return 0, fmt.Errorf("get keyboards: %w", err)
	}

	return currentLayout(keyboards, s.registry)
}

func currentLayout(keyboards []Keyboard, registry *xkblayouts.XkbConfigRegistry) (dqswitch.Layout, error) {
	if len(keyboards) == 0 {
		return 0, ErrNoKeyboard
	}

	keyboard := keyboards[0]
	for _, k := range keyboards {
		if k.Main {
			keyboard = k
			break
		}
	}

	if keyboard.ActiveIndex >= 0 {
		return dqswitch.Layout(keyboard.ActiveIndex), nil
	}

	if registry == nil {
		return 0, fmt.Errorf("keyboard %q has no layout index: %w", keyboard.Name, dqswitch.ErrUnknownLayout)
	}

	idx, ok := registry.IndexOf(keyboard.Layouts, keyboard.Variants, keyboard.ActiveKeymap)
	if !ok {
		return 0, fmt.Errorf("keymap %q of %q: %w", keyboard.ActiveKeymap, keyboard.Name, dqswitch.ErrUnknownLayout)
	}

	return dqswitch.Layout(idx), nil
}
