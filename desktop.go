package main

import (
	"codeberg.org/miketth/dqswitch/pkg/dqswitch"
	"codeberg.org/miketth/dqswitch/pkg/gnome"
	"codeberg.org/miketth/dqswitch/pkg/hyprland"
	"codeberg.org/miketth/dqswitch/pkg/kde"
	"codeberg.org/miketth/dqswitch/pkg/x11focus"
	"codeberg.org/miketth/dqswitch/pkg/xkblayouts"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"io"
	"strings"
)

var errUnsupportedDesktop = errors.New("unsupported desktop")

// desktop bundles the layout backend and focus source of one desktop
// environment. watcher is nil when focus tracking is unavailable.
type desktop struct {
	name     string
	switcher dqswitch.LayoutSwitcher
	watcher  dqswitch.FocusWatcher
	closer   io.Closer
}

func (d *desktop) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}

func connectDesktop(name, xkbRules string, log *zap.SugaredLogger) (*desktop, error) {
	lower := strings.ToLower(name)

	switch {
	case strings.Contains(lower, "kde"):
		sw, err := kde.Connect()
		if err != nil {
			return nil, fmt.Errorf("connect to kde: %w", err)
		}
		return &desktop{name: "kde", switcher: sw, watcher: x11Watcher(log), closer: sw}, nil

	case strings.Contains(lower, "gnome"):
		sw, err := gnome.Connect()
		if err != nil {
			return nil, fmt.Errorf("connect to gnome: %w", err)
		}
		return &desktop{name: "gnome", switcher: sw, watcher: x11Watcher(log), closer: sw}, nil

	case strings.Contains(lower, "hyprland"):
		ctl, err := hyprland.NewHyprctl()
		if err != nil {
			return nil, fmt.Errorf("connect to hyprland: %w", err)
		}

		registry, err := xkblayouts.ParseLayouts(xkbRules)
		if err != nil {
			log.Warnw("could not parse xkb rules, layouts without an active index cannot be resolved",
				"path", xkbRules,
				"error", err,
			)
			registry = nil
		}

		return &desktop{
			name:     "hyprland",
			switcher: hyprland.NewLayoutSwitcher(ctl, registry),
			watcher:  hyprland.NewFocusWatcher(ctl, log),
		}, nil

	case name == "":
		return nil, fmt.Errorf("%w: set --desktop or XDG_CURRENT_DESKTOP", errUnsupportedDesktop)

	default:
		return nil, fmt.Errorf("%w: %q", errUnsupportedDesktop, name)
	}
}

// x11Watcher returns nil if the X server cannot be reached, which disables
// the app overrides but keeps modifier switching working.
func x11Watcher(log *zap.SugaredLogger) dqswitch.FocusWatcher {
	w, err := x11focus.Connect(log)
	if err != nil {
		log.Warnw("focus tracking disabled", "error", err)
		return nil
	}
	return w
}
