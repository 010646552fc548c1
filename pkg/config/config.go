// Package config holds the command line options, the config file layout and the
// config file watcher.
//
// The config file is TOML:
//
//	[Main]
//	Main = 0
//	Alternative = 1
//	MetaDelay = 0.1
//
//	[Apps]
//	AlwaysMain = """
//	konsole
//	"""
//
//	[Journal]
//	Backend = "sqlite"
//
// Command line flags override the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const DefaultDevice = "/dev/input/by-path/*-event-kbd"

type Globals struct {
	Config      string `short:"c" help:"Path to the config file." placeholder:"PATH" type:"path"`
	Debug       bool   `help:"Enable debug logging."`
	Journal     string `help:"Where to journal layout switches." enum:"none,memory,json,sqlite" default:"sqlite"`
	JournalPath string `help:"Journal file. Defaults to the XDG state dir." placeholder:"PATH" type:"path"`
}

type Switching struct {
	Main              int     `short:"m" help:"The main keyboard layout." required:""`
	Alternative       int     `short:"a" help:"The alternative keyboard layout, enabled while Ctrl, Alt or Meta are held." required:""`
	Desktop           string  `short:"d" help:"Desktop environment: KDE, GNOME or Hyprland."`
	MetaDelay         float64 `help:"Seconds Meta has to be held before switching. 0 switches immediately." default:"0"`
	Device            string  `help:"Glob selecting the keyboard device nodes, ** matches any number of directories." default:"${default_device}"`
	AlwaysMain        string  `help:"Process names that always get the main layout, newline or comma separated."`
	AlwaysAlternative string  `help:"Process names that always get the alternative layout, newline or comma separated."`
	XkbRules          string  `help:"evdev.xml used to resolve layout names on Hyprland." default:"${xkb_rules}" type:"path"`
}

func (r *Switching) Validate() error {
	var errs []error
	if r.Main < 0 || r.Alternative < 0 {
		errs = append(errs, errors.New("layouts must not be negative"))
	}
	if r.Main == r.Alternative {
		errs = append(errs, fmt.Errorf("main and alternative layout are both %d", r.Main))
	}
	if r.MetaDelay < 0 {
		errs = append(errs, fmt.Errorf("meta delay %v is negative", r.MetaDelay))
	}
	return errors.Join(errs...)
}

// DesktopName falls back to $XDG_CURRENT_DESKTOP. The variable is read here rather
// than through kong so the config file can still override it.
func (r *Switching) DesktopName() string {
	if r.Desktop != "" {
		return r.Desktop
	}
	return os.Getenv("XDG_CURRENT_DESKTOP")
}

func (r *Switching) MetaDelayDuration() time.Duration {
	return time.Duration(r.MetaDelay * float64(time.Second))
}

func (r *Switching) AlwaysMainApps() []string {
	return ParseAppList(r.AlwaysMain)
}

func (r *Switching) AlwaysAlternativeApps() []string {
	return ParseAppList(r.AlwaysAlternative)
}

// ParseAppList splits a list of process names on newlines and commas.
func ParseAppList(s string) []string {
	var apps []string
	for _, line := range strings.Split(s, "\n") {
		for _, name := range strings.Split(line, ",") {
			name = strings.TrimSpace(name)
			if name != "" {
				apps = append(apps, name)
			}
		}
	}
	return apps
}
