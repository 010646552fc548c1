package config

import (
	"fmt"
	"github.com/adrg/xdg"
	"path/filepath"
	"strings"
)

const appName = "dqswitch"

// FindUserConfig returns the -c/--config value without running the full parser,
// so the file can be loaded before kong resolves the other flags.
func FindUserConfig(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--":
			return ""
		case strings.HasPrefix(a, "--config="):
			return a[len("--config="):]
		case a == "--config" || a == "-c":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(a, "-c="):
			return a[len("-c="):]
		case strings.HasPrefix(a, "-c") && !strings.HasPrefix(a, "--"):
			return a[len("-c"):]
		}
	}
	return ""
}

// CandidatePaths lists config files in priority order.
func CandidatePaths(userPath string) []string {
	var paths []string
	if userPath != "" {
		paths = append(paths, userPath)
	}

	paths = append(paths, filepath.Join(xdg.ConfigHome, appName, "config.toml"))
	for _, dir := range xdg.ConfigDirs {
		paths = append(paths, filepath.Join(dir, appName, "config.toml"))
	}
	paths = append(paths, filepath.Join("/etc", appName, "config.toml"))

	return paths
}

// JournalPath returns where a journal of the given kind lives by default.
func JournalPath(kind string) (string, error) {
	ext := "db"
	if kind == "json" {
		ext = "json"
	}

	path, err := xdg.StateFile(filepath.Join(appName, "journal."+ext))
	if err != nil {
		return "", fmt.Errorf("get state file: %w", err)
	}
	return path, nil
}
