package hyprland

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
)

var ErrNotRunning = errors.New("hyprland might not be running")

func connect(sock socketType) (net.Conn, error) {
	socketPath, err := getSocketPath(sock)
	if err != nil {
		return nil, fmt.Errorf("get socket path: %w", err)
	}

	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	return conn, nil
}

type socketType int

const (
	RequestSocket socketType = iota
	EventSocket
)

func (s socketType) fileName() (string, error) {
	switch s {
	case RequestSocket:
		return ".socket.sock", nil
	case EventSocket:
		return ".socket2.sock", nil
	}
	return "", fmt.Errorf("unknown socket type: %d", s)
}

// getSocketPath prefers $XDG_RUNTIME_DIR/hypr (Hyprland >= 0.40) and falls back to
// /tmp/hypr used by older releases.
func getSocketPath(sock socketType) (string, error) {
	signature := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	if signature == "" {
		return "", fmt.Errorf("HYPRLAND_INSTANCE_SIGNATURE is not set, %w", ErrNotRunning)
	}

	name, err := sock.fileName()
	if err != nil {
		return "", err
	}

	var candidates []string
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		candidates = append(candidates, filepath.Join(runtimeDir, "hypr", signature, name))
	}
	candidates = append(candidates, filepath.Join("/tmp/hypr", signature, name))

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("no %s socket found for %s, %w", name, signature, ErrNotRunning)
}
