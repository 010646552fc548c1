package hyprland

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"regexp"
	"strings"
)

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrDeviceNotFound  = errors.New("device not found")
)

var errorMapper = []struct {
	re  *regexp.Regexp
	err error
}{
	{regexp.MustCompile(`^ok$`), nil},
	{regexp.MustCompile(`layout idx out of range.*`), ErrIndexOutOfRange},
	{regexp.MustCompile(`device not found`), ErrDeviceNotFound},
}

// Hyprctl talks to the request socket, the same one the hyprctl binary uses.
type Hyprctl struct{}

func NewHyprctl() (*Hyprctl, error) {
	if _, err := getSocketPath(RequestSocket); err != nil {
		return nil, err
	}
	return &Hyprctl{}, nil
}

func (c *Hyprctl) SwitchToLayout(keyboard string, idx int) error {
	out, err := c.request(fmt.Sprintf("switchxkblayout %s %d", keyboard, idx), "")
	if err != nil {
		return err
	}

	outStr := strings.TrimSpace(string(out))
	for _, m := range errorMapper {
		if m.re.MatchString(outStr) {
			return m.err
		}
	}

	return fmt.Errorf("unknown hyprctl error: %s", outStr)
}

func (c *Hyprctl) GetKeyboards() ([]Keyboard, error) {
	out, err := c.request("devices", "j")
	if err != nil {
		return nil, err
	}

	var devs devices
	if err := json.Unmarshal(out, &devs); err != nil {
		return nil, fmt.Errorf("unmarshal devices: %w, (hyprctl: %s)", err, out)
	}

	keyboards := devs.Keyboards
	ret := make([]Keyboard, 0, len(keyboards))
	for _, k := range keyboards {
		ret = append(ret, k.ToKeyboard())
	}

	return ret, nil
}

func (c *Hyprctl) ActiveWindowPID() (int, error) {
	out, err := c.request("activewindow", "j")
	if err != nil {
		return 0, err
	}

	var win activeWindow
	if err := json.Unmarshal(out, &win); err != nil {
		return 0, fmt.Errorf("unmarshal active window: %w, (hyprctl: %s)", err, out)
	}

	return win.PID, nil
}

func (c *Hyprctl) request(request string, flags string) ([]byte, error) {
	conn, err := connect(RequestSocket)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	_, err = conn.Write([]byte(fmt.Sprintf("%s/%s", flags, request)))
	if err != nil {
		return nil, fmt.Errorf("write to hyprctl socket: %w", err)
	}

	return readResponse(conn)
}

func readResponse(conn net.Conn) ([]byte, error) {
	var buf bytes.Buffer
	_, err := io.Copy(&buf, conn)
	if err != nil {
		return nil, fmt.Errorf("read from hyprctl socket: %w", err)
	}
	return buf.Bytes(), nil
}
