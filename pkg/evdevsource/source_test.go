package evdevsource

import (
	"codeberg.org/miketth/dqswitch/pkg/dqswitch"
	"github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"os"
	"path/filepath"
	"testing"
)

func TestTranslate(t *testing.T) {
	const id = dqswitch.DeviceID("/dev/input/event3")

	kev, ok := translate(&evdev.InputEvent{Type: evdev.EV_KEY, Code: evdev.KEY_LEFTCTRL, Value: 1}, id)
	require.True(t, ok)
	assert.Equal(t, dqswitch.KeyEvent{Code: dqswitch.KeyLeftCtrl, Device: id, Down: true}, kev)

	kev, ok = translate(&evdev.InputEvent{Type: evdev.EV_KEY, Code: evdev.KEY_LEFTCTRL, Value: 0}, id)
	require.True(t, ok)
	assert.False(t, kev.Down)

	_, ok = translate(&evdev.InputEvent{Type: evdev.EV_KEY, Code: evdev.KEY_LEFTCTRL, Value: 2}, id)
	assert.False(t, ok, "autorepeat is dropped")

	_, ok = translate(&evdev.InputEvent{Type: evdev.EV_MSC, Code: evdev.MSC_SCAN, Value: 458976}, id)
	assert.False(t, ok)

	_, ok = translate(&evdev.InputEvent{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT}, id)
	assert.False(t, ok)
}

func TestOpenWithoutMatches(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "*-event-kbd"), zap.NewNop().Sugar())
	assert.ErrorIs(t, err, ErrNoDevices)
}

func TestOpenSkipsNonDevices(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "platform-i8042-serio-0-event-kbd")
	require.NoError(t, os.WriteFile(path, []byte("not a device"), 0o644))

	_, err := Open(filepath.Join(dir, "*-event-kbd"), zap.NewNop().Sugar())
	assert.ErrorIs(t, err, ErrNoDevices)
}

func TestOpenBadPattern(t *testing.T) {
	_, err := Open("/dev/input/[", zap.NewNop().Sugar())
	assert.ErrorIs(t, err, filepath.ErrBadPattern)
}

func TestGlobRecursive(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"platform-i8042-serio-0-event-kbd",
		"by-path/pci-0000:00:14.0-usb-0:2:1.0-event-kbd",
		"by-id/deep/usb-Keychron_K2-event-kbd",
		"by-path/pci-0000:00:14.0-usb-0:2:1.0-event-mouse",
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}

	matches, err := glob(filepath.Join(dir, "**", "*-event-kbd"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "by-id/deep/usb-Keychron_K2-event-kbd"),
		filepath.Join(dir, "by-path/pci-0000:00:14.0-usb-0:2:1.0-event-kbd"),
		filepath.Join(dir, "platform-i8042-serio-0-event-kbd"),
	}, matches)

	matches, err = glob(filepath.Join(dir, "*", "**", "*-event-mouse"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "by-path/pci-0000:00:14.0-usb-0:2:1.0-event-mouse")}, matches)

	matches, err = glob(filepath.Join(dir, "missing", "**", "*-event-kbd"))
	require.NoError(t, err)
	assert.Empty(t, matches)

	matches, err = glob(filepath.Join(dir, "by-path", "*-event-kbd"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}
