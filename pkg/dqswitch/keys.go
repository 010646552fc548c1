package dqswitch

import "github.com/holoplot/go-evdev"

const (
	KeyLeftCtrl  = KeyCode(evdev.KEY_LEFTCTRL)
	KeyRightCtrl = KeyCode(evdev.KEY_RIGHTCTRL)
	KeyLeftAlt   = KeyCode(evdev.KEY_LEFTALT)
	KeyRightAlt  = KeyCode(evdev.KEY_RIGHTALT)
	KeyLeftMeta  = KeyCode(evdev.KEY_LEFTMETA)
	KeyRightMeta = KeyCode(evdev.KEY_RIGHTMETA)

	KeyF2 = KeyCode(evdev.KEY_F2)
	KeyF4 = KeyCode(evdev.KEY_F4)
)

var trackedKeys = map[KeyCode]struct{}{
	KeyLeftCtrl:  {},
	KeyRightCtrl: {},
	KeyLeftAlt:   {},
	KeyRightAlt:  {},
	KeyLeftMeta:  {},
	KeyRightMeta: {},
}

func IsTracked(code KeyCode) bool {
	_, ok := trackedKeys[code]
	return ok
}

func IsMeta(code KeyCode) bool {
	return code == KeyLeftMeta || code == KeyRightMeta
}

func (c KeyCode) String() string {
	return evdev.CodeName(evdev.EV_KEY, evdev.EvCode(c))
}

type keyID struct {
	code   KeyCode
	device DeviceID
}

// exitCombo tracks the F2+F4 kill switch. It is only touched from the engine loop.
type exitCombo struct {
	f2Down bool
	f4Down bool
}

func (c *exitCombo) update(code KeyCode, down bool) bool {
	switch code {
	case KeyF2:
		c.f2Down = down
	case KeyF4:
		c.f4Down = down
	}

	return c.f2Down && c.f4Down
}
