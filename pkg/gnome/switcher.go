package gnome

import (
	"codeberg.org/miketth/dqswitch/pkg/dqswitch"
	"fmt"
	"github.com/godbus/dbus/v5"
)

// The GNOME Shell "Switch to keyboard layout" extension has to be installed; plain
// GNOME Shell does not expose layout switching over D-Bus.
const (
	service = "org.gnome.Shell"
	path    = dbus.ObjectPath("/org/gnome/Shell/Extensions/SwitchToKeyboardLayout")
	iface   = "org.gnome.Shell.Extensions.SwitchToKeyboardLayout"
	call    = iface + ".Call"
	get     = iface + ".Get"
)

type Switcher struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

func Connect() (*Switcher, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}

	return &Switcher{
		conn: conn,
		obj:  conn.Object(service, path),
	}, nil
}

func (s *Switcher) Close() error {
	return s.conn.Close()
}

func (s *Switcher) SwitchTo(layout dqswitch.Layout) error {
	if err := s.obj.Call(call, 0, uint32(layout)).Err; err != nil {
		return fmt.Errorf("call %s: %w", call, err)
	}

	return nil
}

func (s *Switcher) CurrentLayout() (dqswitch.Layout, error) {
	c := s.obj.Call(get, 0)
	if c.Err != nil {
		return 0, fmt.Errorf("call %s: %w, %w", get, c.Err, dqswitch.ErrUnknownLayout)
	}

	return layoutFromReply(c.Body)
}

// layoutFromReply accepts whichever integer type the installed extension version
// declares for Get.
func layoutFromReply(reply []interface{}) (dqswitch.Layout, error) {
	if len(reply) == 0 {
		return 0, fmt.Errorf("empty reply: %w", dqswitch.ErrUnknownLayout)
	}

	v := reply[0]
	if variant, ok := v.(dbus.Variant); ok {
		v = variant.Value()
	}

	switch n := v.(type) {
	case uint32:
		return dqswitch.Layout(n), nil
	case int32:
		return dqswitch.Layout(n), nil
	case uint64:
		return dqswitch.Layout(n), nil
	case int64:
		return dqswitch.Layout(n), nil
	case uint16:
		return dqswitch.Layout(n), nil
	case int16:
		return dqswitch.Layout(n), nil
	case byte:
		return dqswitch.Layout(n), nil
	}

	return 0, fmt.Errorf("unexpected reply type %T: %w", v, dqswitch.ErrUnknownLayout)
}
