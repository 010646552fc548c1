package kde

import (
	"codeberg.org/miketth/dqswitch/pkg/dqswitch"
	"errors"
	"fmt"
	"github.com/godbus/dbus/v5"
)

const (
	service   = "org.kde.keyboard"
	path      = dbus.ObjectPath("/Layouts")
	iface     = "org.kde.KeyboardLayouts"
	setLayout = iface + ".setLayout"
	getLayout = iface + ".getLayout"
)

var ErrInvalidLayout = errors.New("kde rejected layout index")

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
	c := s.obj.Call(setLayout, 0, uint32(layout))
	if c.Err != nil {
		return fmt.Errorf("call %s: %w", setLayout, c.Err)
	}

	return checkSetReply(c.Body, layout)
}

func (s *Switcher) CurrentLayout() (dqswitch.Layout, error) {
	var idx uint32
	err := s.obj.Call(getLayout, 0).Store(&idx)
	if err != nil {
		return 0, fmt.Errorf("call %s: %w, %w", getLayout, err, dqswitch.ErrUnknownLayout)
	}

	return dqswitch.Layout(idx), nil
}

// checkSetReply handles both Plasma versions: older ones return nothing, newer
// ones return whether the index was valid.
func checkSetReply(body []interface{}, layout dqswitch.Layout) error {
	if len(body) == 0 {
		return nil
	}

	ok, isBool := body[0].(bool)
	if isBool && !ok {
		return fmt.Errorf("%w: layout %d", ErrInvalidLayout, layout)
	}

	return nil
}
