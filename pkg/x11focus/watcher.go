package x11focus

import (
	"codeberg.org/miketth/dqswitch/pkg/dqswitch"
	"codeberg.org/miketth/dqswitch/pkg/procname"
	"context"
	"errors"
	"fmt"
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"go.uber.org/zap"
)

var ErrConnectionClosed = errors.New("x11 connection closed")

// Watcher reports the owning process of the focused window whenever the focused
// window or its title changes.
type Watcher struct {
	conn  *xgb.Conn
	root  xproto.Window
	procs procname.Resolver
	log   *zap.SugaredLogger

	netActiveWindow xproto.Atom
	netWmName       xproto.Atom
	wmName          xproto.Atom
	netWmPid        xproto.Atom

	active xproto.Window
	title  string
}

func Connect(log *zap.SugaredLogger) (*Watcher, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect to X server: %w", err)
	}

	w := &Watcher{
		conn: conn,
		root: xproto.Setup(conn).DefaultScreen(conn).Root,
		log:  log,
	}

	atoms := map[string]*xproto.Atom{
		"_NET_ACTIVE_WINDOW": &w.netActiveWindow,
		"_NET_WM_NAME":       &w.netWmName,
		"WM_NAME":            &w.wmName,
		"_NET_WM_PID":        &w.netWmPid,
	}
	for name, atom := range atoms {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("intern atom %s: %w", name, err)
		}
		*atom = reply.Atom
	}

	if err := w.selectPropertyEvents(w.root); err != nil {
		conn.Close()
		return nil, fmt.Errorf("watch root window: %w", err)
	}

	return w, nil
}

func (w *Watcher) Watch(ctx context.Context, out chan<- dqswitch.FocusEvent) error {
	go func() {
		<-ctx.Done()
		w.conn.Close()
	}()

	if w.updateActive() {
		w.updateTitle()
		if err := w.emit(ctx, out); err != nil {
			return err
		}
	}

	for {
		ev, xerr := w.conn.WaitForEvent()
		if ev == nil && xerr == nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return ErrConnectionClosed
		}
		if xerr != nil {
			// windows vanish between the event and our query all the time
			w.log.Debugw("x11 error", "error", xerr)
			continue
		}

		pn, ok := ev.(xproto.PropertyNotifyEvent)
		if !ok {
			continue
		}

		changed := false
		switch pn.Atom {
		case w.netActiveWindow:
			if w.updateActive() {
				w.updateTitle()
				changed = true
			}
		case w.netWmName, w.wmName:
			changed = pn.Window == w.active && w.updateTitle()
		}

		if !changed {
			continue
		}

		if err := w.emit(ctx, out); err != nil {
			return err
		}
	}
}

func (w *Watcher) emit(ctx context.Context, out chan<- dqswitch.FocusEvent) error {
	ev := dqswitch.FocusEvent{ProcessName: w.processName()}
	w.log.Debugw("focus changed", "window", w.active, "title", w.title, "process", ev.ProcessName)

	select {
	case out <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Watcher) updateActive() bool {
	value, err := w.property(w.root, w.netActiveWindow)
	if err != nil {
		w.log.Debugw("read active window", "error", err)
		return false
	}

	win, _ := firstCardinal(value)
	active := xproto.Window(win)
	if active == w.active {
		return false
	}

	if w.active != 0 {
		_ = xproto.ChangeWindowAttributes(w.conn, w.active, xproto.CwEventMask, []uint32{xproto.EventMaskNoEvent})
	}
	if active != 0 {
		if err := w.selectPropertyEvents(active); err != nil {
			w.log.Debugw("watch active window", "window", active, "error", err)
		}
	}

	w.active = active
	return true
}

func (w *Watcher) updateTitle() bool {
	title := ""
	if w.active != 0 {
		for _, atom := range []xproto.Atom{w.netWmName, w.wmName} {
			value, err := w.property(w.active, atom)
			if err == nil && len(value) > 0 {
				title = string(value)
				break
			}
		}
	}

	if title == w.title {
		return false
	}
	w.title = title
	return true
}

func (w *Watcher) processName() string {
	if w.active == 0 {
		return ""
	}

	value, err := w.property(w.active, w.netWmPid)
	if err != nil {
		return ""
	}

	pid, ok := firstCardinal(value)
	if !ok {
		return ""
	}

	name, err := w.procs.Name(int(pid))
	if err != nil {
		w.log.Debugw("resolve process name", "pid", pid, "error", err)
		return ""
	}
	return name
}

func (w *Watcher) property(win xproto.Window, atom xproto.Atom) ([]byte, error) {
	reply, err := xproto.GetProperty(w.conn, false, win, atom, xproto.GetPropertyTypeAny, 0, 1<<16).Reply()
	if err != nil {
		return nil, fmt.Errorf("get property %d of %d: %w", atom, win, err)
	}
	return reply.Value, nil
}

func (w *Watcher) selectPropertyEvents(win xproto.Window) error {
	return xproto.ChangeWindowAttributesChecked(
		w.conn, win, xproto.CwEventMask, []uint32{xproto.EventMaskPropertyChange},
	).Check()
}

func firstCardinal(value []byte) (uint32, bool) {
	if len(value) < 4 {
		return 0, false
	}
	return xgb.Get32(value), true
}
