package evdevsource

import (
	"codeberg.org/miketth/dqswitch/pkg/dqswitch"
	"context"
	"errors"
	"fmt"
	"github.com/holoplot/go-evdev"
	"go.uber.org/zap"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

var ErrNoDevices = errors.New("no readable input devices")

type device struct {
	id  dqswitch.DeviceID
	dev *evdev.InputDevice
}

// Source reads key events from every device matching a glob. Each device gets its
// own reader goroutine so events from one device are never reordered.
type Source struct {
	devices []device
	events  chan dqswitch.KeyEvent
	log     *zap.SugaredLogger

	wg      sync.WaitGroup
	errLock sync.Mutex
	err     error
	closed  sync.Once
}

func Open(pattern string, log *zap.SugaredLogger) (*Source, error) {
	paths, err := glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}

	s := &Source{
		events: make(chan dqswitch.KeyEvent, 64),
		log:    log,
	}

	for _, path := range paths {
		dev, err := evdev.Open(path)
		if err != nil {
			log.Warnw("skipping input device", "path", path, "error", err)
			continue
		}

		name, _ := dev.Name()
		log.Infow("listening on input device", "path", path, "name", name)

		s.devices = append(s.devices, device{id: dqswitch.DeviceID(path), dev: dev})
	}

	if len(s.devices) == 0 {
		return nil, fmt.Errorf("%w matching %q", ErrNoDevices, pattern)
	}

	return s, nil
}

func (s *Source) Start(ctx context.Context) {
	for _, d := range s.devices {
		s.wg.Add(1)
		go s.read(ctx, d)
	}

	// a blocked ReadOne only notices the close on the device's next event
	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()

	go func() {
		s.wg.Wait()
		close(s.events)
	}()
}

func (s *Source) Events() <-chan dqswitch.KeyEvent {
	return s.events
}

// Err returns the last read error once Events has been closed.
func (s *Source) Err() error {
	s.errLock.Lock()
	defer s.errLock.Unlock()
	return s.err
}

func (s *Source) Close() error {
	var errs []error
	s.closed.Do(func() {
		for _, d := range s.devices {
			if err := d.dev.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", d.id, err))
			}
		}
	})
	return errors.Join(errs...)
}

func (s *Source) read(ctx context.Context, d device) {
	defer s.wg.Done()

	for {
		ev, err := d.dev.ReadOne()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Warnw("input device stopped", "device", d.id, "error", err)
			s.setErr(fmt.Errorf("read %s: %w", d.id, err))
			return
		}

		kev, ok := translate(ev, d.id)
		if !ok {
			continue
		}

		select {
		case s.events <- kev:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Source) setErr(err error) {
	s.errLock.Lock()
	defer s.errLock.Unlock()
	s.err = err
}

func translate(ev *evdev.InputEvent, id dqswitch.DeviceID) (dqswitch.KeyEvent, bool) {
	if ev.Type != evdev.EV_KEY {
		return dqswitch.KeyEvent{}, false
	}

	kev := dqswitch.KeyEvent{
		Code:   dqswitch.KeyCode(ev.Code),
		Device: id,
	}

	switch evdev.KeyEventState(ev.Value) {
	case evdev.KeyDown:
		kev.Down = true
	case evdev.KeyUp:
		kev.Down = false
	default:
		// autorepeat
		return dqswitch.KeyEvent{}, false
	}

	return kev, true
}

// glob is filepath.Glob plus "**", which matches any number of directories,
// none included: /dev/input/**/*-event-kbd finds by-path and by-id nodes alike.
func glob(pattern string) ([]string, error) {
	before, after, ok := strings.Cut(pattern, "**")
	if !ok {
		return filepath.Glob(pattern)
	}

	roots := []string{filepath.Clean(before)}
	if before == "" {
		roots = []string{"."}
	} else if strings.ContainsAny(before, `*?[\`) {
		var err error
		roots, err = filepath.Glob(filepath.Clean(before))
		if err != nil {
			return nil, err
		}
	}

	after = strings.TrimLeft(after, string(filepath.Separator))
	if after == "" {
		after = "*"
	}

	seen := make(map[string]struct{})
	var matches []string
	for _, root := range roots {
		var dirs []string
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// unreadable directories are skipped like unreadable devices
				return nil
			}
			if d.IsDir() {
				dirs = append(dirs, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		for _, dir := range dirs {
			found, err := glob(filepath.Join(dir, after))
			if err != nil {
				return nil, err
			}
			for _, path := range found {
				if _, ok := seen[path]; ok {
					continue
				}
				seen[path] = struct{}{}
				matches = append(matches, path)
			}
		}
	}

	sort.Strings(matches)
	return matches, nil
}
