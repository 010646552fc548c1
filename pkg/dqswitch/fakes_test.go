package dqswitch

import (
	"errors"
	"go.uber.org/zap"
	"sync"
)

type fakeBackend struct {
	mu       sync.Mutex
	current  Layout
	queryErr error
	sticky   bool
	calls    []Layout
}

func (b *fakeBackend) SwitchTo(layout Layout) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.calls = append(b.calls, layout)
	if !b.sticky {
		b.current = layout
	}
	return nil
}

func (b *fakeBackend) CurrentLayout() (Layout, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.queryErr != nil {
		return 0, b.queryErr
	}
	return b.current, nil
}

func (b *fakeBackend) Calls() []Layout {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]Layout(nil), b.calls...)
}

func (b *fakeBackend) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.calls = nil
}

type failingBackend struct{}

func (failingBackend) SwitchTo(Layout) error          { return errors.New("dbus: no reply") }
func (failingBackend) CurrentLayout() (Layout, error) { return 0, nil }

type recordingJournal struct {
	mu      sync.Mutex
	entries []Entry
}

func (j *recordingJournal) Record(entry Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.entries = append(j.entries, entry)
	return nil
}

type chanSource struct {
	ch  chan KeyEvent
	err error
}

func newChanSource() *chanSource {
	return &chanSource{ch: make(chan KeyEvent, 64)}
}

func (s *chanSource) Events() <-chan KeyEvent { return s.ch }
func (s *chanSource) Err() error              { return s.err }

const (
	dvorak Layout = 0
	qwerty Layout = 1
)

func newTestEngine(backend LayoutSwitcher, opts Options) *Engine {
	log := zap.NewNop().Sugar()
	sw := NewSwitcher(backend, dvorak, qwerty, nil, log)
	return NewEngine(sw, opts, log)
}
