package dqswitch

import (
	"context"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"strings"
	"sync"
	"time"
)

var (
	ErrSourceClosed  = errors.New("key event source closed")
	ErrEngineStopped = errors.New("engine already ran")
)

type Mode int

const (
	ModeAutoswitch Mode = iota
	// ModeOverridden means an always-main or always-alternative app has focus.
	ModeOverridden
)

func (m Mode) String() string {
	switch m {
	case ModeAutoswitch:
		return "autoswitch"
	case ModeOverridden:
		return "overridden"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

type Action int

const (
	Continue Action = iota
	Stop
)

type Options struct {
	// MetaDelay is how long a Meta key has to be held before it switches. Zero
	// switches immediately like the other modifiers.
	MetaDelay       time.Duration
	AlwaysDefault   []string
	AlwaysAlternate []string
}

type timerFired struct {
	seq uint64
	key keyID
}

// Engine decides when to switch layouts. All of its state except the override app
// lists is owned by the goroutine running Run, and the On* methods must only be
// called from there (or from a test with no Run active).
type Engine struct {
	switcher  *Switcher
	log       *zap.SugaredLogger
	metaDelay time.Duration

	overridesLock   sync.RWMutex
	alwaysDefault   map[string]struct{}
	alwaysAlternate map[string]struct{}

	mode Mode
	keys map[keyID]bool
	exit exitCombo

	timerSeq uint64
	timers   map[uint64]*time.Timer
	fired    chan timerFired
	done     chan struct{}
	stopped  sync.Once
}

func NewEngine(switcher *Switcher, opts Options, log *zap.SugaredLogger) *Engine {
	e := &Engine{
		switcher:  switcher,
		log:       log,
		metaDelay: opts.MetaDelay,
		mode:      ModeAutoswitch,
		keys:      make(map[keyID]bool),
		timers:    make(map[uint64]*time.Timer),
		fired:     make(chan timerFired, 16),
		done:      make(chan struct{}),
	}
	e.SetOverrides(opts.AlwaysDefault, opts.AlwaysAlternate)

	return e
}

// Mode is owned by the Run loop; read it from there or once Run has returned.
func (e *Engine) Mode() Mode {
	return e.mode
}

// SetOverrides replaces the always-main and always-alternative app lists. It is
// safe to call from any goroutine; the new lists apply from the next focus change.
func (e *Engine) SetOverrides(alwaysDefault, alwaysAlternate []string) {
	def := toSet(alwaysDefault)
	alt := toSet(alwaysAlternate)

	e.overridesLock.Lock()
	defer e.overridesLock.Unlock()

	e.alwaysDefault = def
	e.alwaysAlternate = alt
}

func (e *Engine) Start() {
	e.switcher.SwitchToDefault(ReasonStartup)
}

// Run owns the engine until it returns. An Engine runs once: a second call returns
// ErrEngineStopped.
func (e *Engine) Run(ctx context.Context, source KeyEventSource, focus <-chan FocusEvent) error {
	select {
	case <-e.done:
		return ErrEngineStopped
	default:
	}
	defer e.stopTimers()

	e.Start()

	keys := source.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-keys:
			if !ok {
				if err := source.Err(); err != nil {
					return fmt.Errorf("read key events: %w", err)
				}
				return ErrSourceClosed
			}

			if e.HandleKey(ev) == Stop {
				e.log.Info("exit combo pressed, stopping")
				return nil
			}

		case ev, ok := <-focus:
			if !ok {
				e.log.Warn("focus watcher stopped, app overrides disabled")
				focus = nil
				continue
			}
			e.OnFocusChange(ev.ProcessName)

		case t := <-e.fired:
			delete(e.timers, t.seq)
			e.onMetaTimeout(t.key)
		}
	}
}

func (e *Engine) HandleKey(ev KeyEvent) Action {
	e.log.Debugw("key event", "key", ev.Code, "device", ev.Device, "down", ev.Down)

	if ev.Down {
		return e.OnKeyDown(ev.Code, ev.Device)
	}
	return e.OnKeyUp(ev.Code, ev.Device)
}

func (e *Engine) OnKeyDown(code KeyCode, device DeviceID) Action {
	if e.exit.update(code, true) {
		return Stop
	}

	if e.mode == ModeOverridden || !IsTracked(code) {
		return Continue
	}

	id := keyID{code: code, device: device}
	e.keys[id] = true

	if IsMeta(code) && e.metaDelay > 0 {
		e.scheduleMetaCheck(id)
		return Continue
	}

	if !e.switcher.AlternativeIsOn() && e.switcher.IsSwitchable() {
		e.switcher.SwitchToAlternative(ReasonKey)
	}

	return Continue
}

func (e *Engine) OnKeyUp(code KeyCode, device DeviceID) Action {
	e.exit.update(code, false)

	if e.mode == ModeOverridden {
		return Continue
	}

	id := keyID{code: code, device: device}
	if _, ok := e.keys[id]; ok {
		e.keys[id] = false
	}

	if !e.switcher.AlternativeIsOn() || e.anyHeld() {
		return Continue
	}

	if e.switcher.IsSwitchable() {
		e.switcher.SwitchToDefault(ReasonRelease)
	}

	return Continue
}

// OnFocusChange does not replay held keys when leaving an overridden app: the
// user has to press a modifier again to get the alternative layout back.
func (e *Engine) OnFocusChange(processName string) {
	e.overridesLock.RLock()
	_, isDefault := e.alwaysDefault[processName]
	_, isAlternate := e.alwaysAlternate[processName]
	e.overridesLock.RUnlock()

	e.log.Debugw("focus changed", "process", processName, "mode", e.mode)

	switch {
	case processName != "" && isDefault:
		e.mode = ModeOverridden
		e.switcher.SwitchToDefault(ReasonFocusDefault)
	case processName != "" && isAlternate:
		e.mode = ModeOverridden
		e.switcher.SwitchToAlternative(ReasonFocusAlternate)
	case e.mode == ModeOverridden:
		e.mode = ModeAutoswitch
		e.switcher.SwitchToDefault(ReasonFocusLeave)
	}
}

func (e *Engine) scheduleMetaCheck(id keyID) {
	e.timerSeq++
	seq := e.timerSeq

	e.timers[seq] = time.AfterFunc(e.metaDelay, func() {
		select {
		case e.fired <- timerFired{seq: seq, key: id}:
		case <-e.done:
		}
	})
}

func (e *Engine) onMetaTimeout(id keyID) {
	if e.mode == ModeOverridden || !e.keys[id] || e.switcher.AlternativeIsOn() {
		return
	}

	if e.switcher.IsSwitchable() {
		e.switcher.SwitchToAlternative(ReasonMetaDelay)
	}
}

func (e *Engine) anyHeld() bool {
	for _, held := range e.keys {
		if held {
			return true
		}
	}
	return false
}

func (e *Engine) stopTimers() {
	e.stopped.Do(func() { close(e.done) })
	for seq, t := range e.timers {
		t.Stop()
		delete(e.timers, seq)
	}
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		set[name] = struct{}{}
	}
	return set
}
