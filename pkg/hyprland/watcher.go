package hyprland

import (
	"codeberg.org/miketth/dqswitch/pkg/dqswitch"
	"codeberg.org/miketth/dqswitch/pkg/procname"
	"context"
	"fmt"
	"go.uber.org/zap"
)

type FocusWatcher struct {
	ctl   *Hyprctl
	procs procname.Resolver
	log   *zap.SugaredLogger
}

func NewFocusWatcher(ctl *Hyprctl, log *zap.SugaredLogger) *FocusWatcher {
	return &FocusWatcher{ctl: ctl, log: log}
}

func (w *FocusWatcher) Watch(ctx context.Context, out chan<- dqswitch.FocusEvent) error {
	client, err := Connect()
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer client.Close()

	go func() {
		<-ctx.Done()
		_ = client.Close()
	}()

	lines := make(chan string)
	errCh := make(chan error, 1)
	go func() {
		for {
			line, err := client.ReadLine()
			if err != nil {
				errCh <- err
				return
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

	last := ""
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errCh:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("get line: %w", err)
		case line := <-lines:
			ev, err := parseEvent(line)
			if err != nil {
				w.log.Debugw("skipping event", "error", err)
				continue
			}
			if ev.Type != "activewindow" || ev.Data == last {
				continue
			}
			last = ev.Data

			focus := dqswitch.FocusEvent{ProcessName: w.processName()}
			w.log.Debugw("focus changed", "window", ev.Data, "process", focus.ProcessName)

			select {
			case out <- focus:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (w *FocusWatcher) processName() string {
	pid, err := w.ctl.ActiveWindowPID()
	if err != nil {
		w.log.Debugw("query active window", "error", err)
		return ""
	}

	name, err := w.procs.Name(pid)
	if err != nil {
		w.log.Debugw("resolve process name", "pid", pid, "error", err)
		return ""
	}
	return name
}
