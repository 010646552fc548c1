package main

import (
	"codeberg.org/miketth/dqswitch/pkg/config"
	"codeberg.org/miketth/dqswitch/pkg/dqswitch"
	"codeberg.org/miketth/dqswitch/pkg/journal/json"
	"codeberg.org/miketth/dqswitch/pkg/journal/memory"
	"codeberg.org/miketth/dqswitch/pkg/journal/sqlite"
	"context"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"
)

const (
	journalFlushInterval = time.Minute
	journalQueueSize     = 256
)

var errNothingStored = errors.New("journal backend keeps nothing between runs")

type journalStore interface {
	dqswitch.Journal
	Recent(limit int) ([]dqswitch.Entry, error)
}

type journalHandle struct {
	store  journalStore
	looper func(ctx context.Context) error
	close  func() error
}

func (h *journalHandle) Close() error {
	if h.close == nil {
		return nil
	}
	return h.close()
}

// openJournal opens the configured journal backend. With a json journal the
// returned looper owns the file: it flushes periodically and closes it when
// its context ends.
func openJournal(globals *config.Globals, log *zap.SugaredLogger) (*journalHandle, error) {
	if globals.Journal == "none" {
		return &journalHandle{}, nil
	}
	if globals.Journal == "memory" {
		return &journalHandle{store: memory.NewJournal()}, nil
	}

	path, err := journalPath(globals)
	if err != nil {
		return nil, err
	}

	switch globals.Journal {
	case "json":
		j, err := json.NewJournal(path)
		if err != nil {
			return nil, fmt.Errorf("open json journal: %w", err)
		}
		return &journalHandle{
			store: j,
			looper: func(ctx context.Context) error {
				return j.SaveLooper(ctx, journalFlushInterval)
			},
			close: j.Close,
		}, nil

	case "sqlite":
		j, err := sqlite.NewJournal(path, log)
		if err != nil {
			return nil, fmt.Errorf("open sqlite journal: %w", err)
		}
		return &journalHandle{store: j, close: j.Close}, nil
	}

	return nil, fmt.Errorf("unknown journal backend %q", globals.Journal)
}

func journalPath(globals *config.Globals) (string, error) {
	if globals.JournalPath != "" {
		if err := os.MkdirAll(filepath.Dir(globals.JournalPath), 0o755); err != nil {
			return "", fmt.Errorf("create journal dir: %w", err)
		}
		return globals.JournalPath, nil
	}

	path, err := config.JournalPath(globals.Journal)
	if err != nil {
		return "", fmt.Errorf("resolve journal path: %w", err)
	}
	return path, nil
}

type historyCmd struct {
	Limit int `short:"n" default:"20" help:"Number of entries to print."`
}

func (h *historyCmd) Run(globals *config.Globals, log *zap.SugaredLogger) error {
	if globals.Journal == "none" || globals.Journal == "memory" {
		return fmt.Errorf("%w: %s", errNothingStored, globals.Journal)
	}

	handle, err := openJournal(globals, log)
	if err != nil {
		return err
	}
	defer handle.Close()

	entries, err := handle.store.Recent(h.Limit)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tLAYOUT\tREASON\tERROR")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", e.Time.Local().Format(time.DateTime), e.Target, e.Reason, e.Err)
	}
	return w.Flush()
}
