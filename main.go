package main

import (
	"codeberg.org/miketth/dqswitch/pkg/config"
	"codeberg.org/miketth/dqswitch/pkg/dqswitch"
	"codeberg.org/miketth/dqswitch/pkg/evdevsource"
	"context"
	"errors"
	"fmt"
	"github.com/alecthomas/kong"
	"github.com/coreos/go-systemd/v22/daemon"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

var errExitCombo = errors.New("exit combo pressed")

type cli struct {
	config.Globals

	Run     runCmd     `cmd:"" default:"withargs" help:"Switch to the alternative layout while Ctrl, Alt or Meta are held (default)."`
	History historyCmd `cmd:"" help:"Print the most recent layout switches from the journal."`
}

// configFile is the path of the loaded config file, empty if there is none.
type configFile string

func main() {
	err := run()
	if err != nil {
		log.Fatalf("error: %+v", err)
	}
}

func run() error {
	tree, configPath, err := config.LoadFile(config.CandidatePaths(config.FindUserConfig(os.Args[1:])))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var c cli
	kctx := kong.Parse(&c,
		kong.Name("dqswitch"),
		kong.Description("Dvorak QWERTY switcher: use the alternative layout for keyboard shortcuts."),
		kong.UsageOnError(),
		config.Vars(),
		kong.Resolvers(config.Resolver(tree)),
	)

	log, err := newLogger(c.Debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync()

	if configPath != "" {
		log.Infow("loaded config", "path", configPath)
	}

	kctx.Bind(log, &c.Globals, configFile(configPath))
	return kctx.Run()
}

type runCmd struct {
	config.Switching
}

func (r *runCmd) Run(globals *config.Globals, log *zap.SugaredLogger, cfgFile configFile) error {
	ctx := context.Background()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	desk, err := connectDesktop(r.DesktopName(), r.XkbRules, log)
	if err != nil {
		return fmt.Errorf("connect desktop: %w", err)
	}
	defer desk.Close()

	journal, err := openJournal(globals, log)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}

	// The queue drains before the json looper saves and closes its file.
	var sink dqswitch.Journal
	var queue *dqswitch.JournalQueue
	if journal.store != nil {
		queue = dqswitch.NewJournalQueue(journal.store, journalQueueSize, log)
		sink = queue
	}

	flushCtx, stopFlush := context.WithCancel(context.Background())
	flushDone := make(chan struct{})
	go func() {
		defer close(flushDone)
		if journal.looper == nil {
			return
		}
		err := journal.looper(flushCtx)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Warnw("journal flush loop stopped", "error", err)
		}
	}()

	defer func() {
		if queue != nil {
			queue.Close()
		}
		stopFlush()
		<-flushDone
		if journal.looper == nil {
			_ = journal.Close()
		}
	}()

	source, err := evdevsource.Open(r.Device, log)
	if err != nil {
		return fmt.Errorf("open input devices: %w", err)
	}
	defer source.Close()

	sw := dqswitch.NewSwitcher(desk.switcher, dqswitch.Layout(r.Main), dqswitch.Layout(r.Alternative), sink, log)
	engine := dqswitch.NewEngine(sw, dqswitch.Options{
		MetaDelay:       r.MetaDelayDuration(),
		AlwaysDefault:   r.AlwaysMainApps(),
		AlwaysAlternate: r.AlwaysAlternativeApps(),
	}, log)

	log.Infow("started dqswitch",
		"desktop", desk.name,
		"main", r.Main,
		"alternative", r.Alternative,
		"meta_delay", r.MetaDelayDuration(),
	)

	errChan := make(chan error, 3)
	var wg sync.WaitGroup

	source.Start(ctx)

	var focus chan dqswitch.FocusEvent
	if desk.watcher != nil {
		focus = make(chan dqswitch.FocusEvent, 8)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer close(focus)
			err := desk.watcher.Watch(ctx, focus)
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Warnw("focus watcher stopped", "error", err)
			}
		}()
	}

	if cfgFile != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := config.WatchApps(ctx, string(cfgFile), log, func(apps config.Apps) {
				engine.SetOverrides(apps.AlwaysMain, apps.AlwaysAlternative)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Warnw("config watcher stopped", "error", err)
			}
		}()
	}

	wg.Add(2)

	go func() {
		defer wg.Done()
		err := engine.Run(ctx, source, focus)
		if err == nil {
			err = errExitCombo
		}
		errChan <- fmt.Errorf("engine: %w", err)
	}()

	go func() {
		defer wg.Done()
		err := systemdNotifyLoop(ctx)
		if err != nil {
			errChan <- fmt.Errorf("systemd notify: %w", err)
		}
	}()

	err = <-errChan
	cancel()
	wg.Wait()

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, errExitCombo):
		log.Infow("shutting down", "reason", err)
		return nil
	case err != nil:
		return err
	}

	return nil
}

func systemdNotifyLoop(ctx context.Context) error {
	// tell systemd that we're ready
	supported, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		return fmt.Errorf("notify systemd: %w", err)
	}
	if !supported {
		return nil
	}

	_, _ = daemon.SdNotify(false, "STATUS=Watching modifiers")

	t, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		return fmt.Errorf("check watchdog: %w", err)
	}
	// if watchdog is not enabled, we don't need to notify it
	if t == 0 {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
			return ctx.Err()

		case <-time.After(t / 2):
			_, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog)
			if err != nil {
				return fmt.Errorf("notify watchdog: %w", err)
			}
		}
	}
}

func newLogger(debug bool) (*zap.SugaredLogger, error) {
	loggerConfig := zap.NewDevelopmentConfig()

	loggerConfig.OutputPaths = []string{"stdout"}
	loggerConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if debug {
		loggerConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		loggerConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger.Sugar(), nil
}
