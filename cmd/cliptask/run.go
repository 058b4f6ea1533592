package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/oklog/run"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/cliptask/internal/app"
	"go.klb.dev/cliptask/internal/clip"
	"go.klb.dev/cliptask/internal/console"
	"go.klb.dev/cliptask/internal/ipc"
	"go.klb.dev/cliptask/internal/presenter"
)

func newRunCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the task tracker and capture the clipboard",
		Long: `Starts the tracker. Every new clipboard value becomes a task and the
list is redrawn on stdout after each change.

Type a line to add a task. Commands:
  :done N   :undo N   :rm N   :list   :pause   :resume

Change detection (--observer):
  auto    clipboard viewer chain on Windows, 1s poll elsewhere
  chain   clipboard viewer chain (falls back to poll off Windows)
  poll    read the clipboard once a second

Precedence (lowest to highest): defaults, config file, CLIPTASK_* env vars, flags`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runTracker(v) },
	}

	f := cmd.Flags()
	f.String("observer", "auto", "change detection: auto|chain|poll")
	f.Bool("no-monitor", false, "start with clipboard capture paused")
	f.Bool("no-render", false, "do not draw the task list on stdout")
	f.Bool("no-console", false, "do not read commands from stdin")
	addSocketFlag(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runTracker(v *viper.Viper) error {
	if err := setupLogging(v); err != nil {
		return err
	}

	strategy, err := clip.ParseStrategy(v.GetString("observer"))
	if err != nil {
		return err
	}

	backend := clip.New()
	defer backend.Close()
	observer := clip.NewObserver(strategy)

	var renderer app.Renderer
	if !v.GetBool("no-render") {
		renderer = presenter.NewText(os.Stdout)
	}

	a := app.New(app.Config{
		Backend:  backend,
		Observer: observer,
		Renderer: renderer,
	})

	path := socketPath(v)
	slog.Info("cliptask starting",
		"version", Version,
		"backend", backend.Name(),
		"observer", observer.Name(),
		"socket", path,
	)

	ln, err := ipc.Listen(path)
	switch {
	case errors.Is(err, ipc.ErrRunning):
		return fmt.Errorf("%w (socket %s)", err, path)
	case err != nil:
		slog.Warn("control socket unavailable", "err", err)
		ln = nil
	}

	if !v.GetBool("no-monitor") {
		if err := a.SetMonitoring(true); err != nil {
			if ln != nil {
				_ = ln.Close()
			}
			return fmt.Errorf("start clipboard capture: %w", err)
		}
	}

	var g run.Group

	// OS signals.
	{
		signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				slog.Debug("termination signal received")
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// UI loop.
	{
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		g.Add(
			func() error {
				return a.Run(ctx)
			},
			func(_ error) {
				a.Close()
				cancel()
			},
		)
	}

	// Control socket for add/list/done/... commands.
	if ln != nil {
		slog.Info("control socket listening", "path", path)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		g.Add(
			func() error {
				return a.Serve(ctx, ln)
			},
			func(_ error) {
				cancel()
			},
		)
	}

	// Console.
	if !v.GetBool("no-console") {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		g.Add(
			func() error {
				if err := console.Run(ctx, os.Stdin, os.Stderr, a); err != nil && ctx.Err() == nil {
					slog.Error("console stopped, tracker keeps running", "err", err)
				}
				// Without a console, keep running until something else stops us.
				<-ctx.Done()
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}
