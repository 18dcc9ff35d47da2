package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tabvault/tabvault/internal/scheduler"
	"github.com/tabvault/tabvault/internal/settings"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run the autosave daemon",
		Long: `Run in the foreground, saving tabs periodically per the settings file.

The settings file is watched for changes: toggling autosave or changing
the interval takes effect without a restart. Stop with Ctrl-C.`,
		RunE: runWatch,
	}
}

func runWatch(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	if a.browser == nil {
		return fmt.Errorf("watch requires a browser bridge; set bridge_url in the config")
	}

	ctx := shutdownContext(cmd.Context(), a.logger)

	watcher, err := settings.NewWatcher(a.repo.Path(), a.logger)
	if err != nil {
		return err
	}

	sched := scheduler.New(scheduler.Config{
		Settings:   a.repo,
		Alarms:     scheduler.NewTickerAlarms(a.logger),
		Resolver:   a.resolver,
		Reconciler: a.engine,
		Tabs:       a.browser,
		Recorder:   a.recorder,
		Pruner:     a.pruner,
		Family:     family(a.cfg),
		Logger:     a.logger,
	})

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return watcher.Run(ctx) })
	g.Go(func() error { return sched.Run(ctx, watcher.Changes()) })

	statusf(flagQuiet, "Watching for autosave; press Ctrl-C to stop.\n")

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}
