package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tabvault/tabvault/internal/bookmarks"
	"github.com/tabvault/tabvault/internal/bridge"
	"github.com/tabvault/tabvault/internal/config"
	"github.com/tabvault/tabvault/internal/prune"
	"github.com/tabvault/tabvault/internal/reconcile"
	"github.com/tabvault/tabvault/internal/resolver"
	"github.com/tabvault/tabvault/internal/settings"
	"github.com/tabvault/tabvault/internal/stats"
	"github.com/tabvault/tabvault/internal/tabs"
)

// app bundles the wired-up collaborators behind every subcommand. Built
// once per invocation by newApp and torn down via close.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	repo    *settings.FileStore
	store   bookmarks.Store
	browser tabs.Browser // nil without a bridge connection

	resolver *resolver.Resolver
	engine   *reconcile.Engine
	recorder *stats.Accumulator
	pruner   *prune.Pruner

	close func()
}

// family maps the configured browser name to the bookmark root family.
func family(cfg *config.Config) resolver.Family {
	if cfg.Browser == config.BrowserChrome {
		return resolver.FamilyChrome
	}

	return resolver.FamilyFirefox
}

// newApp builds the full object graph from the loaded config. With a
// bridge URL configured, both bookmarks and tabs go through the live
// browser; otherwise bookmarks hit the local SQLite mirror and tab
// snapshots must come from a file.
func newApp(ctx context.Context) (*app, error) {
	logger := buildLogger()

	a := &app{
		cfg:    loadedCfg,
		logger: logger,
		repo:   settings.NewFileStore(loadedCfg.SettingsFile),
		close:  func() {},
	}

	if loadedCfg.BridgeURL != "" {
		client, err := bridge.Dial(ctx, loadedCfg.BridgeURL, logger)
		if err != nil {
			return nil, fmt.Errorf("connecting to browser bridge: %w", err)
		}

		a.store = client
		a.browser = client.Browser()
		a.close = func() {
			if err := client.Close(); err != nil {
				logger.Warn("error closing bridge", "error", err)
			}
		}
	} else {
		store, err := bookmarks.NewSQLiteStore(loadedCfg.BookmarksDB, logger)
		if err != nil {
			return nil, fmt.Errorf("opening bookmark database: %w", err)
		}

		a.store = store
		a.close = func() {
			if err := store.Close(); err != nil {
				logger.Warn("error closing bookmark database", "error", err)
			}
		}
	}

	a.resolver = resolver.New(a.store, logger)
	a.engine = reconcile.NewEngine(a.store, logger)
	a.recorder = stats.New(a.repo, logger)
	a.pruner = prune.New(a.store, logger)

	return a, nil
}

// snapshot returns the tab snapshot: live from the bridge when connected,
// otherwise from the given file.
func (a *app) snapshot(ctx context.Context, tabsFile string) ([]tabs.Tab, error) {
	if a.browser != nil {
		return a.browser.Query(ctx)
	}

	if tabsFile == "" {
		return nil, fmt.Errorf("no browser bridge configured; pass --tabs-file or set bridge_url")
	}

	return tabs.LoadSnapshot(tabsFile)
}
