package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tabvault/tabvault/internal/bookmarks"
	"github.com/tabvault/tabvault/internal/resolver"
	"github.com/tabvault/tabvault/internal/settings"
)

var flagPruneKeepDays int

func newPruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete expired dated autosave folders",
		Long: `Delete dated folders under the autosave root older than the retention
window. Only folders named YYYY-MM-DD are candidates; anything else under
the autosave root is left alone.`,
		RunE: runPrune,
	}

	cmd.Flags().IntVar(&flagPruneKeepDays, "keep-days", 0,
		"retention window in days (default: the autosavekeepdays setting)")

	return cmd
}

func runPrune(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	cfg, err := a.repo.Settings(ctx)
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}

	keepDays := pruneKeepDays(cmd, cfg, a.logger)

	// An empty parent means look up only: a missing autosave root is not an
	// error here, it just means there is nothing to prune.
	rootID, _, err := a.resolver.Resolve(ctx, resolver.AutosaveFolderName, "")
	if errors.Is(err, bookmarks.ErrNotFound) {
		statusf(flagQuiet, "No autosave folder found; nothing to prune.\n")
		return nil
	}

	if err != nil {
		return fmt.Errorf("finding autosave folder: %w", err)
	}

	deleted, err := a.pruner.Prune(ctx, rootID, keepDays)
	if err != nil {
		return fmt.Errorf("pruning (%d folders already deleted): %w", deleted, err)
	}

	statusf(flagQuiet, "Pruned %d expired folders (kept the last %d days).\n", deleted, keepDays)

	return nil
}

// pruneKeepDays picks the retention window: the --keep-days flag when
// given, otherwise the persisted setting. Both paths clamp to the valid
// range so a bad value can never push the cutoff into the future.
func pruneKeepDays(cmd *cobra.Command, cfg settings.Settings, logger *slog.Logger) int {
	if cmd.Flags().Changed("keep-days") {
		return settings.ClampKeepDays(flagPruneKeepDays, logger)
	}

	return cfg.RetentionDays(logger)
}
