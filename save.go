package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/tabvault/tabvault/internal/reconcile"
	"github.com/tabvault/tabvault/internal/resolver"
	"github.com/tabvault/tabvault/internal/settings"
	"github.com/tabvault/tabvault/internal/stats"
	"github.com/tabvault/tabvault/internal/tabs"
)

// defaultFolderName is used when no folder is given and no remembered
// folder exists.
const defaultFolderName = "Save my tabs!"

// Save flags.
var (
	flagSaveFolder     string
	flagSaveAllWindows bool
	flagSaveOverwrite  bool
	flagSavePinned     bool
	flagSaveCloseTabs  bool
	flagSaveTabsFile   string
)

func newSaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save the current tabs into a bookmark folder",
		Long: `Save the current tab set into a bookmark folder.

Without --overwrite, missing bookmarks are appended and nothing is deleted.
With --overwrite, the folder is converged to exactly the current tab set:
extras are removed and existing bookmarks for still-open tabs are kept
untouched.`,
		RunE: runSave,
	}

	cmd.Flags().StringVarP(&flagSaveFolder, "folder", "f", "", "target folder name")
	cmd.Flags().BoolVar(&flagSaveAllWindows, "all-windows", false, "save each window into its own subfolder")
	cmd.Flags().BoolVar(&flagSaveOverwrite, "overwrite", false, "replace folder contents instead of appending")
	cmd.Flags().BoolVar(&flagSavePinned, "save-pinned", false, "include pinned tabs")
	cmd.Flags().BoolVar(&flagSaveCloseTabs, "close-tabs", false, "close saved tabs afterwards")
	cmd.Flags().StringVar(&flagSaveTabsFile, "tabs-file", "", "read the tab snapshot from a JSON file")

	return cmd
}

func runSave(cmd *cobra.Command, _ []string) error {
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

	// Flags override the persisted settings for this invocation only.
	if cmd.Flags().Changed("overwrite") {
		cfg.Overwrite = flagSaveOverwrite
	}

	if cmd.Flags().Changed("save-pinned") {
		cfg.SavePinned = flagSavePinned
	}

	snapshot, err := a.snapshot(ctx, flagSaveTabsFile)
	if err != nil {
		return err
	}

	if tabs.IsEmptySet(snapshot) {
		statusf(flagQuiet, "Nothing to save: no tabs worth keeping.\n")
		return nil
	}

	name := folderName(cfg, snapshot)

	rootID := resolver.RootFolderID(family(a.cfg), cfg.RootFolder, cfg.CustomRootFolder, a.logger)

	folderID, created, err := a.resolver.Resolve(ctx, name, rootID)
	if err != nil {
		return fmt.Errorf("resolving folder %q: %w", name, err)
	}

	foldersCreated := 0
	if created {
		foldersCreated++
	}

	policy := reconcile.Policy{Overwrite: cfg.Overwrite, SavePinned: cfg.SavePinned}

	var result reconcile.Result

	if flagSaveAllWindows {
		result, foldersCreated, err = saveAllWindows(ctx, a, folderID, foldersCreated, snapshot, policy)
	} else {
		result, err = a.engine.Reconcile(ctx, folderID, snapshot, policy)
	}

	if err != nil {
		return err
	}

	summary := stats.Summary{
		TabsSaved:      len(tabs.Filter(snapshot, cfg.SavePinned)),
		FoldersCreated: foldersCreated,
	}

	if err := a.recorder.Record(ctx, summary); err != nil {
		a.logger.Warn("could not record save statistics", "error", err)
	}

	if cfg.RememberLast && name != cfg.LastFolder {
		cfg.LastFolder = name
		if err := a.repo.SaveSettings(ctx, cfg); err != nil {
			a.logger.Warn("could not remember last folder", "error", err)
		}
	}

	statusf(flagQuiet, "Saved %d tabs to %q (%d new, %d removed, %d kept).\n",
		summary.TabsSaved, name, result.Created, result.Deleted, result.Kept)

	if flagSaveCloseTabs || cfg.CloseTabs {
		return closeAfterSave(ctx, a, cfg.ClosePinned)
	}

	return nil
}

// folderName picks the target folder name: the --folder flag, then the
// remembered last folder, then the default. The optional prefix is only
// applied to the default; explicit and remembered names already carry
// whatever prefix they were saved with.
func folderName(cfg settings.Settings, snapshot []tabs.Tab) string {
	if flagSaveFolder != "" {
		return flagSaveFolder
	}

	if cfg.RememberLast && cfg.LastFolder != "" {
		return cfg.LastFolder
	}

	prefix := resolver.FolderPrefix(cfg, time.Now(), windowTitle(snapshot))

	return resolver.ApplyPrefix(prefix, defaultFolderName)
}

// windowTitle approximates the focused window's title with the title of
// its first tab.
func windowTitle(snapshot []tabs.Tab) string {
	if len(snapshot) == 0 {
		return ""
	}

	return snapshot[0].Title
}

// saveAllWindows reconciles each window into its own subfolder of the
// target folder, named by window id so that repeated saves of the same
// window hit the same subfolder.
func saveAllWindows(ctx context.Context, a *app, folderID string, foldersCreated int, snapshot []tabs.Tab, policy reconcile.Policy) (reconcile.Result, int, error) {
	groups := tabs.GroupByWindow(snapshot)

	windowIDs := make([]int, 0, len(groups))
	for id := range groups {
		windowIDs = append(windowIDs, id)
	}
	sort.Ints(windowIDs)

	var total reconcile.Result

	for _, windowID := range windowIDs {
		title := fmt.Sprintf("Window %d", windowID)

		childID, created, err := a.resolver.ResolveChild(ctx, folderID, title)
		if err != nil {
			return total, foldersCreated, fmt.Errorf("resolving subfolder %q: %w", title, err)
		}

		if created {
			foldersCreated++
		}

		result, err := a.engine.Reconcile(ctx, childID, groups[windowID], policy)
		if err != nil {
			return total, foldersCreated, fmt.Errorf("saving window %d: %w", windowID, err)
		}

		total.Created += result.Created
		total.Deleted += result.Deleted
		total.Kept += result.Kept
	}

	return total, foldersCreated, nil
}

// closeAfterSave closes the tabs that were just saved.
func closeAfterSave(ctx context.Context, a *app, closePinned bool) error {
	if a.browser == nil {
		return fmt.Errorf("cannot close tabs without a browser bridge")
	}

	closed, err := tabs.CloseEligible(ctx, a.browser, closePinned, a.logger)
	if err != nil {
		return fmt.Errorf("closing tabs: %w", err)
	}

	statusf(flagQuiet, "Closed %d tabs.\n", closed)

	return nil
}
