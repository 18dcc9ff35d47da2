package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tabvault/tabvault/internal/reconcile"
	"github.com/tabvault/tabvault/internal/resolver"
	"github.com/tabvault/tabvault/internal/settings"
	"github.com/tabvault/tabvault/internal/stats"
	"github.com/tabvault/tabvault/internal/tabs"
)

// alarmName is the single alarm this scheduler manages.
const alarmName = "autosave"

// SettingsSource reads the current settings. Settings are re-read at every
// decision point, never cached, so a change always wins over stale state.
type SettingsSource interface {
	Settings(ctx context.Context) (settings.Settings, error)
}

// FolderResolver finds or creates folders by name.
type FolderResolver interface {
	Resolve(ctx context.Context, name, parentID string) (id string, created bool, err error)
}

// Reconciler applies a tab snapshot to a folder.
type Reconciler interface {
	Reconcile(ctx context.Context, folderID string, snapshot []tabs.Tab, policy reconcile.Policy) (reconcile.Result, error)
}

// Recorder folds a completed save into the statistics.
type Recorder interface {
	Record(ctx context.Context, s stats.Summary) error
}

// Pruner deletes expired dated folders under a root.
type Pruner interface {
	Prune(ctx context.Context, rootID string, keepDays int) (int, error)
}

// Config bundles the scheduler's collaborators.
type Config struct {
	Settings   SettingsSource
	Alarms     AlarmService
	Resolver   FolderResolver
	Reconciler Reconciler
	Tabs       tabs.Enumerator
	Recorder   Recorder
	Pruner     Pruner
	Family     resolver.Family
	Logger     *slog.Logger
}

// Scheduler keeps the autosave alarm in sync with the settings and runs
// the periodic save pipeline when it fires.
type Scheduler struct {
	cfg Config
}

// New returns a Scheduler from the given collaborators.
func New(cfg Config) *Scheduler {
	return &Scheduler{cfg: cfg}
}

// Rearm reads the settings and rebuilds the alarm set from scratch: clear
// everything, then create the autosave alarm only if autosave is enabled.
// Idempotent, and safe to call on every settings change.
func (s *Scheduler) Rearm(ctx context.Context) error {
	cfg, err := s.cfg.Settings.Settings(ctx)
	if err != nil {
		return fmt.Errorf("scheduler: reading settings: %w", err)
	}

	s.cfg.Alarms.ClearAll()

	if !cfg.Autosave {
		s.cfg.Logger.Info("autosave disabled, no alarm armed")
		return nil
	}

	interval := cfg.IntervalMinutes(s.cfg.Logger)
	s.cfg.Alarms.Create(alarmName, time.Duration(interval)*time.Minute)

	if !s.cfg.Alarms.HasListener() {
		s.cfg.Alarms.AddListener(s.onAlarm)
	}

	s.cfg.Logger.Info("autosave alarm armed", "interval_minutes", interval)

	return nil
}

// onAlarm adapts HandleFiring to the listener signature. Scheduled save
// failures are logged and swallowed; the next firing retries naturally.
func (s *Scheduler) onAlarm(f Firing) {
	if f.Name != alarmName {
		return
	}

	if err := s.HandleFiring(context.Background()); err != nil {
		s.cfg.Logger.Error("periodic save failed", "error", err)
	}
}

// HandleFiring runs one periodic save: re-read settings, resolve the
// autosave root and today's dated folder, reconcile the current snapshot
// into it, record statistics, and prune expired folders if retention is on.
//
// Settings are read fresh here rather than captured at arm time, so a
// disable that raced an in-flight firing still turns the save into a no-op.
func (s *Scheduler) HandleFiring(ctx context.Context) error {
	cfg, err := s.cfg.Settings.Settings(ctx)
	if err != nil {
		return fmt.Errorf("scheduler: reading settings: %w", err)
	}

	if !cfg.Autosave {
		s.cfg.Logger.Debug("autosave disabled since arming, skipping firing")
		return nil
	}

	rootParent := resolver.RootFolderID(
		s.cfg.Family, cfg.AutosaveRootFolder, cfg.CustomAutosaveRootFolder, s.cfg.Logger)

	rootID, rootCreated, err := s.cfg.Resolver.Resolve(ctx, resolver.AutosaveFolderName, rootParent)
	if err != nil {
		return fmt.Errorf("scheduler: resolving autosave root: %w", err)
	}

	now := time.Now()

	dayID, dayCreated, err := s.cfg.Resolver.Resolve(ctx, resolver.DatedFolderName(now), rootID)
	if err != nil {
		return fmt.Errorf("scheduler: resolving dated folder: %w", err)
	}

	snapshot, err := s.cfg.Tabs.Query(ctx)
	if err != nil {
		return fmt.Errorf("scheduler: querying tabs: %w", err)
	}

	policy := reconcile.Policy{Overwrite: cfg.Overwrite, SavePinned: cfg.SavePinned}

	result, err := s.cfg.Reconciler.Reconcile(ctx, dayID, snapshot, policy)
	if err != nil {
		return fmt.Errorf("scheduler: reconciling: %w", err)
	}

	folders := 0
	if rootCreated {
		folders++
	}
	if dayCreated {
		folders++
	}

	summary := stats.Summary{
		TabsSaved:      len(tabs.Filter(snapshot, cfg.SavePinned)),
		FoldersCreated: folders,
		AutoTriggered:  true,
	}

	if err := s.cfg.Recorder.Record(ctx, summary); err != nil {
		s.cfg.Logger.Warn("could not record save statistics", "error", err)
	}

	s.cfg.Logger.Info("periodic save complete",
		"folder_id", dayID, "created", result.Created,
		"deleted", result.Deleted, "kept", result.Kept)

	if cfg.AutosaveKeepLimit {
		keepDays := cfg.RetentionDays(s.cfg.Logger)

		deleted, err := s.cfg.Pruner.Prune(ctx, rootID, keepDays)
		if err != nil {
			s.cfg.Logger.Warn("retention prune failed", "error", err)
		} else if deleted > 0 {
			s.cfg.Logger.Info("retention prune removed folders", "deleted", deleted)
		}
	}

	return nil
}

// Run arms the alarm, then re-arms on every settings change until ctx is
// cancelled. All alarms are cleared on the way out.
func (s *Scheduler) Run(ctx context.Context, changes <-chan struct{}) error {
	if err := s.Rearm(ctx); err != nil {
		return err
	}

	defer s.cfg.Alarms.ClearAll()

	for {
		select {
		case <-ctx.Done():
			s.cfg.Logger.Info("scheduler stopping")
			return ctx.Err()

		case _, ok := <-changes:
			if !ok {
				return nil
			}

			s.cfg.Logger.Debug("settings changed, re-arming")

			if err := s.Rearm(ctx); err != nil {
				s.cfg.Logger.Error("re-arm failed", "error", err)
			}
		}
	}
}
