// Package stats accumulates usage statistics across saves.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tabvault/tabvault/internal/settings"
)

// Repository is the persistence surface the accumulator needs.
type Repository interface {
	Stats(ctx context.Context) (settings.Stats, error)
	SaveStats(ctx context.Context, st settings.Stats) error
}

// Summary describes one completed save for statistics purposes.
type Summary struct {
	TabsSaved      int
	FoldersCreated int
	AutoTriggered  bool
}

// Accumulator applies save summaries to the persisted statistics record.
type Accumulator struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// New returns an Accumulator writing through the given repository.
func New(repo Repository, logger *slog.Logger) *Accumulator {
	return &Accumulator{repo: repo, logger: logger, now: time.Now}
}

// Record folds one save into the statistics: read, increment, write back.
// The install date is set on the first recorded save and never changes.
func (a *Accumulator) Record(ctx context.Context, s Summary) error {
	st, err := a.repo.Stats(ctx)
	if err != nil {
		return fmt.Errorf("stats: reading: %w", err)
	}

	now := a.now().Format(time.RFC3339)

	st.TotalSaves++
	st.TabsSaved += s.TabsSaved
	st.FoldersCreated += s.FoldersCreated
	st.LastSave = now

	if s.AutoTriggered {
		st.AutoSaves++
	}

	if st.InstallDate == "" {
		st.InstallDate = now
	}

	if err := a.repo.SaveStats(ctx, st); err != nil {
		return fmt.Errorf("stats: writing: %w", err)
	}

	a.logger.Debug("recorded save statistics",
		"total_saves", st.TotalSaves, "tabs_saved", st.TabsSaved,
		"auto", s.AutoTriggered)

	return nil
}

// Reset zeroes all counters and the last-save timestamp, and re-stamps
// the install date so the statistics describe a fresh start.
func (a *Accumulator) Reset(ctx context.Context) error {
	st := settings.Stats{InstallDate: a.now().Format(time.RFC3339)}

	if err := a.repo.SaveStats(ctx, st); err != nil {
		return fmt.Errorf("stats: writing: %w", err)
	}

	a.logger.Info("statistics reset")

	return nil
}
