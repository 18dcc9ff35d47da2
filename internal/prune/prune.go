// Package prune removes expired dated autosave folders.
package prune

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"github.com/tabvault/tabvault/internal/bookmarks"
)

// datedName matches the daily folder naming scheme, YYYY-MM-DD.
var datedName = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Store is the bookmark surface the pruner needs.
type Store interface {
	Children(ctx context.Context, folderID string) ([]*bookmarks.Node, error)
	RemoveTree(ctx context.Context, id string) error
}

// Pruner deletes dated folders older than the retention window. Only
// folders whose name parses as a real calendar date are candidates;
// anything else under the root is left alone.
type Pruner struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// New returns a Pruner over the given store.
func New(store Store, logger *slog.Logger) *Pruner {
	return &Pruner{store: store, logger: logger, now: time.Now}
}

// parseDatedName parses a YYYY-MM-DD folder name into a local-zone date.
// Names that match the pattern but are not real dates (2024-02-31) fail
// the round-trip check and are rejected.
func parseDatedName(name string) (time.Time, bool) {
	if !datedName.MatchString(name) {
		return time.Time{}, false
	}

	year, _ := strconv.Atoi(name[0:4])
	month, _ := strconv.Atoi(name[5:7])
	day, _ := strconv.Atoi(name[8:10])

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	if t.Format("2006-01-02") != name {
		return time.Time{}, false
	}

	return t, true
}

// Prune deletes every dated folder under rootID older than keepDays days.
// A folder exactly keepDays old is kept. Returns the number of folders
// deleted; on error, the count covers deletions that already landed.
func (p *Pruner) Prune(ctx context.Context, rootID string, keepDays int) (int, error) {
	children, err := p.store.Children(ctx, rootID)
	if err != nil {
		return 0, fmt.Errorf("prune: listing %s: %w", rootID, err)
	}

	today := p.now()
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.Local)
	cutoff := today.AddDate(0, 0, -keepDays)

	deleted := 0

	for _, n := range children {
		if !n.IsFolder() {
			continue
		}

		date, ok := parseDatedName(n.Title)
		if !ok {
			continue
		}

		if !date.Before(cutoff) {
			continue
		}

		p.logger.Info("pruning expired autosave folder",
			"title", n.Title, "id", n.ID)

		if err := p.store.RemoveTree(ctx, n.ID); err != nil {
			return deleted, fmt.Errorf("prune: removing folder %s: %w", n.ID, err)
		}

		deleted++
	}

	if deleted > 0 {
		p.logger.Info("prune complete", "deleted", deleted, "keep_days", keepDays)
	}

	return deleted, nil
}
