package tabs

import (
	"context"
	"fmt"
	"log/slog"
)

// CloseEligible closes tabs after a successful save: pinned tabs survive
// unless closePinned is set, and new-tab pages are left alone. When every
// tab in a window would close, a fresh blank tab is opened there first so
// the window itself stays open. Returns the number of tabs closed.
func CloseEligible(ctx context.Context, browser Browser, closePinned bool, logger *slog.Logger) (int, error) {
	snapshot, err := browser.Query(ctx)
	if err != nil {
		return 0, fmt.Errorf("tabs: querying for close: %w", err)
	}

	var toClose []Tab

	for _, t := range snapshot {
		if t.Pinned && !closePinned {
			continue
		}

		if IsNewTabURL(t.URL) {
			continue
		}

		toClose = append(toClose, t)
	}

	if len(toClose) == 0 {
		return 0, nil
	}

	// Keep windows alive: open a blank tab in any window about to lose
	// all of its tabs.
	closing := make(map[int]int)
	total := make(map[int]int)

	for _, t := range snapshot {
		total[t.WindowID]++
	}

	for _, t := range toClose {
		closing[t.WindowID]++
	}

	for windowID, n := range closing {
		if n < total[windowID] {
			continue
		}

		logger.Debug("opening blank tab to keep window alive", "window_id", windowID)

		if err := browser.CreateBlank(ctx, windowID); err != nil {
			return 0, fmt.Errorf("tabs: creating blank tab in window %d: %w", windowID, err)
		}
	}

	ids := make([]int, len(toClose))
	for i, t := range toClose {
		ids[i] = t.ID
	}

	if err := browser.Close(ctx, ids); err != nil {
		return 0, fmt.Errorf("tabs: closing %d tabs: %w", len(ids), err)
	}

	logger.Info("closed tabs after save", "count", len(ids))

	return len(ids), nil
}
