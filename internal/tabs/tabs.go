// Package tabs models the browser tab snapshot and the eligibility filter
// that decides which tabs are worth saving.
package tabs

import "context"

// Tab is a point-in-time snapshot of one open browser tab. Tabs are owned
// and mutated by the browser; this core only reads snapshots.
type Tab struct {
	ID       int
	URL      string
	Title    string
	Pinned   bool
	WindowID int
}

// Enumerator provides the tab snapshot. Implemented by the browser bridge.
type Enumerator interface {
	// Query returns all open tabs across every window.
	Query(ctx context.Context) ([]Tab, error)
}

// Controller exposes the tab mutations used by close-after-save.
type Controller interface {
	// Close closes the given tabs.
	Close(ctx context.Context, ids []int) error

	// CreateBlank opens a fresh empty tab in the given window, keeping
	// the window alive when every other tab is about to close.
	CreateBlank(ctx context.Context, windowID int) error
}

// Browser combines enumeration and control. Implemented by the bridge.
type Browser interface {
	Enumerator
	Controller
}

// GroupByWindow splits a snapshot into per-window slices, preserving the
// original tab order within each window.
func GroupByWindow(snapshot []Tab) map[int][]Tab {
	groups := make(map[int][]Tab)
	for _, t := range snapshot {
		groups[t.WindowID] = append(groups[t.WindowID], t)
	}

	return groups
}
