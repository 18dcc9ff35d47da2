package prune

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabvault/tabvault/internal/bookmarks"
)

// mockStore serves a fixed child list and records subtree removals.
type mockStore struct {
	children []*bookmarks.Node
	removed  []string

	failOn string
}

func (m *mockStore) Children(_ context.Context, _ string) ([]*bookmarks.Node, error) {
	return m.children, nil
}

func (m *mockStore) RemoveTree(_ context.Context, id string) error {
	if id == m.failOn {
		return errors.New("remove failed")
	}

	m.removed = append(m.removed, id)

	return nil
}

func folder(id, title string) *bookmarks.Node {
	return &bookmarks.Node{ID: id, Title: title, Kind: bookmarks.KindFolder}
}

func newTestPruner(store *mockStore, today time.Time) *Pruner {
	p := New(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	p.now = func() time.Time { return today }

	return p
}

func TestParseDatedName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		ok   bool
	}{
		{"valid date", "2026-03-07", true},
		{"impossible day", "2024-02-31", false},
		{"month out of range", "2024-13-01", false},
		{"not a date", "AUTOSAVE", false},
		{"date with suffix", "2026-03-07 backup", false},
		{"short year", "26-03-07", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, ok := parseDatedName(tt.in)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestPrune_RetentionBoundary(t *testing.T) {
	t.Parallel()

	today := time.Date(2026, time.March, 31, 12, 0, 0, 0, time.Local)

	store := &mockStore{children: []*bookmarks.Node{
		folder("today", "2026-03-31"),
		folder("exactly-30", "2026-03-01"), // exactly keepDays old: kept
		folder("day-31", "2026-02-28"),     // one past the window: deleted
		folder("ancient", "2025-01-01"),
	}}

	p := newTestPruner(store, today)

	deleted, err := p.Prune(context.Background(), "root", 30)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	assert.ElementsMatch(t, []string{"day-31", "ancient"}, store.removed)
}

func TestPrune_SkipsNonDatedEntries(t *testing.T) {
	t.Parallel()

	today := time.Date(2026, time.March, 31, 0, 0, 0, 0, time.Local)

	store := &mockStore{children: []*bookmarks.Node{
		folder("named", "My Important Folder"),
		folder("bad-date", "2024-02-31"),
		{ID: "leaf", Title: "2020-01-01", Kind: bookmarks.KindLeaf, URL: "https://a.com"},
		folder("old", "2020-01-01"),
	}}

	p := newTestPruner(store, today)

	deleted, err := p.Prune(context.Background(), "root", 30)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.Equal(t, []string{"old"}, store.removed)
}

func TestPrune_ErrorReturnsPartialCount(t *testing.T) {
	t.Parallel()

	today := time.Date(2026, time.March, 31, 0, 0, 0, 0, time.Local)

	store := &mockStore{
		children: []*bookmarks.Node{
			folder("first", "2020-01-01"),
			folder("second", "2020-01-02"),
			folder("third", "2020-01-03"),
		},
		failOn: "second",
	}

	p := newTestPruner(store, today)

	deleted, err := p.Prune(context.Background(), "root", 30)
	require.Error(t, err)
	assert.Equal(t, 1, deleted)
	assert.Equal(t, []string{"first"}, store.removed)
}

func TestPrune_EmptyRoot(t *testing.T) {
	t.Parallel()

	p := newTestPruner(&mockStore{}, time.Now())

	deleted, err := p.Prune(context.Background(), "root", 30)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
