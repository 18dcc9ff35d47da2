package tabs

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockBrowser records the tab mutations requested of it.
type mockBrowser struct {
	snapshot []Tab

	removed      []int
	blankWindows []int
}

func (m *mockBrowser) Query(_ context.Context) ([]Tab, error) {
	return m.snapshot, nil
}

func (m *mockBrowser) Close(_ context.Context, ids []int) error {
	m.removed = append(m.removed, ids...)
	return nil
}

func (m *mockBrowser) CreateBlank(_ context.Context, windowID int) error {
	m.blankWindows = append(m.blankWindows, windowID)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCloseEligible_SkipsPinned(t *testing.T) {
	t.Parallel()

	browser := &mockBrowser{snapshot: []Tab{
		{ID: 1, URL: "https://a.com", Pinned: true, WindowID: 1},
		{ID: 2, URL: "https://b.com", WindowID: 1},
	}}

	closed, err := CloseEligible(context.Background(), browser, false, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, closed)
	assert.Equal(t, []int{2}, browser.removed)
	// Pinned tab keeps the window alive, no blank tab needed.
	assert.Empty(t, browser.blankWindows)
}

func TestCloseEligible_ClosePinned(t *testing.T) {
	t.Parallel()

	browser := &mockBrowser{snapshot: []Tab{
		{ID: 1, URL: "https://a.com", Pinned: true, WindowID: 1},
		{ID: 2, URL: "https://b.com", WindowID: 1},
	}}

	closed, err := CloseEligible(context.Background(), browser, true, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, closed)
	assert.ElementsMatch(t, []int{1, 2}, browser.removed)
	// Window would empty, so a blank tab is opened first.
	assert.Equal(t, []int{1}, browser.blankWindows)
}

func TestCloseEligible_LeavesNewTabPages(t *testing.T) {
	t.Parallel()

	browser := &mockBrowser{snapshot: []Tab{
		{ID: 1, URL: "about:newtab", WindowID: 1},
		{ID: 2, URL: "https://b.com", WindowID: 1},
	}}

	closed, err := CloseEligible(context.Background(), browser, false, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, closed)
	assert.Equal(t, []int{2}, browser.removed)
	assert.Empty(t, browser.blankWindows)
}

func TestCloseEligible_NothingToClose(t *testing.T) {
	t.Parallel()

	browser := &mockBrowser{snapshot: []Tab{
		{ID: 1, URL: "about:newtab", WindowID: 1},
	}}

	closed, err := CloseEligible(context.Background(), browser, false, testLogger())
	require.NoError(t, err)
	assert.Zero(t, closed)
	assert.Empty(t, browser.removed)
}

func TestCloseEligible_MultipleWindows(t *testing.T) {
	t.Parallel()

	browser := &mockBrowser{snapshot: []Tab{
		{ID: 1, URL: "https://a.com", WindowID: 1},
		{ID: 2, URL: "https://b.com", WindowID: 2},
		{ID: 3, URL: "about:newtab", WindowID: 2},
	}}

	closed, err := CloseEligible(context.Background(), browser, false, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, closed)
	// Window 1 empties entirely; window 2 keeps its new-tab page.
	assert.Equal(t, []int{1}, browser.blankWindows)
}
