package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabvault/tabvault/internal/bookmarks"
	"github.com/tabvault/tabvault/internal/tabs"
)

// mockStore is an in-memory folder store tracking mutations per folder.
type mockStore struct {
	children map[string][]*bookmarks.Node
	nextID   int

	createErr error
	removeErr error
}

func newMockStore() *mockStore {
	return &mockStore{children: make(map[string][]*bookmarks.Node)}
}

func (m *mockStore) addBookmark(folderID, id, title, url string) {
	m.children[folderID] = append(m.children[folderID], &bookmarks.Node{
		ID: id, ParentID: folderID, Title: title, Kind: bookmarks.KindLeaf, URL: url,
	})
}

func (m *mockStore) addFolder(folderID, id, title string) {
	m.children[folderID] = append(m.children[folderID], &bookmarks.Node{
		ID: id, ParentID: folderID, Title: title, Kind: bookmarks.KindFolder,
	})
}

func (m *mockStore) Children(_ context.Context, folderID string) ([]*bookmarks.Node, error) {
	return m.children[folderID], nil
}

func (m *mockStore) CreateBookmark(_ context.Context, parentID, title, url string) (*bookmarks.Node, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}

	m.nextID++
	n := &bookmarks.Node{
		ID:       fmt.Sprintf("new-%d", m.nextID),
		ParentID: parentID, Title: title, Kind: bookmarks.KindLeaf, URL: url,
	}
	m.children[parentID] = append(m.children[parentID], n)

	return n, nil
}

func (m *mockStore) Remove(_ context.Context, id string) error {
	if m.removeErr != nil {
		return m.removeErr
	}

	for folderID, nodes := range m.children {
		for i, n := range nodes {
			if n.ID == id {
				m.children[folderID] = append(nodes[:i:i], nodes[i+1:]...)
				return nil
			}
		}
	}

	return bookmarks.ErrNotFound
}

func (m *mockStore) urls(folderID string) []string {
	var out []string
	for _, n := range m.children[folderID] {
		if !n.IsFolder() {
			out = append(out, n.URL)
		}
	}

	return out
}

func newTestEngine(store *mockStore) *Engine {
	return NewEngine(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestReconcile_AppendCreatesMissing(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	store.addBookmark("f", "b1", "A", "https://a.com")

	engine := newTestEngine(store)

	snapshot := []tabs.Tab{
		{ID: 1, URL: "https://a.com", Title: "A"},
		{ID: 2, URL: "https://b.com", Title: "B"},
	}

	res, err := engine.Reconcile(context.Background(), "f", snapshot, Policy{})
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 1, Kept: 1}, res)
	assert.Equal(t, []string{"https://a.com", "https://b.com"}, store.urls("f"))
}

func TestReconcile_AppendIsIdempotent(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	engine := newTestEngine(store)

	snapshot := []tabs.Tab{
		{ID: 1, URL: "https://a.com", Title: "A"},
		{ID: 2, URL: "https://b.com", Title: "B"},
	}

	res, err := engine.Reconcile(context.Background(), "f", snapshot, Policy{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)

	res, err = engine.Reconcile(context.Background(), "f", snapshot, Policy{})
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 0, Kept: 2}, res)
	assert.Len(t, store.urls("f"), 2)
}

func TestReconcile_AppendDeduplicatesURLs(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	engine := newTestEngine(store)

	snapshot := []tabs.Tab{
		{ID: 1, URL: "https://a.com", Title: "First"},
		{ID: 2, URL: "https://a.com", Title: "Second"},
	}

	res, err := engine.Reconcile(context.Background(), "f", snapshot, Policy{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, []string{"https://a.com"}, store.urls("f"))
}

func TestReconcile_OverwriteDedupUsesLastTitle(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	engine := newTestEngine(store)

	// Same URL open twice with different titles: one bookmark, titled
	// after the later tab.
	snapshot := []tabs.Tab{
		{ID: 1, URL: "https://a.com", Title: "First"},
		{ID: 2, URL: "https://a.com", Title: "Second"},
	}

	res, err := engine.Reconcile(context.Background(), "f", snapshot, Policy{Overwrite: true})
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 1}, res)

	require.Len(t, store.children["f"], 1)
	assert.Equal(t, "Second", store.children["f"][0].Title)
}

func TestReconcile_OverwriteConverges(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	store.addBookmark("f", "b1", "A", "https://a.com")
	store.addBookmark("f", "b2", "Old", "https://old.com")

	engine := newTestEngine(store)

	snapshot := []tabs.Tab{
		{ID: 1, URL: "https://a.com", Title: "A"},
		{ID: 2, URL: "https://b.com", Title: "B"},
		{ID: 3, URL: "https://c.com", Title: "C"},
	}

	res, err := engine.Reconcile(context.Background(), "f", snapshot, Policy{Overwrite: true})
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 2, Deleted: 1, Kept: 1}, res)
	assert.ElementsMatch(t, []string{"https://a.com", "https://b.com", "https://c.com"}, store.urls("f"))
}

func TestReconcile_OverwritePreservesKeptBookmarks(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	store.addBookmark("f", "original-id", "Original Title", "https://a.com")

	engine := newTestEngine(store)

	// The live tab has a different title; the kept bookmark is not touched.
	snapshot := []tabs.Tab{
		{ID: 1, URL: "https://a.com", Title: "New Title"},
		{ID: 2, URL: "https://b.com", Title: "B"},
	}

	_, err := engine.Reconcile(context.Background(), "f", snapshot, Policy{Overwrite: true})
	require.NoError(t, err)

	kept := store.children["f"][0]
	assert.Equal(t, "original-id", kept.ID)
	assert.Equal(t, "Original Title", kept.Title)
}

func TestReconcile_OverwriteSparesSubfolders(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	store.addFolder("f", "sub", "Window 1")
	store.addBookmark("f", "b1", "Old", "https://old.com")

	engine := newTestEngine(store)

	snapshot := []tabs.Tab{{ID: 1, URL: "https://a.com", Title: "A"}}

	res, err := engine.Reconcile(context.Background(), "f", snapshot, Policy{Overwrite: true})
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 1, Deleted: 1}, res)

	var foundFolder bool
	for _, n := range store.children["f"] {
		if n.IsFolder() {
			foundFolder = true
		}
	}
	assert.True(t, foundFolder, "subfolder must survive overwrite")
}

func TestReconcile_EmptySetIsNoOp(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	store.addBookmark("f", "b1", "A", "https://a.com")

	engine := newTestEngine(store)

	tests := []struct {
		name     string
		snapshot []tabs.Tab
	}{
		{"no tabs", nil},
		{"single new tab page", []tabs.Tab{{URL: "about:newtab"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := engine.Reconcile(context.Background(), "f", tt.snapshot, Policy{Overwrite: true})
			require.NoError(t, err)
			assert.Equal(t, Result{}, res)
			assert.Len(t, store.urls("f"), 1, "folder must stay intact")
		})
	}
}

func TestReconcile_AllFilteredIsNoOp(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	store.addBookmark("f", "b1", "A", "https://a.com")

	engine := newTestEngine(store)

	// Two pinned tabs: not an empty set, but nothing eligible either.
	snapshot := []tabs.Tab{
		{ID: 1, URL: "https://x.com", Pinned: true},
		{ID: 2, URL: "https://y.com", Pinned: true},
	}

	res, err := engine.Reconcile(context.Background(), "f", snapshot, Policy{Overwrite: true})
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
	assert.Len(t, store.urls("f"), 1)
}

func TestReconcile_PartialErrorCarriesCounts(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	store.addBookmark("f", "b1", "Old", "https://old.com")
	store.removeErr = errors.New("store unavailable")

	engine := newTestEngine(store)

	snapshot := []tabs.Tab{{ID: 1, URL: "https://a.com", Title: "A"}}

	_, err := engine.Reconcile(context.Background(), "f", snapshot, Policy{Overwrite: true})
	require.Error(t, err)

	var partial *PartialError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, Result{}, partial.Result)
	assert.ErrorContains(t, err, "store unavailable")
}

func TestReconcile_CreateErrorAfterDeletes(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	store.addBookmark("f", "b1", "Old", "https://old.com")
	store.createErr = errors.New("create failed")

	engine := newTestEngine(store)

	snapshot := []tabs.Tab{{ID: 1, URL: "https://a.com", Title: "A"}}

	_, err := engine.Reconcile(context.Background(), "f", snapshot, Policy{Overwrite: true})

	var partial *PartialError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, Result{Deleted: 1}, partial.Result)
}
