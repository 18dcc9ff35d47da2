// Package reconcile converges a bookmark folder toward a tab snapshot.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tabvault/tabvault/internal/bookmarks"
	"github.com/tabvault/tabvault/internal/tabs"
)

// FolderStore is the bookmark surface the engine needs: listing a folder
// and mutating its direct children.
type FolderStore interface {
	Children(ctx context.Context, folderID string) ([]*bookmarks.Node, error)
	CreateBookmark(ctx context.Context, parentID, title, url string) (*bookmarks.Node, error)
	Remove(ctx context.Context, id string) error
}

// Policy controls how a snapshot is applied to a folder.
type Policy struct {
	// Overwrite converges the folder to exactly the snapshot. When false,
	// missing bookmarks are appended and nothing is deleted.
	Overwrite bool

	// SavePinned includes pinned tabs in the save.
	SavePinned bool
}

// Result counts what a reconciliation pass did.
type Result struct {
	Created int
	Deleted int
	Kept    int
}

// PartialError reports a reconciliation that failed partway through. The
// embedded Result counts the mutations that did land.
type PartialError struct {
	Result Result
	Err    error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("reconcile: partial failure after %d created, %d deleted: %v",
		e.Result.Created, e.Result.Deleted, e.Err)
}

func (e *PartialError) Unwrap() error {
	return e.Err
}

// Engine applies tab snapshots to bookmark folders. Concurrent passes over
// the same folder are serialized; distinct folders proceed in parallel.
type Engine struct {
	store  FolderStore
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEngine returns an Engine backed by the given store.
func NewEngine(store FolderStore, logger *slog.Logger) *Engine {
	return &Engine{
		store:  store,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (e *Engine) folderLock(folderID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	l, ok := e.locks[folderID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[folderID] = l
	}

	return l
}

// Reconcile applies the snapshot to the folder under the given policy.
//
// The raw snapshot is checked for emptiness before filtering: an empty
// window, or one showing only a new-tab page, is a no-op even under
// overwrite, so a momentarily empty browser never wipes a saved folder.
func (e *Engine) Reconcile(ctx context.Context, folderID string, snapshot []tabs.Tab, policy Policy) (Result, error) {
	if tabs.IsEmptySet(snapshot) {
		e.logger.Debug("skipping empty tab set", "folder_id", folderID)
		return Result{}, nil
	}

	eligible := tabs.Filter(snapshot, policy.SavePinned)
	if len(eligible) == 0 {
		e.logger.Debug("no eligible tabs after filtering", "folder_id", folderID)
		return Result{}, nil
	}

	lock := e.folderLock(folderID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := e.store.Children(ctx, folderID)
	if err != nil {
		return Result{}, fmt.Errorf("reconcile: listing folder %s: %w", folderID, err)
	}

	if policy.Overwrite {
		return e.overwrite(ctx, folderID, eligible, existing)
	}

	return e.append(ctx, folderID, eligible, existing)
}

// append creates a bookmark for every eligible tab whose URL is not already
// present in the folder. Existing bookmarks are never touched.
func (e *Engine) append(ctx context.Context, folderID string, eligible []tabs.Tab, existing []*bookmarks.Node) (Result, error) {
	present := make(map[string]bool, len(existing))
	for _, n := range existing {
		if !n.IsFolder() {
			present[n.URL] = true
		}
	}

	var res Result

	seen := make(map[string]bool, len(eligible))

	for _, t := range eligible {
		if seen[t.URL] {
			continue
		}
		seen[t.URL] = true

		if present[t.URL] {
			res.Kept++
			continue
		}

		if _, err := e.store.CreateBookmark(ctx, folderID, t.Title, t.URL); err != nil {
			return res, &PartialError{Result: res,
				Err: fmt.Errorf("creating bookmark for %s: %w", t.URL, err)}
		}

		res.Created++
	}

	e.logger.Info("appended tabs to folder",
		"folder_id", folderID, "created", res.Created, "kept", res.Kept)

	return res, nil
}

// overwrite converges the folder to exactly the snapshot, keyed by URL.
// Bookmarks whose URL appears in the snapshot are kept untouched, so their
// ids and titles survive; extras are deleted; the rest are created in tab
// order. When the snapshot carries the same URL more than once, the last
// tab's title wins. Subfolders are never deleted.
func (e *Engine) overwrite(ctx context.Context, folderID string, eligible []tabs.Tab, existing []*bookmarks.Node) (Result, error) {
	desired := make(map[string]tabs.Tab, len(eligible))
	for _, t := range eligible {
		desired[t.URL] = t
	}

	var res Result

	for _, n := range existing {
		if n.IsFolder() {
			continue
		}

		if _, ok := desired[n.URL]; ok {
			res.Kept++
			delete(desired, n.URL)
			continue
		}

		if err := e.store.Remove(ctx, n.ID); err != nil {
			return res, &PartialError{Result: res,
				Err: fmt.Errorf("removing bookmark %s: %w", n.ID, err)}
		}

		res.Deleted++
	}

	// Create what remains, preserving the snapshot's tab order. The map
	// entry, not the loop tab, supplies the title: it was built in tab
	// order, so duplicate URLs resolve to the last tab's title.
	for _, t := range eligible {
		d, ok := desired[t.URL]
		if !ok {
			continue
		}
		delete(desired, t.URL)

		if _, err := e.store.CreateBookmark(ctx, folderID, d.Title, d.URL); err != nil {
			return res, &PartialError{Result: res,
				Err: fmt.Errorf("creating bookmark for %s: %w", d.URL, err)}
		}

		res.Created++
	}

	e.logger.Info("overwrote folder contents", "folder_id", folderID,
		"created", res.Created, "deleted", res.Deleted, "kept", res.Kept)

	return res, nil
}
