// Package resolver maps folder names and root preferences to bookmark
// folder ids, creating folders on first use.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/text/unicode/norm"

	"github.com/tabvault/tabvault/internal/bookmarks"
)

// AutosaveFolderName is the fixed name of the autosave root folder.
const AutosaveFolderName = "AUTOSAVE"

// Store is the bookmark surface the resolver needs.
type Store interface {
	SearchByTitle(ctx context.Context, title string) ([]*bookmarks.Node, error)
	Children(ctx context.Context, folderID string) ([]*bookmarks.Node, error)
	CreateFolder(ctx context.Context, parentID, title string) (*bookmarks.Node, error)
}

// Resolver finds or creates bookmark folders by name. Concurrent resolves
// of the same name are serialized so a folder is created at most once.
type Resolver struct {
	store  Store
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New returns a Resolver backed by the given store.
func New(store Store, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:  store,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// nameLock returns the mutex serializing resolution of one folder name.
func (r *Resolver) nameLock(key string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.locks[key]
	if !ok {
		l = &sync.Mutex{}
		r.locks[key] = l
	}

	return l
}

// Resolve returns the id of the folder with the given name, searching the
// whole tree and taking the first match. When no folder matches, one is
// created under parentID; created reports whether that happened. An empty
// parentID with no match returns bookmarks.ErrNotFound.
func (r *Resolver) Resolve(ctx context.Context, name, parentID string) (id string, created bool, err error) {
	name = norm.NFC.String(name)

	lock := r.nameLock("title\x00" + name)
	lock.Lock()
	defer lock.Unlock()

	matches, err := r.store.SearchByTitle(ctx, name)
	if err != nil {
		return "", false, fmt.Errorf("resolver: searching for %q: %w", name, err)
	}

	for _, n := range matches {
		if n.IsFolder() {
			r.logger.Debug("resolved existing folder", "name", name, "id", n.ID)
			return n.ID, false, nil
		}
	}

	if parentID == "" {
		return "", false, fmt.Errorf("resolver: folder %q: %w", name, bookmarks.ErrNotFound)
	}

	folder, err := r.store.CreateFolder(ctx, parentID, name)
	if err != nil {
		return "", false, fmt.Errorf("resolver: creating folder %q: %w", name, err)
	}

	r.logger.Info("created folder", "name", name, "id", folder.ID, "parent_id", parentID)

	return folder.ID, true, nil
}

// ResolveChild returns the id of the direct child folder of parentID with
// the given title, creating it when absent. Unlike Resolve, the search is
// scoped to the parent, so identically named folders elsewhere in the tree
// are never picked up.
func (r *Resolver) ResolveChild(ctx context.Context, parentID, title string) (id string, created bool, err error) {
	title = norm.NFC.String(title)

	lock := r.nameLock("child\x00" + parentID + "\x00" + title)
	lock.Lock()
	defer lock.Unlock()

	children, err := r.store.Children(ctx, parentID)
	if err != nil {
		return "", false, fmt.Errorf("resolver: listing children of %s: %w", parentID, err)
	}

	for _, n := range children {
		if n.IsFolder() && n.Title == title {
			r.logger.Debug("resolved existing child folder",
				"title", title, "id", n.ID, "parent_id", parentID)
			return n.ID, false, nil
		}
	}

	folder, err := r.store.CreateFolder(ctx, parentID, title)
	if err != nil {
		return "", false, fmt.Errorf("resolver: creating child folder %q: %w", title, err)
	}

	r.logger.Info("created child folder",
		"title", title, "id", folder.ID, "parent_id", parentID)

	return folder.ID, true, nil
}
