// Package bookmarks defines the hierarchical bookmark tree model and the
// store interface this core consumes. Two implementations exist: a local
// SQLite mirror (SQLiteStore) and the live browser store reached through
// the bridge package.
package bookmarks

import "context"

// Kind distinguishes folders from leaf bookmarks. The browser API signals
// "folder" by the absence of a URL; we carry an explicit tag instead so a
// bookmark with an empty URL can never be misread as a folder.
type Kind string

const (
	// KindFolder is a container node. Folders never carry a URL.
	KindFolder Kind = "folder"
	// KindLeaf is a saved bookmark with a URL.
	KindLeaf Kind = "leaf"
)

// Node is a single entry in the bookmark tree. URL is empty for folders.
type Node struct {
	ID       string
	ParentID string
	Title    string
	Kind     Kind
	URL      string
}

// IsFolder reports whether the node is a container.
func (n *Node) IsFolder() bool {
	return n.Kind == KindFolder
}

// Store is the full bookmark store surface. Consumers should depend on
// narrower interfaces declared in their own packages; Store exists so the
// SQLite mirror and the browser bridge stay interchangeable at wiring time.
type Store interface {
	// SearchByTitle returns every node whose title matches exactly,
	// anywhere in the tree. Callers treat the first result as the match.
	SearchByTitle(ctx context.Context, title string) ([]*Node, error)

	// Children lists the direct children of a folder, in stored order.
	Children(ctx context.Context, folderID string) ([]*Node, error)

	// CreateFolder creates a new folder under parentID.
	CreateFolder(ctx context.Context, parentID, title string) (*Node, error)

	// CreateBookmark creates a new leaf bookmark under parentID.
	CreateBookmark(ctx context.Context, parentID, title, url string) (*Node, error)

	// Remove deletes a single node by id. Removing a non-empty folder is
	// an error; use RemoveTree for subtrees.
	Remove(ctx context.Context, id string) error

	// RemoveTree deletes a node and every descendant.
	RemoveTree(ctx context.Context, id string) error

	// Get returns a node by id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Node, error)
}
