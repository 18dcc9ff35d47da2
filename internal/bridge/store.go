package bridge

import (
	"context"

	"github.com/tabvault/tabvault/internal/bookmarks"
	"github.com/tabvault/tabvault/internal/tabs"
)

// Bookmark store methods, forwarded to the extension.

func (c *Client) SearchByTitle(ctx context.Context, title string) ([]*bookmarks.Node, error) {
	var raw []wireNode

	err := c.call(ctx, "bookmarks.search", map[string]string{"title": title}, &raw)
	if err != nil {
		return nil, err
	}

	return toNodes(raw), nil
}

func (c *Client) Children(ctx context.Context, folderID string) ([]*bookmarks.Node, error) {
	var raw []wireNode

	err := c.call(ctx, "bookmarks.children", map[string]string{"id": folderID}, &raw)
	if err != nil {
		return nil, err
	}

	return toNodes(raw), nil
}

func (c *Client) CreateFolder(ctx context.Context, parentID, title string) (*bookmarks.Node, error) {
	var raw wireNode

	err := c.call(ctx, "bookmarks.create", map[string]string{
		"parentId": parentID,
		"title":    title,
	}, &raw)
	if err != nil {
		return nil, err
	}

	return raw.toNode(), nil
}

func (c *Client) CreateBookmark(ctx context.Context, parentID, title, url string) (*bookmarks.Node, error) {
	var raw wireNode

	err := c.call(ctx, "bookmarks.create", map[string]string{
		"parentId": parentID,
		"title":    title,
		"url":      url,
	}, &raw)
	if err != nil {
		return nil, err
	}

	return raw.toNode(), nil
}

func (c *Client) Remove(ctx context.Context, id string) error {
	return c.call(ctx, "bookmarks.remove", map[string]string{"id": id}, nil)
}

func (c *Client) RemoveTree(ctx context.Context, id string) error {
	return c.call(ctx, "bookmarks.removeTree", map[string]string{"id": id}, nil)
}

func (c *Client) Get(ctx context.Context, id string) (*bookmarks.Node, error) {
	var raw wireNode

	if err := c.call(ctx, "bookmarks.get", map[string]string{"id": id}, &raw); err != nil {
		return nil, err
	}

	return raw.toNode(), nil
}

func toNodes(raw []wireNode) []*bookmarks.Node {
	nodes := make([]*bookmarks.Node, len(raw))
	for i, n := range raw {
		nodes[i] = n.toNode()
	}

	return nodes
}

// Tab browser methods.

// Query returns a snapshot of every open tab across all windows.
func (c *Client) Query(ctx context.Context) ([]tabs.Tab, error) {
	var raw []wireTab

	if err := c.call(ctx, "tabs.query", struct{}{}, &raw); err != nil {
		return nil, err
	}

	snapshot := make([]tabs.Tab, len(raw))
	for i, t := range raw {
		snapshot[i] = tabs.Tab{
			ID:       t.ID,
			URL:      t.URL,
			Title:    t.Title,
			Pinned:   t.Pinned,
			WindowID: t.WindowID,
		}
	}

	return snapshot, nil
}

// CloseTabs closes the given tabs.
func (c *Client) CloseTabs(ctx context.Context, ids []int) error {
	return c.call(ctx, "tabs.remove", map[string][]int{"ids": ids}, nil)
}

// CreateBlank opens a fresh empty tab in the given window.
func (c *Client) CreateBlank(ctx context.Context, windowID int) error {
	return c.call(ctx, "tabs.create", map[string]int{"windowId": windowID}, nil)
}

// browserView adapts the client to the tabs.Browser interface. A separate
// view because the client's own Close closes the connection, not tabs.
type browserView struct {
	c *Client
}

func (v browserView) Query(ctx context.Context) ([]tabs.Tab, error) {
	return v.c.Query(ctx)
}

func (v browserView) Close(ctx context.Context, ids []int) error {
	return v.c.CloseTabs(ctx, ids)
}

func (v browserView) CreateBlank(ctx context.Context, windowID int) error {
	return v.c.CreateBlank(ctx, windowID)
}

// Browser returns the client's tab surface.
func (c *Client) Browser() tabs.Browser {
	return browserView{c: c}
}

// Compile-time interface checks.
var (
	_ bookmarks.Store = (*Client)(nil)
	_ tabs.Enumerator = (*Client)(nil)
	_ tabs.Browser    = browserView{}
)
