// Package bridge talks to the browser extension companion over a local
// websocket, exposing the live tab list and bookmark tree.
//
// The wire protocol is JSON request/response with client-assigned ids, so
// multiple calls can be in flight on one connection.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/tabvault/tabvault/internal/bookmarks"
)

// callTimeout bounds a single request/response round trip.
const callTimeout = 30 * time.Second

type request struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

type response struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *wireError      `json:"error,omitempty"`
}

type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *wireError) Error() string {
	return fmt.Sprintf("bridge: %s: %s", e.Code, e.Message)
}

// wireNode is the bookmark node as the extension serializes it.
type wireNode struct {
	ID       string `json:"id"`
	ParentID string `json:"parentId"`
	Title    string `json:"title"`
	URL      string `json:"url,omitempty"`
	Folder   bool   `json:"folder"`
}

func (n wireNode) toNode() *bookmarks.Node {
	kind := bookmarks.KindLeaf
	if n.Folder {
		kind = bookmarks.KindFolder
	}

	return &bookmarks.Node{
		ID:       n.ID,
		ParentID: n.ParentID,
		Title:    n.Title,
		Kind:     kind,
		URL:      n.URL,
	}
}

// wireTab is the tab record as the extension serializes it.
type wireTab struct {
	ID       int    `json:"id"`
	URL      string `json:"url"`
	Title    string `json:"title"`
	Pinned   bool   `json:"pinned"`
	WindowID int    `json:"windowId"`
}

// Client is a websocket connection to the browser companion. It implements
// both the bookmark store and the tab browser interfaces, so the rest of
// the program cannot tell the live browser from the local mirror.
type Client struct {
	conn   *websocket.Conn
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string]chan response
	closed  bool
}

// Dial connects to the companion at url and starts the read loop.
func Dial(ctx context.Context, url string, logger *slog.Logger) (*Client, error) {
	logger.Info("connecting to browser bridge", "url", url)

	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("bridge: dialing %s: %w", url, err)
	}

	c := &Client{
		conn:    conn,
		logger:  logger,
		pending: make(map[string]chan response),
	}

	go c.readLoop()

	return c, nil
}

// readLoop dispatches responses to waiting callers until the connection
// drops, then fails every pending call.
func (c *Client) readLoop() {
	for {
		var resp response

		err := wsjson.Read(context.Background(), c.conn, &resp)
		if err != nil {
			c.failPending(err)
			return
		}

		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		if ok {
			delete(c.pending, resp.ID)
		}
		c.mu.Unlock()

		if !ok {
			c.logger.Warn("response for unknown request", "id", resp.ID)
			continue
		}

		ch <- resp
	}
}

func (c *Client) failPending(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true

	for id, ch := range c.pending {
		delete(c.pending, id)
		ch <- response{ID: id, Error: &wireError{
			Code:    "connection_lost",
			Message: err.Error(),
		}}
	}
}

// call sends one request and waits for its response.
func (c *Client) call(ctx context.Context, method string, params any, result any) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("bridge: encoding %s params: %w", method, err)
	}

	req := request{ID: uuid.NewString(), Method: method, Params: raw}
	ch := make(chan response, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("bridge: %s: connection closed", method)
	}
	c.pending[req.ID] = ch
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	if err := wsjson.Write(ctx, c.conn, req); err != nil {
		c.mu.Lock()
		delete(c.pending, req.ID)
		c.mu.Unlock()

		return fmt.Errorf("bridge: sending %s: %w", method, err)
	}

	select {
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, req.ID)
		c.mu.Unlock()

		return fmt.Errorf("bridge: %s: %w", method, ctx.Err())

	case resp := <-ch:
		if resp.Error != nil {
			return translateError(method, resp.Error)
		}

		if result != nil {
			if err := json.Unmarshal(resp.Result, result); err != nil {
				return fmt.Errorf("bridge: decoding %s result: %w", method, err)
			}
		}

		return nil
	}
}

// translateError maps wire error codes onto the bookmark sentinels so
// callers can errors.Is across transports.
func translateError(method string, we *wireError) error {
	switch we.Code {
	case "not_found":
		return &bookmarks.StoreError{Op: method, Err: bookmarks.ErrNotFound}
	case "not_empty":
		return &bookmarks.StoreError{Op: method, Err: bookmarks.ErrNotEmpty}
	default:
		return &bookmarks.StoreError{Op: method, Err: we}
	}
}

// Close closes the websocket connection.
func (c *Client) Close() error {
	c.logger.Debug("closing browser bridge")
	return c.conn.Close(websocket.StatusNormalClosure, "")
}
