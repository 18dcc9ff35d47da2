package tabs

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadSnapshot reads a tab snapshot from a JSON file: an array of objects
// matching the extension's tab export format. Used when no live browser
// bridge is available.
func LoadSnapshot(path string) ([]Tab, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tabs: reading snapshot file: %w", err)
	}

	var raw []struct {
		ID       int    `json:"id"`
		URL      string `json:"url"`
		Title    string `json:"title"`
		Pinned   bool   `json:"pinned"`
		WindowID int    `json:"windowId"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("tabs: parsing snapshot file %s: %w", path, err)
	}

	snapshot := make([]Tab, len(raw))
	for i, t := range raw {
		snapshot[i] = Tab{
			ID:       t.ID,
			URL:      t.URL,
			Title:    t.Title,
			Pinned:   t.Pinned,
			WindowID: t.WindowID,
		}
	}

	return snapshot, nil
}
