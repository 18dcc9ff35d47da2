package tabs

import "strings"

// newTabURLs lists the new-tab-page URLs across browser families, already
// normalized (no trailing slash, lower case). The empty string counts: a
// tab that has not navigated anywhere reports "".
var newTabURLs = map[string]bool{
	// Chrome-based
	"chrome://newtab": true,
	"chrome-search://local-ntp/local-ntp.html": true,
	"chrome://startpage": true,
	"chrome://blank":     true,
	"chrome://home":      true,

	// Edge
	"edge://newtab": true,

	// Brave
	"brave://newtab": true,

	// Opera
	"opera://startpage": true,

	// Vivaldi
	"vivaldi://newtab": true,

	// Firefox
	"about:newtab": true,
	"about:blank":  true,
	"about:home":   true,

	"": true,
}

// NormalizeURL strips trailing slashes and lower-cases the URL. Used for
// new-tab-page detection only — reconciliation keys on the raw URL.
func NormalizeURL(url string) string {
	return strings.ToLower(strings.TrimRight(url, "/"))
}

// IsNewTabURL reports whether the URL is a new-tab page in any browser family.
func IsNewTabURL(url string) bool {
	return newTabURLs[NormalizeURL(url)]
}

// Filter returns the save-eligible subset of the snapshot: pinned tabs are
// dropped unless savePinned is set, and new-tab pages are always dropped.
// Pure function; the input slice is not modified.
func Filter(snapshot []Tab, savePinned bool) []Tab {
	eligible := make([]Tab, 0, len(snapshot))

	for _, t := range snapshot {
		if t.Pinned && !savePinned {
			continue
		}

		if IsNewTabURL(t.URL) {
			continue
		}

		eligible = append(eligible, t)
	}

	return eligible
}

// IsEmptySet reports whether the RAW snapshot is effectively empty: no tabs
// at all, or exactly one tab showing a new-tab page. Reconciliation uses
// this as a short-circuit so an empty window never wipes a folder.
func IsEmptySet(snapshot []Tab) bool {
	if len(snapshot) == 0 {
		return true
	}

	return len(snapshot) == 1 && IsNewTabURL(snapshot[0].URL)
}
