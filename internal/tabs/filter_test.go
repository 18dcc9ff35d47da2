package tabs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNewTabURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"firefox new tab", "about:newtab", true},
		{"firefox blank", "about:blank", true},
		{"chrome new tab", "chrome://newtab", true},
		{"chrome new tab trailing slash", "chrome://newtab/", true},
		{"chrome new tab mixed case", "Chrome://NewTab", true},
		{"edge new tab", "edge://newtab", true},
		{"brave new tab", "brave://newtab", true},
		{"empty url", "", true},
		{"regular page", "https://example.com", false},
		{"page mentioning newtab", "https://example.com/newtab", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsNewTabURL(tt.url))
		})
	}
}

func TestFilter_PinnedTabs(t *testing.T) {
	t.Parallel()

	snapshot := []Tab{
		{ID: 1, URL: "https://a.com", Pinned: true},
		{ID: 2, URL: "https://b.com"},
	}

	eligible := Filter(snapshot, false)
	assert.Len(t, eligible, 1)
	assert.Equal(t, "https://b.com", eligible[0].URL)

	eligible = Filter(snapshot, true)
	assert.Len(t, eligible, 2)
}

func TestFilter_NewTabPages(t *testing.T) {
	t.Parallel()

	snapshot := []Tab{
		{ID: 1, URL: "about:newtab"},
		{ID: 2, URL: "https://b.com"},
		{ID: 3, URL: ""},
	}

	eligible := Filter(snapshot, true)
	assert.Len(t, eligible, 1)
	assert.Equal(t, "https://b.com", eligible[0].URL)
}

func TestFilter_PreservesOrder(t *testing.T) {
	t.Parallel()

	snapshot := []Tab{
		{ID: 3, URL: "https://c.com"},
		{ID: 1, URL: "https://a.com"},
		{ID: 2, URL: "https://b.com"},
	}

	eligible := Filter(snapshot, false)
	assert.Equal(t, []string{"https://c.com", "https://a.com", "https://b.com"},
		[]string{eligible[0].URL, eligible[1].URL, eligible[2].URL})
}

func TestIsEmptySet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		snapshot []Tab
		want     bool
	}{
		{"no tabs", nil, true},
		{"single new tab page", []Tab{{URL: "about:newtab"}}, true},
		{"single real tab", []Tab{{URL: "https://a.com"}}, false},
		{"two new tab pages", []Tab{{URL: "about:newtab"}, {URL: "about:blank"}}, false},
		{"pinned new tab page only", []Tab{{URL: "chrome://newtab", Pinned: true}}, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsEmptySet(tt.snapshot))
		})
	}
}

func TestGroupByWindow(t *testing.T) {
	t.Parallel()

	snapshot := []Tab{
		{ID: 1, URL: "https://a.com", WindowID: 1},
		{ID: 2, URL: "https://b.com", WindowID: 2},
		{ID: 3, URL: "https://c.com", WindowID: 1},
	}

	groups := GroupByWindow(snapshot)
	assert.Len(t, groups, 2)
	assert.Len(t, groups[1], 2)
	assert.Equal(t, "https://a.com", groups[1][0].URL)
	assert.Equal(t, "https://c.com", groups[1][1].URL)
	assert.Len(t, groups[2], 1)
}
