package resolver

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootFolderID(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name     string
		family   Family
		pref     string
		customID string
		want     string
	}{
		{"firefox default", FamilyFirefox, "default", "", "toolbar_____"},
		{"firefox toolbar", FamilyFirefox, "toolbar", "", "toolbar_____"},
		{"firefox other", FamilyFirefox, "other", "", "unfiled_____"},
		{"firefox menu", FamilyFirefox, "menu", "", "menu________"},
		{"chrome default", FamilyChrome, "default", "", "1"},
		{"chrome toolbar", FamilyChrome, "toolbar", "", "1"},
		{"chrome other", FamilyChrome, "other", "", "2"},
		{"chrome menu falls back to toolbar", FamilyChrome, "menu", "", "1"},
		{"custom with id", FamilyFirefox, "custom", "my-folder", "my-folder"},
		{"custom without id falls back", FamilyFirefox, "custom", "", "toolbar_____"},
		{"custom without id falls back on chrome", FamilyChrome, "custom", "", "1"},
		{"unknown preference", FamilyFirefox, "bogus", "", "toolbar_____"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, RootFolderID(tt.family, tt.pref, tt.customID, logger))
		})
	}
}
