package resolver

import (
	"log/slog"

	"github.com/tabvault/tabvault/internal/settings"
)

// Family identifies the browser family whose bookmark tree is in use. The
// families disagree on the ids of their built-in root folders.
type Family string

const (
	FamilyFirefox Family = "firefox"
	FamilyChrome  Family = "chrome"
)

// Well-known root folder ids per family.
const (
	firefoxToolbarID = "toolbar_____"
	firefoxOtherID   = "unfiled_____"
	firefoxMenuID    = "menu________"

	chromeToolbarID = "1"
	chromeOtherID   = "2"
)

// RootFolderID maps a root preference to the concrete folder id for the
// family. A custom preference with no id configured falls back to the
// toolbar with a warning, as does the menu preference on Chrome, which has
// no separate menu root.
func RootFolderID(family Family, pref, customID string, logger *slog.Logger) string {
	if pref == settings.RootCustom {
		if customID != "" {
			return customID
		}

		logger.Warn("custom root folder selected but no folder id configured, using toolbar")
		pref = settings.RootToolbar
	}

	if family == FamilyChrome {
		switch pref {
		case settings.RootOther:
			return chromeOtherID
		case settings.RootMenu:
			logger.Warn("menu root folder is not available in this browser, using toolbar")
			return chromeToolbarID
		default:
			return chromeToolbarID
		}
	}

	switch pref {
	case settings.RootOther:
		return firefoxOtherID
	case settings.RootMenu:
		return firefoxMenuID
	default:
		return firefoxToolbarID
	}
}
