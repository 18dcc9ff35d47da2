package resolver

import (
	"time"

	"github.com/tabvault/tabvault/internal/settings"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

// DatedFolderName returns the daily autosave folder name for the given
// time, in the local zone.
func DatedFolderName(now time.Time) string {
	return now.Format(dateLayout)
}

// FolderPrefix builds the optional folder name prefix from the prefix
// settings. Returns "" when prefixing is disabled or the configured source
// yields nothing.
func FolderPrefix(s settings.Settings, now time.Time, windowTitle string) string {
	if !s.PrefixEnabled {
		return ""
	}

	switch s.PrefixType {
	case settings.PrefixDate:
		return now.Format(dateLayout)
	case settings.PrefixDateTime:
		return now.Format(dateTimeLayout)
	case settings.PrefixWindowTitle:
		return windowTitle
	default:
		return s.PrefixCustomText
	}
}

// ApplyPrefix joins a prefix and a folder name with a space separator,
// tolerating an empty prefix.
func ApplyPrefix(prefix, name string) string {
	if prefix == "" {
		return name
	}

	return prefix + " " + name
}
