// Package settings persists the user's settings and usage statistics as a
// single TOML document with last-writer-wins semantics, and exposes a
// filesystem-watch based change feed.
package settings

import (
	"context"
	"log/slog"
	"strconv"
)

// Root preference values for the rootfolder / autosaverootfolder fields.
const (
	RootDefault = "default"
	RootToolbar = "toolbar"
	RootOther   = "other"
	RootMenu    = "menu"
	RootCustom  = "custom"
)

// Prefix type values for the prefixtype field.
const (
	PrefixCustom      = "custom"
	PrefixDate        = "date"
	PrefixDateTime    = "datetime"
	PrefixWindowTitle = "windowtitle"
)

// Interval and retention bounds. Malformed values clamp to these instead
// of failing; a bad settings write must never disable the feature wholesale.
const (
	DefaultIntervalMinutes = 5
	MinIntervalMinutes     = 1

	DefaultKeepDays = 30
	MinKeepDays     = 1
	MaxKeepDays     = 366
)

// Settings is the persisted settings record. Interval stays string-encoded
// to match the external interface; use IntervalMinutes for the parsed value.
type Settings struct {
	Autosave                 bool   `toml:"autosave"`
	Interval                 string `toml:"interval"`
	Overwrite                bool   `toml:"overwrite"`
	SavePinned               bool   `toml:"savepinned"`
	RootFolder               string `toml:"rootfolder"`
	CustomRootFolder         string `toml:"customrootfolder"`
	AutosaveRootFolder       string `toml:"autosaverootfolder"`
	CustomAutosaveRootFolder string `toml:"customautosaverootfolder"`
	LastFolder               string `toml:"lastfolder"`
	RememberLast             bool   `toml:"rememberlast"`
	ClosePinned              bool   `toml:"closepinned"`
	CloseTabs                bool   `toml:"closetabs"`
	PrefixEnabled            bool   `toml:"prefixenabled"`
	PrefixType               string `toml:"prefixtype"`
	PrefixCustomText         string `toml:"prefixcustom"`
	AutosaveKeepLimit        bool   `toml:"autosavekeeplimit"`
	AutosaveKeepDays         int    `toml:"autosavekeepdays"`
}

// Stats is the persisted statistics record. Counters only increase (except
// via explicit reset); timestamps are RFC 3339 strings, empty meaning unset.
type Stats struct {
	TotalSaves     int    `toml:"total_saves"`
	TabsSaved      int    `toml:"tabs_saved"`
	AutoSaves      int    `toml:"auto_saves"`
	FoldersCreated int    `toml:"folders_created"`
	LastSave       string `toml:"last_save"`
	InstallDate    string `toml:"install_date"`
}

// Default returns the settings applied on first run, matching the shipped
// defaults of the original extension.
func Default() Settings {
	return Settings{
		Autosave:           false,
		Interval:           strconv.Itoa(DefaultIntervalMinutes),
		Overwrite:          false,
		SavePinned:         false,
		RootFolder:         RootDefault,
		AutosaveRootFolder: RootDefault,
		RememberLast:       true,
		PrefixType:         PrefixCustom,
		AutosaveKeepDays:   DefaultKeepDays,
	}
}

// IntervalMinutes parses the string-encoded autosave interval, clamping
// malformed or out-of-range values instead of failing.
func (s Settings) IntervalMinutes(logger *slog.Logger) int {
	n, err := strconv.Atoi(s.Interval)
	if err != nil {
		logger.Warn("invalid autosave interval, using default",
			"interval", s.Interval, "default", DefaultIntervalMinutes)
		return DefaultIntervalMinutes
	}

	if n < MinIntervalMinutes {
		logger.Warn("autosave interval below minimum, clamping",
			"interval", n, "minimum", MinIntervalMinutes)
		return MinIntervalMinutes
	}

	return n
}

// RetentionDays returns the retention window, clamped to [1, 366].
func (s Settings) RetentionDays(logger *slog.Logger) int {
	return ClampKeepDays(s.AutosaveKeepDays, logger)
}

// ClampKeepDays clamps a retention window to [MinKeepDays, MaxKeepDays].
// A window below one day would put the cutoff in the future and delete
// folders saved today, so out-of-range values clamp instead of failing.
func ClampKeepDays(n int, logger *slog.Logger) int {
	switch {
	case n < MinKeepDays:
		logger.Warn("retention days below minimum, clamping",
			"days", n, "minimum", MinKeepDays)
		return MinKeepDays
	case n > MaxKeepDays:
		logger.Warn("retention days above maximum, clamping",
			"days", n, "maximum", MaxKeepDays)
		return MaxKeepDays
	default:
		return n
	}
}

// Repository is the settings/stats persistence surface consumed by the
// scheduler, the stats accumulator, and the CLI. Implementations must read
// fresh state on every call; callers never cache across suspension points.
type Repository interface {
	Settings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, s Settings) error
	Stats(ctx context.Context) (Stats, error)
	SaveStats(ctx context.Context, st Stats) error
}
