// Package config implements TOML configuration loading, validation, and
// platform-specific path resolution for tabvault.
package config

import (
	"fmt"
	"path/filepath"
)

// Valid browser family values.
const (
	BrowserFirefox = "firefox"
	BrowserChrome  = "chrome"
)

// Valid log levels.
var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

// Config is the top-level configuration parsed from a TOML file. It covers
// where tabvault keeps its data and how it reaches the browser; the save
// behavior itself lives in the settings document, not here.
type Config struct {
	LogLevel     string `toml:"log_level"`
	Browser      string `toml:"browser"`
	BridgeURL    string `toml:"bridge_url"`
	DataDir      string `toml:"data_dir"`
	BookmarksDB  string `toml:"bookmarks_db"`
	SettingsFile string `toml:"settings_file"`
}

// DefaultConfig returns a Config with all default values. The bridge URL
// defaults to empty, meaning the local SQLite mirror is used instead of a
// live browser connection.
func DefaultConfig() *Config {
	dataDir := DefaultDataDir()

	return &Config{
		LogLevel:     "info",
		Browser:      BrowserFirefox,
		DataDir:      dataDir,
		BookmarksDB:  filepath.Join(dataDir, "bookmarks.db"),
		SettingsFile: filepath.Join(dataDir, "settings.toml"),
	}
}

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level %q (expected debug, info, warn, or error)", cfg.LogLevel)
	}

	if cfg.Browser != BrowserFirefox && cfg.Browser != BrowserChrome {
		return fmt.Errorf("invalid browser %q (expected firefox or chrome)", cfg.Browser)
	}

	if cfg.BookmarksDB == "" && cfg.BridgeURL == "" {
		return fmt.Errorf("one of bookmarks_db or bridge_url must be set")
	}

	return nil
}
