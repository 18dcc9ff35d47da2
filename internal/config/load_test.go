package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
log_level = "debug"
browser = "chrome"
bridge_url = "ws://127.0.0.1:9555"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, BrowserChrome, cfg.Browser)
	assert.Equal(t, "ws://127.0.0.1:9555", cfg.BridgeURL)
	// Unspecified fields keep their defaults.
	assert.NotEmpty(t, cfg.SettingsFile)
}

func TestLoad_UnknownKeySuggestion(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `brower = "firefox"`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown config key "brower"`)
	assert.Contains(t, err.Error(), `did you mean "browser"?`)
}

func TestLoad_UnknownKeyNoSuggestion(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `completely_wrong = 1`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown config key "completely_wrong"`)
	assert.NotContains(t, err.Error(), "did you mean")
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `log_level = "loud"`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "invalid log_level")
}

func TestLoad_InvalidBrowser(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `browser = "netscape"`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "invalid browser")
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	t.Parallel()

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, BrowserFirefox, cfg.Browser)
	assert.Empty(t, cfg.BridgeURL)
	assert.NoError(t, Validate(cfg))
}

func TestLevenshtein(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"browser", "browser", 0},
		{"brower", "browser", 1},
		{"kitten", "sitting", 3},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, levenshtein(tt.a, tt.b), "%s vs %s", tt.a, tt.b)
	}
}
