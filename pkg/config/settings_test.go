package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	require.NoError(t, s.Validate())

	assert.Equal(t, 1500, s.Resolver.ShadowTimeoutMs)
	assert.Equal(t, 50, s.Resolver.PollIntervalMs)
	assert.Equal(t, 3500, s.Actions.ClickTimeoutMs)
	assert.Equal(t, 1500, s.Navigation.RaceTimeoutMs)
	assert.Equal(t, []string{"*"}, s.Fallback.AllowedMethods)
	assert.True(t, s.Browser.Headless)
}

func TestSettingsDurations(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, "1.5s", s.Resolver.ShadowTimeout().String())
	assert.Equal(t, "50ms", s.Resolver.PollInterval().String())
	assert.Equal(t, "3.5s", s.Actions.ClickTimeout().String())
	assert.Equal(t, "1.5s", s.Navigation.RaceTimeout().String())
	assert.Equal(t, "30s", s.Navigation.SettleTimeout().String())
	assert.Equal(t, "500ms", s.Navigation.QuietWindow().String())
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{
			name:    "defaults are valid",
			mutate:  func(s *Settings) {},
			wantErr: "",
		},
		{
			name:    "zero shadow timeout",
			mutate:  func(s *Settings) { s.Resolver.ShadowTimeoutMs = 0 },
			wantErr: "shadow_timeout_ms",
		},
		{
			name:    "negative poll interval",
			mutate:  func(s *Settings) { s.Resolver.PollIntervalMs = -1 },
			wantErr: "poll_interval_ms",
		},
		{
			name: "poll interval larger than shadow timeout",
			mutate: func(s *Settings) {
				s.Resolver.PollIntervalMs = 2000
				s.Resolver.ShadowTimeoutMs = 1500
			},
			wantErr: "exceeds",
		},
		{
			name:    "zero click timeout",
			mutate:  func(s *Settings) { s.Actions.ClickTimeoutMs = 0 },
			wantErr: "click_timeout_ms",
		},
		{
			name:    "zero race timeout",
			mutate:  func(s *Settings) { s.Navigation.RaceTimeoutMs = 0 },
			wantErr: "race_timeout_ms",
		},
		{
			name:    "zero viewport",
			mutate:  func(s *Settings) { s.Browser.ViewportWidth = 0 },
			wantErr: "viewport",
		},
		{
			name:    "bad allow pattern",
			mutate:  func(s *Settings) { s.Fallback.AllowedMethods = []string{"[unclosed"} },
			wantErr: "allowed_methods",
		},
		{
			name:    "bad deny pattern",
			mutate:  func(s *Settings) { s.Fallback.DeniedMethods = []string{"[unclosed"} },
			wantErr: "denied_methods",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(s)

			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadSettingsMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.yaml")

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestLoadSettingsPartialFile(t *testing.T) {
	// A partial file overrides only the keys it names.
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := []byte("resolver:\n  shadow_timeout_ms: 4000\n  poll_interval_ms: 50\n")
	require.NoError(t, os.WriteFile(path, content, 0644))

	s, err := LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, 4000, s.Resolver.ShadowTimeoutMs)
	// Untouched sections keep defaults
	assert.Equal(t, 3500, s.Actions.ClickTimeoutMs)
	assert.Equal(t, 1500, s.Navigation.RaceTimeoutMs)
}

func TestLoadSettingsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("resolver: [not a map"), 0644))

	_, err := LoadSettings(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YAML")
}

func TestLoadSettingsRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := []byte("resolver:\n  shadow_timeout_ms: -5\n")
	require.NoError(t, os.WriteFile(path, content, 0644))

	_, err := LoadSettings(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid settings")
}

func TestSaveSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")

	original := DefaultSettings()
	original.Resolver.ShadowTimeoutMs = 2500
	original.Fallback.DeniedMethods = []string{"tap", "drag*"}
	original.Browser.Headless = false

	require.NoError(t, SaveSettings(path, original))

	loaded, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestSaveSettingsRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	bad := DefaultSettings()
	bad.Actions.ClickTimeoutMs = 0

	err := SaveSettings(path, bad)
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "invalid settings must not be written")
}
