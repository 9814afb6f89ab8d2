package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// Settings holds the tunable thresholds and policies for the action engine.
// Every duration is stored as milliseconds so the YAML stays plain numbers.
type Settings struct {
	Resolver   ResolverSettings   `yaml:"resolver"`
	Actions    ActionSettings     `yaml:"actions"`
	Navigation NavigationSettings `yaml:"navigation"`
	Fallback   FallbackSettings   `yaml:"fallback"`
	Browser    BrowserSettings    `yaml:"browser"`
}

// ResolverSettings controls locator resolution across shadow boundaries.
type ResolverSettings struct {
	ShadowTimeoutMs int `yaml:"shadow_timeout_ms"` // Total budget for one shadow segment
	PollIntervalMs  int `yaml:"poll_interval_ms"`  // Delay between in-page query retries
}

// ActionSettings controls individual handler behavior.
type ActionSettings struct {
	ClickTimeoutMs  int `yaml:"click_timeout_ms"`  // Native click attempt before JS fallback
	SelectTimeoutMs int `yaml:"select_timeout_ms"` // Per-attempt budget for select strategies
	ScrollSettleMs  int `yaml:"scroll_settle_ms"`  // Upper bound for scroll stabilization
}

// NavigationSettings controls post-action navigation detection.
type NavigationSettings struct {
	RaceTimeoutMs   int `yaml:"race_timeout_ms"`   // How long to wait for a new tab signal
	SettleTimeoutMs int `yaml:"settle_timeout_ms"` // Load-state and DOM settle ceiling
	QuietWindowMs   int `yaml:"quiet_window_ms"`   // Mutation-free window that counts as settled
}

// FallbackSettings gates which method names may be forwarded to the
// substrate when no dedicated handler exists. Patterns use glob syntax,
// deny wins over allow.
type FallbackSettings struct {
	AllowedMethods []string `yaml:"allowed_methods"`
	DeniedMethods  []string `yaml:"denied_methods"`
}

// BrowserSettings holds session-level browser defaults.
type BrowserSettings struct {
	Headless       bool `yaml:"headless"`
	ViewportWidth  int  `yaml:"viewport_width"`
	ViewportHeight int  `yaml:"viewport_height"`
}

// DefaultSettings returns the settings the engine ships with.
func DefaultSettings() *Settings {
	return &Settings{
		Resolver: ResolverSettings{
			ShadowTimeoutMs: 1500,
			PollIntervalMs:  50,
		},
		Actions: ActionSettings{
			ClickTimeoutMs:  3500,
			SelectTimeoutMs: 3500,
			ScrollSettleMs:  5000,
		},
		Navigation: NavigationSettings{
			RaceTimeoutMs:   1500,
			SettleTimeoutMs: 30000,
			QuietWindowMs:   500,
		},
		Fallback: FallbackSettings{
			AllowedMethods: []string{"*"},
			DeniedMethods:  nil,
		},
		Browser: BrowserSettings{
			Headless:       true,
			ViewportWidth:  1280,
			ViewportHeight: 720,
		},
	}
}

// ShadowTimeout returns the shadow segment budget as a duration.
func (r ResolverSettings) ShadowTimeout() time.Duration {
	return time.Duration(r.ShadowTimeoutMs) * time.Millisecond
}

// PollInterval returns the retry delay as a duration.
func (r ResolverSettings) PollInterval() time.Duration {
	return time.Duration(r.PollIntervalMs) * time.Millisecond
}

// ClickTimeout returns the native click budget as a duration.
func (a ActionSettings) ClickTimeout() time.Duration {
	return time.Duration(a.ClickTimeoutMs) * time.Millisecond
}

// SelectTimeout returns the per-attempt select budget as a duration.
func (a ActionSettings) SelectTimeout() time.Duration {
	return time.Duration(a.SelectTimeoutMs) * time.Millisecond
}

// ScrollSettle returns the scroll stabilization ceiling as a duration.
func (a ActionSettings) ScrollSettle() time.Duration {
	return time.Duration(a.ScrollSettleMs) * time.Millisecond
}

// RaceTimeout returns the new-tab race window as a duration.
func (n NavigationSettings) RaceTimeout() time.Duration {
	return time.Duration(n.RaceTimeoutMs) * time.Millisecond
}

// SettleTimeout returns the settle ceiling as a duration.
func (n NavigationSettings) SettleTimeout() time.Duration {
	return time.Duration(n.SettleTimeoutMs) * time.Millisecond
}

// QuietWindow returns the mutation-free window as a duration.
func (n NavigationSettings) QuietWindow() time.Duration {
	return time.Duration(n.QuietWindowMs) * time.Millisecond
}

// Validate checks that the settings are internally consistent.
func (s *Settings) Validate() error {
	if s.Resolver.ShadowTimeoutMs <= 0 {
		return fmt.Errorf("resolver.shadow_timeout_ms must be positive, got %d", s.Resolver.ShadowTimeoutMs)
	}
	if s.Resolver.PollIntervalMs <= 0 {
		return fmt.Errorf("resolver.poll_interval_ms must be positive, got %d", s.Resolver.PollIntervalMs)
	}
	if s.Resolver.PollIntervalMs > s.Resolver.ShadowTimeoutMs {
		return fmt.Errorf("resolver.poll_interval_ms (%d) exceeds resolver.shadow_timeout_ms (%d)",
			s.Resolver.PollIntervalMs, s.Resolver.ShadowTimeoutMs)
	}
	if s.Actions.ClickTimeoutMs <= 0 {
		return fmt.Errorf("actions.click_timeout_ms must be positive, got %d", s.Actions.ClickTimeoutMs)
	}
	if s.Actions.SelectTimeoutMs <= 0 {
		return fmt.Errorf("actions.select_timeout_ms must be positive, got %d", s.Actions.SelectTimeoutMs)
	}
	if s.Actions.ScrollSettleMs <= 0 {
		return fmt.Errorf("actions.scroll_settle_ms must be positive, got %d", s.Actions.ScrollSettleMs)
	}
	if s.Navigation.RaceTimeoutMs <= 0 {
		return fmt.Errorf("navigation.race_timeout_ms must be positive, got %d", s.Navigation.RaceTimeoutMs)
	}
	if s.Navigation.SettleTimeoutMs <= 0 {
		return fmt.Errorf("navigation.settle_timeout_ms must be positive, got %d", s.Navigation.SettleTimeoutMs)
	}
	if s.Navigation.QuietWindowMs <= 0 {
		return fmt.Errorf("navigation.quiet_window_ms must be positive, got %d", s.Navigation.QuietWindowMs)
	}
	if s.Browser.ViewportWidth <= 0 || s.Browser.ViewportHeight <= 0 {
		return fmt.Errorf("browser viewport must be positive, got %dx%d",
			s.Browser.ViewportWidth, s.Browser.ViewportHeight)
	}

	for _, pattern := range s.Fallback.AllowedMethods {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("fallback.allowed_methods pattern %q: %w", pattern, err)
		}
	}
	for _, pattern := range s.Fallback.DeniedMethods {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("fallback.denied_methods pattern %q: %w", pattern, err)
		}
	}

	return nil
}

// DefaultSettingsPath returns the canonical settings location.
func DefaultSettingsPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".deepact", "settings.yaml"), nil
}

// LoadSettings reads and parses a settings file. A missing file is not an
// error: the defaults are returned so a fresh install works unconfigured.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	settings := DefaultSettings()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return settings, nil
}

// SaveSettings writes settings to a YAML file.
func SaveSettings(path string, settings *Settings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}
