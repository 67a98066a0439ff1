// Package config extends the core configuration with menu, lookup, journal
// and health settings.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/lookupbot/core/config"
	"github.com/m3rciful/lookupbot/internal/lookup"
	"github.com/m3rciful/lookupbot/internal/menu"
)

// HealthConfig controls the optional HTTP health endpoint.
type HealthConfig struct {
	Enabled bool   `yaml:"enabled" envconfig:"HEALTH_ENABLED"`
	Listen  string `yaml:"listen" envconfig:"HEALTH_LISTEN"`
}

// MenuConfig selects the menu variant.
type MenuConfig struct {
	Actions  []string `yaml:"actions" envconfig:"MENU_ACTIONS"`
	Keyboard string   `yaml:"keyboard" envconfig:"MENU_KEYBOARD"`
}

// LookupsConfig tunes outbound API calls.
type LookupsConfig struct {
	TimeoutSeconds int    `yaml:"timeout_seconds" envconfig:"LOOKUP_TIMEOUT_SECONDS"`
	UserAgent      string `yaml:"user_agent" envconfig:"LOOKUP_USER_AGENT"`
	// Endpoints overrides the default URL per action id.
	Endpoints map[string]string `yaml:"endpoints" ignored:"true"`
}

// JournalConfig locates the CSV journal.
type JournalConfig struct {
	Path     string `yaml:"path" envconfig:"JOURNAL_PATH"`
	Timezone string `yaml:"timezone" envconfig:"JOURNAL_TIMEZONE"`
}

// Config is the full bot configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Health  HealthConfig  `yaml:"health"`
	Menu    MenuConfig    `yaml:"menu"`
	Lookups LookupsConfig `yaml:"lookups"`
	Journal JournalConfig `yaml:"journal"`

	actions   []menu.ActionID
	keyboard  menu.KeyboardKind
	endpoints map[menu.ActionID]string
	location  *time.Location
}

const (
	defaultJournalPath  = "user_logs.csv"
	defaultHealthListen = ":8080"
	defaultUserAgent    = "lookupbot"
)

// Load reads path, overlays the environment and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.LoadInto(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates cfg and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}

	actions := menu.DefaultActions()
	if len(cfg.Menu.Actions) > 0 {
		actions = actions[:0]
		for _, raw := range cfg.Menu.Actions {
			a, err := menu.ParseAction(raw)
			if err != nil {
				return fmt.Errorf("menu.actions: %w", err)
			}
			actions = append(actions, a)
		}
	}
	kind, err := menu.ParseKeyboard(cfg.Menu.Keyboard)
	if err != nil {
		return fmt.Errorf("menu.keyboard: %w", err)
	}
	// Build once to surface duplicates and non-lookup actions at startup.
	if _, err := menu.New(actions, kind); err != nil {
		return fmt.Errorf("menu: %w", err)
	}
	cfg.actions, cfg.keyboard = actions, kind

	if cfg.Lookups.TimeoutSeconds < 0 {
		return fmt.Errorf("lookups.timeout_seconds must be >= 0")
	}
	if cfg.Lookups.TimeoutSeconds == 0 {
		cfg.Lookups.TimeoutSeconds = int(lookup.DefaultTimeout / time.Second)
	}
	if strings.TrimSpace(cfg.Lookups.UserAgent) == "" {
		cfg.Lookups.UserAgent = defaultUserAgent
	}
	cfg.endpoints = make(map[menu.ActionID]string, len(cfg.Lookups.Endpoints))
	for key, raw := range cfg.Lookups.Endpoints {
		a, err := menu.ParseAction(key)
		if err != nil || !a.IsLookup() {
			return fmt.Errorf("lookups.endpoints: %q is not a lookup action", key)
		}
		u, err := url.ParseRequestURI(strings.TrimSpace(raw))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("lookups.endpoints.%s: invalid url %q", key, raw)
		}
		cfg.endpoints[a] = u.String()
	}

	if strings.TrimSpace(cfg.Journal.Path) == "" {
		cfg.Journal.Path = defaultJournalPath
	}
	cfg.location = time.Local
	if tz := strings.TrimSpace(cfg.Journal.Timezone); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return fmt.Errorf("journal.timezone: %w", err)
		}
		cfg.location = loc
	}

	if cfg.Health.Enabled && strings.TrimSpace(cfg.Health.Listen) == "" {
		cfg.Health.Listen = defaultHealthListen
	}
	return nil
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config { return &c.Config }

// MenuActions returns the validated menu actions.
func (c *Config) MenuActions() []menu.ActionID { return append([]menu.ActionID(nil), c.actions...) }

// Keyboard returns the validated keyboard kind.
func (c *Config) Keyboard() menu.KeyboardKind { return c.keyboard }

// Endpoints returns the validated endpoint overrides.
func (c *Config) Endpoints() map[menu.ActionID]string {
	out := make(map[menu.ActionID]string, len(c.endpoints))
	for k, v := range c.endpoints {
		out[k] = v
	}
	return out
}

// LookupTimeout returns the per-call timeout.
func (c *Config) LookupTimeout() time.Duration {
	return time.Duration(c.Lookups.TimeoutSeconds) * time.Second
}

// Location returns the journal time zone.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}
