package session

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/dayrun/dayrun/internal/logging"
)

var configLog = logging.ForComponent(logging.CompConfig)

// Config is the user configuration stored in config.toml under the
// dayrun directory. Missing keys fall back to built-in defaults, so a
// hand-edited file only needs the keys the user cares about.
type Config struct {
	// DefaultDuration is used when start gets no --duration flag and the
	// template does not set one (default: "25m").
	DefaultDuration string `toml:"default_duration"`

	// DNDOnStart enables Do Not Disturb for sessions that do not say
	// otherwise (default: true).
	DNDOnStart *bool `toml:"dnd_on_start"`

	Templates map[string]Template `toml:"templates"`
}

// Template is a named session preset selected with start --template.
type Template struct {
	Duration      string       `toml:"duration,omitempty"`
	DND           *bool        `toml:"dnd,omitempty"`
	Apps          []string     `toml:"apps"`
	Cmds          []string     `toml:"cmds"`
	Music         string       `toml:"music,omitempty"`
	Notifications *bool        `toml:"notifications,omitempty"`
	Tmux          TmuxTemplate `toml:"tmux"`
}

// TmuxTemplate describes the tmux session a template opens.
type TmuxTemplate struct {
	SessionName string `toml:"session_name,omitempty"`
	Panes       []Pane `toml:"panes,omitempty"`
}

// GetDNDOnStart returns whether sessions enable DND by default.
func (c *Config) GetDNDOnStart() bool {
	if c.DNDOnStart == nil {
		return true
	}
	return *c.DNDOnStart
}

// GetNotifications returns whether sessions from this template send
// notifications, defaulting to on.
func (t *Template) GetNotifications() bool {
	if t.Notifications == nil {
		return true
	}
	return *t.Notifications
}

// GetDND reports the template's DND preference and whether it set one.
func (t *Template) GetDND() (bool, bool) {
	if t.DND == nil {
		return false, false
	}
	return *t.DND, true
}

// DefaultConfig returns the built-in configuration, including the
// deep-work starter template. Callers get a fresh copy they may mutate.
func DefaultConfig() *Config {
	on := true
	return &Config{
		DefaultDuration: "25m",
		DNDOnStart:      &on,
		Templates:       defaultTemplates(),
	}
}

func defaultTemplates() map[string]Template {
	on := true
	return map[string]Template{
		"deep-work": {
			Duration:      "90m",
			DND:           &on,
			Apps:          []string{},
			Cmds:          []string{},
			Notifications: &on,
			Tmux: TmuxTemplate{
				SessionName: "dayrun_deep",
			},
		},
	}
}

// ConfigStore loads and saves the config file for one Environment.
// The first successful load is cached; Save invalidates the cache.
type ConfigStore struct {
	env *Environment

	mu     sync.RWMutex
	cached *Config
}

func NewConfigStore(env *Environment) *ConfigStore {
	return &ConfigStore{env: env}
}

// Load returns the configuration, creating the file with defaults if it
// does not exist yet. A file that fails to parse is reported but does
// not block the caller: defaults are returned alongside the error.
func (s *ConfigStore) Load() (*Config, error) {
	s.mu.RLock()
	if s.cached != nil {
		defer s.mu.RUnlock()
		return s.cached, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring the write lock
	if s.cached != nil {
		return s.cached, nil
	}

	path := s.env.ConfigPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := s.writeLocked(cfg); err != nil {
			// Still usable in memory; the next run will retry the write.
			configLog.Warn("failed to materialize default config", "path", path, "error", err)
		}
		s.cached = cfg
		return s.cached, nil
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		// Cache defaults so a broken file is not re-parsed on every call.
		s.cached = DefaultConfig()
		return s.cached, fmt.Errorf("config.toml parse error: %w", err)
	}

	fillDefaults(&cfg)
	s.cached = &cfg
	return s.cached, nil
}

// Save writes the config atomically and clears the cache so the next
// Load picks up the saved values.
func (s *ConfigStore) Save(cfg *Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writeLocked(cfg); err != nil {
		return err
	}
	s.cached = nil
	return nil
}

// Reload drops the cache and loads fresh from disk.
func (s *ConfigStore) Reload() (*Config, error) {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
	return s.Load()
}

func (s *ConfigStore) writeLocked(cfg *Config) error {
	if err := s.env.EnsureDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("# DayRun configuration\n")
	buf.WriteString("# Edit this file or manage templates with 'dayrun templates'\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	path := s.env.ConfigPath()
	tmpPath := path + ".tmp"

	// Temp file + fsync + rename so a crash never leaves a truncated config.
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := syncFile(tmpPath); err != nil {
		configLog.Warn("failed to fsync config temp file", "error", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize config save: %w", err)
	}
	return nil
}

func fillDefaults(cfg *Config) {
	if cfg.DefaultDuration == "" {
		cfg.DefaultDuration = "25m"
	}
	if cfg.Templates == nil {
		cfg.Templates = defaultTemplates()
	}
}
