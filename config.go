package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"keytray/shortcut"
)

// LogConfig represents logging configuration
type LogConfig struct {
	MaxSizeMB  int  `json:"max_size_mb,omitempty" toml:"max_size_mb"`   // Max log file size in MB before rotation (default: 10)
	MaxBackups int  `json:"max_backups,omitempty" toml:"max_backups"`   // Max number of old log files to keep (default: 7)
	MaxAgeDays int  `json:"max_age_days,omitempty" toml:"max_age_days"` // Max days to retain old log files (default: 7)
	Compress   bool `json:"compress,omitempty" toml:"compress"`         // Compress rotated log files (default: true)
	ToStdout   bool `json:"to_stdout,omitempty" toml:"to_stdout"`       // Also write logs to stdout (default: true)
}

// DefaultLogConfig returns the default logging configuration
func DefaultLogConfig() LogConfig {
	return LogConfig{
		MaxSizeMB:  10,
		MaxBackups: 7,
		MaxAgeDays: 7,
		Compress:   true,
		ToStdout:   true,
	}
}

// EnvironmentConfig overrides the navigator strings of the desktop window
type EnvironmentConfig struct {
	UserAgent string `json:"user_agent,omitempty" toml:"user_agent"`
	Platform  string `json:"platform,omitempty" toml:"platform"`
	Headless  bool   `json:"headless,omitempty" toml:"headless"` // Force the no-window mode
}

// BridgeConfig configures the browser WebSocket bridge
type BridgeConfig struct {
	Enabled      bool     `json:"enabled" toml:"enabled"`
	Addr         string   `json:"addr,omitempty" toml:"addr"`                   // Listen address (default: 127.0.0.1:7717)
	AllowOrigins []string `json:"allow_origins,omitempty" toml:"allow_origins"` // Extra page origins allowed to connect
}

// DefaultBridgeAddr is the bridge listen address used when none is configured
const DefaultBridgeAddr = "127.0.0.1:7717"

// ListenAddr returns the configured address or the default
func (b BridgeConfig) ListenAddr() string {
	if b.Addr == "" {
		return DefaultBridgeAddr
	}
	return b.Addr
}

// Config represents the application configuration
type Config struct {
	Shortcuts   []ShortcutEntry   `json:"shortcuts" toml:"shortcuts"`
	Environment EnvironmentConfig `json:"environment,omitempty" toml:"environment"`
	Bridge      BridgeConfig      `json:"bridge,omitempty" toml:"bridge"`
	Logging     *LogConfig        `json:"logging,omitempty" toml:"logging"`
}

// GetLogConfigWithDefaults returns log config, using defaults if logging section is absent
func (c *Config) GetLogConfigWithDefaults() LogConfig {
	if c == nil || c.Logging == nil {
		return DefaultLogConfig()
	}

	cfg := DefaultLogConfig()

	// Override with user values if set
	if c.Logging.MaxSizeMB > 0 {
		cfg.MaxSizeMB = c.Logging.MaxSizeMB
	}
	if c.Logging.MaxBackups > 0 {
		cfg.MaxBackups = c.Logging.MaxBackups
	}
	if c.Logging.MaxAgeDays > 0 {
		cfg.MaxAgeDays = c.Logging.MaxAgeDays
	}
	// For booleans, only override if the logging section exists
	// This allows users to explicitly set false
	cfg.Compress = c.Logging.Compress
	cfg.ToStdout = c.Logging.ToStdout

	return cfg
}

// KeyCombo is a target combination. In config files it is either a list of
// key names or a single "Ctrl+Shift+K" string.
type KeyCombo []string

// ParseKeyCombo splits a "Ctrl+Shift+K" string. A lone "+" names the plus key.
func ParseKeyCombo(s string) KeyCombo {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if s == "+" {
		return KeyCombo{"+"}
	}

	var combo KeyCombo
	for _, part := range strings.Split(s, "+") {
		if part = strings.TrimSpace(part); part != "" {
			combo = append(combo, part)
		}
	}
	// "Ctrl++" means Ctrl and the plus key.
	if strings.HasSuffix(s, "++") {
		combo = append(combo, "+")
	}
	return combo
}

// String joins the combination with "+"
func (k KeyCombo) String() string {
	return strings.Join(k, "+")
}

// UnmarshalJSON implements custom unmarshaling to support both string and list formats
func (k *KeyCombo) UnmarshalJSON(data []byte) error {
	// Try as simple string first
	var simpleString string
	if err := json.Unmarshal(data, &simpleString); err == nil {
		*k = ParseKeyCombo(simpleString)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("keys must be a string or a list of strings: %w", err)
	}
	*k = list
	return nil
}

// UnmarshalTOML implements toml.Unmarshaler with the same two formats
func (k *KeyCombo) UnmarshalTOML(v interface{}) error {
	switch value := v.(type) {
	case string:
		*k = ParseKeyCombo(value)
		return nil
	case []interface{}:
		combo := make(KeyCombo, 0, len(value))
		for _, item := range value {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("keys must contain only strings, got %T", item)
			}
			combo = append(combo, s)
		}
		*k = combo
		return nil
	default:
		return fmt.Errorf("keys must be a string or a list of strings, got %T", v)
	}
}

// ShortcutEntry binds a key combination to an action
type ShortcutEntry struct {
	Name           string   `json:"name" toml:"name"`                                 // Display name in menu and logs
	Keys           KeyCombo `json:"keys" toml:"keys"`                                 // Target combination
	Mode           string   `json:"mode,omitempty" toml:"mode"`                       // "strict" (default) or "extended"
	PreventDefault bool     `json:"prevent_default,omitempty" toml:"prevent_default"` // Suppress the host's default action on match
	Global         bool     `json:"global,omitempty" toml:"global"`                   // Also register as an OS global hotkey
	Snippet        string   `json:"snippet,omitempty" toml:"snippet"`                 // Text to copy to clipboard
	URL            string   `json:"url,omitempty" toml:"url"`                         // URL to open in the browser
	Command        string   `json:"command,omitempty" toml:"command"`                 // Command to run in a terminal
	Terminal       string   `json:"terminal,omitempty" toml:"terminal"`               // Terminal command template with {cmd} placeholder
	Webhook        string   `json:"webhook,omitempty" toml:"webhook"`                 // URL to POST the trigger to
	Script         string   `json:"script,omitempty" toml:"script"`                   // Optional Lua script to run (filename in scripts folder)
	Confirm        bool     `json:"confirm,omitempty" toml:"confirm"`                 // Ask before running the action
}

// Variant returns the matcher variant for the entry's mode
func (e ShortcutEntry) Variant() shortcut.Variant {
	v, _ := shortcut.ParseVariant(e.Mode)
	return v
}

// Options returns the matcher options for the entry
func (e ShortcutEntry) Options() shortcut.Options {
	return shortcut.Options{PreventDefault: e.PreventDefault}
}

// ActionKind names the action the entry runs on trigger
func (e ShortcutEntry) ActionKind() string {
	switch {
	case e.Script != "":
		return "script"
	case e.Snippet != "":
		return "snippet"
	case e.URL != "":
		return "url"
	case e.Command != "":
		return "command"
	case e.Webhook != "":
		return "webhook"
	default:
		return ""
	}
}

// Validate reports every problem in the shortcut list
func (c *Config) Validate() error {
	var errs []error
	seen := make(map[string]struct{}, len(c.Shortcuts))

	for i, entry := range c.Shortcuts {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			errs = append(errs, fmt.Errorf("shortcut #%d: name is required", i+1))
			name = fmt.Sprintf("#%d", i+1)
		} else if _, dup := seen[name]; dup {
			errs = append(errs, fmt.Errorf("shortcut %q: duplicate name", name))
		}
		seen[name] = struct{}{}

		combo := shortcut.NormalizeCombo(entry.Keys)
		if len(combo) == 0 {
			errs = append(errs, fmt.Errorf("shortcut %q: keys are required", name))
		} else if !shortcut.ValidCombo(combo) {
			errs = append(errs, fmt.Errorf("shortcut %q: keys contain an empty key", name))
		}
		if _, ok := shortcut.ParseVariant(entry.Mode); !ok {
			errs = append(errs, fmt.Errorf("shortcut %q: unknown mode %q", name, entry.Mode))
		}
		if entry.ActionKind() == "" {
			errs = append(errs, fmt.Errorf("shortcut %q: no action configured", name))
		}
		if entry.Command != "" && entry.Terminal == "" && entry.Script == "" {
			errs = append(errs, fmt.Errorf("shortcut %q: command requires a terminal template", name))
		}
		if entry.Global {
			if entry.Variant() == shortcut.Extended {
				errs = append(errs, fmt.Errorf("shortcut %q: global hotkeys must use strict mode", name))
			} else if _, err := parseGlobalCombo(entry.Keys); err != nil && shortcut.ValidCombo(combo) {
				errs = append(errs, fmt.Errorf("shortcut %q: %w", name, err))
			}
		}
	}

	return errors.Join(errs...)
}

// ConfigDir returns the configuration directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "keytray")
}

// ScriptsDir returns the Lua scripts directory path
func ScriptsDir() string {
	return filepath.Join(ConfigDir(), "scripts")
}

// DefaultConfigPath returns the default configuration file path.
// A keytray.toml next to the JSON file takes precedence when the JSON file is absent.
func DefaultConfigPath() string {
	jsonPath := filepath.Join(ConfigDir(), "keytray.json")
	if _, err := os.Stat(jsonPath); err == nil {
		return jsonPath
	}
	tomlPath := filepath.Join(ConfigDir(), "keytray.toml")
	if _, err := os.Stat(tomlPath); err == nil {
		return tomlPath
	}
	return jsonPath
}

// ScriptPath returns the full path for a script filename
func ScriptPath(scriptName string) string {
	return filepath.Join(ScriptsDir(), scriptName)
}

// LoadConfig loads configuration from the specified path
// If path is empty, uses the default path
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if isTOML(path) {
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &cfg, nil
}

// SaveConfig saves configuration to the specified path
// If path is empty, uses the default path
func SaveConfig(cfg *Config, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	if isTOML(path) {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return err
		}
		if err := toml.NewEncoder(f).Encode(cfg); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// DefaultConfig returns the configuration written on first start
func DefaultConfig() *Config {
	return &Config{
		Shortcuts: []ShortcutEntry{
			{
				Name:    "Example Snippet",
				Keys:    KeyCombo{"Ctrl", "Alt", "K"},
				Global:  true,
				Snippet: "Hello from keytray",
			},
			{
				Name: "Example Chord",
				Keys: KeyCombo{"g", "h"},
				Mode: "extended",
				URL:  "https://example.com",
			},
		},
		Bridge: BridgeConfig{Addr: DefaultBridgeAddr},
	}
}

// CreateDefaultConfig creates a default configuration file if it doesn't exist
func CreateDefaultConfig() error {
	path := DefaultConfigPath()
	if _, err := os.Stat(path); err == nil {
		// Config already exists
		return nil
	}

	return SaveConfig(DefaultConfig(), path)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
