// Package config handles canopy configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config represents canopy configuration.
type Config struct {
	Display DisplayConfig `toml:"display"`
	Search  SearchConfig  `toml:"search"`
	Keys    KeysConfig    `toml:"keys"`
	History HistoryConfig `toml:"history"`
	Verbs   []VerbConfig  `toml:"verbs"`
}

// DisplayConfig contains tree rendering settings.
type DisplayConfig struct {
	// Show hidden (dot) entries by default
	ShowHidden bool `toml:"show_hidden"`

	// Hide gitignored entries by default
	RespectGitignore bool `toml:"respect_gitignore"`

	// Show file sizes by default
	ShowSizes bool `toml:"show_sizes"`

	// Show modification dates by default
	ShowDates bool `toml:"show_dates"`

	// Show unix permissions by default
	ShowPermissions bool `toml:"show_permissions"`

	// Show per-file version-control status markers
	ShowGitInfo bool `toml:"show_git_info"`

	// Color theme: auto, dark, light
	Theme string `toml:"theme"`
}

// SearchConfig contains tree construction settings.
type SearchConfig struct {
	// Maximum number of lines a bounded build may produce.
	// The terminal height wins when it is larger.
	Budget int `toml:"budget"`
}

// KeysConfig contains keybinding settings.
type KeysConfig struct {
	Up        string `toml:"up"`
	Down      string `toml:"down"`
	PageUp    string `toml:"page_up"`
	PageDown  string `toml:"page_down"`
	Open      string `toml:"open"`
	OpenLeave string `toml:"open_leave"`
	Back      string `toml:"back"`
	NextMatch string `toml:"next_match"`
	PrevMatch string `toml:"previous_match"`
	Panel     string `toml:"panel"`
	Quit      string `toml:"quit"`
	Help      string `toml:"help"`
}

// HistoryConfig controls the persisted per-directory state.
type HistoryConfig struct {
	// Remember the last root and selection per starting directory
	Enabled bool `toml:"enabled"`

	// Maximum number of remembered directories
	MaxEntries int `toml:"max_entries"`
}

// VerbConfig declares a user-defined verb running an external command.
type VerbConfig struct {
	// Invocation name, e.g. "edit"
	Invocation string `toml:"invocation"`

	// Command template. Template variables: {file}, {directory}, {parent}
	Execution string `toml:"execution"`

	// Quit before running the command, handing the terminal over
	Leave bool `toml:"leave"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Display: DisplayConfig{
			ShowHidden:       false,
			RespectGitignore: true,
			ShowSizes:        false,
			ShowDates:        false,
			ShowPermissions:  false,
			ShowGitInfo:      true,
			Theme:            "auto",
		},
		Search: SearchConfig{
			Budget: 400,
		},
		Keys: KeysConfig{
			Up:        "up,ctrl+p",
			Down:      "down,ctrl+n",
			PageUp:    "pgup",
			PageDown:  "pgdown",
			Open:      "enter",
			OpenLeave: "alt+enter",
			Back:      "esc",
			NextMatch: "tab",
			PrevMatch: "shift+tab",
			Panel:     "ctrl+right",
			Quit:      "ctrl+q",
			Help:      "?",
		},
		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: 200,
		},
		Verbs: []VerbConfig{},
	}
}

// templateVarPattern matches {var} placeholders in verb templates.
var templateVarPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// validTemplateVars are the placeholders verb templates may use.
var validTemplateVars = map[string]bool{
	"file":      true,
	"directory": true,
	"parent":    true,
}

// Validate returns human-readable warnings for suspect settings. The
// configuration stays usable: warnings are advisory.
func (c *Config) Validate() []string {
	var warnings []string

	switch c.Display.Theme {
	case "", "auto", "dark", "light":
	default:
		warnings = append(warnings, fmt.Sprintf("display.theme: unknown theme %q (expected auto, dark or light)", c.Display.Theme))
	}

	if c.Search.Budget < 0 {
		warnings = append(warnings, fmt.Sprintf("search.budget: %d is negative, using the default", c.Search.Budget))
	}

	if c.History.MaxEntries < 0 {
		warnings = append(warnings, fmt.Sprintf("history.max_entries: %d is negative, using the default", c.History.MaxEntries))
	}

	for i, v := range c.Verbs {
		if v.Invocation == "" {
			warnings = append(warnings, fmt.Sprintf("verbs[%d]: missing invocation", i))
		}
		if strings.TrimSpace(v.Execution) == "" {
			warnings = append(warnings, fmt.Sprintf("verbs[%d] (%s): missing execution", i, v.Invocation))
			continue
		}
		for _, m := range templateVarPattern.FindAllStringSubmatch(v.Execution, -1) {
			if !validTemplateVars[m[1]] {
				warnings = append(warnings, fmt.Sprintf("verbs[%d] (%s): unknown template variable {%s}", i, v.Invocation, m[1]))
			}
		}
	}

	return warnings
}

// ConfigPath returns the path to the config file.
// Uses ~/.config/canopy/config.toml (XDG style) on all Unix systems.
func ConfigPath() string {
	// Respect XDG_CONFIG_HOME if set
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "canopy", "config.toml")
	}
	// Default to ~/.config on Unix (including macOS)
	home := os.Getenv("HOME")
	if home != "" {
		return filepath.Join(home, ".config", "canopy", "config.toml")
	}
	// Fallback to os.UserConfigDir() for Windows
	configDir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "canopy", "config.toml")
	}
	return filepath.Join(configDir, "canopy", "config.toml")
}

// IsFirstRun returns true if no config file exists.
func IsFirstRun() bool {
	_, err := os.Stat(ConfigPath())
	return os.IsNotExist(err)
}

// Load loads configuration from the config file.
func Load() (*Config, error) {
	return LoadFromPath(ConfigPath())
}

// LoadFromPath loads configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file, use defaults
			return cfg, nil
		}
		return nil, err
	}

	// Unmarshal directly into default config.
	// go-toml/v2 only overwrites fields present in the TOML file,
	// preserving defaults for unspecified fields (including booleans).
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if cfg.Search.Budget <= 0 {
		cfg.Search.Budget = DefaultConfig().Search.Budget
	}
	if cfg.History.MaxEntries < 0 {
		cfg.History.MaxEntries = DefaultConfig().History.MaxEntries
	}

	return cfg, nil
}

// CreateDefaultConfigFile creates a default config file with comments.
func CreateDefaultConfigFile() error {
	path := ConfigPath()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	content := generateDefaultConfigContent()
	return os.WriteFile(path, []byte(content), 0644)
}

// generateDefaultConfigContent generates a commented config file.
func generateDefaultConfigContent() string {
	var b strings.Builder
	cfg := DefaultConfig()

	b.WriteString("# Canopy Configuration\n")
	b.WriteString("# See https://github.com/henri123lemoine/canopy for documentation\n\n")

	b.WriteString("[display]\n")
	b.WriteString("# Show hidden (dot) entries by default\n")
	fmt.Fprintf(&b, "show_hidden = %v\n", cfg.Display.ShowHidden)
	b.WriteString("# Hide gitignored entries by default\n")
	fmt.Fprintf(&b, "respect_gitignore = %v\n", cfg.Display.RespectGitignore)
	b.WriteString("# Show file sizes by default\n")
	fmt.Fprintf(&b, "show_sizes = %v\n", cfg.Display.ShowSizes)
	b.WriteString("# Show modification dates by default\n")
	fmt.Fprintf(&b, "show_dates = %v\n", cfg.Display.ShowDates)
	b.WriteString("# Show unix permissions by default\n")
	fmt.Fprintf(&b, "show_permissions = %v\n", cfg.Display.ShowPermissions)
	b.WriteString("# Show per-file version-control status markers\n")
	fmt.Fprintf(&b, "show_git_info = %v\n", cfg.Display.ShowGitInfo)
	b.WriteString("# Color theme: \"auto\", \"dark\", or \"light\"\n")
	fmt.Fprintf(&b, "theme = %q\n\n", cfg.Display.Theme)

	b.WriteString("[search]\n")
	b.WriteString("# Maximum number of lines a bounded build may produce.\n")
	b.WriteString("# The terminal height wins when it is larger.\n")
	fmt.Fprintf(&b, "budget = %d\n\n", cfg.Search.Budget)

	b.WriteString("[keys]\n")
	b.WriteString("# Keybindings (comma-separated for multiple keys)\n")
	fmt.Fprintf(&b, "# up = %q\n", cfg.Keys.Up)
	fmt.Fprintf(&b, "# down = %q\n", cfg.Keys.Down)
	fmt.Fprintf(&b, "# open = %q\n", cfg.Keys.Open)
	fmt.Fprintf(&b, "# open_leave = %q\n", cfg.Keys.OpenLeave)
	fmt.Fprintf(&b, "# back = %q\n", cfg.Keys.Back)
	fmt.Fprintf(&b, "# next_match = %q\n", cfg.Keys.NextMatch)
	fmt.Fprintf(&b, "# previous_match = %q\n", cfg.Keys.PrevMatch)
	fmt.Fprintf(&b, "# quit = %q\n\n", cfg.Keys.Quit)

	b.WriteString("[history]\n")
	b.WriteString("# Remember the last root and selection per starting directory\n")
	fmt.Fprintf(&b, "enabled = %v\n", cfg.History.Enabled)
	b.WriteString("# Maximum number of remembered directories\n")
	fmt.Fprintf(&b, "max_entries = %d\n\n", cfg.History.MaxEntries)

	b.WriteString("# User-defined verbs, invoked from the command line (\":\" prefix).\n")
	b.WriteString("# Template variables: {file}, {directory}, {parent}\n")
	b.WriteString("#\n")
	b.WriteString("# [[verbs]]\n")
	b.WriteString("# invocation = \"edit\"\n")
	b.WriteString("# execution = \"$EDITOR {file}\"\n")
	b.WriteString("# leave = true\n")

	return b.String()
}
