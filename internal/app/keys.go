package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/henri123lemoine/canopy/internal/config"
)

// KeyMap defines all keybindings.
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Actions
	Open      key.Binding
	OpenLeave key.Binding
	Back      key.Binding
	NextMatch key.Binding
	PrevMatch key.Binding
	Panel     key.Binding

	// General
	Quit key.Binding
	Help key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		OpenLeave: key.NewBinding(
			key.WithKeys("alt+enter"),
			key.WithHelp("alt+enter", "open and leave"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		NextMatch: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next match"),
		),
		PrevMatch: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous match"),
		),
		Panel: key.NewBinding(
			key.WithKeys("ctrl+right"),
			key.WithHelp("ctrl+→", "next panel"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q", "ctrl+c"),
			key.WithHelp("ctrl+q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// KeyMapFromConfig creates a KeyMap from config settings.
func KeyMapFromConfig(cfg *config.KeysConfig) KeyMap {
	km := DefaultKeyMap()

	if cfg.Up != "" {
		km.Up = key.NewBinding(
			key.WithKeys(parseKeys(cfg.Up)...),
			key.WithHelp(cfg.Up, "up"),
		)
	}
	if cfg.Down != "" {
		km.Down = key.NewBinding(
			key.WithKeys(parseKeys(cfg.Down)...),
			key.WithHelp(cfg.Down, "down"),
		)
	}
	if cfg.PageUp != "" {
		km.PageUp = key.NewBinding(
			key.WithKeys(parseKeys(cfg.PageUp)...),
			key.WithHelp(cfg.PageUp, "page up"),
		)
	}
	if cfg.PageDown != "" {
		km.PageDown = key.NewBinding(
			key.WithKeys(parseKeys(cfg.PageDown)...),
			key.WithHelp(cfg.PageDown, "page down"),
		)
	}
	if cfg.Open != "" {
		km.Open = key.NewBinding(
			key.WithKeys(parseKeys(cfg.Open)...),
			key.WithHelp(cfg.Open, "open"),
		)
	}
	if cfg.OpenLeave != "" {
		km.OpenLeave = key.NewBinding(
			key.WithKeys(parseKeys(cfg.OpenLeave)...),
			key.WithHelp(cfg.OpenLeave, "open and leave"),
		)
	}
	if cfg.Back != "" {
		km.Back = key.NewBinding(
			key.WithKeys(parseKeys(cfg.Back)...),
			key.WithHelp(cfg.Back, "back"),
		)
	}
	if cfg.NextMatch != "" {
		km.NextMatch = key.NewBinding(
			key.WithKeys(parseKeys(cfg.NextMatch)...),
			key.WithHelp(cfg.NextMatch, "next match"),
		)
	}
	if cfg.PrevMatch != "" {
		km.PrevMatch = key.NewBinding(
			key.WithKeys(parseKeys(cfg.PrevMatch)...),
			key.WithHelp(cfg.PrevMatch, "previous match"),
		)
	}
	if cfg.Panel != "" {
		km.Panel = key.NewBinding(
			key.WithKeys(parseKeys(cfg.Panel)...),
			key.WithHelp(cfg.Panel, "next panel"),
		)
	}
	if cfg.Quit != "" {
		km.Quit = key.NewBinding(
			key.WithKeys(parseKeys(cfg.Quit)...),
			key.WithHelp(cfg.Quit, "quit"),
		)
	}
	if cfg.Help != "" {
		km.Help = key.NewBinding(
			key.WithKeys(parseKeys(cfg.Help)...),
			key.WithHelp(cfg.Help, "help"),
		)
	}

	return km
}

// parseKeys parses a comma-separated list of keys.
func parseKeys(s string) []string {
	parts := strings.Split(s, ",")
	var keys []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			keys = append(keys, p)
		}
	}
	return keys
}

// helpSections returns the keybinding reference shown on the help
// screen.
func helpSections(km KeyMap) []helpSection {
	return []helpSection{
		{
			title: "Navigation",
			bindings: []helpBinding{
				{km.Up.Help().Key, "move selection up"},
				{km.Down.Help().Key, "move selection down"},
				{km.PageUp.Help().Key, "scroll a page up"},
				{km.PageDown.Help().Key, "scroll a page down"},
				{km.NextMatch.Help().Key, "jump to next match"},
				{km.PrevMatch.Help().Key, "jump to previous match"},
				{km.Panel.Help().Key, "cycle panels"},
			},
		},
		{
			title: "Actions",
			bindings: []helpBinding{
				{km.Open.Help().Key, "open selection, stay"},
				{km.OpenLeave.Help().Key, "open selection, leave"},
				{km.Back.Help().Key, "clear search / select root / close panel"},
				{km.Quit.Help().Key, "quit"},
			},
		},
		{
			title: "Command line",
			bindings: []helpBinding{
				{"<text>", "filter the tree (fuzzy on names)"},
				{"p/<text>", "fuzzy on paths"},
				{"e/<text>", "exact substring"},
				{"/<regex>", "regex on names"},
				{":<verb>", "run a verb (:focus, :hidden, :sizes, :quit …)"},
			},
		},
	}
}

type helpBinding struct {
	keys string
	desc string
}

type helpSection struct {
	title    string
	bindings []helpBinding
}
