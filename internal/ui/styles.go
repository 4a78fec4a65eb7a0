// Package ui handles terminal UI rendering.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors - using more subtle, balanced palette
var (
	ColorPrimary   = lipgloss.Color("4")   // Blue
	ColorSecondary = lipgloss.Color("8")   // Gray
	ColorSuccess   = lipgloss.Color("2")   // Green (dimmer)
	ColorWarning   = lipgloss.Color("3")   // Yellow (dimmer)
	ColorDanger    = lipgloss.Color("1")   // Red (dimmer)
	ColorMuted     = lipgloss.Color("245") // Light gray
	ColorHighlight = lipgloss.Color("6")   // Cyan
	ColorText      = lipgloss.Color("252") // Light text
)

// Styles
var (
	// Directory name style
	DirStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// Regular file name style
	FileStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	// Executable file name style
	ExecStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// Symlink name style
	LinkStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)

	// Selected line style
	SelectedStyle = lipgloss.NewStyle().
			Reverse(true)

	// Matched character style
	MatchStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorHighlight)

	// Pruning line and metadata column style
	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// Header style
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorMuted)

	// Status line style
	StatusStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// Error style
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorDanger)

	// Command input style
	InputStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	// Help style
	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// Divider style
	DividerStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary)

	// Git status styles, by porcelain rune
	GitModifiedStyle  = lipgloss.NewStyle().Foreground(ColorWarning)
	GitAddedStyle     = lipgloss.NewStyle().Foreground(ColorSuccess)
	GitDeletedStyle   = lipgloss.NewStyle().Foreground(ColorDanger)
	GitUntrackedStyle = lipgloss.NewStyle().Foreground(ColorMuted)
)

// Symbols
const (
	SymbolLink       = "→"
	SymbolUnreadable = "⚠"
	SymbolDivider    = "─"
)
