package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"

	"github.com/henri123lemoine/canopy/internal/tree"
)

// HelpBinding represents a keybinding for help display.
type HelpBinding struct {
	Keys string
	Desc string
}

// HelpSection represents a section of help bindings.
type HelpSection struct {
	Title    string
	Bindings []HelpBinding
}

// RenderParams contains all parameters needed for rendering.
type RenderParams struct {
	Tree       *tree.Tree
	Width      int
	Height     int
	PageHeight int

	// Input is the rendered command line (pattern or verb under
	// composition).
	Input string

	// TaskName names the outstanding background work, "" when idle.
	TaskName string

	// FlashError is a transient error shown on the status line.
	FlashError string

	// PanelIndex and PanelCount describe the panel stack.
	PanelIndex int
	PanelCount int

	// ShowHelp replaces the tree with the keybinding reference.
	ShowHelp     bool
	HelpSections []HelpSection
}

// MinWidth is the absolute minimum terminal width we try to support.
const MinWidth = 20

// MinHeight is the absolute minimum terminal height we try to support.
const MinHeight = 4

// Render renders the full UI: header, tree page, status line, input
// line.
func Render(p RenderParams) string {
	if p.Width < MinWidth {
		p.Width = MinWidth
	}
	if p.Height < MinHeight {
		p.Height = MinHeight
	}
	if p.ShowHelp {
		return renderHelp(p)
	}
	return renderBrowser(p)
}

func renderBrowser(p RenderParams) string {
	var b strings.Builder

	b.WriteString(renderHeader(p) + "\n")

	t := p.Tree
	end := t.Scroll + p.PageHeight
	if end > t.Len() {
		end = t.Len()
	}
	for i := t.Scroll; i < end; i++ {
		b.WriteString(renderLine(t, i, p.Width) + "\n")
	}
	for i := end - t.Scroll; i < p.PageHeight; i++ {
		b.WriteString("\n")
	}

	b.WriteString(renderStatus(p) + "\n")
	b.WriteString(InputStyle.Render(p.Input))

	return b.String()
}

func renderHeader(p RenderParams) string {
	root := p.Tree.Root
	header := HeaderStyle.Render(filepath.Base(root)) + "  " + MutedStyle.Render(root)
	if p.PanelCount > 1 {
		header += "  " + MutedStyle.Render(fmt.Sprintf("[%d/%d]", p.PanelIndex+1, p.PanelCount))
	}
	return truncate.StringWithTail(header, uint(p.Width), "…")
}

// renderLine renders one tree row: indent, name with match highlights,
// then the metadata columns the options ask for.
func renderLine(t *tree.Tree, i, width int) string {
	l := &t.Lines[i]

	if l.Type == tree.LinePruning {
		row := strings.Repeat("  ", l.Depth) + l.Name
		return MutedStyle.Render(truncate.StringWithTail(row, uint(width), "…"))
	}

	var b strings.Builder
	b.WriteString(strings.Repeat("  ", l.Depth))

	if t.Options.ShowGitInfo {
		b.WriteString(renderGitStatus(l.GitStatus) + " ")
	}
	if t.Options.ShowPerms {
		b.WriteString(MutedStyle.Render(l.Mode.Perm().String()) + " ")
	}
	if t.Options.ShowSizes {
		b.WriteString(MutedStyle.Render(fmt.Sprintf("%8s", renderSize(l))) + " ")
	}
	if t.Options.ShowCounts {
		b.WriteString(MutedStyle.Render(fmt.Sprintf("%6s", renderCount(l))) + " ")
	}
	if t.Options.ShowDates {
		b.WriteString(MutedStyle.Render(humanize.Time(l.ModTime)) + " ")
	}

	b.WriteString(renderName(t, l))

	if l.SymlinkTarget != "" {
		b.WriteString(" " + LinkStyle.Render(SymbolLink+" "+l.SymlinkTarget))
	}
	if l.Unreadable {
		b.WriteString(" " + ErrorStyle.Render(SymbolUnreadable))
	}

	row := truncate.StringWithTail(b.String(), uint(width), "…")
	if i == t.Selection {
		return SelectedStyle.Render(row)
	}
	return row
}

// renderName styles the entry name, emphasizing the characters the
// pattern matched. Path patterns score against the sub-path; positions
// falling before the final separator belong to ancestor segments and
// are dropped here.
func renderName(t *tree.Tree, l *tree.Line) string {
	style := FileStyle
	switch {
	case l.IsDir():
		style = DirStyle
	case l.Type == tree.LineSymlinkToFile:
		style = LinkStyle
	case l.Executable:
		style = ExecStyle
	}

	if !l.HasMatch() || len(l.MatchPositions) == 0 {
		return style.Render(l.Name)
	}

	name := []rune(l.Name)
	offset := 0
	if t.Options.Pattern.AppliesToPath() {
		sub, err := filepath.Rel(t.Root, l.Path)
		if err == nil {
			offset = len([]rune(sub)) - len(name)
		}
	}
	matched := make(map[int]bool, len(l.MatchPositions))
	for _, pos := range l.MatchPositions {
		idx := pos - offset
		if idx >= 0 && idx < len(name) {
			matched[idx] = true
		}
	}

	var b strings.Builder
	for idx, r := range name {
		if matched[idx] {
			b.WriteString(MatchStyle.Render(string(r)))
		} else {
			b.WriteString(style.Render(string(r)))
		}
	}
	return b.String()
}

func renderGitStatus(status rune) string {
	switch status {
	case 0:
		return " "
	case 'M', 'R', 'T':
		return GitModifiedStyle.Render(string(status))
	case 'A', 'C':
		return GitAddedStyle.Render(string(status))
	case 'D':
		return GitDeletedStyle.Render(string(status))
	case '?':
		return GitUntrackedStyle.Render("?")
	default:
		return MutedStyle.Render(string(status))
	}
}

func renderSize(l *tree.Line) string {
	if l.IsDir() {
		if l.Sum == nil {
			return "…"
		}
		return humanize.IBytes(uint64(l.Sum.Size))
	}
	return humanize.IBytes(uint64(l.Size))
}

func renderCount(l *tree.Line) string {
	if !l.IsDir() {
		return ""
	}
	if l.Sum == nil {
		return "…"
	}
	return fmt.Sprintf("%d", l.Sum.Count)
}

// renderStatus composes the status line: transient error if any, else
// the selection path plus background-work and search annotations.
func renderStatus(p RenderParams) string {
	if p.FlashError != "" {
		return ErrorStyle.Render(truncate.StringWithTail(p.FlashError, uint(p.Width), "…"))
	}

	t := p.Tree
	parts := []string{t.SelectedLine().Path}
	if !t.Options.Pattern.IsNone() {
		if t.TotalSearch {
			parts = append(parts, "(total search)")
		} else {
			parts = append(parts, "(bounded search)")
		}
	}
	if p.TaskName != "" {
		parts = append(parts, p.TaskName+"…")
	}
	return StatusStyle.Render(truncate.StringWithTail(strings.Join(parts, "  "), uint(p.Width), "…"))
}

func renderHelp(p RenderParams) string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render("HELP") + "\n")
	b.WriteString(DividerStyle.Render(strings.Repeat(SymbolDivider, p.Width)) + "\n")

	for _, section := range p.HelpSections {
		b.WriteString(HeaderStyle.Render(section.Title) + "\n")
		for _, binding := range section.Bindings {
			line := fmt.Sprintf("  %-18s %s", binding.Keys, binding.Desc)
			b.WriteString(HelpStyle.Render(truncate.StringWithTail(line, uint(p.Width), "…")) + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render("press any key to return"))
	return b.String()
}
