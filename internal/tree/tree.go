// Package tree holds the in-memory representation of a filtered,
// sorted, bounded view of a directory subtree, and the builder
// producing it.
package tree

import (
	"github.com/henri123lemoine/canopy/internal/git"
)

// Tree is an ordered, bounded, displayable view of a subtree. Lines
// are in pre-order; Lines[0] is the root. A Tree is owned by exactly
// one panel and is rebuilt, never mutated path-in-place, when the view
// needs to change shape.
type Tree struct {
	Root    string
	Lines   []Line
	Options Options

	// Selection is the index of the selected line, always in bounds.
	Selection int

	// Scroll is the index of the first visible line.
	Scroll int

	// TotalSearch is set when the search producing this tree was
	// exhaustive: every matchable descendant was visited and scored.
	TotalSearch bool

	// needsGitStatus is set at build time when status annotations are
	// wanted and the root is inside a work tree; cleared on merge.
	needsGitStatus bool
}

// Len returns the number of lines.
func (t *Tree) Len() int {
	return len(t.Lines)
}

// SelectedLine returns the line under the selection.
func (t *Tree) SelectedLine() *Line {
	return &t.Lines[t.Selection]
}

// MoveSelection moves the selection by dy lines, skipping pruning
// lines and clamping to bounds, then keeps it in the viewport.
func (t *Tree) MoveSelection(dy, pageHeight int) {
	sel := t.Selection
	step := 1
	if dy < 0 {
		step = -1
	}
	for i := 0; i != dy; i += step {
		next := sel + step
		for next >= 0 && next < len(t.Lines) && !t.Lines[next].Selectable() {
			next += step
		}
		if next < 0 || next >= len(t.Lines) {
			break
		}
		sel = next
	}
	t.Selection = sel
	t.MakeSelectionVisible(pageHeight)
}

// TryScroll shifts the viewport by dy lines and drags the selection
// along so it stays visible.
func (t *Tree) TryScroll(dy, pageHeight int) {
	maxScroll := len(t.Lines) - pageHeight
	if maxScroll < 0 {
		maxScroll = 0
	}
	t.Scroll += dy
	if t.Scroll > maxScroll {
		t.Scroll = maxScroll
	}
	if t.Scroll < 0 {
		t.Scroll = 0
	}
	if t.Selection < t.Scroll {
		t.selectClosest(t.Scroll)
	} else if t.Selection >= t.Scroll+pageHeight {
		t.selectClosest(t.Scroll + pageHeight - 1)
	}
}

// TrySelectFirst selects the root line.
func (t *Tree) TrySelectFirst() {
	t.Selection = 0
	t.Scroll = 0
}

// TrySelectLast selects the last selectable line and scrolls to it.
func (t *Tree) TrySelectLast(pageHeight int) {
	t.selectClosest(len(t.Lines) - 1)
	t.MakeSelectionVisible(pageHeight)
}

// TrySelectPath selects the line with the given path, if present.
func (t *Tree) TrySelectPath(path string) bool {
	for i := range t.Lines {
		if t.Lines[i].Selectable() && t.Lines[i].Path == path {
			t.Selection = i
			return true
		}
	}
	return false
}

// TrySelectBestMatch selects the highest scoring matched line. Ties go
// to the earlier line, which already won the sort criterion.
func (t *Tree) TrySelectBestMatch() {
	best := -1
	for i := range t.Lines {
		l := &t.Lines[i]
		if !l.Selectable() || !l.HasMatch() {
			continue
		}
		if best < 0 || l.Score > t.Lines[best].Score {
			best = i
		}
	}
	if best >= 0 {
		t.Selection = best
	}
}

// TrySelectNextMatch moves the selection to the next matched line,
// wrapping around.
func (t *Tree) TrySelectNextMatch() {
	for i := 1; i <= len(t.Lines); i++ {
		idx := (t.Selection + i) % len(t.Lines)
		l := &t.Lines[idx]
		if l.Selectable() && l.HasMatch() {
			t.Selection = idx
			return
		}
	}
}

// TrySelectPreviousMatch moves the selection to the previous matched
// line, wrapping around.
func (t *Tree) TrySelectPreviousMatch() {
	for i := 1; i <= len(t.Lines); i++ {
		idx := (t.Selection - i + len(t.Lines)) % len(t.Lines)
		l := &t.Lines[idx]
		if l.Selectable() && l.HasMatch() {
			t.Selection = idx
			return
		}
	}
}

// MakeSelectionVisible adjusts the scroll so the selection is within
// the viewport.
func (t *Tree) MakeSelectionVisible(pageHeight int) {
	if pageHeight <= 0 {
		return
	}
	if t.Selection < t.Scroll {
		t.Scroll = t.Selection
	} else if t.Selection >= t.Scroll+pageHeight {
		t.Scroll = t.Selection - pageHeight + 1
	}
}

// selectClosest puts the selection on idx or the nearest selectable
// line before it.
func (t *Tree) selectClosest(idx int) {
	if idx >= len(t.Lines) {
		idx = len(t.Lines) - 1
	}
	for idx > 0 && !t.Lines[idx].Selectable() {
		idx--
	}
	if idx < 0 {
		idx = 0
	}
	t.Selection = idx
}

// MissingGitStatus reports whether status annotations are still
// outstanding.
func (t *Tree) MissingGitStatus() bool {
	return t.needsGitStatus
}

// MergeGitStatus annotates the lines with whatever statuses were
// fetched. A partial status (interrupted fetch) leaves the tree
// wanting a retry on a later tick.
func (t *Tree) MergeGitStatus(st *git.Status) {
	if st == nil {
		t.needsGitStatus = false
		return
	}
	for i := range t.Lines {
		if code := st.Of(t.Lines[i].Path); code != 0 {
			t.Lines[i].GitStatus = code
		}
	}
	t.needsGitStatus = st.Partial
}
