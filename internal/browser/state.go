// Package browser implements the per-panel state machine: a base tree,
// an optional filtered tree, a pending pattern, and the dispatch of
// verbs and background work against them.
package browser

import (
	"github.com/henri123lemoine/canopy/internal/debug"
	"github.com/henri123lemoine/canopy/internal/git"
	"github.com/henri123lemoine/canopy/internal/pattern"
	"github.com/henri123lemoine/canopy/internal/task"
	"github.com/henri123lemoine/canopy/internal/tree"
)

// TaskKind identifies the next unit of background work for a panel.
type TaskKind int

const (
	TaskNone TaskKind = iota
	// TaskSearch rebuilds the filtered tree for the pending pattern.
	TaskSearch
	// TaskGitStatus fetches version-control status annotations.
	TaskGitStatus
	// TaskDirSum computes one missing directory aggregate.
	TaskDirSum
)

// State is one panel: it owns a base tree (always present), at most
// one filtered tree (present while a search is active), and the
// pattern typed but not yet applied.
type State struct {
	tree         *tree.Tree
	filteredTree *tree.Tree

	// pendingPattern has been typed but not yet compiled into a
	// rebuilt tree.
	pendingPattern pattern.Pattern

	// totalSearchRequired asks the next search to ignore the line
	// budget.
	totalSearchRequired bool

	// searchGen invalidates in-flight searches when the pending
	// pattern changes.
	searchGen int

	budget     int
	pageHeight int
}

// New builds a panel state on a directory. A pattern carried in the
// options is not applied immediately: it becomes the pending pattern
// and the base tree is built without it.
//
// Returns (nil, nil) when the build was interrupted by the dam; with
// an unlimited dam this cannot happen.
func New(root string, opts tree.Options, budget, pageHeight int, dam task.Dam) (*State, error) {
	pending := opts.Pattern
	t, err := tree.Build(root, opts.WithoutPattern(), budget, false, dam)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, nil
	}
	return &State{
		tree:           t,
		pendingPattern: pending,
		budget:         budget,
		pageHeight:     pageHeight,
	}, nil
}

// DisplayedTree returns the filtered tree when present, else the base
// tree. All selection and scroll invariants are enforced through this
// single accessor.
func (s *State) DisplayedTree() *tree.Tree {
	if s.filteredTree != nil {
		return s.filteredTree
	}
	return s.tree
}

// BaseTree returns the unfiltered tree.
func (s *State) BaseTree() *tree.Tree {
	return s.tree
}

// Filtered reports whether a filtered tree is displayed.
func (s *State) Filtered() bool {
	return s.filteredTree != nil
}

// Root returns the root path of the base tree.
func (s *State) Root() string {
	return s.tree.Root
}

// SelectedPath returns the path under the selection of the displayed
// tree.
func (s *State) SelectedPath() string {
	return s.DisplayedTree().SelectedLine().Path
}

// PageHeight returns the viewport height the panel lays out for.
func (s *State) PageHeight() int {
	return s.pageHeight
}

// SetPageHeight follows terminal resizes.
func (s *State) SetPageHeight(h int) {
	if h < 1 {
		h = 1
	}
	s.pageHeight = h
	s.DisplayedTree().MakeSelectionVisible(h)
}

// PendingPattern returns the not-yet-applied pattern.
func (s *State) PendingPattern() pattern.Pattern {
	return s.pendingPattern
}

// OnPattern records a newly typed pattern. An empty pattern drops the
// filtered tree immediately and restores the base view; a non-empty
// one becomes pending until the next work increment applies it.
func (s *State) OnPattern(p pattern.Pattern) {
	s.searchGen++
	if p.IsNone() {
		s.filteredTree = nil
		s.pendingPattern = pattern.None()
		return
	}
	s.pendingPattern = p
}

// ClearPending drops the pending pattern without touching the trees.
func (s *State) ClearPending() {
	s.searchGen++
	s.pendingPattern = pattern.None()
	s.totalSearchRequired = false
}

// PendingTask reports the next unit of background work, in priority
// order: apply the pending pattern, then missing status annotations,
// then missing directory aggregates.
func (s *State) PendingTask() TaskKind {
	if !s.pendingPattern.IsNone() {
		return TaskSearch
	}
	if s.DisplayedTree().MissingGitStatus() {
		return TaskGitStatus
	}
	if s.DisplayedTree().HasDirMissingSum() {
		return TaskDirSum
	}
	return TaskNone
}

// PendingTaskName names the outstanding work for the status line, or
// returns "".
func (s *State) PendingTaskName() string {
	switch s.PendingTask() {
	case TaskSearch:
		return "searching"
	case TaskGitStatus:
		return "computing git status"
	case TaskDirSum:
		return "computing stats"
	}
	return ""
}

// SearchSpec describes the filtered rebuild the panel wants, for
// asynchronous execution. The generation ties the eventual result to
// the pattern it was computed for.
type SearchSpec struct {
	Root    string
	Options tree.Options
	Budget  int
	Total   bool
	Gen     int
}

// PendingSearch returns the spec of the pending filtered rebuild.
// Valid only while PendingTask is TaskSearch.
func (s *State) PendingSearch() SearchSpec {
	opts := s.tree.Options
	opts.Pattern = s.pendingPattern
	return SearchSpec{
		Root:    s.tree.Root,
		Options: opts,
		Budget:  s.budget,
		Total:   s.totalSearchRequired,
		Gen:     s.searchGen,
	}
}

// ApplySearch installs the result of a filtered rebuild. A stale
// result (the pending pattern changed since) is discarded; a nil tree
// (interrupted build) leaves the previous filtered tree untouched so
// the search is retried on the next tick.
func (s *State) ApplySearch(t *tree.Tree, gen int) {
	if gen != s.searchGen {
		debug.Log("discarding stale search result (gen %d != %d)", gen, s.searchGen)
		return
	}
	if t == nil {
		return
	}
	s.totalSearchRequired = false
	s.pendingPattern = pattern.None()
	t.TrySelectBestMatch()
	t.MakeSelectionVisible(s.pageHeight)
	s.filteredTree = t
}

// ApplyGitStatus merges fetched statuses into the displayed tree.
func (s *State) ApplyGitStatus(st *git.Status) {
	s.DisplayedTree().MergeGitStatus(st)
}

// DoPendingTask performs one bounded unit of background work
// synchronously, checking the dam at its checkpoints. Used by the
// one-shot printing mode and anywhere the caller owns the loop.
func (s *State) DoPendingTask(dam task.Dam) {
	switch s.PendingTask() {
	case TaskSearch:
		spec := s.PendingSearch()
		t, err := tree.Build(spec.Root, spec.Options, spec.Budget, spec.Total, dam)
		if err != nil {
			debug.Log("search build failed: %v", err)
			s.ClearPending()
			return
		}
		s.ApplySearch(t, spec.Gen)
	case TaskGitStatus:
		st, err := git.TreeStatus(s.DisplayedTree().Root, dam)
		if err != nil {
			debug.Log("git status failed: %v", err)
			s.ApplyGitStatus(nil)
			return
		}
		s.ApplyGitStatus(st)
	case TaskDirSum:
		s.DisplayedTree().FetchSomeMissingDirSum(dam)
	}
}

// Back implements the three-tier back behavior: collapse the filtered
// tree (carrying the selection into the base tree), else reset the
// selection to the root line, else signal the caller to pop the
// panel. Never more than one tier per call.
func (s *State) Back() Result {
	if s.filteredTree != nil {
		selected := s.filteredTree.SelectedLine().Path
		s.tree.TrySelectPath(selected)
		s.tree.MakeSelectionVisible(s.pageHeight)
		s.filteredTree = nil
		s.ClearPending()
		return keep()
	}
	if s.tree.Selection > 0 {
		s.tree.TrySelectFirst()
		return keep()
	}
	return Result{Kind: PopPanel}
}
