package tree

import "github.com/henri123lemoine/canopy/internal/pattern"

// Sort is the criterion ordering sibling entries.
type Sort int

const (
	SortNone Sort = iota
	SortName
	SortSize
	SortDate
	SortCount
)

// Options are the build options producing a tree. They are carried on
// the built tree so that rebuilds (toggles, re-roots) start from the
// current state.
type Options struct {
	// Pattern filters and ranks entries. The empty pattern keeps
	// everything.
	Pattern pattern.Pattern

	Sort Sort

	ShowHidden        bool
	OnlyDirs          bool
	RespectGitignore  bool
	FilterByGitStatus bool

	ShowSizes   bool
	ShowDates   bool
	ShowPerms   bool
	ShowCounts  bool
	ShowGitInfo bool
}

// DefaultOptions returns the options used when no configuration or
// flag overrides them.
func DefaultOptions() Options {
	return Options{
		RespectGitignore: true,
	}
}

// WithoutPattern returns a copy of the options with the pattern
// cleared.
func (o Options) WithoutPattern() Options {
	o.Pattern = pattern.None()
	return o
}

// filtered reports whether the build must run in filtering mode, where
// only matching entries and their ancestors are retained.
func (o Options) filtered() bool {
	return !o.Pattern.IsNone() || o.FilterByGitStatus
}
