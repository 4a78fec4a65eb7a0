package app

import (
	"github.com/henri123lemoine/canopy/internal/browser"
	"github.com/henri123lemoine/canopy/internal/git"
	"github.com/henri123lemoine/canopy/internal/tree"
)

// Message types for the bubbletea app. Every background result carries
// the panel state it was computed for; a result whose state has been
// replaced or closed in the meantime is discarded, so a generation
// counter restarting on a fresh state can never be confused with the
// old state's.

// searchDoneMsg is sent when a filtered rebuild completes. Gen ties
// the result to the pattern generation it was computed for.
type searchDoneMsg struct {
	State *browser.State
	Gen   int
	Tree  *tree.Tree
	Err   error
}

// gitStatusMsg is sent when version-control statuses were fetched.
type gitStatusMsg struct {
	State  *browser.State
	Status *git.Status
	Err    error
}

// dirSumMsg is sent when one directory aggregate was computed.
type dirSumMsg struct {
	State *browser.State
	Path  string
	Sum   tree.DirSum
	Ok    bool
}
