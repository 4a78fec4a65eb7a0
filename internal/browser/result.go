package browser

import (
	"fmt"

	"github.com/henri123lemoine/canopy/internal/exec"
)

// ResultKind classifies the outcome of a verb dispatch.
type ResultKind int

const (
	// Keep leaves the current panel as it is (possibly mutated).
	Keep ResultKind = iota
	// NewState replaces the current panel's state.
	NewState
	// NewPanel pushes a new panel with the carried state.
	NewPanel
	// PopPanel closes the current panel, returning to the previous
	// one or quitting when it was the last.
	PopPanel
	// Quit terminates the application.
	Quit
	// DisplayError shows a transient error; state is unchanged.
	DisplayError
	// PrintPath quits and reports the carried path on the side
	// channel.
	PrintPath
	// Launch hands off to an external program.
	Launch
)

// Result describes the panel-level effect of a dispatched verb.
type Result struct {
	Kind ResultKind

	// State accompanies NewState and NewPanel.
	State *State

	// Error accompanies DisplayError.
	Error string

	// Path accompanies PrintPath.
	Path string

	// Launchable accompanies Launch. LaunchLeave quits the
	// application and runs it in the foreground; otherwise it is
	// started detached and the panel stays open.
	Launchable  *exec.Launchable
	LaunchLeave bool
}

func keep() Result {
	return Result{Kind: Keep}
}

func displayErrorf(format string, args ...any) Result {
	return Result{Kind: DisplayError, Error: fmt.Sprintf(format, args...)}
}

// fromOptionalState wraps a freshly built state: interrupted builds
// (nil state) keep the current view, errors become transient messages.
func fromOptionalState(s *State, err error, inNewPanel bool) Result {
	if err != nil {
		return displayErrorf("%v", err)
	}
	if s == nil {
		return keep()
	}
	if inNewPanel {
		return Result{Kind: NewPanel, State: s}
	}
	return Result{Kind: NewState, State: s}
}
