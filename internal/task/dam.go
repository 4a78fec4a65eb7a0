// Package task provides the cooperative cancellation token used by
// long-running tree work (filtering, git status, directory sums).
package task

import "sync/atomic"

// Dam is a cooperative interruption signal. Producers of long-running
// work poll it at checkpoints (one per directory visited, one per batch
// of parsed status entries) and stop early when it reports interrupted.
//
// The zero value is an unlimited dam: it never interrupts. Unlimited
// dams are used for operations that must run to completion, such as
// building the base tree when a panel is opened.
type Dam struct {
	interrupted *atomic.Bool
}

// New returns an armed dam that can later be interrupted.
func New() Dam {
	return Dam{interrupted: &atomic.Bool{}}
}

// Unlimited returns a dam that never reports interruption.
func Unlimited() Dam {
	return Dam{}
}

// Interrupt asks the work holding this dam to stop at its next
// checkpoint. Interrupting an unlimited dam is a no-op.
func (d Dam) Interrupt() {
	if d.interrupted != nil {
		d.interrupted.Store(true)
	}
}

// Interrupted reports whether the work should stop.
func (d Dam) Interrupted() bool {
	return d.interrupted != nil && d.interrupted.Load()
}
