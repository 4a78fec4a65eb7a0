package git

import (
	"strings"

	"github.com/henri123lemoine/canopy/internal/task"
)

// statusBatch is how many parsed entries go by between two dam
// checkpoints.
const statusBatch = 64

// Status maps absolute paths to a porcelain status rune ('M', 'A',
// 'D', '?', ...). A Status may be partial if its computation was
// interrupted.
type Status struct {
	Files map[string]rune

	// Partial is set when the dam interrupted parsing before all
	// entries were seen.
	Partial bool
}

// Of returns the status rune for path, or 0.
func (s *Status) Of(path string) rune {
	if s == nil {
		return 0
	}
	return s.Files[path]
}

// TreeStatus returns the version-control status of the work tree
// containing root. The dam is checked between batches of parsed
// entries; whatever was parsed before an interruption is returned with
// Partial set.
func TreeStatus(root string, dam task.Dam) (*Status, error) {
	top, err := Toplevel(root)
	if err != nil {
		return nil, err
	}
	out, err := runGitInDir(root, "status", "--porcelain", "-z", "-uall")
	if err != nil {
		return nil, err
	}

	st := &Status{Files: make(map[string]rune)}
	entries := strings.Split(out, "\x00")
	skipNext := false
	for i, entry := range entries {
		if i%statusBatch == 0 && dam.Interrupted() {
			st.Partial = true
			return st, nil
		}
		if skipNext {
			// origin path of a rename/copy entry
			skipNext = false
			continue
		}
		// "XY path", where X is the index status and Y the work tree
		// status.
		if len(entry) < 4 {
			continue
		}
		x, y := rune(entry[0]), rune(entry[1])
		skipNext = x == 'R' || x == 'C'
		rel := entry[3:]
		code := y
		if code == ' ' {
			code = x
		}
		if code == ' ' || code == 0 {
			continue
		}
		st.Files[top+"/"+rel] = code
	}
	return st, nil
}
