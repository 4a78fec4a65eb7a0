package tree

import (
	"io/fs"
	"time"
)

// LineType classifies a tree line.
type LineType int

const (
	// LineFile is a regular file.
	LineFile LineType = iota
	// LineDir is a directory.
	LineDir
	// LineSymlinkToFile is a symlink whose target is a file.
	LineSymlinkToFile
	// LineSymlinkToDir is a symlink whose target is a directory.
	LineSymlinkToDir
	// LinePruning is a synthetic line standing in for entries omitted
	// because the line budget was reached.
	LinePruning
)

// DirSum aggregates a directory subtree: total byte size and number of
// descendant entries. Computed lazily, after the tree is displayed.
type DirSum struct {
	Size  int64
	Count int
}

// Line is one row of a tree: a filesystem entry or a pruning marker.
type Line struct {
	// Path is the absolute path of the entry. For pruning lines it is
	// the path of the directory whose entries were omitted.
	Path string

	// Name is the base name displayed for the line.
	Name string

	Type LineType

	// SymlinkTarget is set for symlink lines.
	SymlinkTarget string

	// Depth is the distance from the tree root (root line is 0).
	Depth int

	Size    int64
	ModTime time.Time
	Mode    fs.FileMode

	// Executable is set for regular files with an exec bit.
	Executable bool

	// Unreadable marks a directory whose entries could not be listed.
	Unreadable bool

	// Score and MatchPositions are set when the line matched the
	// search pattern. Positions index the matched candidate (name or
	// sub-path, depending on the pattern form).
	Score          int
	MatchPositions []int

	// GitStatus is the version-control status rune (0 = none/unknown).
	GitStatus rune

	// UnlistedCount is, on pruning lines, the number of entries not
	// shown.
	UnlistedCount int

	// Sum is the lazily computed directory aggregate, nil while
	// pending.
	Sum *DirSum
}

// IsDir reports whether the line refers to a directory, directly or
// through a symlink.
func (l *Line) IsDir() bool {
	return l.Type == LineDir || l.Type == LineSymlinkToDir
}

// HasMatch reports whether the line itself matched the pattern (as
// opposed to being retained as an ancestor of a match).
func (l *Line) HasMatch() bool {
	return l.Score > 0
}

// Selectable reports whether the selection may rest on this line.
func (l *Line) Selectable() bool {
	return l.Type != LinePruning
}
