package tree

import (
	"io/fs"
	"path/filepath"

	"github.com/henri123lemoine/canopy/internal/task"
)

// wantsSums reports whether directory aggregates are needed for the
// current display options.
func (t *Tree) wantsSums() bool {
	return t.Options.ShowSizes || t.Options.ShowCounts
}

// HasDirMissingSum reports whether some directory line still lacks its
// aggregate.
func (t *Tree) HasDirMissingSum() bool {
	if !t.wantsSums() {
		return false
	}
	for i := range t.Lines {
		if t.Lines[i].Type == LineDir && t.Lines[i].Sum == nil {
			return true
		}
	}
	return false
}

// FetchSomeMissingDirSum computes the aggregate of one directory still
// missing it. One directory per call keeps the event loop responsive;
// the remainder is picked up on later ticks. Returns false when the
// dam interrupted the computation.
func (t *Tree) FetchSomeMissingDirSum(dam task.Dam) bool {
	for i := range t.Lines {
		l := &t.Lines[i]
		if l.Type != LineDir || l.Sum != nil {
			continue
		}
		sum, ok := computeDirSum(l.Path, dam)
		if !ok {
			return false
		}
		l.Sum = &sum
		return true
	}
	return true
}

// FirstDirMissingSum returns the path of the first directory line
// still lacking its aggregate.
func (t *Tree) FirstDirMissingSum() (string, bool) {
	for i := range t.Lines {
		if t.Lines[i].Type == LineDir && t.Lines[i].Sum == nil {
			return t.Lines[i].Path, true
		}
	}
	return "", false
}

// SetDirSum installs an externally computed aggregate. Used when the
// computation ran off the owning goroutine.
func (t *Tree) SetDirSum(path string, sum DirSum) {
	for i := range t.Lines {
		if t.Lines[i].Type == LineDir && t.Lines[i].Path == path {
			t.Lines[i].Sum = &sum
			return
		}
	}
}

// ComputeDirSum computes the aggregate of one directory without
// touching any tree. Returns false when the dam interrupted the walk.
func ComputeDirSum(path string, dam task.Dam) (DirSum, bool) {
	return computeDirSum(path, dam)
}

// computeDirSum walks a subtree adding up sizes and entry counts,
// checking the dam at each directory boundary. Unreadable subtrees
// contribute what was seen before the error.
func computeDirSum(root string, dam task.Dam) (DirSum, bool) {
	var sum DirSum
	interrupted := false
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fs.SkipDir
		}
		if d.IsDir() {
			if dam.Interrupted() {
				interrupted = true
				return filepath.SkipAll
			}
			if path == root {
				return nil
			}
		}
		sum.Count++
		if info, err := d.Info(); err == nil && d.Type().IsRegular() {
			sum.Size += info.Size()
		}
		return nil
	})
	if interrupted {
		return DirSum{}, false
	}
	return sum, true
}
