package tree

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/henri123lemoine/canopy/internal/git"
	"github.com/henri123lemoine/canopy/internal/pattern"
	"github.com/henri123lemoine/canopy/internal/task"
)

// builder carries the state of one build call.
type builder struct {
	root   string
	opts   Options
	budget int
	total  bool
	dam    task.Dam

	ignored *git.IgnoreSet
	status  *git.Status

	lineCount   int
	interrupted bool
	clipped     bool
}

// Build constructs a tree rooted at root. The budget bounds the number
// of lines unless total is set, in which case the full matching
// subtree is visited. The dam is checked at every directory boundary.
//
// Returns (nil, nil) when a bounded build is interrupted before
// completion. An interrupted total build surfaces what it has, with
// TotalSearch left false.
func Build(root string, opts Options, budget int, total bool, dam task.Dam) (*Tree, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", abs)
	}
	if budget < 2 {
		budget = 2
	}

	b := &builder{
		root:   abs,
		opts:   opts,
		budget: budget,
		total:  total,
		dam:    dam,
	}
	if opts.RespectGitignore {
		b.ignored = git.Ignores(abs)
	}
	if opts.FilterByGitStatus {
		// the filter needs statuses up front; an interrupted fetch
		// interrupts the whole build
		st, err := git.TreeStatus(abs, dam)
		if err == nil && !st.Partial {
			b.status = st
		} else if st != nil && st.Partial {
			b.interrupted = true
		}
	}

	rootLine := Line{
		Path:    abs,
		Name:    abs,
		Type:    LineDir,
		Depth:   0,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Mode:    info.Mode(),
	}
	b.lineCount = 1

	var children []Line
	if !b.interrupted {
		var unreadable bool
		ancestors := []string{canonical(abs)}
		if opts.filtered() {
			children, unreadable = b.search(abs, 1, ancestors)
		} else {
			children, unreadable = b.list(abs, 1, ancestors)
		}
		rootLine.Unreadable = unreadable
	}

	if b.interrupted && !total {
		return nil, nil
	}

	lines := append([]Line{rootLine}, children...)
	if !total && len(lines) > budget {
		lines = lines[:budget]
	}

	t := &Tree{
		Root:        abs,
		Lines:       lines,
		Options:     opts,
		TotalSearch: total && !b.interrupted,
	}
	if opts.ShowGitInfo {
		if b.status != nil {
			t.MergeGitStatus(b.status)
		} else if git.IsRepo(abs) {
			t.needsGitStatus = true
		}
	}
	return t, nil
}

// entryMeta is the metadata gathered for a directory entry before it
// becomes a line.
type entryMeta struct {
	name   string
	path   string
	typ    LineType
	target string
	size   int64
	mod    time.Time
	mode   fs.FileMode
	exec   bool
	count  int
}

// list builds the lines under dir without a filter, emitting pruning
// markers when the budget runs out. The returned bool is set when dir
// itself could not be listed.
func (b *builder) list(dir string, depth int, ancestors []string) ([]Line, bool) {
	if b.dam.Interrupted() {
		b.interrupted = true
		return nil, false
	}
	metas, err := b.readSorted(dir)
	if err != nil {
		return nil, true
	}

	var out []Line
	for i := range metas {
		if b.interrupted {
			break
		}
		m := &metas[i]
		if !b.total {
			free := b.budget - b.lineCount
			left := len(metas) - i
			if free <= 0 {
				b.clipped = true
				break
			}
			if free == 1 && left > 1 {
				out = append(out, pruningLine(dir, depth, left))
				b.lineCount++
				break
			}
		}
		out = append(out, b.lineFromMeta(m, depth))
		b.lineCount++
		if canon, ok := b.traversable(m, ancestors); ok {
			children, unreadable := b.list(m.path, depth+1, append(ancestors, canon))
			out[len(out)-1].Unreadable = unreadable
			out = append(out, children...)
		}
	}
	return out, false
}

// search builds the lines under dir in filtering mode: only entries
// matching the pattern (or the git-status filter), plus their
// ancestors, are retained. No pruning markers; a bounded search that
// hits the budget is simply clipped.
func (b *builder) search(dir string, depth int, ancestors []string) ([]Line, bool) {
	if b.dam.Interrupted() {
		b.interrupted = true
		return nil, false
	}
	metas, err := b.readSorted(dir)
	if err != nil {
		return nil, true
	}

	var out []Line
	for i := range metas {
		if b.interrupted || b.clipped {
			break
		}
		m := &metas[i]
		if canon, ok := b.traversable(m, ancestors); ok {
			match, selfMatch := b.filterMatch(m)
			children, unreadable := b.search(m.path, depth+1, append(ancestors, canon))
			if len(children) == 0 && !selfMatch {
				continue
			}
			if !b.room() {
				b.clipped = true
				break
			}
			line := b.lineFromMeta(m, depth)
			line.Unreadable = unreadable
			if selfMatch {
				line.Score = match.Score
				line.MatchPositions = match.Positions
			}
			out = append(out, line)
			b.lineCount++
			out = append(out, children...)
		} else {
			match, ok := b.filterMatch(m)
			if !ok {
				continue
			}
			if !b.room() {
				b.clipped = true
				break
			}
			line := b.lineFromMeta(m, depth)
			line.Score = match.Score
			line.MatchPositions = match.Positions
			out = append(out, line)
			b.lineCount++
		}
	}
	return out, false
}

// filterMatch evaluates the active filters against an entry. The bool
// reports whether the entry itself qualifies.
func (b *builder) filterMatch(m *entryMeta) (pattern.Match, bool) {
	if b.opts.FilterByGitStatus {
		if m.typ == LineDir || m.typ == LineSymlinkToDir {
			// directories are only retained as ancestors
			return pattern.Match{}, false
		}
		if b.status.Of(m.path) == 0 {
			return pattern.Match{}, false
		}
		if b.opts.Pattern.IsNone() {
			return pattern.Match{Score: 1}, true
		}
	}
	return b.opts.Pattern.Score(m.name, b.subPath(m.path))
}

// room reports whether another line fits in the budget.
func (b *builder) room() bool {
	return b.total || b.lineCount < b.budget
}

func (b *builder) subPath(path string) string {
	return strings.TrimPrefix(path, b.root+string(filepath.Separator))
}

// traversable reports whether the entry is a directory the build may
// descend into, and returns its canonical identity. Symlinks resolving
// to an already-open ancestor are cut to avoid cycles.
func (b *builder) traversable(m *entryMeta, ancestors []string) (string, bool) {
	if m.typ != LineDir && m.typ != LineSymlinkToDir {
		return "", false
	}
	canon := canonical(m.path)
	for _, a := range ancestors {
		if a == canon {
			return "", false
		}
	}
	return canon, true
}

// readSorted lists a directory, applies the entry filters (hidden,
// dirs-only, gitignore) and sorts the survivors by the configured
// criterion.
func (b *builder) readSorted(dir string) ([]entryMeta, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	metas := make([]entryMeta, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if !b.opts.ShowHidden && strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)
		m := entryMeta{name: name, path: path}

		if e.Type()&fs.ModeSymlink != 0 {
			m.target, _ = os.Readlink(path)
			if ti, err := os.Stat(path); err == nil && ti.IsDir() {
				m.typ = LineSymlinkToDir
			} else {
				m.typ = LineSymlinkToFile
			}
		} else if e.IsDir() {
			m.typ = LineDir
		} else {
			m.typ = LineFile
		}

		isDir := m.typ == LineDir || m.typ == LineSymlinkToDir
		if b.opts.OnlyDirs && !isDir {
			continue
		}
		if b.ignored.Ignored(path, isDir) {
			continue
		}

		if info, err := e.Info(); err == nil {
			m.size = info.Size()
			m.mod = info.ModTime()
			m.mode = info.Mode()
			m.exec = m.typ == LineFile && m.mode&0o111 != 0
		}
		if b.opts.Sort == SortCount && isDir {
			m.count = quickCount(path)
		}
		metas = append(metas, m)
	}

	b.sortMetas(metas)
	return metas, nil
}

func (b *builder) sortMetas(metas []entryMeta) {
	less := func(i, j int) bool {
		return strings.ToLower(metas[i].name) < strings.ToLower(metas[j].name)
	}
	switch b.opts.Sort {
	case SortNone:
		// directories first, then names
		less = func(i, j int) bool {
			di := metas[i].typ == LineDir || metas[i].typ == LineSymlinkToDir
			dj := metas[j].typ == LineDir || metas[j].typ == LineSymlinkToDir
			if di != dj {
				return di
			}
			return strings.ToLower(metas[i].name) < strings.ToLower(metas[j].name)
		}
	case SortSize:
		less = func(i, j int) bool {
			if metas[i].size != metas[j].size {
				return metas[i].size > metas[j].size
			}
			return strings.ToLower(metas[i].name) < strings.ToLower(metas[j].name)
		}
	case SortDate:
		less = func(i, j int) bool {
			if !metas[i].mod.Equal(metas[j].mod) {
				return metas[i].mod.After(metas[j].mod)
			}
			return strings.ToLower(metas[i].name) < strings.ToLower(metas[j].name)
		}
	case SortCount:
		less = func(i, j int) bool {
			if metas[i].count != metas[j].count {
				return metas[i].count > metas[j].count
			}
			return strings.ToLower(metas[i].name) < strings.ToLower(metas[j].name)
		}
	}
	sort.SliceStable(metas, less)
}

func (b *builder) lineFromMeta(m *entryMeta, depth int) Line {
	return Line{
		Path:          m.path,
		Name:          m.name,
		Type:          m.typ,
		SymlinkTarget: m.target,
		Depth:         depth,
		Size:          m.size,
		ModTime:       m.mod,
		Mode:          m.mode,
		Executable:    m.exec,
	}
}

func pruningLine(dir string, depth, unlisted int) Line {
	return Line{
		Path:          dir,
		Name:          fmt.Sprintf("… %d unlisted", unlisted),
		Type:          LinePruning,
		Depth:         depth,
		UnlistedCount: unlisted,
	}
}

// quickCount returns the number of direct entries of a directory, for
// count-based sorting. Unreadable directories count as zero.
func quickCount(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	return len(entries)
}

// canonical returns the stable identity used for symlink cycle
// detection.
func canonical(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return path
}
