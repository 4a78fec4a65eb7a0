package git

import (
	"path/filepath"
	"strings"
)

// IgnoreSet is the set of paths ignored by git under some root,
// captured once per tree build.
type IgnoreSet struct {
	files map[string]bool
	dirs  map[string]bool
}

// Ignored reports whether path (absolute) is gitignored. isDir selects
// directory semantics: a directory is ignored when git reported it
// with a trailing slash.
func (s *IgnoreSet) Ignored(path string, isDir bool) bool {
	if s == nil {
		return false
	}
	if isDir {
		return s.dirs[path]
	}
	return s.files[path]
}

// Ignores returns the paths under root that git ignores. Returns nil
// (nothing ignored) when root is not inside a work tree.
func Ignores(root string) *IgnoreSet {
	out, err := runGitInDir(root, "ls-files",
		"--others", "--ignored", "--exclude-standard", "--directory", "-z")
	if err != nil {
		return nil
	}
	set := &IgnoreSet{
		files: make(map[string]bool),
		dirs:  make(map[string]bool),
	}
	for _, rel := range strings.Split(out, "\x00") {
		if rel == "" {
			continue
		}
		if strings.HasSuffix(rel, "/") {
			set.dirs[filepath.Join(root, rel)] = true
		} else {
			set.files[filepath.Join(root, rel)] = true
		}
	}
	return set
}
