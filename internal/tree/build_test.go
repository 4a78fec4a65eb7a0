package tree

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/henri123lemoine/canopy/internal/pattern"
	"github.com/henri123lemoine/canopy/internal/task"
)

// mkProject builds the reference fixture: README.md, main.c and
// src/lib.c under a fresh root.
func mkProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "README.md")
	writeFile(t, root, "main.c")
	if err := os.MkdirAll(filepath.Join(root, "src"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, root, "src/lib.c")
	return root
}

func writeFile(t *testing.T, root, rel string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(root, rel), []byte(rel+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testOptions() Options {
	o := DefaultOptions()
	// keep builds hermetic: no git calls for ignore sets
	o.RespectGitignore = false
	return o
}

func names(tr *Tree) []string {
	out := make([]string, 0, len(tr.Lines))
	for i := range tr.Lines {
		if i == 0 {
			out = append(out, "/")
			continue
		}
		out = append(out, tr.Lines[i].Name)
	}
	return out
}

func TestBuildLists(t *testing.T) {
	root := mkProject(t)
	tr, err := Build(root, testOptions(), 400, false, task.Unlimited())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := []string{"/", "src", "lib.c", "main.c", "README.md"}
	if diff := cmp.Diff(want, names(tr)); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
	if tr.Lines[1].Depth != 1 || tr.Lines[2].Depth != 2 {
		t.Errorf("bad depths: src=%d lib.c=%d", tr.Lines[1].Depth, tr.Lines[2].Depth)
	}
	if tr.Selection != 0 {
		t.Errorf("fresh tree should select the root, got %d", tr.Selection)
	}
}

func TestBuildErrors(t *testing.T) {
	if _, err := Build(filepath.Join(t.TempDir(), "missing"), testOptions(), 400, false, task.Unlimited()); err == nil {
		t.Error("expected error for a missing root")
	}
	root := t.TempDir()
	writeFile(t, root, "plain.txt")
	if _, err := Build(filepath.Join(root, "plain.txt"), testOptions(), 400, false, task.Unlimited()); err == nil {
		t.Error("expected error for a non-directory root")
	}
}

func TestBuildPatternScenario(t *testing.T) {
	root := mkProject(t)
	opts := testOptions()
	p, err := pattern.Parse("lib")
	if err != nil {
		t.Fatal(err)
	}
	opts.Pattern = p
	tr, err := Build(root, opts, 400, false, task.Unlimited())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := []string{"/", "src", "lib.c"}
	if diff := cmp.Diff(want, names(tr)); diff != "" {
		t.Errorf("filtered lines mismatch (-want +got):\n%s", diff)
	}
	// src is retained as an ancestor, not as a match
	if tr.Lines[1].HasMatch() {
		t.Error("src should not carry a match")
	}
	if !tr.Lines[2].HasMatch() {
		t.Error("lib.c should carry a match")
	}
	if len(tr.Lines[2].MatchPositions) == 0 {
		t.Error("lib.c should carry highlight positions")
	}
}

func TestBuildEmptyFilteredResult(t *testing.T) {
	root := mkProject(t)
	opts := testOptions()
	p, err := pattern.Parse("zzzz")
	if err != nil {
		t.Fatal(err)
	}
	opts.Pattern = p
	tr, err := Build(root, opts, 400, false, task.Unlimited())
	if err != nil {
		t.Fatalf("an empty filtered result is not an error: %v", err)
	}
	if tr.Len() != 1 {
		t.Errorf("expected a root-only tree, got %d lines", tr.Len())
	}
	if tr.Selection != 0 {
		t.Errorf("selection should collapse to 0, got %d", tr.Selection)
	}
}

func TestBuildHonorsBudget(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 50; i++ {
		writeFile(t, root, filepath.Join("", "file"+string(rune('a'+i%26))+string(rune('0'+i/26))+".txt"))
	}
	for _, budget := range []int{2, 5, 10, 20} {
		tr, err := Build(root, testOptions(), budget, false, task.Unlimited())
		if err != nil {
			t.Fatalf("Build(budget=%d): %v", budget, err)
		}
		if tr.Len() > budget {
			t.Errorf("budget %d exceeded: %d lines", budget, tr.Len())
		}
		last := tr.Lines[tr.Len()-1]
		if last.Type != LinePruning {
			t.Errorf("budget %d: expected a pruning marker as last line, got %v", budget, last.Type)
		}
		if last.UnlistedCount == 0 {
			t.Errorf("budget %d: pruning marker should carry the omitted count", budget)
		}
	}
}

func TestBuildTotalIgnoresBudget(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 30; i++ {
		writeFile(t, root, "f"+string(rune('a'+i%26))+string(rune('a'+i/26)))
	}
	opts := testOptions()
	p, err := pattern.Parse("f")
	if err != nil {
		t.Fatal(err)
	}
	opts.Pattern = p
	tr, err := Build(root, opts, 5, true, task.Unlimited())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tr.Len() != 31 {
		t.Errorf("total search should visit everything: got %d lines, want 31", tr.Len())
	}
	if !tr.TotalSearch {
		t.Error("completed total search should set TotalSearch")
	}
}

func TestBuildInterruptedReturnsNoTree(t *testing.T) {
	root := mkProject(t)
	dam := task.New()
	dam.Interrupt()
	tr, err := Build(root, testOptions(), 400, false, dam)
	if err != nil {
		t.Fatalf("interruption is not an error: %v", err)
	}
	if tr != nil {
		t.Error("an interrupted bounded build must return no tree")
	}
}

func TestBuildInterruptedTotalIsPartial(t *testing.T) {
	root := mkProject(t)
	opts := testOptions()
	p, err := pattern.Parse("c")
	if err != nil {
		t.Fatal(err)
	}
	opts.Pattern = p
	dam := task.New()
	dam.Interrupt()
	tr, err := Build(root, opts, 400, true, dam)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tr == nil {
		t.Fatal("an interrupted total build surfaces a partial tree")
	}
	if tr.TotalSearch {
		t.Error("an interrupted total build must not claim TotalSearch")
	}
}

func TestBuildShowHidden(t *testing.T) {
	root := mkProject(t)
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}

	tr, err := Build(root, testOptions(), 400, false, task.Unlimited())
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range names(tr) {
		if n == ".git" {
			t.Fatal(".git should be absent without show-hidden")
		}
	}

	opts := testOptions()
	opts.ShowHidden = true
	tr, err = Build(root, opts, 400, false, task.Unlimited())
	if err != nil {
		t.Fatal(err)
	}
	// dirs first, names sorted: .git leads
	if tr.Lines[1].Name != ".git" || tr.Lines[1].Depth != 1 {
		t.Errorf(".git should appear first at depth 1, got %q at %d",
			tr.Lines[1].Name, tr.Lines[1].Depth)
	}
}

func TestBuildOnlyDirs(t *testing.T) {
	root := mkProject(t)
	opts := testOptions()
	opts.OnlyDirs = true
	tr, err := Build(root, opts, 400, false, task.Unlimited())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"/", "src"}
	if diff := cmp.Diff(want, names(tr)); diff != "" {
		t.Errorf("dirs-only lines mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildUnreadableSubtreeSkipped(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	root := mkProject(t)
	locked := filepath.Join(root, "locked")
	if err := os.MkdirAll(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	tr, err := Build(root, testOptions(), 400, false, task.Unlimited())
	if err != nil {
		t.Fatalf("unreadable subtree must not abort the build: %v", err)
	}
	found := false
	for i := range tr.Lines {
		if tr.Lines[i].Name == "locked" {
			found = true
			if !tr.Lines[i].Unreadable {
				t.Error("locked dir should be marked unreadable")
			}
		}
	}
	if !found {
		t.Error("locked dir line missing")
	}
}

func TestBuildSymlinkCycle(t *testing.T) {
	root := mkProject(t)
	// src/loop -> root re-enters an open ancestor
	if err := os.Symlink(root, filepath.Join(root, "src", "loop")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	tr, err := Build(root, testOptions(), 400, false, task.Unlimited())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i := range tr.Lines {
		l := &tr.Lines[i]
		if l.Name == "loop" {
			if l.Type != LineSymlinkToDir {
				t.Errorf("loop should resolve to a dir symlink, got %v", l.Type)
			}
		}
		if l.Depth > 3 {
			t.Fatalf("cycle was traversed: %s at depth %d", l.Path, l.Depth)
		}
	}
}

func TestBuildSortBySize(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "small"), make([]byte, 10), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "big"), make([]byte, 1000), 0o644); err != nil {
		t.Fatal(err)
	}
	opts := testOptions()
	opts.Sort = SortSize
	tr, err := Build(root, opts, 400, false, task.Unlimited())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"/", "big", "small"}
	if diff := cmp.Diff(want, names(tr)); diff != "" {
		t.Errorf("size sort mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildDeterministic(t *testing.T) {
	root := mkProject(t)
	a, err := Build(root, testOptions(), 400, false, task.Unlimited())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Build(root, testOptions(), 400, false, task.Unlimited())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(names(a), names(b)); diff != "" {
		t.Errorf("two identical builds differ:\n%s", diff)
	}
}
