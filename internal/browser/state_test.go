package browser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/henri123lemoine/canopy/internal/pattern"
	"github.com/henri123lemoine/canopy/internal/task"
	"github.com/henri123lemoine/canopy/internal/tree"
)

// mkProject builds the reference fixture: README.md, main.c and
// src/lib.c.
func mkProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, rel := range []string{"README.md", "main.c"} {
		if err := os.WriteFile(filepath.Join(root, rel), []byte(rel), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Join(root, "src"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "src", "lib.c"), []byte("lib"), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

func testOptions() tree.Options {
	o := tree.DefaultOptions()
	o.RespectGitignore = false
	return o
}

func newState(t *testing.T, root string) *State {
	t.Helper()
	s, err := New(root, testOptions(), 400, 20, task.Unlimited())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s == nil {
		t.Fatal("unlimited construction cannot be cancelled")
	}
	return s
}

func mustPattern(t *testing.T, raw string) pattern.Pattern {
	t.Helper()
	p, err := pattern.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestNewOnBadPath(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing"), testOptions(), 400, 20, task.Unlimited()); err == nil {
		t.Error("expected a build error for a missing root")
	}
	root := t.TempDir()
	file := filepath.Join(root, "f")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(file, testOptions(), 400, 20, task.Unlimited()); err == nil {
		t.Error("expected a build error for a non-directory root")
	}
}

func TestNewInterrupted(t *testing.T) {
	dam := task.New()
	dam.Interrupt()
	s, err := New(mkProject(t), testOptions(), 400, 20, dam)
	if err != nil {
		t.Fatalf("interruption is not an error: %v", err)
	}
	if s != nil {
		t.Error("interrupted construction should return no state")
	}
}

func TestSearchLifecycle(t *testing.T) {
	s := newState(t, mkProject(t))
	if s.PendingTask() != TaskNone {
		t.Fatalf("fresh state should have no pending work, got %v", s.PendingTask())
	}

	s.OnPattern(mustPattern(t, "lib"))
	if s.PendingTask() != TaskSearch {
		t.Fatal("a pending pattern should schedule a search")
	}

	s.DoPendingTask(task.Unlimited())
	if !s.Filtered() {
		t.Fatal("search should install a filtered tree")
	}
	if s.PendingTask() == TaskSearch {
		t.Error("applied pattern should clear the pending search")
	}

	ft := s.DisplayedTree()
	if ft == s.BaseTree() {
		t.Error("displayed tree should be the filtered one")
	}
	sel := ft.SelectedLine()
	if sel.Name != "lib.c" {
		t.Errorf("best match lib.c should be selected, got %q", sel.Name)
	}
}

func TestPatternClearedRestoresBase(t *testing.T) {
	s := newState(t, mkProject(t))
	base := s.BaseTree()
	base.TrySelectPath(filepath.Join(s.Root(), "main.c"))
	origSelection := base.Selection

	s.OnPattern(mustPattern(t, "lib"))
	s.DoPendingTask(task.Unlimited())
	if !s.Filtered() {
		t.Fatal("expected a filtered tree")
	}

	s.OnPattern(pattern.None())
	if s.Filtered() {
		t.Error("clearing the pattern should discard the filtered tree")
	}
	if s.BaseTree().Selection != origSelection {
		t.Errorf("base selection changed: %d, want %d", s.BaseTree().Selection, origSelection)
	}
}

func TestPatternClearedBeforeRebuildCompletes(t *testing.T) {
	s := newState(t, mkProject(t))
	origSelection := s.BaseTree().Selection

	s.OnPattern(mustPattern(t, "lib"))
	spec := s.PendingSearch()

	// the user clears the pattern before the rebuild lands
	s.OnPattern(pattern.None())

	// the stale rebuild completes anyway; its result must be discarded
	stale, err := tree.Build(spec.Root, spec.Options, spec.Budget, spec.Total, task.Unlimited())
	if err != nil {
		t.Fatal(err)
	}
	s.ApplySearch(stale, spec.Gen)

	if s.Filtered() {
		t.Error("stale search result should have been discarded")
	}
	if s.BaseTree().Selection != origSelection {
		t.Error("base selection should be intact")
	}
}

func TestInterruptedSearchKeepsPreviousFilter(t *testing.T) {
	s := newState(t, mkProject(t))
	s.OnPattern(mustPattern(t, "lib"))
	s.DoPendingTask(task.Unlimited())
	first := s.DisplayedTree()

	s.OnPattern(mustPattern(t, "main"))
	dam := task.New()
	dam.Interrupt()
	s.DoPendingTask(dam)

	if s.DisplayedTree() != first {
		t.Error("interrupted rebuild must leave the previous filtered tree untouched")
	}
	if s.PendingTask() != TaskSearch {
		t.Error("the search should be retried on the next tick")
	}
}

func TestBackThreeTiers(t *testing.T) {
	s := newState(t, mkProject(t))
	s.OnPattern(mustPattern(t, "lib"))
	s.DoPendingTask(task.Unlimited())
	if !s.Filtered() {
		t.Fatal("expected a filtered tree")
	}
	lib := filepath.Join(s.Root(), "src", "lib.c")
	if s.SelectedPath() != lib {
		t.Fatalf("fixture should select %s, got %s", lib, s.SelectedPath())
	}

	// first back: collapse the filter, selection carried over
	res := s.Back()
	if res.Kind != Keep {
		t.Fatalf("first back should keep the panel, got %v", res.Kind)
	}
	if s.Filtered() {
		t.Error("first back should collapse the filtered tree")
	}
	if s.SelectedPath() != lib {
		t.Errorf("selection should carry into the base tree, got %s", s.SelectedPath())
	}

	// second back: selection returns to the root line
	res = s.Back()
	if res.Kind != Keep {
		t.Fatalf("second back should keep the panel, got %v", res.Kind)
	}
	if s.DisplayedTree().Selection != 0 {
		t.Error("second back should select the root line")
	}

	// third back: pop the panel
	res = s.Back()
	if res.Kind != PopPanel {
		t.Errorf("third back should pop the panel, got %v", res.Kind)
	}
}

func TestPendingTaskPriorities(t *testing.T) {
	root := mkProject(t)
	opts := testOptions()
	opts.ShowSizes = true
	s, err := New(root, opts, 400, 20, task.Unlimited())
	if err != nil {
		t.Fatal(err)
	}
	if s.PendingTask() != TaskDirSum {
		t.Fatalf("missing sums should be pending, got %v", s.PendingTask())
	}

	// an arriving pattern takes priority over sums
	s.OnPattern(mustPattern(t, "lib"))
	if s.PendingTask() != TaskSearch {
		t.Error("search outranks sum computation")
	}
	s.DoPendingTask(task.Unlimited())

	for i := 0; i < 20 && s.PendingTask() == TaskDirSum; i++ {
		s.DoPendingTask(task.Unlimited())
	}
	if s.PendingTask() != TaskNone {
		t.Errorf("all work should drain, still pending: %v", s.PendingTask())
	}
}

func TestTotalSearchAfterClippedSearch(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 40; i++ {
		name := "f" + string(rune('a'+i%26)) + string(rune('a'+i/26))
		if err := os.WriteFile(filepath.Join(root, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	s, err := New(root, testOptions(), 10, 20, task.Unlimited())
	if err != nil {
		t.Fatal(err)
	}
	s.OnPattern(mustPattern(t, "f"))
	s.DoPendingTask(task.Unlimited())
	if !s.Filtered() {
		t.Fatal("expected a filtered tree")
	}
	if s.DisplayedTree().TotalSearch {
		t.Fatal("bounded search should not claim the total flag")
	}
	if s.DisplayedTree().Len() > 10 {
		t.Fatalf("bounded search exceeded its budget: %d lines", s.DisplayedTree().Len())
	}

	if res := run(t, s, "total_search"); res.Kind != Keep {
		t.Fatalf("total_search: %+v", res)
	}
	if s.PendingTask() != TaskSearch {
		t.Fatal("total_search should schedule a rebuild")
	}
	s.DoPendingTask(task.Unlimited())

	if !s.DisplayedTree().TotalSearch {
		t.Error("total search should set the flag")
	}
	if s.DisplayedTree().Len() != 41 {
		t.Errorf("total search should surface all 40 matches, got %d lines", s.DisplayedTree().Len())
	}
}
