package browser

import (
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"

	"github.com/henri123lemoine/canopy/internal/exec"
	"github.com/henri123lemoine/canopy/internal/task"
	"github.com/henri123lemoine/canopy/internal/tree"
	"github.com/henri123lemoine/canopy/internal/verb"
)

// ExecuteVerb resolves a verb against the current selection and
// returns the panel-level outcome. Local mutations (selection,
// options, pattern) happen in place and come back as Keep.
func (s *State) ExecuteVerb(v *verb.Verb, inv verb.Invocation) Result {
	switch exe := v.Execution.(type) {
	case verb.InternalExecution:
		bang := exe.Bang || inv.Bang
		return s.executeInternal(exe.Internal, bang, inv.Args)
	case verb.ExternalExecution:
		line := s.DisplayedTree().SelectedLine()
		l, err := exec.FromTemplate(exe.Template, line.Path, line.IsDir(), inv.Args)
		if err != nil {
			return displayErrorf("%v", err)
		}
		return Result{Kind: Launch, Launchable: l, LaunchLeave: exe.Leave}
	}
	return displayErrorf("unknown verb execution")
}

func (s *State) executeInternal(internal verb.Internal, bang bool, args []string) Result {
	t := s.DisplayedTree()
	switch internal {
	case verb.Back:
		return s.Back()

	case verb.Focus:
		target := s.SelectedPath()
		if len(args) > 0 {
			target = args[0]
			if !filepath.IsAbs(target) {
				target = filepath.Join(s.Root(), target)
			}
		}
		if info, err := os.Stat(target); err != nil || !info.IsDir() {
			target = filepath.Dir(target)
		}
		return s.focusPath(target, bang)

	case verb.Parent:
		parent := filepath.Dir(t.Root)
		if parent == t.Root {
			return displayErrorf("no parent found")
		}
		return s.focusPath(parent, bang)

	case verb.FocusRoot:
		return s.focusPath(string(filepath.Separator), bang)

	case verb.FocusHome:
		home, err := os.UserHomeDir()
		if err != nil {
			return displayErrorf("no user home directory found")
		}
		return s.focusPath(home, bang)

	case verb.OpenStay:
		return s.openSelectionStay(bang)

	case verb.OpenLeave:
		return s.openSelectionLeave()

	case verb.LineUp:
		t.MoveSelection(-1, s.pageHeight)
		return keep()
	case verb.LineDown:
		t.MoveSelection(1, s.pageHeight)
		return keep()

	case verb.PageUp:
		if s.pageHeight < t.Len() {
			t.TryScroll(-s.pageHeight, s.pageHeight)
		}
		return keep()
	case verb.PageDown:
		if s.pageHeight < t.Len() {
			t.TryScroll(s.pageHeight, s.pageHeight)
		}
		return keep()

	case verb.SelectFirst:
		t.TrySelectFirst()
		return keep()
	case verb.SelectLast:
		t.TrySelectLast(s.pageHeight)
		return keep()

	case verb.NextMatch:
		t.TrySelectNextMatch()
		return keep()
	case verb.PreviousMatch:
		t.TrySelectPreviousMatch()
		return keep()

	case verb.PrintPath:
		return Result{Kind: PrintPath, Path: s.SelectedPath()}

	case verb.CopyPath:
		if err := clipboard.WriteAll(s.SelectedPath()); err != nil {
			return displayErrorf("clipboard: %v", err)
		}
		return keep()

	case verb.TotalSearch:
		if s.filteredTree == nil {
			return displayErrorf("this verb can be used only after a search")
		}
		if s.filteredTree.TotalSearch {
			return displayErrorf("search was already total: all children have been rated")
		}
		s.pendingPattern = s.filteredTree.Options.Pattern
		s.totalSearchRequired = true
		s.searchGen++
		return keep()

	case verb.ToggleHidden:
		return s.withNewOptions(bang, func(o *tree.Options) { o.ShowHidden = !o.ShowHidden })
	case verb.ToggleGitignore:
		return s.withNewOptions(bang, func(o *tree.Options) { o.RespectGitignore = !o.RespectGitignore })
	case verb.ToggleGitStatus:
		return s.withNewOptions(bang, func(o *tree.Options) {
			o.FilterByGitStatus = !o.FilterByGitStatus
			if o.FilterByGitStatus {
				o.ShowHidden = true
			}
		})
	case verb.ToggleGitInfo:
		return s.withNewOptions(bang, func(o *tree.Options) { o.ShowGitInfo = !o.ShowGitInfo })
	case verb.ToggleSizes:
		return s.withNewOptions(bang, func(o *tree.Options) { o.ShowSizes = !o.ShowSizes })
	case verb.ToggleDates:
		return s.withNewOptions(bang, func(o *tree.Options) { o.ShowDates = !o.ShowDates })
	case verb.TogglePerms:
		return s.withNewOptions(bang, func(o *tree.Options) { o.ShowPerms = !o.ShowPerms })
	case verb.ToggleCounts:
		return s.withNewOptions(bang, func(o *tree.Options) { o.ShowCounts = !o.ShowCounts })
	case verb.ToggleDirs:
		return s.withNewOptions(bang, func(o *tree.Options) { o.OnlyDirs = !o.OnlyDirs })

	case verb.SortByName:
		return s.toggleSort(bang, tree.SortName, nil)
	case verb.SortBySize:
		return s.toggleSort(bang, tree.SortSize, func(o *tree.Options, on bool) { o.ShowSizes = on })
	case verb.SortByDate:
		return s.toggleSort(bang, tree.SortDate, func(o *tree.Options, on bool) { o.ShowDates = on })
	case verb.SortByCount:
		return s.toggleSort(bang, tree.SortCount, func(o *tree.Options, on bool) { o.ShowCounts = on })
	case verb.NoSort:
		return s.withNewOptions(bang, func(o *tree.Options) { o.Sort = tree.SortNone })

	case verb.Refresh:
		return s.refresh()

	case verb.Quit:
		return Result{Kind: Quit}
	}
	return displayErrorf("unhandled internal verb")
}

// focusPath re-roots on a directory, carrying the display options but
// clearing the active pattern. With bang set the new state goes to a
// new panel.
func (s *State) focusPath(path string, bang bool) Result {
	opts := s.DisplayedTree().Options.WithoutPattern()
	ns, err := New(path, opts, s.budget, s.pageHeight, task.Unlimited())
	return fromOptionalState(ns, err, bang)
}

// openSelectionStay opens the selection while keeping the application
// running: files go to the default handler, directories become the new
// root.
func (s *State) openSelectionStay(bang bool) Result {
	t := s.DisplayedTree()
	line := t.SelectedLine()
	switch line.Type {
	case tree.LineFile:
		return Result{Kind: Launch, Launchable: exec.Opener(line.Path)}
	case tree.LineSymlinkToFile:
		target := line.SymlinkTarget
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(line.Path), target)
		}
		return Result{Kind: Launch, Launchable: exec.Opener(target)}
	case tree.LineDir, tree.LineSymlinkToDir:
		target := line.Path
		if t.Selection == 0 {
			// opening the root would go where we already are; go up
			// one level instead
			parent := filepath.Dir(target)
			if parent == target {
				return displayErrorf("no parent found")
			}
			target = parent
		}
		return s.focusPath(target, bang)
	}
	return keep()
}

// openSelectionLeave quits the application to hand the selection over:
// executables are run, other files opened, directories reported on the
// print side channel (shell cd integration).
func (s *State) openSelectionLeave() Result {
	line := s.DisplayedTree().SelectedLine()
	switch line.Type {
	case tree.LineFile, tree.LineSymlinkToFile:
		path := line.Path
		if line.Type == tree.LineSymlinkToFile {
			if target := line.SymlinkTarget; target != "" {
				if !filepath.IsAbs(target) {
					target = filepath.Join(filepath.Dir(line.Path), target)
				}
				path = target
			}
		}
		if line.Executable {
			return Result{Kind: Launch, Launchable: exec.Program(path, path), LaunchLeave: true}
		}
		return Result{Kind: Launch, Launchable: exec.Opener(path), LaunchLeave: true}
	default:
		return Result{Kind: PrintPath, Path: line.Path}
	}
}

// withNewOptions rebuilds the current view with changed options. The
// base tree is rebuilt wholesale; an active pattern is carried through
// the pending mechanism and re-applied.
func (s *State) withNewOptions(bang bool, change func(*tree.Options)) Result {
	opts := s.DisplayedTree().Options
	change(&opts)
	// New carries opts.Pattern as the pending pattern, so an active
	// search is re-applied on the rebuilt tree.
	ns, err := New(s.DisplayedTree().Root, opts, s.budget, s.pageHeight, task.Unlimited())
	return fromOptionalState(ns, err, bang)
}

// toggleSort switches to the criterion or, when it is already active,
// back to no sort. The linked display facet follows the criterion.
func (s *State) toggleSort(bang bool, criterion tree.Sort, facet func(*tree.Options, bool)) Result {
	return s.withNewOptions(bang, func(o *tree.Options) {
		if o.Sort == criterion {
			o.Sort = tree.SortNone
			if facet != nil {
				facet(o, false)
			}
		} else {
			o.Sort = criterion
			if facet != nil {
				facet(o, true)
			}
		}
	})
}

// refresh rebuilds the base tree from disk, re-running the active
// search if one was displayed.
func (s *State) refresh() Result {
	opts := s.tree.Options
	if s.filteredTree != nil {
		opts.Pattern = s.filteredTree.Options.Pattern
	}
	ns, err := New(s.tree.Root, opts, s.budget, s.pageHeight, task.Unlimited())
	if err != nil {
		return displayErrorf("%v", err)
	}
	selected := s.SelectedPath()
	ns.tree.TrySelectPath(selected)
	ns.tree.MakeSelectionVisible(ns.pageHeight)
	return Result{Kind: NewState, State: ns}
}
