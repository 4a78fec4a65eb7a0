// Package verb defines the user-invocable actions: the closed set of
// built-in transitions plus external command templates, and the
// resolution of typed invocations against them.
package verb

import (
	"fmt"
	"sort"
	"strings"
)

// Internal identifies a built-in action handled inside the panel state
// machine.
type Internal int

const (
	Back Internal = iota
	Focus
	Parent
	FocusRoot
	FocusHome
	OpenStay
	OpenLeave
	LineUp
	LineDown
	PageUp
	PageDown
	SelectFirst
	SelectLast
	NextMatch
	PreviousMatch
	PrintPath
	CopyPath
	TotalSearch
	ToggleHidden
	ToggleGitignore
	ToggleGitStatus
	ToggleGitInfo
	ToggleSizes
	ToggleDates
	TogglePerms
	ToggleCounts
	ToggleDirs
	SortByName
	SortBySize
	SortByDate
	SortByCount
	NoSort
	Refresh
	Quit
)

// Execution describes how a verb runs: as a built-in transition or as
// an external command.
type Execution interface {
	isExecution()
}

// InternalExecution is a built-in action, with a default for the
// alternate-form marker.
type InternalExecution struct {
	Internal Internal
	Bang     bool
}

// ExternalExecution is a command template run against the selection.
// {file}, {directory} and {parent} expand to the selected path, the
// closest directory for it, and its parent. User-supplied arguments
// are appended.
type ExternalExecution struct {
	Template string

	// Leave quits the application before running the command, handing
	// the terminal over to it.
	Leave bool
}

func (InternalExecution) isExecution() {}
func (ExternalExecution) isExecution() {}

// Verb is a named action the user can invoke.
type Verb struct {
	// Name is the canonical invocation name.
	Name string

	// MinArgs and MaxArgs bound the accepted argument count.
	MinArgs, MaxArgs int

	Execution Execution
}

// Invocation is a parsed command line: a verb name, optional
// arguments, and the alternate-form (bang) marker.
type Invocation struct {
	Name string
	Args []string
	Bang bool
}

// ParseInvocation parses a raw invocation line, e.g. "focus! /tmp".
// A '!' suffix on the name marks the alternate form.
func ParseInvocation(raw string) Invocation {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return Invocation{}
	}
	inv := Invocation{Name: fields[0], Args: fields[1:]}
	if strings.HasSuffix(inv.Name, "!") {
		inv.Bang = true
		inv.Name = strings.TrimSuffix(inv.Name, "!")
	}
	return inv
}

// Store holds the known verbs, built-ins first, then the externals
// declared in configuration.
type Store struct {
	verbs []Verb
}

// NewStore returns a store with the built-in verbs.
func NewStore() *Store {
	s := &Store{}
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v := Verb{
			Name:      name,
			Execution: InternalExecution{Internal: builtins[name]},
		}
		if builtins[name] == Focus {
			// focus accepts an optional target path
			v.MaxArgs = 1
		}
		s.verbs = append(s.verbs, v)
	}
	return s
}

// Add registers a verb. External verbs declared later shadow nothing:
// a name collision with a built-in is rejected.
func (s *Store) Add(v Verb) error {
	for _, existing := range s.verbs {
		if existing.Name == v.Name {
			return fmt.Errorf("verb %q is already defined", v.Name)
		}
	}
	s.verbs = append(s.verbs, v)
	return nil
}

// Resolve finds the verb for an invocation: exact name first, then a
// unique prefix. Ambiguous or unknown names, and argument counts
// outside the verb's arity, come back as a displayable error.
func (s *Store) Resolve(inv Invocation) (*Verb, error) {
	if inv.Name == "" {
		return nil, fmt.Errorf("empty invocation")
	}
	var match *Verb
	for i := range s.verbs {
		if s.verbs[i].Name == inv.Name {
			match = &s.verbs[i]
			break
		}
	}
	if match == nil {
		var prefixed []*Verb
		for i := range s.verbs {
			if strings.HasPrefix(s.verbs[i].Name, inv.Name) {
				prefixed = append(prefixed, &s.verbs[i])
			}
		}
		switch len(prefixed) {
		case 0:
			return nil, fmt.Errorf("verb not found: %q", inv.Name)
		case 1:
			match = prefixed[0]
		default:
			names := make([]string, len(prefixed))
			for i, v := range prefixed {
				names[i] = v.Name
			}
			return nil, fmt.Errorf("ambiguous verb %q: %s", inv.Name, strings.Join(names, ", "))
		}
	}
	if err := match.CheckArgs(inv.Args); err != nil {
		return nil, err
	}
	return match, nil
}

// CheckArgs validates the argument count against the verb's arity.
func (v *Verb) CheckArgs(args []string) error {
	if len(args) < v.MinArgs {
		return fmt.Errorf("verb %q needs at least %d argument(s)", v.Name, v.MinArgs)
	}
	if len(args) > v.MaxArgs {
		if v.MaxArgs == 0 {
			return fmt.Errorf("verb %q takes no argument", v.Name)
		}
		return fmt.Errorf("verb %q takes at most %d argument(s)", v.Name, v.MaxArgs)
	}
	return nil
}

// builtins maps invocation names to internal actions. Focus takes an
// optional path argument; everything else is argument-free.
var builtins = map[string]Internal{
	"back":           Back,
	"focus":          Focus,
	"parent":         Parent,
	"root":           FocusRoot,
	"home":           FocusHome,
	"open_stay":      OpenStay,
	"open_leave":     OpenLeave,
	"line_up":        LineUp,
	"line_down":      LineDown,
	"page_up":        PageUp,
	"page_down":      PageDown,
	"select_first":   SelectFirst,
	"select_last":    SelectLast,
	"next_match":     NextMatch,
	"previous_match": PreviousMatch,
	"print_path":     PrintPath,
	"copy_path":      CopyPath,
	"total_search":   TotalSearch,
	"hidden":         ToggleHidden,
	"gitignore":      ToggleGitignore,
	"git_status":     ToggleGitStatus,
	"git_info":       ToggleGitInfo,
	"sizes":          ToggleSizes,
	"dates":          ToggleDates,
	"permissions":    TogglePerms,
	"counts":         ToggleCounts,
	"dirs_only":      ToggleDirs,
	"sort_by_name":   SortByName,
	"sort_by_size":   SortBySize,
	"sort_by_date":   SortByDate,
	"sort_by_count":  SortByCount,
	"no_sort":        NoSort,
	"refresh":        Refresh,
	"quit":           Quit,
}
