package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/henri123lemoine/canopy/internal/app"
	"github.com/henri123lemoine/canopy/internal/browser"
	"github.com/henri123lemoine/canopy/internal/config"
	"github.com/henri123lemoine/canopy/internal/debug"
	"github.com/henri123lemoine/canopy/internal/history"
	"github.com/henri123lemoine/canopy/internal/pattern"
	"github.com/henri123lemoine/canopy/internal/task"
	"github.com/henri123lemoine/canopy/internal/tree"
	"github.com/henri123lemoine/canopy/internal/verb"
)

func main() {
	var (
		showHidden     = pflag.Bool("hidden", false, "show hidden (dot) entries")
		onlyDirs       = pflag.Bool("only-dirs", false, "list directories only")
		showGitignored = pflag.Bool("show-gitignored", false, "list gitignored entries")
		showSizes      = pflag.Bool("sizes", false, "show file and directory sizes")
		showDates      = pflag.Bool("dates", false, "show modification dates")
		showPerms      = pflag.Bool("permissions", false, "show unix permissions")
		confPath       = pflag.String("conf", "", "configuration file to use instead of the default")
		debugFlag      = pflag.Bool("debug", false, "write a debug log")
		printMode      = pflag.Bool("print", false, "print the tree and exit (no interface)")
		printPathTo    = pflag.String("print-path", "", "write the final path to this file instead of stdout")
		search         = pflag.String("search", "", "initial search pattern")
	)
	pflag.Parse()

	cfg, err := loadConfig(*confPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	for _, w := range cfg.Validate() {
		fmt.Fprintf(os.Stderr, "config: %s\n", w)
	}

	if *debugFlag {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			cacheDir = os.TempDir()
		}
		logPath := filepath.Join(cacheDir, "canopy", "debug.log")
		if err := debug.Enable(logPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error enabling debug log: %v\n", err)
			os.Exit(1)
		}
		defer debug.Close()
	}

	startDir := "."
	if args := pflag.Args(); len(args) > 0 {
		startDir = args[0]
	}
	startDir, err = filepath.Abs(startDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opts := tree.DefaultOptions()
	opts.ShowHidden = cfg.Display.ShowHidden || *showHidden
	opts.OnlyDirs = *onlyDirs
	opts.RespectGitignore = cfg.Display.RespectGitignore && !*showGitignored
	opts.ShowSizes = cfg.Display.ShowSizes || *showSizes
	opts.ShowDates = cfg.Display.ShowDates || *showDates
	opts.ShowPerms = cfg.Display.ShowPermissions || *showPerms
	opts.ShowGitInfo = cfg.Display.ShowGitInfo
	if *search != "" {
		pat, err := pattern.Parse(*search)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		opts.Pattern = pat
	}

	verbs, err := buildVerbs(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// The previous session may have focused away from startDir; resume
	// on the root it left off at. Print mode always uses startDir.
	rootDir, selection := startDir, ""
	var hist *history.Store
	if cfg.History.Enabled && !*printMode {
		hist = history.New(cfg.History.MaxEntries)
		rootDir, selection = hist.Resume(startDir)
	}

	first, err := browser.New(rootDir, opts, cfg.Search.Budget, 20, task.Unlimited())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if selection != "" {
		t := first.DisplayedTree()
		if t.TrySelectPath(selection) {
			t.MakeSelectionVisible(first.PageHeight())
		}
	}

	if *printMode {
		if err := printTree(first); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	model := app.New(cfg, verbs, first)
	p := tea.NewProgram(model, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	m, ok := finalModel.(app.Model)
	if !ok {
		return
	}

	if hist != nil {
		_ = hist.Record(history.Entry{
			Start:     startDir,
			Root:      m.Active().Root(),
			Selection: m.Active().SelectedPath(),
		})
	}

	if out := m.OutPath(); out != "" {
		if err := reportPath(out, *printPathTo); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if l := m.Launchable(); l != nil {
		if err := l.Exec(); err != nil {
			fmt.Fprintf(os.Stderr, "Error running %s: %v\n", l, err)
			os.Exit(1)
		}
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	if config.IsFirstRun() {
		// Best effort; a failure only means no commented template.
		_ = config.CreateDefaultConfigFile()
	}
	return config.Load()
}

// buildVerbs assembles the verb store: built-ins plus the externals
// declared in configuration.
func buildVerbs(cfg *config.Config) (*verb.Store, error) {
	store := verb.NewStore()
	for _, vc := range cfg.Verbs {
		if strings.TrimSpace(vc.Execution) == "" {
			continue
		}
		v := verb.Verb{
			Name:    vc.Invocation,
			MaxArgs: 8,
			Execution: verb.ExternalExecution{
				Template: vc.Execution,
				Leave:    vc.Leave,
			},
		}
		if err := store.Add(v); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// printTree runs the panel's background work to completion and writes
// the resulting tree to stdout, one line per entry.
func printTree(s *browser.State) error {
	dam := task.Unlimited()
	for s.PendingTask() != browser.TaskNone {
		s.DoPendingTask(dam)
	}
	t := s.DisplayedTree()
	for i := range t.Lines {
		l := &t.Lines[i]
		name := l.Name
		if i == 0 {
			name = l.Path
		}
		if _, err := fmt.Fprintf(os.Stdout, "%s%s\n", strings.Repeat("  ", l.Depth), name); err != nil {
			return err
		}
	}
	return nil
}

// reportPath writes the chosen path to the side channel: an explicit
// file when one was given (shell cd integration), stdout otherwise.
func reportPath(path, toFile string) error {
	if toFile != "" {
		return os.WriteFile(toFile, []byte(path+"\n"), 0o600)
	}
	_, err := fmt.Fprintln(os.Stdout, path)
	return err
}
