package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/henri123lemoine/canopy/internal/browser"
	"github.com/henri123lemoine/canopy/internal/config"
	"github.com/henri123lemoine/canopy/internal/debug"
	"github.com/henri123lemoine/canopy/internal/exec"
	"github.com/henri123lemoine/canopy/internal/git"
	"github.com/henri123lemoine/canopy/internal/pattern"
	"github.com/henri123lemoine/canopy/internal/task"
	"github.com/henri123lemoine/canopy/internal/tree"
	"github.com/henri123lemoine/canopy/internal/ui"
	"github.com/henri123lemoine/canopy/internal/verb"
)

// chrome is the number of rows around the tree page: header, status
// line, input line.
const chrome = 3

// Model is the main application model.
type Model struct {
	config *config.Config
	verbs  *verb.Store
	keys   KeyMap

	// Panel stack. panels is never empty while the program runs.
	panels []*browser.State
	active int

	// Command line. Bare text is a live pattern; a ":" prefix
	// composes a verb invocation.
	input     textinput.Model
	prevInput string

	// Background work, at most one unit in flight.
	workBusy bool
	workDam  task.Dam

	// UI
	width    int
	height   int
	flash    string
	showHelp bool

	// Exit behavior
	quitting bool
	outPath  string
	launch   *exec.Launchable
}

// New creates a new Model over an initial panel.
func New(cfg *config.Config, verbs *verb.Store, first *browser.State) Model {
	input := textinput.New()
	input.Placeholder = "filter, or :verb"
	input.CharLimit = 200
	input.Focus()

	return Model{
		config: cfg,
		verbs:  verbs,
		keys:   KeyMapFromConfig(&cfg.Keys),
		panels: []*browser.State{first},
		input:  input,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.scheduleWork())
}

// OutPath returns the path to report on the side channel, "" when the
// session ended without one.
func (m Model) OutPath() string {
	return m.outPath
}

// Launchable returns the program to hand the terminal to after the
// session, nil when there is none.
func (m Model) Launchable() *exec.Launchable {
	return m.launch
}

// Active returns the active panel.
func (m Model) Active() *browser.State {
	return m.panels[m.active]
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for _, p := range m.panels {
			p.SetPageHeight(msg.Height - chrome)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case searchDoneMsg:
		m.workBusy = false
		if p := m.panelFor(msg.State); p != nil {
			if msg.Err != nil {
				m.flash = msg.Err.Error()
				p.ClearPending()
			} else {
				p.ApplySearch(msg.Tree, msg.Gen)
			}
		}
		return m, m.scheduleWork()

	case gitStatusMsg:
		m.workBusy = false
		if p := m.panelFor(msg.State); p != nil {
			if msg.Err != nil {
				debug.Log("git status failed: %v", msg.Err)
			}
			p.ApplyGitStatus(msg.Status)
		}
		return m, m.scheduleWork()

	case dirSumMsg:
		m.workBusy = false
		if p := m.panelFor(msg.State); p != nil && msg.Ok {
			p.DisplayedTree().SetDirSum(msg.Path, msg.Sum)
		}
		return m, m.scheduleWork()
	}

	return m, nil
}

// panelFor returns the given state if it is still on the panel stack,
// nil when it was replaced or closed since the work was scheduled.
func (m *Model) panelFor(s *browser.State) *browser.State {
	for _, p := range m.panels {
		if p == s {
			return p
		}
	}
	return nil
}

// handleKeyPress routes a keystroke: bindings first, everything else
// into the command line.
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.flash = ""

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	p := m.Active()
	t := p.DisplayedTree()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help) && m.input.Value() == "":
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Up):
		t.MoveSelection(-1, p.PageHeight())
		return m, nil
	case key.Matches(msg, m.keys.Down):
		t.MoveSelection(1, p.PageHeight())
		return m, nil
	case key.Matches(msg, m.keys.PageUp):
		t.TryScroll(-p.PageHeight(), p.PageHeight())
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		t.TryScroll(p.PageHeight(), p.PageHeight())
		return m, nil

	case key.Matches(msg, m.keys.NextMatch):
		t.TrySelectNextMatch()
		t.MakeSelectionVisible(p.PageHeight())
		return m, nil
	case key.Matches(msg, m.keys.PrevMatch):
		t.TrySelectPreviousMatch()
		t.MakeSelectionVisible(p.PageHeight())
		return m, nil

	case key.Matches(msg, m.keys.Panel):
		m.active = (m.active + 1) % len(m.panels)
		return m, nil

	case key.Matches(msg, m.keys.Back):
		if m.input.Value() != "" {
			m.resetInput()
			m.interruptWork()
			p.OnPattern(pattern.None())
			return m, m.scheduleWork()
		}
		return m.applyResult(p.Back())

	case key.Matches(msg, m.keys.Open):
		if raw, ok := strings.CutPrefix(m.input.Value(), ":"); ok {
			m.resetInput()
			return m.runInvocation(raw)
		}
		m.resetInput()
		return m.runVerb("open_stay")

	case key.Matches(msg, m.keys.OpenLeave):
		m.resetInput()
		return m.runVerb("open_leave")
	}

	// Everything else edits the command line.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	value := m.input.Value()
	if value == m.prevInput {
		return m, cmd
	}
	m.prevInput = value

	if strings.HasPrefix(value, ":") {
		// Composing a verb; the displayed tree is left alone.
		return m, cmd
	}

	pat, err := pattern.Parse(value)
	if err != nil {
		m.flash = err.Error()
		return m, cmd
	}
	m.interruptWork()
	p.OnPattern(pat)
	return m, tea.Batch(cmd, m.scheduleWork())
}

func (m *Model) resetInput() {
	m.input.Reset()
	m.prevInput = ""
}

// runInvocation resolves and executes a typed verb invocation.
func (m Model) runInvocation(raw string) (tea.Model, tea.Cmd) {
	inv := verb.ParseInvocation(raw)
	v, err := m.verbs.Resolve(inv)
	if err != nil {
		m.flash = err.Error()
		return m, nil
	}
	return m.applyResult(m.Active().ExecuteVerb(v, inv))
}

// runVerb executes a built-in verb by its canonical name.
func (m Model) runVerb(name string) (tea.Model, tea.Cmd) {
	return m.runInvocation(name)
}

// applyResult translates a panel-level verb result into application
// effects.
func (m Model) applyResult(res browser.Result) (tea.Model, tea.Cmd) {
	switch res.Kind {
	case browser.Keep:
		return m, m.scheduleWork()

	case browser.NewState:
		m.interruptWork()
		res.State.SetPageHeight(m.height - chrome)
		m.panels[m.active] = res.State
		return m, m.scheduleWork()

	case browser.NewPanel:
		res.State.SetPageHeight(m.height - chrome)
		m.panels = append(m.panels, res.State)
		m.active = len(m.panels) - 1
		return m, m.scheduleWork()

	case browser.PopPanel:
		if len(m.panels) == 1 {
			m.quitting = true
			return m, tea.Quit
		}
		m.interruptWork()
		m.panels = append(m.panels[:m.active], m.panels[m.active+1:]...)
		if m.active >= len(m.panels) {
			m.active = len(m.panels) - 1
		}
		return m, m.scheduleWork()

	case browser.Quit:
		m.quitting = true
		return m, tea.Quit

	case browser.DisplayError:
		m.flash = res.Error
		return m, nil

	case browser.PrintPath:
		m.outPath = res.Path
		m.quitting = true
		return m, tea.Quit

	case browser.Launch:
		if res.LaunchLeave {
			m.launch = res.Launchable
			m.quitting = true
			return m, tea.Quit
		}
		if err := res.Launchable.StartDetached(); err != nil {
			m.flash = err.Error()
		}
		return m, nil
	}
	return m, nil
}

// interruptWork cancels the in-flight background unit, if any. The
// unit notices at its next dam checkpoint; its result message still
// arrives and is discarded by generation or by its partial flag.
func (m *Model) interruptWork() {
	if m.workBusy {
		m.workDam.Interrupt()
	}
}

// scheduleWork starts the active panel's next unit of background work,
// unless one is already in flight. Each unit gets a fresh dam so an
// interrupt never outlives the unit it aimed at.
func (m *Model) scheduleWork() tea.Cmd {
	if m.workBusy {
		return nil
	}
	p := m.Active()

	switch p.PendingTask() {
	case browser.TaskSearch:
		dam := task.New()
		m.workBusy = true
		m.workDam = dam
		spec := p.PendingSearch()
		return func() tea.Msg {
			t, err := tree.Build(spec.Root, spec.Options, spec.Budget, spec.Total, dam)
			return searchDoneMsg{State: p, Gen: spec.Gen, Tree: t, Err: err}
		}

	case browser.TaskGitStatus:
		dam := task.New()
		m.workBusy = true
		m.workDam = dam
		root := p.DisplayedTree().Root
		return func() tea.Msg {
			st, err := git.TreeStatus(root, dam)
			return gitStatusMsg{State: p, Status: st, Err: err}
		}

	case browser.TaskDirSum:
		path, ok := p.DisplayedTree().FirstDirMissingSum()
		if !ok {
			return nil
		}
		dam := task.New()
		m.workBusy = true
		m.workDam = dam
		return func() tea.Msg {
			sum, ok := tree.ComputeDirSum(path, dam)
			return dirSumMsg{State: p, Path: path, Sum: sum, Ok: ok}
		}
	}
	return nil
}

// View renders the application.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	p := m.Active()
	params := ui.RenderParams{
		Tree:       p.DisplayedTree(),
		Width:      m.width,
		Height:     m.height,
		PageHeight: p.PageHeight(),
		Input:      m.input.View(),
		TaskName:   p.PendingTaskName(),
		FlashError: m.flash,
		PanelIndex: m.active,
		PanelCount: len(m.panels),
		ShowHelp:   m.showHelp,
	}
	if m.showHelp {
		for _, s := range helpSections(m.keys) {
			section := ui.HelpSection{Title: s.title}
			for _, b := range s.bindings {
				section.Bindings = append(section.Bindings, ui.HelpBinding{Keys: b.keys, Desc: b.desc})
			}
			params.HelpSections = append(params.HelpSections, section)
		}
	}
	return ui.Render(params)
}
