// Package exec hands selections off to external programs: the system
// opener for files, and configured commands run against the selected
// path.
package exec

import (
	"fmt"
	"os"
	osExec "os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Launchable describes one external hand-off, built while the UI is
// running and executed either detached (the panel stays open) or in
// the foreground after the UI has quit.
type Launchable struct {
	// Program and Args form the command line. Empty Program means
	// "open Path with the default handler".
	Program string
	Args    []string

	// Path is the selection the launchable acts on; used as the
	// working directory for program launches.
	Path string
}

// Opener returns a launchable opening path with the default handler.
func Opener(path string) *Launchable {
	return &Launchable{Path: path}
}

// Program returns a launchable running a command against path.
func Program(path, program string, args ...string) *Launchable {
	return &Launchable{Program: program, Args: args, Path: path}
}

// FromTemplate builds a launchable from an external verb template.
// {file} expands to the selected path, {directory} to the closest
// directory for it, {parent} to its parent; extra user arguments are
// appended. Environment variables in the template are expanded.
func FromTemplate(template, path string, isDir bool, extraArgs []string) (*Launchable, error) {
	dir := path
	if !isDir {
		dir = filepath.Dir(path)
	}
	expanded := strings.ReplaceAll(template, "{file}", path)
	expanded = strings.ReplaceAll(expanded, "{directory}", dir)
	expanded = strings.ReplaceAll(expanded, "{parent}", filepath.Dir(path))
	expanded = os.ExpandEnv(expanded)

	fields := strings.Fields(expanded)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty command template")
	}
	args := append(fields[1:], extraArgs...)
	return &Launchable{Program: fields[0], Args: args, Path: path}, nil
}

// StartDetached launches without waiting, for verbs that keep the
// panel open.
func (l *Launchable) StartDetached() error {
	cmd := l.command()
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Start()
}

// Exec runs the launchable in the foreground, inheriting the
// terminal. Used after the UI has quit, for verbs marked leave.
func (l *Launchable) Exec() error {
	cmd := l.command()
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func (l *Launchable) command() *osExec.Cmd {
	if l.Program == "" {
		return osExec.Command(openerProgram(), l.Path)
	}
	cmd := osExec.Command(l.Program, l.Args...)
	if info, err := os.Stat(l.Path); err == nil && info.IsDir() {
		cmd.Dir = l.Path
	} else {
		cmd.Dir = filepath.Dir(l.Path)
	}
	return cmd
}

// openerProgram returns the platform's open-with-default-handler
// command.
func openerProgram() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "windows":
		return "explorer"
	default:
		return "xdg-open"
	}
}

// String renders the launchable for error messages and debug logs.
func (l *Launchable) String() string {
	if l.Program == "" {
		return fmt.Sprintf("open %s", l.Path)
	}
	if len(l.Args) == 0 {
		return l.Program
	}
	return l.Program + " " + strings.Join(l.Args, " ")
}
