// Package app provides the main Bubble Tea application model for
// canopy.
//
// It owns the panel stack, routes keystrokes between the command line
// and the tree, schedules at most one unit of cancellable background
// work at a time, and translates panel-level verb results into
// application effects (new panels, quitting, launching programs).
//
// The main type is Model, which implements the Bubble Tea interface
// (Init, Update, View).
package app
