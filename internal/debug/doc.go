// Package debug provides debug logging functionality for canopy.
//
// When enabled via the --debug flag, it logs detailed information
// about tree builds, background work and internal state to help
// diagnose issues.
package debug
