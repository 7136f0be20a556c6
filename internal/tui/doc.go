// Package tui decides whether pg2duck talks to a human and renders the
// end-of-run table summary for terminals.
package tui
