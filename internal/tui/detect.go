package tui

import (
	"os"

	"golang.org/x/term"
)

// Mode represents the interaction mode for pg2duck.
type Mode int

const (
	// ModeNonInteractive is used for schedulers, CI/CD and piped output.
	ModeNonInteractive Mode = iota
	// ModeInteractive is used when a human is at the terminal.
	ModeInteractive
)

// NonInteractiveEnv disables prompts and styled output when set to "1".
const NonInteractiveEnv = "PG2DUCK_NON_INTERACTIVE"

// DetectMode determines whether pg2duck should run in interactive or non-interactive mode.
//
// Returns ModeNonInteractive if:
//   - PG2DUCK_NON_INTERACTIVE=1 is set
//   - CI is set (common CI/CD convention)
//   - NO_COLOR is set
//   - stdin or stderr is not a terminal
//
// Returns ModeInteractive otherwise.
func DetectMode() Mode {
	if os.Getenv(NonInteractiveEnv) == "1" {
		return ModeNonInteractive
	}
	if os.Getenv("CI") != "" {
		return ModeNonInteractive
	}
	if os.Getenv("NO_COLOR") != "" {
		return ModeNonInteractive
	}

	// The password prompt reads stdin and every message goes to stderr.
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return ModeNonInteractive
	}
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return ModeNonInteractive
	}

	return ModeInteractive
}

// IsInteractive is a convenience function that returns true if running in interactive mode.
func IsInteractive() bool {
	return DetectMode() == ModeInteractive
}
