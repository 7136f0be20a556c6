package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/vvka-141/pg2duck/internal/cli"
	"github.com/vvka-141/pg2duck/pkg/pg2duck"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(pg2duck.ExitPanic)
		}
	}()

	if os.Getenv("PG2DUCK_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	if err := cli.Execute(); err != nil {
		os.Exit(pg2duck.ExitCodeForError(err))
	}
}
