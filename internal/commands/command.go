// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/service"
)

// Requirement says what a command needs before it can run.
type Requirement int

const (
	// RequiresNone commands run without a backend (help, version).
	RequiresNone Requirement = iota

	// RequiresBackend commands need a service but may run anonymous
	// (login, register, logout).
	RequiresBackend

	// RequiresSession commands need a signed-in service.
	RequiresSession
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// Requires reports what the dispatcher must set up before Run.
	Requires() Requirement

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, paths, settings).
	// svc is nil if Requires() returns RequiresNone.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int
}

// reportError prints err and returns its exit code. An abandoned run prints
// nothing.
func reportError(errOut io.Writer, err error) int {
	code := exitcode.FromError(err)
	if code != exitcode.Canceled {
		fmt.Fprintf(errOut, "error: %v\n", err)
	}
	return code
}

func printOK(cfg *config.Config, out io.Writer, format string, args ...any) {
	if cfg.Quiet {
		return
	}
	fmt.Fprintf(out, format+"\n", args...)
}
