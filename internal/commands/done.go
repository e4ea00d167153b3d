package commands

import (
	"context"
	"flag"
	"io"
	"time"

	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/service"
)

func init() {
	Register(&DoneCmd{})
}

// DoneCmd implements the done command. It toggles, so running it on a
// completed task reopens it.
type DoneCmd struct{}

func (c *DoneCmd) Name() string          { return "done" }
func (c *DoneCmd) Aliases() []string     { return []string{"toggle"} }
func (c *DoneCmd) Synopsis() string      { return "Toggle a task's completion" }
func (c *DoneCmd) Usage() string         { return "tasksync done <ref>" }
func (c *DoneCmd) Requires() Requirement { return RequiresSession }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ref, err := parseTaskRefArg(args)
	if err != nil {
		return reportError(errOut, err)
	}

	task, err := ResolveTask(ctx, svc, ref, time.Now())
	if err != nil {
		return reportError(errOut, err)
	}

	updated, err := svc.ToggleTask(ctx, task.ID)
	if err != nil {
		return reportError(errOut, err)
	}

	if updated.Completed {
		printOK(cfg, out, "completed: %s", updated.Title)
	} else {
		printOK(cfg, out, "reopened: %s", updated.Title)
	}
	return exitcode.Success
}
