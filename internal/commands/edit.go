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
	Register(&EditCmd{})
}

// optionalString is a string flag that remembers whether it was given,
// so "--desc ''" can clear a field while an absent flag leaves it alone.
type optionalString struct {
	value string
	set   bool
}

func (o *optionalString) String() string { return o.value }

func (o *optionalString) Set(s string) error {
	o.value, o.set = s, true
	return nil
}

// EditCmd implements the edit command.
type EditCmd struct {
	title       optionalString
	priority    optionalString
	due         optionalString
	description optionalString
	clearDue    bool
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"update"} }
func (c *EditCmd) Synopsis() string  { return "Change a task" }
func (c *EditCmd) Usage() string {
	return "tasksync edit [--title <t>] [--priority <p>] [--due YYYY-MM-DD | --clear-due] [--desc <text>] <ref>"
}
func (c *EditCmd) Requires() Requirement { return RequiresSession }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.Var(&c.title, "title", "")
	fs.Var(&c.priority, "priority", "")
	fs.Var(&c.priority, "p", "")
	fs.Var(&c.due, "due", "")
	fs.Var(&c.description, "desc", "")
	fs.BoolVar(&c.clearDue, "clear-due", false, "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ref, err := parseTaskRefArg(args)
	if err != nil {
		return reportError(errOut, err)
	}

	patch, err := c.patch()
	if err != nil {
		return reportError(errOut, err)
	}
	if patch.Empty() {
		return reportError(errOut, &service.ValidationError{Message: "nothing to update"})
	}

	task, err := ResolveTask(ctx, svc, ref, time.Now())
	if err != nil {
		return reportError(errOut, err)
	}
	if _, err := svc.UpdateTask(ctx, task.ID, patch); err != nil {
		return reportError(errOut, err)
	}

	printOK(cfg, out, "ok")
	return exitcode.Success
}

func (c *EditCmd) patch() (service.TaskPatch, error) {
	var p service.TaskPatch
	if c.title.set {
		p.Title = &c.title.value
	}
	if c.description.set {
		p.Description = &c.description.value
	}
	if c.priority.set {
		prio := service.ParsePriority(c.priority.value)
		p.Priority = &prio
	}
	if c.due.set && c.clearDue {
		return p, &service.ValidationError{Message: "cannot use both --due and --clear-due"}
	}
	if c.due.set {
		due, err := parseDue(c.due.value)
		if err != nil {
			return p, err
		}
		p.DueDate = &due
	}
	p.ClearDue = c.clearDue
	return p, nil
}
