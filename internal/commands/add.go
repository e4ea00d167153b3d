package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/service"
)

// DueLayout is the accepted --due format.
const DueLayout = "2006-01-02"

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	priority    string
	due         string
	description string
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "tasksync add [--priority low|medium|high] [--due YYYY-MM-DD] [--desc <text>] <title...>"
}
func (c *AddCmd) Requires() Requirement { return RequiresSession }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.priority, "priority", "", "")
	fs.StringVar(&c.priority, "p", "", "")
	fs.StringVar(&c.due, "due", "", "")
	fs.StringVar(&c.description, "desc", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	// Join args to form title
	title := strings.Join(args, " ")
	if strings.TrimSpace(title) == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	in := service.TaskInput{
		Title:       title,
		Description: c.description,
		Priority:    service.ParsePriority(c.priority),
	}
	if c.due != "" {
		due, err := parseDue(c.due)
		if err != nil {
			return reportError(errOut, err)
		}
		in.DueDate = &due
	}

	task, err := svc.CreateTask(ctx, in)
	if err != nil {
		return reportError(errOut, err)
	}

	printOK(cfg, out, "created %s", task.ID)
	return exitcode.Success
}

// parseDue reads a YYYY-MM-DD calendar date in the local time zone.
func parseDue(s string) (time.Time, error) {
	due, err := time.ParseInLocation(DueLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, &service.ValidationError{Field: "due date", Message: "must be YYYY-MM-DD"}
	}
	return due, nil
}
