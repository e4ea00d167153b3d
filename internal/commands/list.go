package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"golang.org/x/text/language"

	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/output"
	"tasksync/internal/service"
	"tasksync/internal/taskview"
)

func init() {
	Register(&ListCmd{})
	Register(&StatsCmd{})
}

// ListCmd implements the list command.
// Handles both `tasksync` (no args) and `tasksync list [flags]`.
type ListCmd struct {
	filter string
	sort   string
	search string
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "tasksync list [--filter <filter>] [--sort <key>] [--search <text>]"
}
func (c *ListCmd) Requires() Requirement { return RequiresSession }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.filter, "filter", "all", "")
	fs.StringVar(&c.sort, "sort", "created", "")
	fs.StringVar(&c.search, "search", "", "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	filter, err := taskview.ParseFilter(c.filter)
	if err != nil {
		return reportError(errOut, err)
	}
	sortKey, err := taskview.ParseSortKey(c.sort)
	if err != nil {
		return reportError(errOut, err)
	}
	viewCfg := taskview.Config{Search: c.search, Filter: filter, Sort: sortKey}

	list, err := svc.ListTasks(ctx)
	if err != nil {
		return reportError(errOut, err)
	}

	engine := newEngine(cfg)
	now := engine.Now()
	view := engine.Apply(list, viewCfg)

	if len(list) == 0 {
		printOK(cfg, out, "no tasks found")
		return exitcode.Success
	}

	// Tasks keep their default-view number under any filter or sort, so the
	// number printed is always a valid reference for done, edit and rm.
	nums := refNumbers(list, now)
	output.FormatViewHeader(out, viewCfg, len(view.Items), view.Stats.Total)
	for _, task := range view.Items {
		output.FormatTask(out, nums[task.ID], task, now)
	}
	return exitcode.Success
}

// StatsCmd implements the stats command.
type StatsCmd struct{}

func (c *StatsCmd) Name() string          { return "stats" }
func (c *StatsCmd) Aliases() []string     { return nil }
func (c *StatsCmd) Synopsis() string      { return "Show task counters" }
func (c *StatsCmd) Usage() string         { return "tasksync stats [common flags]" }
func (c *StatsCmd) Requires() Requirement { return RequiresSession }

func (c *StatsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	list, err := svc.ListTasks(ctx)
	if err != nil {
		return reportError(errOut, err)
	}
	output.FormatStats(out, taskview.Compute(list, time.Now()))
	return exitcode.Success
}

// newEngine builds a view engine for the configured locale. An unknown
// locale falls back to English.
func newEngine(cfg *config.Config) *taskview.Engine {
	engine := taskview.New()
	if cfg.Settings.Locale == "" {
		return engine
	}
	if tag, err := language.Parse(cfg.Settings.Locale); err == nil {
		engine.Locale = tag
	}
	return engine
}
