package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/output"
	"tasksync/internal/service"
)

func init() {
	Register(&LogoutCmd{})
	Register(&WhoamiCmd{})
}

// LogoutCmd implements the logout command.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string          { return "logout" }
func (c *LogoutCmd) Aliases() []string     { return nil }
func (c *LogoutCmd) Synopsis() string      { return "Sign out and remove the stored session" }
func (c *LogoutCmd) Usage() string         { return "tasksync logout [common flags]" }
func (c *LogoutCmd) Requires() Requirement { return RequiresBackend }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if !svc.Authenticated() {
		printOK(cfg, out, "not logged in")
		return exitcode.Success
	}

	if err := svc.Logout(); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	printOK(cfg, out, "ok")
	return exitcode.Success
}

// sessionExpirer is implemented by services that know their token expiry.
type sessionExpirer interface {
	SessionExpiry() time.Time
	SessionExpired() bool
}

// WhoamiCmd implements the whoami command.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string          { return "whoami" }
func (c *WhoamiCmd) Aliases() []string     { return nil }
func (c *WhoamiCmd) Synopsis() string      { return "Show the signed-in user" }
func (c *WhoamiCmd) Usage() string         { return "tasksync whoami [common flags]" }
func (c *WhoamiCmd) Requires() Requirement { return RequiresSession }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	user, err := svc.Profile(ctx)
	if err != nil {
		return reportError(errOut, err)
	}

	var (
		expiry  time.Time
		expired bool
	)
	if se, ok := svc.(sessionExpirer); ok {
		expiry, expired = se.SessionExpiry(), se.SessionExpired()
	}
	output.FormatProfile(out, user, expiry, expired)
	return exitcode.Success
}
