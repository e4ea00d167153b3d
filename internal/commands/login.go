package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/service"
)

// PasswordEnv is consulted when --password is not given.
const PasswordEnv = config.EnvPrefix + "_PASSWORD"

func init() {
	Register(&LoginCmd{})
	Register(&RegisterCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	email    string
	password string
}

func (c *LoginCmd) Name() string          { return "login" }
func (c *LoginCmd) Aliases() []string     { return nil }
func (c *LoginCmd) Synopsis() string      { return "Sign in with email and password" }
func (c *LoginCmd) Usage() string         { return "tasksync login --email <email> [--password <password>]" }
func (c *LoginCmd) Requires() Requirement { return RequiresBackend }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	password := c.password
	if password == "" {
		password = os.Getenv(PasswordEnv)
	}

	user, err := svc.Login(ctx, service.Credentials{Email: c.email, Password: password})
	if err != nil {
		return reportError(errOut, err)
	}

	printOK(cfg, out, "logged in as %s", user.DisplayName())
	return exitcode.Success
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	email    string
	name     string
	password string
	confirm  string
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return nil }
func (c *RegisterCmd) Synopsis() string  { return "Create an account and sign in" }
func (c *RegisterCmd) Usage() string {
	return "tasksync register --email <email> --name <name> [--password <password> --confirm <password>]"
}
func (c *RegisterCmd) Requires() Requirement { return RequiresBackend }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.name, "name", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.confirm, "confirm", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	password, confirm := c.password, c.confirm
	if password == "" {
		password = os.Getenv(PasswordEnv)
	}
	if confirm == "" && c.password == "" {
		// A password taken from the environment confirms itself.
		confirm = password
	}

	user, err := svc.Register(ctx, service.Registration{
		Email:           c.email,
		Name:            c.name,
		Password:        password,
		PasswordConfirm: confirm,
	})
	if err != nil {
		return reportError(errOut, err)
	}

	printOK(cfg, out, "registered as %s", user.DisplayName())
	return exitcode.Success
}
