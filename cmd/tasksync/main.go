// Package main is the entry point for the tasksync CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tasksync/internal/backend/rest"
	"tasksync/internal/cli"
	"tasksync/internal/commands"
	"tasksync/internal/config"
	"tasksync/internal/logging"
	"tasksync/internal/service"
	"tasksync/internal/session"
	"tasksync/internal/transport"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Create dispatcher
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, newService)

	// Run and exit with code
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}

// newService wires the REST backend: HTTP transport, the session file under
// the config directory, and the session manager that authorizes every call.
func newService(ctx context.Context, cfg *config.Config) (service.Service, error) {
	logger := logging.FromContext(ctx)

	if err := cfg.EnsureDir(); err != nil {
		return nil, fmt.Errorf("failed to create config dir: %w", err)
	}

	t := transport.New(transport.Options{
		BaseURL:  cfg.Settings.APIURL,
		Timeout:  cfg.Settings.Timeout,
		RetryMax: cfg.Settings.RetryMax,
		Logger:   logger,
	})

	manager, err := session.NewManager(t, session.NewFileStore(cfg.SessionPath()),
		session.WithLogger(logger),
		session.WithRefreshTimeout(cfg.Settings.Timeout),
	)
	if err != nil {
		return nil, err
	}

	return rest.New(manager, logger), nil
}
