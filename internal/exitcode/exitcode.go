// Package exitcode defines exit codes for the CLI.
package exitcode

import (
	"errors"

	"tasksync/internal/service"
)

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, invalid input, not found).
	UserError = 1

	// AuthError indicates bad credentials, an expired session or a config error.
	AuthError = 2

	// BackendError indicates a server or network error.
	BackendError = 3

	// Canceled indicates the run was interrupted (128 + SIGINT).
	Canceled = 130
)

// FromError maps an error returned by a service call to an exit code.
func FromError(err error) int {
	var (
		validationErr *service.ValidationError
		authErr       *service.AuthError
		serverErr     *service.ServerError
		networkErr    *service.NetworkError
	)
	switch {
	case err == nil:
		return Success
	case service.IsCanceled(err):
		return Canceled
	case errors.As(err, &validationErr), errors.Is(err, service.ErrNotFound):
		return UserError
	case errors.As(err, &authErr):
		return AuthError
	case errors.As(err, &serverErr), errors.As(err, &networkErr):
		return BackendError
	default:
		return BackendError
	}
}
