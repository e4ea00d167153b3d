package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrSessionExpired means the session could not be recovered and was cleared.
	// The user has to log in again.
	ErrSessionExpired = errors.New("session expired, please log in again")

	// ErrCanceled means the caller abandoned the request. It is not an error
	// state: it must not trigger logout or an error message.
	ErrCanceled = errors.New("request canceled")

	// ErrNotFound is returned when a task is not known locally or remotely.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports malformed client-side input. It is always raised
// before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// AuthError reports an authentication failure: bad credentials, or a 401 that
// could not be recovered by refreshing the session.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return "authentication failed"
	}
}

func (e *AuthError) Unwrap() error { return e.Err }

// ServerError reports any other non-2xx response.
type ServerError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *ServerError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if msg == "" {
		msg = "unexpected server response"
	}
	if e.Status == 0 {
		return msg
	}
	return fmt.Sprintf("%s (status %d)", msg, e.Status)
}

// NetworkError reports a transport failure that is not a cancellation.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsCanceled reports whether err stems from an abandoned request.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled)
}

// Canceled wraps a context error as ErrCanceled, keeping the cause.
func Canceled(cause error) error {
	if cause == nil {
		return ErrCanceled
	}
	return fmt.Errorf("%w: %w", ErrCanceled, cause)
}
