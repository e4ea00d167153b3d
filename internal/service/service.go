package service

import "context"

// Service defines the interface for task backend operations.
// Commands never talk to the transport or the session directly.
type Service interface {
	// Authenticated reports whether a session with an access token is active.
	Authenticated() bool

	// Login authenticates with email and password and starts a session.
	Login(ctx context.Context, creds Credentials) (User, error)

	// Register creates an account and starts a session.
	Register(ctx context.Context, reg Registration) (User, error)

	// Logout clears the session. It never touches the network.
	Logout() error

	// Profile returns the authenticated user's profile from the server.
	Profile(ctx context.Context) (User, error)

	// ListTasks fetches all tasks and replaces the local collection.
	// Results are in server order (no client-side sorting).
	ListTasks(ctx context.Context) ([]Task, error)

	// CreateTask creates a task and returns the server's copy.
	CreateTask(ctx context.Context, in TaskInput) (Task, error)

	// UpdateTask applies a partial update and returns the server's copy.
	UpdateTask(ctx context.Context, id string, patch TaskPatch) (Task, error)

	// ToggleTask flips the completed flag of a task.
	ToggleTask(ctx context.Context, id string) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id string) error
}
