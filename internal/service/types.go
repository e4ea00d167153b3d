// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"strings"
	"time"
)

// Priority is a task priority level.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank orders priorities for sorting: high=3, medium=2, low=1.
// Unrecognized priorities rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// ParsePriority normalizes a priority string (trimmed, lower-cased).
// Unknown values are returned as-is so they keep rank 0.
func ParsePriority(s string) Priority {
	return Priority(strings.ToLower(strings.TrimSpace(s)))
}

// Task represents a single task item in canonical form.
type Task struct {
	ID          string
	Title       string
	Description string
	Priority    Priority
	DueDate     *time.Time // nil when no due date is set
	Completed   bool
	CreatedAt   time.Time
}

// User is the authenticated user's profile.
type User struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
}

// DisplayName returns the name, falling back to the email.
func (u User) DisplayName() string {
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	return u.Email
}

// Credentials is the login form input.
type Credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Registration is the sign-up form input.
type Registration struct {
	Email           string `validate:"required,email"`
	Password        string `validate:"required"`
	PasswordConfirm string `validate:"eqfield=Password"`
	Name            string `validate:"required"`
}

// TaskInput holds the fields for a new task.
type TaskInput struct {
	Title       string     `validate:"required"`
	Description string     `validate:"-"`
	Priority    Priority   `validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `validate:"-"`
	Completed   bool       `validate:"-"`
}

// TaskPatch holds a partial task update. Nil fields are left unchanged.
type TaskPatch struct {
	Title       *string   `validate:"-"`
	Description *string   `validate:"-"`
	Priority    *Priority `validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time
	ClearDue    bool
	Completed   *bool
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.DueDate == nil && !p.ClearDue && p.Completed == nil
}
