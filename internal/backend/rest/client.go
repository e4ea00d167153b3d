// Package rest implements the service.Service interface against the task
// REST API, with authentication handled by the session manager.
package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tasksync/internal/service"
	"tasksync/internal/tasks"
	"tasksync/internal/transport"
)

const (
	tasksPath = "/tasks"

	// DueDateLayout is the wire format for due dates sent to the server.
	DueDateLayout = "2006-01-02"
)

// Authorizer is the part of the session manager the client depends on.
type Authorizer interface {
	Authenticated() bool
	Login(ctx context.Context, creds service.Credentials) (service.User, error)
	Register(ctx context.Context, reg service.Registration) (service.User, error)
	Logout() error
	Profile(ctx context.Context) (service.User, error)
	Expiry() time.Time
	Expired() bool
	Do(ctx context.Context, method, path string, body any) (*transport.Response, error)
}

// Client implements service.Service over the REST API.
type Client struct {
	auth  Authorizer
	tasks *tasks.Collection
	log   *slog.Logger
}

// New creates a client. A nil logger uses slog.Default.
func New(auth Authorizer, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		auth:  auth,
		tasks: tasks.NewCollection(),
		log:   logger,
	}
}

// Tasks returns the client's task collection.
func (c *Client) Tasks() *tasks.Collection {
	return c.tasks
}

// Authenticated implements service.Service.
func (c *Client) Authenticated() bool {
	return c.auth.Authenticated()
}

// Login implements service.Service.
func (c *Client) Login(ctx context.Context, creds service.Credentials) (service.User, error) {
	return c.auth.Login(ctx, creds)
}

// Register implements service.Service.
func (c *Client) Register(ctx context.Context, reg service.Registration) (service.User, error) {
	return c.auth.Register(ctx, reg)
}

// Logout implements service.Service. The local task copy belongs to the
// session and is dropped with it.
func (c *Client) Logout() error {
	err := c.auth.Logout()
	_ = c.tasks.Replace(context.Background(), nil)
	return err
}

// Profile implements service.Service.
func (c *Client) Profile(ctx context.Context) (service.User, error) {
	return c.auth.Profile(ctx)
}

// SessionExpiry returns when the current access token expires; zero when
// unknown.
func (c *Client) SessionExpiry() time.Time {
	return c.auth.Expiry()
}

// SessionExpired reports whether the current access token is past its expiry.
// It is false when the expiry is unknown or no one is signed in.
func (c *Client) SessionExpired() bool {
	return c.auth.Expired()
}

// ListTasks fetches all tasks in server order and replaces the local copy.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	resp, err := c.auth.Do(ctx, http.MethodGet, tasksPath, nil)
	if err != nil {
		return nil, wrapError(err)
	}

	list, err := tasks.DecodeList(resp.Body)
	if err != nil {
		return nil, &service.ServerError{Status: resp.Status, Message: err.Error(), Body: resp.Body}
	}
	if err := c.tasks.Replace(ctx, list); err != nil {
		return nil, err
	}
	c.log.Debug("tasks loaded", "count", len(list))
	return c.tasks.Snapshot(), nil
}

// CreateTask creates a task. The title is required after trimming.
func (c *Client) CreateTask(ctx context.Context, in service.TaskInput) (service.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Priority = service.ParsePriority(string(in.Priority))
	if err := service.Validate(in); err != nil {
		return service.Task{}, err
	}

	body := map[string]any{
		"title":     in.Title,
		"completed": in.Completed,
	}
	if in.Description != "" {
		body["description"] = in.Description
	}
	if in.Priority != "" {
		body["priority"] = in.Priority
	}
	if in.DueDate != nil {
		body["dueDate"] = in.DueDate.Format(DueDateLayout)
	}

	resp, err := c.auth.Do(ctx, http.MethodPost, tasksPath, body)
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	task, err := tasks.DecodeEntity(resp.Body)
	if err != nil {
		return service.Task{}, &service.ServerError{Status: resp.Status, Message: err.Error(), Body: resp.Body}
	}
	if err := c.tasks.Upsert(ctx, task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// UpdateTask applies a partial update. Fields left nil in the patch are not
// sent.
func (c *Client) UpdateTask(ctx context.Context, id string, patch service.TaskPatch) (service.Task, error) {
	if strings.TrimSpace(id) == "" {
		return service.Task{}, &service.ValidationError{Field: "id", Message: "is required"}
	}
	if patch.Empty() {
		return service.Task{}, &service.ValidationError{Message: "nothing to update"}
	}
	body, err := patchBody(&patch)
	if err != nil {
		return service.Task{}, err
	}

	resp, err := c.auth.Do(ctx, http.MethodPut, taskPath(id), body)
	if err != nil {
		return service.Task{}, wrapError(err)
	}

	var task service.Task
	if len(resp.Body) == 0 {
		// Some deployments answer 204; apply the patch to the known copy.
		known, ok := c.tasks.Get(id)
		if !ok {
			return service.Task{}, fmt.Errorf("task %s: %w", id, service.ErrNotFound)
		}
		task = applyPatch(known, patch)
	} else {
		task, err = tasks.DecodeEntity(resp.Body)
		if err != nil {
			return service.Task{}, &service.ServerError{Status: resp.Status, Message: err.Error(), Body: resp.Body}
		}
	}
	if err := c.tasks.Upsert(ctx, task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// ToggleTask flips the completion state of a task. The current state is
// taken from the local copy, fetched first if the task is not known yet.
func (c *Client) ToggleTask(ctx context.Context, id string) (service.Task, error) {
	known, ok := c.tasks.Get(id)
	if !ok {
		if _, err := c.ListTasks(ctx); err != nil {
			return service.Task{}, err
		}
		if known, ok = c.tasks.Get(id); !ok {
			return service.Task{}, fmt.Errorf("task %s: %w", id, service.ErrNotFound)
		}
	}
	completed := !known.Completed
	return c.UpdateTask(ctx, id, service.TaskPatch{Completed: &completed})
}

// DeleteTask deletes a task and drops it from the local copy.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return &service.ValidationError{Field: "id", Message: "is required"}
	}
	if _, err := c.auth.Do(ctx, http.MethodDelete, taskPath(id), nil); err != nil {
		return wrapError(err)
	}
	return c.tasks.Remove(ctx, id)
}

func taskPath(id string) string {
	return tasksPath + "/" + url.PathEscape(id)
}

func patchBody(p *service.TaskPatch) (map[string]any, error) {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return nil, &service.ValidationError{Field: "title", Message: "is required"}
		}
		p.Title = &title
	}
	if p.Priority != nil {
		prio := service.ParsePriority(string(*p.Priority))
		p.Priority = &prio
	}
	if err := service.Validate(*p); err != nil {
		return nil, err
	}

	body := map[string]any{}
	if p.Title != nil {
		body["title"] = *p.Title
	}
	if p.Description != nil {
		body["description"] = strings.TrimSpace(*p.Description)
	}
	if p.Priority != nil {
		body["priority"] = *p.Priority
	}
	switch {
	case p.ClearDue:
		body["dueDate"] = nil
	case p.DueDate != nil:
		body["dueDate"] = p.DueDate.Format(DueDateLayout)
	}
	if p.Completed != nil {
		body["completed"] = *p.Completed
	}
	return body, nil
}

func applyPatch(t service.Task, p service.TaskPatch) service.Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	switch {
	case p.ClearDue:
		t.DueDate = nil
	case p.DueDate != nil:
		due := time.Date(p.DueDate.Year(), p.DueDate.Month(), p.DueDate.Day(), 0, 0, 0, 0, time.Local)
		t.DueDate = &due
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}

// wrapError maps a 404 to service.ErrNotFound and passes everything else
// through unchanged.
func wrapError(err error) error {
	var srvErr *service.ServerError
	if errors.As(err, &srvErr) && srvErr.Status == http.StatusNotFound {
		return fmt.Errorf("%w: %w", service.ErrNotFound, err)
	}
	return err
}
