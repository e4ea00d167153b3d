// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"tasksync/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu        sync.RWMutex
	user      *service.User
	tasks     []service.Task
	nextID    int
	clock     time.Time
	passwords map[string]string // email -> password

	// Error injection for testing
	LoginErr    error
	RegisterErr error
	LogoutErr   error
	ProfileErr  error
	ListErr     error
	CreateErr   error
	UpdateErr   error
	DeleteErr   error
}

// NewFakeService creates an anonymous FakeService with no tasks.
func NewFakeService() *FakeService {
	return &FakeService{
		clock:     time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
		passwords: make(map[string]string),
	}
}

// SignIn marks the fake as authenticated as user.
func (f *FakeService) SignIn(user service.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = &user
}

// AddAccount registers credentials accepted by Login.
func (f *FakeService) AddAccount(email, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passwords[email] = password
}

// AddTask appends a task. Each added task is created one minute after the
// previous one, so the default view lists them newest first.
func (f *FakeService) AddTask(task service.Task) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.add(task)
}

func (f *FakeService) add(task service.Task) service.Task {
	f.nextID++
	if task.ID == "" {
		task.ID = fmt.Sprintf("t%d", f.nextID)
	}
	if task.CreatedAt.IsZero() {
		f.clock = f.clock.Add(time.Minute)
		task.CreatedAt = f.clock
	}
	f.tasks = append(f.tasks, task)
	return task
}

// Snapshot returns a copy of the stored tasks.
func (f *FakeService) Snapshot() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// Authenticated implements service.Service.
func (f *FakeService) Authenticated() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.user != nil
}

// Login implements service.Service.
func (f *FakeService) Login(ctx context.Context, creds service.Credentials) (service.User, error) {
	if f.LoginErr != nil {
		return service.User{}, f.LoginErr
	}
	if err := service.Validate(creds); err != nil {
		return service.User{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if pw, ok := f.passwords[creds.Email]; !ok || pw != creds.Password {
		return service.User{}, &service.AuthError{Message: "invalid email or password"}
	}
	user := service.User{ID: "u-" + creds.Email, Email: creds.Email}
	f.user = &user
	return user, nil
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, reg service.Registration) (service.User, error) {
	if f.RegisterErr != nil {
		return service.User{}, f.RegisterErr
	}
	if err := service.Validate(reg); err != nil {
		return service.User{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.passwords[reg.Email]; ok {
		return service.User{}, &service.AuthError{Message: "email already registered"}
	}
	f.passwords[reg.Email] = reg.Password
	user := service.User{ID: "u-" + reg.Email, Email: reg.Email, Name: reg.Name}
	f.user = &user
	return user, nil
}

// Logout implements service.Service.
func (f *FakeService) Logout() error {
	f.mu.Lock()
	f.user = nil
	f.mu.Unlock()
	return f.LogoutErr
}

// Profile implements service.Service.
func (f *FakeService) Profile(ctx context.Context) (service.User, error) {
	if f.ProfileErr != nil {
		return service.User{}, f.ProfileErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.user == nil {
		return service.User{}, &service.AuthError{Err: service.ErrSessionExpired}
	}
	return *f.user, nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return f.Snapshot(), nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, in service.TaskInput) (service.Task, error) {
	if f.CreateErr != nil {
		return service.Task{}, f.CreateErr
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := service.Validate(in); err != nil {
		return service.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.add(service.Task{
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		Completed:   in.Completed,
	}), nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id string, patch service.TaskPatch) (service.Task, error) {
	if f.UpdateErr != nil {
		return service.Task{}, f.UpdateErr
	}
	if patch.Empty() {
		return service.Task{}, &service.ValidationError{Message: "nothing to update"}
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks {
		if t.ID != id {
			continue
		}
		if patch.Title != nil {
			t.Title = *patch.Title
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.Priority != nil {
			t.Priority = *patch.Priority
		}
		if patch.ClearDue {
			t.DueDate = nil
		} else if patch.DueDate != nil {
			t.DueDate = patch.DueDate
		}
		if patch.Completed != nil {
			t.Completed = *patch.Completed
		}
		f.tasks[i] = t
		return t, nil
	}
	return service.Task{}, fmt.Errorf("task %s: %w", id, service.ErrNotFound)
}

// ToggleTask implements service.Service.
func (f *FakeService) ToggleTask(ctx context.Context, id string) (service.Task, error) {
	f.mu.RLock()
	var current *service.Task
	for _, t := range f.tasks {
		if t.ID == id {
			current = &t
			break
		}
	}
	f.mu.RUnlock()
	if current == nil {
		return service.Task{}, fmt.Errorf("task %s: %w", id, service.ErrNotFound)
	}
	completed := !current.Completed
	return f.UpdateTask(ctx, id, service.TaskPatch{Completed: &completed})
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("task %s: %w", id, service.ErrNotFound)
}
