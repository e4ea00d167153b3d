package tasks

import (
	"context"
	"slices"
	"sync"

	"tasksync/internal/service"
)

// Collection is the client's copy of the server's task list, kept in server
// order. Each mutation applies one response, keyed by task id.
//
// Mutating methods take the request's context and drop the update when the
// request was abandoned.
type Collection struct {
	mu    sync.RWMutex
	items []service.Task
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{}
}

// Replace swaps in a freshly fetched list.
func (c *Collection) Replace(ctx context.Context, list []service.Task) error {
	if err := ctx.Err(); err != nil {
		return service.Canceled(err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = slices.Clone(list)
	return nil
}

// Upsert replaces the task with the same id, or appends it.
func (c *Collection) Upsert(ctx context.Context, t service.Task) error {
	if err := ctx.Err(); err != nil {
		return service.Canceled(err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(t.ID); i >= 0 {
		c.items[i] = t
		return nil
	}
	c.items = append(c.items, t)
	return nil
}

// Remove deletes the task with id. Removing an unknown id is a no-op.
func (c *Collection) Remove(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return service.Canceled(err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(id); i >= 0 {
		c.items = slices.Delete(c.items, i, i+1)
	}
	return nil
}

// Get returns the task with id.
func (c *Collection) Get(id string) (service.Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.index(id); i >= 0 {
		return c.items[i], true
	}
	return service.Task{}, false
}

// Snapshot returns a copy of the current list.
func (c *Collection) Snapshot() []service.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

// Len returns the number of tasks.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Collection) index(id string) int {
	return slices.IndexFunc(c.items, func(t service.Task) bool { return t.ID == id })
}
