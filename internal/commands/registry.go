package commands

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// ErrDuplicateCommand is returned when a name or alias is registered twice.
var ErrDuplicateCommand = errors.New("command already registered")

// Registry holds registered commands.
type Registry struct {
	mu      sync.RWMutex
	lookup  map[string]Command // names and aliases
	primary map[string]Command // names only
}

// NewRegistry creates a new command registry.
func NewRegistry() *Registry {
	return &Registry{
		lookup:  make(map[string]Command),
		primary: make(map[string]Command),
	}
}

// Register adds a command. Names and aliases are matched case-insensitively
// and must be unique across the registry.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := append([]string{c.Name()}, c.Aliases()...)
	for i, k := range keys {
		k = strings.ToLower(k)
		if _, exists := r.lookup[k]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateCommand, k)
		}
		keys[i] = k
	}

	for _, k := range keys {
		r.lookup[k] = c
	}
	r.primary[keys[0]] = c
	return nil
}

// Find looks up a command by name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.lookup[strings.ToLower(name)]
	return cmd, ok
}

// All returns all commands sorted by name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.SortedFunc(maps.Values(r.primary), func(a, b Command) int {
		return strings.Compare(a.Name(), b.Name())
	})
}

// DefaultRegistry is the global command registry.
var DefaultRegistry = NewRegistry()

// Register adds a command to the default registry.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
