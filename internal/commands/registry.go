package commands

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Registry maps command names and aliases to commands.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Command
	cmds   []Command // sorted by primary name
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Command)}
}

// Register adds c under its name and aliases.
// No name may be taken twice.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := append([]string{c.Name()}, c.Aliases()...)
	for i, name := range names {
		if _, taken := r.byName[name]; taken || slices.Contains(names[:i], name) {
			if i == 0 {
				return fmt.Errorf("command already registered: %s", name)
			}
			return fmt.Errorf("command alias already registered: %s", name)
		}
	}

	for _, name := range names {
		r.byName[name] = c
	}
	i, _ := slices.BinarySearchFunc(r.cmds, c.Name(), func(e Command, name string) int {
		return strings.Compare(e.Name(), name)
	})
	r.cmds = slices.Insert(r.cmds, i, c)
	return nil
}

// Find looks up a command by name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.byName[name]
	return cmd, ok
}

// All returns every command once, sorted by name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.cmds)
}

// DefaultRegistry is the global command registry.
var DefaultRegistry = NewRegistry()

// Register adds a command to the default registry.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
