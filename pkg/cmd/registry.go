package cmd

import (
	"sort"
	"strings"
	"sync"
)

// Registry stores commands by lower-cased name. It never dispatches.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds commands, replacing any with the same name.
func (r *Registry) Register(cs ...Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range cs {
		r.commands[strings.ToLower(c.Name())] = c
	}
}

// Get returns the named command or nil.
func (r *Registry) Get(name string) Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.commands[strings.ToLower(name)]
}

func (r *Registry) Has(name string) bool {
	return r.Get(name) != nil
}

// GetAll returns every command sorted by name.
func (r *Registry) GetAll() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}
