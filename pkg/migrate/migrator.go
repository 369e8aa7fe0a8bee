package migrate

import (
	"fmt"
	"sort"
	"sync"
)

// Migrator transforms source text from an outdated style to its modern
// equivalent. Implementations are heuristic string rewriters: they do
// not guarantee semantic correctness of the output, only that
// non-candidate input passes through unchanged.
type Migrator interface {
	// Name returns the migration type identifier, e.g. "react-hooks".
	Name() string
	// Description returns a one-line human description.
	Description() string
	// CanMigrate reports whether the file at path is a candidate,
	// judged by path alone (no file access).
	CanMigrate(path string) bool
	// Migrate returns the rewritten content. Content without the target
	// pattern is returned unchanged.
	Migrate(content, path string) (string, error)
}

// Registry maps migration type names to migrators.
//
// Thread-safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	migrators map[string]Migrator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{migrators: make(map[string]Migrator)}
}

// DefaultRegistry returns a registry with all built-in migrators.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewReactHooksMigrator())
	r.Register(NewPythonMigrator())
	return r
}

// Register adds a migrator under its Name. A later registration with
// the same name replaces the earlier one.
func (r *Registry) Register(m Migrator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.migrators[m.Name()] = m
}

// Get returns the migrator registered under name.
func (r *Registry) Get(name string) (Migrator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.migrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown migration type: %s", name)
	}
	return m, nil
}

// Names returns the registered migration type names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.migrators))
	for name := range r.migrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
