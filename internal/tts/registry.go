package tts

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/lue-reader/lue/internal/config"
)

// Factory builds a backend from the reader configuration. It must not start
// processes; that happens in Initialize.
type Factory func(cfg config.Config) (Capability, error)

// Registry maps backend names to factories. Backends are registered
// explicitly at startup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds f under name. Names are case-insensitive.
func (r *Registry) Register(name string, f Factory) error {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || f == nil {
		return fmt.Errorf("invalid registration for %q", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateBackend, key)
	}
	r.factories[key] = f
	return nil
}

// New builds the backend registered under name.
func (r *Registry) New(name string, cfg config.Config) (Capability, error) {
	key := strings.ToLower(strings.TrimSpace(name))

	r.mu.RLock()
	f, ok := r.factories[key]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownBackend, name, strings.Join(r.Names(), ", "))
	}

	c, err := f(cfg)
	if err != nil {
		return nil, NewError(err, key, "create").WithSeverity(SeverityCritical)
	}
	return c, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
