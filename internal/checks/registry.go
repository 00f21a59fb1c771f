// Package checks holds the check registry and the built-in text checks.
//
// A check inspects one source file and reports findings through a Context,
// which turns them into the event stream consumed by internal/aggregate.
// Checks are grouped into modules; a module adds its checks to a Registry
// that the program builds explicitly at start-up.
package checks

import (
	"fmt"
	"sort"
	"sync"
)

// Check is one analysis pass.
type Check interface {
	Name() string
	Check(ctx *Context) error
}

// Factory creates a fresh check instance for one unit.
type Factory func() Check

// Module registers a family of checks.
type Module interface {
	Name() string
	Register(r ModuleRegistry) error
}

// Registry maps check names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	modules   map[string]string // check -> module
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		modules:   make(map[string]string),
	}
}

// Add registers a factory under name. Names must be unique.
func (r *Registry) Add(name string, f Factory) error {
	return r.add("", name, f)
}

func (r *Registry) add(module, name string, f Factory) error {
	if name == "" || f == nil {
		return fmt.Errorf("checks: empty name or nil factory")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.factories[name]; dup {
		return fmt.Errorf("checks: %q registered twice", name)
	}
	r.factories[name] = f
	r.modules[name] = module
	return nil
}

// AddModules registers every module in order.
func (r *Registry) AddModules(mods ...Module) error {
	for _, m := range mods {
		if err := m.Register(&moduleRegistry{r: r, module: m.Name()}); err != nil {
			return fmt.Errorf("module %s: %w", m.Name(), err)
		}
	}
	return nil
}

// Names returns every registered name, sorted.
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

// Enabled returns the sorted names accepted by enabled.
func (r *Registry) Enabled(enabled func(string) bool) []string {
	var out []string
	for _, name := range r.Names() {
		if enabled(name) {
			out = append(out, name)
		}
	}
	return out
}

// Module returns the module that registered name.
func (r *Registry) Module(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[name]
	return m, ok
}

// Create instantiates the checks accepted by enabled, in name order.
func (r *Registry) Create(enabled func(string) bool) []Check {
	names := r.Enabled(enabled)
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Check, 0, len(names))
	for _, name := range names {
		out = append(out, r.factories[name]())
	}
	return out
}

// moduleRegistry tags registrations with the module name.
type moduleRegistry struct {
	r      *Registry
	module string
}

// ModuleRegistry is what a Module sees while registering.
type ModuleRegistry interface {
	Add(name string, f Factory) error
}

func (m *moduleRegistry) Add(name string, f Factory) error {
	return m.r.add(m.module, name, f)
}
