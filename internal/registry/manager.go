package registry

import "sync"

// DefaultContext is the registry context used when a pipeline has no name of
// its own.
const DefaultContext = "default"

// Manager owns the isolated specification registries, one per named context.
// A registry for one context never sees specifications registered under
// another.
type Manager struct {
	mutex    sync.Mutex
	contexts map[string]*SpecRegistry
}

// NewManager creates an empty registry manager.
func NewManager() *Manager {
	return &Manager{
		contexts: make(map[string]*SpecRegistry),
	}
}

// Context returns the registry for the given context name, creating it on
// first use. An empty name maps to DefaultContext.
func (m *Manager) Context(name string) *SpecRegistry {
	if name == "" {
		name = DefaultContext
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	reg, ok := m.contexts[name]
	if !ok {
		reg = NewSpecRegistry(name)
		m.contexts[name] = reg
	}
	return reg
}

// ClearContext discards the registry for a context, if present.
func (m *Manager) ClearContext(name string) {
	if name == "" {
		name = DefaultContext
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.contexts, name)
}

// Contexts returns the names of all live contexts.
func (m *Manager) Contexts() []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	names := make([]string, 0, len(m.contexts))
	for name := range m.contexts {
		names = append(names, name)
	}
	return names
}
