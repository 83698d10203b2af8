package backend

import (
	"sync"
)

// Factory creates a new backend instance.
type Factory func() Backend

// registry holds registered backends and the memoized, initialized
// instances handed out by Get and Default.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)
	instances  = make(map[string]Backend)
	// Priority order for backend selection (first available wins).
	// GL41 > Null (GL41 needs a context, Null always works).
	backendPriority = []string{BackendGL41, BackendNull}
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it will be
// replaced and its memoized instance dropped.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
	delete(instances, name)
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
	delete(instances, name)
}

// Available returns a list of registered backend names.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Get returns the shared, initialized backend instance for name.
// Returns nil if the backend is not registered or fails to initialize.
func Get(name string) Backend {
	registryMu.Lock()
	defer registryMu.Unlock()
	return get(name)
}

// get is Get with registryMu already held.
func get(name string) Backend {
	if b, ok := instances[name]; ok {
		return b
	}
	factory, ok := backends[name]
	if !ok {
		return nil
	}
	b := factory()
	if b == nil {
		return nil
	}
	if err := b.Init(); err != nil {
		return nil
	}
	instances[name] = b
	return b
}

// Default returns the best available backend based on priority.
// Priority order: gl41 > null.
// Returns nil if no backends are registered.
func Default() Backend {
	registryMu.Lock()
	defer registryMu.Unlock()

	for _, name := range backendPriority {
		if b := get(name); b != nil {
			return b
		}
	}

	// Fallback: first registered backend that initializes.
	for name := range backends {
		if b := get(name); b != nil {
			return b
		}
	}

	return nil
}

// MustDefault returns the default backend or panics.
func MustDefault() Backend {
	b := Default()
	if b == nil {
		panic("backend: no backend available")
	}
	return b
}
