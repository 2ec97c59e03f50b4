package graph

import "sync"

// ModuleHandle is an optional shared helper a node type may require before
// it can initialize — for example a GPU context. The engine only requires
// that it can be lazily initialized and is safe to share across every node
// instance that references it.
type ModuleHandle interface {
	// EnsureInitialized performs one-time setup, idempotently. The engine
	// calls it once per Acquire before handing the handle to a node type's
	// Init.
	EnsureInitialized() error
}

// ModuleRegistry owns named ModuleHandle instances and refcounts them
// across the node instances that reference them: modules are acquired by
// name and released when the last referencing node is destroyed.
type ModuleRegistry struct {
	mu sync.Mutex
	byName map[string]ModuleHandle
	refs map[string]int
}

// NewModuleRegistry creates an empty module registry.
func NewModuleRegistry() *ModuleRegistry {
	return &ModuleRegistry{
		byName: make(map[string]ModuleHandle),
		refs: make(map[string]int),
	}
}

// Register associates a name with a module handle. Registering the same
// name twice replaces the handle only if its current refcount is zero.
func (r *ModuleRegistry) Register(name string, handle ModuleHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.refs[name] > 0 {
		return
	}
	r.byName[name] = handle
}

// Acquire looks up the named module, ensures it is initialized, and
// increments its refcount. It returns an error if no module is registered
// under that name, or if EnsureInitialized fails — either failure rolls
// the node creation back.
func (r *ModuleRegistry) Acquire(name string) (ModuleHandle, error) {
	r.mu.Lock()
	handle, ok := r.byName[name]
	r.mu.Unlock()
	if !ok {
		return nil, &BadConfigError{Message: "no module registered under name: " + name}
	}
	if err := handle.EnsureInitialized(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.refs[name]++
	r.mu.Unlock()
	return handle, nil
}

// Release decrements the named module's refcount. A registry never forces
// teardown of a ModuleHandle itself (it has no Close/Shutdown contract);
// it only tracks how many live nodes still reference it, so Register can
// safely replace a handle once its refcount returns to zero.
func (r *ModuleRegistry) Release(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.refs[name] > 0 {
		r.refs[name]--
	}
}

// RefCount returns the current refcount for the named module, for tests
// and diagnostics.
func (r *ModuleRegistry) RefCount(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refs[name]
}
