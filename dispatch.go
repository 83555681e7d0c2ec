package lazy

import (
	"fmt"
	"sync"
)

// Key selects which routing path handles a dispatched operation.
type Key uint8

const (
	// KeyEager routes an operation to immediate kernel execution.
	KeyEager Key = iota
	// KeyDeferred routes an operation to the deferred-execution recorder.
	KeyDeferred
	// KeyStale routes an operation whose operands carry deferred values that
	// outlived the mode to the repairing interceptor.
	KeyStale
)

func (k Key) String() string {
	switch k {
	case KeyEager:
		return "eager"
	case KeyDeferred:
		return "deferred"
	case KeyStale:
		return "stale"
	default:
		return fmt.Sprintf("key(%d)", uint8(k))
	}
}

// Op is a boxed operation: a name and an ordered operand stack. Handlers
// replace the stack contents with the operation's results.
type Op struct {
	Name  string
	Stack []Value
}

// Handler executes an operation for the mode that dispatched it.
type Handler func(m *Mode, op *Op) error

// Registry maps routing keys to their fallback handlers. Exactly one handler
// may be registered per key; registration happens once at runtime
// construction and is never torn down.
type Registry struct {
	mu        sync.RWMutex
	fallbacks map[Key]Handler
}

// NewRegistry creates an empty dispatch registry.
func NewRegistry() *Registry {
	return &Registry{fallbacks: make(map[Key]Handler)}
}

// RegisterFallback binds a handler to a routing key. Registering a key twice
// is an error.
func (r *Registry) RegisterFallback(key Key, h Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.fallbacks[key]; exists {
		return fmt.Errorf("fallback handler already registered for %s key", key)
	}
	r.fallbacks[key] = h
	return nil
}

func (r *Registry) fallbackFor(key Key) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.fallbacks[key]
	return h, ok
}

// Dispatch routes an operation to the handler selected by the mode's routing
// flags and the operand set, then leaves the results on op.Stack.
func (rt *Runtime) Dispatch(m *Mode, op *Op) error {
	return rt.Redispatch(m, rt.keyFor(m, op), op)
}

// Redispatch forces an operation onto a specific routing path, bypassing key
// selection. The interceptor uses this to pass spurious firings back to the
// deferred path.
func (rt *Runtime) Redispatch(m *Mode, key Key, op *Op) error {
	h, ok := rt.registry.fallbackFor(key)
	if !ok {
		return fmt.Errorf("no fallback handler for %s key", key)
	}
	return h(m, op)
}

// keyFor computes the routing key for an operation. Inside the mode every
// operation routes to the deferred path, even on eager operands. Outside,
// operations touching deferred values route to the interceptor unless the
// mode currently excludes that path.
func (rt *Runtime) keyFor(m *Mode, op *Op) Key {
	if m.Active() {
		return KeyDeferred
	}
	if !m.staleExcluded() && hasDeferred(op.Stack) {
		return KeyStale
	}
	return KeyEager
}
