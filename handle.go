package lazy

// Handle provides typed access to a deferred value's result
type Handle[T any] struct {
	value    *Deferred
	executor GraphExecutor
}

// Access creates a typed handle over a deferred value
func Access[T any](rt *Runtime, v *Deferred) *Handle[T] {
	return &Handle[T]{
		value:    v,
		executor: rt.executor,
	}
}

// Get materializes the value and returns its payload
func (h *Handle[T]) Get() (T, error) {
	eager, err := h.executor.Materialize(h.value)
	if err != nil {
		var zero T
		return zero, err
	}
	return ValueAs[T](eager.Payload)
}

// Peek returns the payload only if the value has already been materialized
func (h *Handle[T]) Peek() (T, bool) {
	eager, err := h.executor.Materialize(h.value)
	if err != nil {
		var zero T
		return zero, false
	}
	typed, err := ValueAs[T](eager.Payload)
	if err != nil {
		var zero T
		return zero, false
	}
	return typed, true
}

// IsMaterialized checks if the value's result is currently retrievable
func (h *Handle[T]) IsMaterialized() bool {
	_, err := h.executor.Materialize(h.value)
	return err == nil
}

// Value returns the underlying deferred value
func (h *Handle[T]) Value() *Deferred {
	return h.value
}
