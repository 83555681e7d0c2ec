package lazy

import "sync"

// resultCache holds materialized payloads keyed by graph node handle. It is
// the one piece of executor state shared across tasks, so access goes
// through sync.Map.
type resultCache[T any] struct {
	data sync.Map
}

func (c *resultCache[T]) Load(id uint64) (T, bool) {
	value, ok := c.data.Load(id)
	if !ok {
		var zero T
		return zero, false
	}
	return value.(T), true
}

func (c *resultCache[T]) Store(id uint64, value T) {
	c.data.Store(id, value)
}

func (c *resultCache[T]) Delete(id uint64) {
	c.data.Delete(id)
}

func (c *resultCache[T]) Size() int {
	count := 0
	c.data.Range(func(key, value any) bool {
		count++
		return true
	})
	return count
}
