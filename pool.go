package lazy

import "sync"

// opPool pools Op boxes and operand stacks for dispatch-heavy callers
type opPool struct {
	ops    sync.Pool
	stacks sync.Pool

	metrics PoolMetrics
}

// PoolMetrics tracks pool usage statistics
type PoolMetrics struct {
	mu          sync.RWMutex
	opHits      uint64
	opMisses    uint64
	stackHits   uint64
	stackMisses uint64
}

// OpHits returns how many Op acquisitions were served from the pool.
func (m *PoolMetrics) OpHits() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.opHits
}

// OpMisses returns how many Op acquisitions allocated fresh boxes.
func (m *PoolMetrics) OpMisses() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.opMisses
}

func newOpPool() *opPool {
	return &opPool{
		ops: sync.Pool{
			New: func() any {
				return &Op{}
			},
		},
		stacks: sync.Pool{
			New: func() any {
				return make([]Value, 0, 8) // Pre-allocate capacity
			},
		},
	}
}

func (p *opPool) acquire(name string, args []Value) *Op {
	op, ok := p.ops.Get().(*Op)
	if !ok {
		op = &Op{}
	}

	stack, ok := p.stacks.Get().([]Value)
	if ok {
		stack = stack[:0]
		p.metrics.mu.Lock()
		p.metrics.stackHits++
		p.metrics.mu.Unlock()
	} else {
		stack = make([]Value, 0, 8)
		p.metrics.mu.Lock()
		p.metrics.stackMisses++
		p.metrics.mu.Unlock()
	}

	op.Name = name
	op.Stack = append(stack, args...)

	p.metrics.mu.Lock()
	p.metrics.opHits++
	p.metrics.mu.Unlock()

	return op
}

func (p *opPool) release(op *Op) {
	if op == nil {
		return
	}

	stack := op.Stack[:0]
	op.Name = ""
	op.Stack = nil

	p.stacks.Put(stack)
	p.ops.Put(op)
}

// AcquireOp gets a pooled Op box loaded with the given operands. Callers that
// dispatch in a loop pair it with ReleaseOp to keep stack allocations flat.
func (rt *Runtime) AcquireOp(name string, args ...Value) *Op {
	return rt.pool.acquire(name, args)
}

// ReleaseOp returns an Op box to the pool. The op and its stack must not be
// used afterwards.
func (rt *Runtime) ReleaseOp(op *Op) {
	rt.pool.release(op)
}

// Metrics returns the runtime's pool metrics.
func (rt *Runtime) Metrics() *PoolMetrics {
	return &rt.pool.metrics
}
