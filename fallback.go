package lazy

import (
	"fmt"
	"sync"
)

// Kernel is a concrete eager implementation of an operation. Kernels only
// understand eager values; lifting and materialization happen around them.
type Kernel func(args []*Eager) ([]*Eager, error)

type kernelEntry struct {
	fn   Kernel
	outs int
}

// KernelTable maps operation names to their eager kernels together with each
// operation's declared result count. The deferred recorder and the eager
// fallback share one table so both paths execute identical semantics.
type KernelTable struct {
	mu      sync.RWMutex
	entries map[string]kernelEntry
}

// NewKernelTable creates an empty kernel table.
func NewKernelTable() *KernelTable {
	return &KernelTable{entries: make(map[string]kernelEntry)}
}

// Register binds an operation name to a kernel declaring outs results.
// Registering a name twice is an error.
func (t *KernelTable) Register(name string, outs int, fn Kernel) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.entries[name]; exists {
		return fmt.Errorf("kernel already registered for op %q", name)
	}
	if outs < 1 {
		return fmt.Errorf("op %q must declare at least one result", name)
	}
	t.entries[name] = kernelEntry{fn: fn, outs: outs}
	return nil
}

func (t *KernelTable) lookup(name string) (kernelEntry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ent, ok := t.entries[name]
	return ent, ok
}

// KernelFallback is the reference eager-fallback adapter: it materializes
// every deferred operand through the graph executor, runs the kernel on the
// eager operands, and pushes the results back in declared order. The
// original deferred operands are left untouched.
type KernelFallback struct {
	kernels  *KernelTable
	executor GraphExecutor
}

// NewKernelFallback creates a fallback adapter over a kernel table and the
// executor used to materialize deferred operands.
func NewKernelFallback(kernels *KernelTable, executor GraphExecutor) *KernelFallback {
	return &KernelFallback{kernels: kernels, executor: executor}
}

// Run implements EagerFallback.
func (f *KernelFallback) Run(op *Op, eager DeviceType) error {
	ent, ok := f.kernels.lookup(op.Name)
	if !ok {
		return fmt.Errorf("no kernel registered for op %q", op.Name)
	}

	args := make([]*Eager, len(op.Stack))
	for i, v := range op.Stack {
		switch v := v.(type) {
		case *Eager:
			args[i] = v
		case *Deferred:
			resolved, err := f.executor.Materialize(v)
			if err != nil {
				return &MaterializeError{NodeID: v.NodeID(), Cause: err, Context: "eager fallback"}
			}
			args[i] = resolved
		default:
			return fmt.Errorf("op %q: unsupported operand %T", op.Name, v)
		}
	}

	outs, err := ent.fn(args)
	if err != nil {
		return fmt.Errorf("running kernel %q: %w", op.Name, err)
	}
	if len(outs) != ent.outs {
		return fmt.Errorf("kernel %q produced %d results, declared %d", op.Name, len(outs), ent.outs)
	}

	results := make([]Value, len(outs))
	for i, out := range outs {
		if out.Dev.Type == "" {
			out.Dev = NewDevice(eager)
		}
		results[i] = out
	}
	op.Stack = results
	return nil
}
