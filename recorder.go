package lazy

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// graphNode is one recorded deferred operation: its operands as dispatched
// and the handles its results resolve through after a sync.
type graphNode struct {
	id   uint64
	op   string
	args []Value
	outs []uint64
	dev  string
}

// Recorder is the reference in-memory graph executor. Dispatched operations
// inside the mode are recorded as graph nodes queued per backend device;
// SyncLiveValuesGraph submits every queued node for the requested devices and
// publishes the results, after which live deferred values resolve through
// Materialize.
//
// Recording and sync may be driven by many tasks; the queue and result cache
// are the only cross-task shared state and are locked accordingly.
type Recorder struct {
	backend Backend
	kernels *KernelTable

	nextID  atomic.Uint64
	mu      sync.Mutex
	pending map[string][]*graphNode
	results resultCache[*Eager]
}

// NewRecorder creates a recorder executing recorded nodes with the given
// kernel table. The backend canonicalizes operand devices into queue keys.
func NewRecorder(backend Backend, kernels *KernelTable) *Recorder {
	return &Recorder{
		backend: backend,
		kernels: kernels,
		pending: make(map[string][]*graphNode),
	}
}

// WrapEager implements GraphExecutor. The returned deferred value has the
// eager payload as its already-resolved result, so no sync is needed before
// it can be materialized.
func (r *Recorder) WrapEager(v *Eager, device Device) *Deferred {
	id := r.nextID.Add(1)
	r.results.Store(id, v)
	return &Deferred{dev: device, id: id}
}

// Record implements OpRecorder: it serves the deferred routing path by
// recording the operation as a graph node and replacing the operand stack
// with deferred handles for the declared results.
func (r *Recorder) Record(m *Mode, op *Op) error {
	ent, ok := r.kernels.lookup(op.Name)
	if !ok {
		return fmt.Errorf("no kernel registered for op %q", op.Name)
	}
	if len(op.Stack) == 0 {
		return fmt.Errorf("op %q dispatched with an empty stack", op.Name)
	}

	device := op.Stack[0].Device()
	backendDev, err := r.backend.DeviceFromGeneric(device)
	if err != nil {
		return err
	}

	node := &graphNode{
		id:   r.nextID.Add(1),
		op:   op.Name,
		args: append([]Value(nil), op.Stack...),
		outs: make([]uint64, ent.outs),
		dev:  backendDev.String(),
	}

	results := make([]Value, ent.outs)
	for i := range results {
		id := r.nextID.Add(1)
		node.outs[i] = id
		results[i] = &Deferred{dev: device, id: id}
	}

	r.mu.Lock()
	r.pending[node.dev] = append(r.pending[node.dev], node)
	r.mu.Unlock()

	op.Stack = results
	return nil
}

// SyncLiveValuesGraph implements GraphExecutor. All queued nodes for the
// device set are submitted in recorded order and their results published.
// The reference substrate executes at submission time, so wait=true's
// submit-complete guarantee holds trivially; there is still no notion of
// blocking on device-side completion here.
func (r *Recorder) SyncLiveValuesGraph(primary BackendDevice, devices []string, wait bool) error {
	keys := devices
	if len(keys) == 0 {
		keys = []string{primary.String()}
	}

	r.mu.Lock()
	var nodes []*graphNode
	for _, key := range keys {
		nodes = append(nodes, r.pending[key]...)
		delete(r.pending, key)
	}
	r.mu.Unlock()

	for _, node := range nodes {
		if err := r.execute(node); err != nil {
			return err
		}
	}
	return nil
}

func (r *Recorder) execute(node *graphNode) error {
	ent, ok := r.kernels.lookup(node.op)
	if !ok {
		return fmt.Errorf("no kernel registered for op %q", node.op)
	}

	args := make([]*Eager, len(node.args))
	for i, v := range node.args {
		switch v := v.(type) {
		case *Eager:
			args[i] = v
		case *Deferred:
			resolved, ok := r.results.Load(v.NodeID())
			if !ok {
				return &MaterializeError{
					NodeID:  v.NodeID(),
					Cause:   errors.New("operand not yet submitted"),
					Context: "sync",
				}
			}
			args[i] = resolved
		default:
			return fmt.Errorf("op %q: unsupported operand %T", node.op, v)
		}
	}

	outs, err := ent.fn(args)
	if err != nil {
		return fmt.Errorf("executing node %d (%s): %w", node.id, node.op, err)
	}
	if len(outs) != len(node.outs) {
		return fmt.Errorf("node %d (%s) produced %d results, declared %d",
			node.id, node.op, len(outs), len(node.outs))
	}

	for i, out := range outs {
		r.results.Store(node.outs[i], out)
	}
	return nil
}

// Materialize implements GraphExecutor. Deferred values whose node has not
// been synchronized yet cannot resolve; the value itself is never mutated.
func (r *Recorder) Materialize(v *Deferred) (*Eager, error) {
	resolved, ok := r.results.Load(v.NodeID())
	if !ok {
		return nil, &MaterializeError{
			NodeID:  v.NodeID(),
			Cause:   errors.New("value has not been synchronized"),
			Context: "materialize",
		}
	}
	return resolved, nil
}

// PendingCount returns the number of recorded-but-unsubmitted nodes for a
// backend device key.
func (r *Recorder) PendingCount(device string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending[device])
}
