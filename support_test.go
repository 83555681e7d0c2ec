package lazy

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeExecutor records sync calls and wraps/materializes through a plain map.
type fakeExecutor struct {
	nextID  atomic.Uint64
	results map[uint64]*Eager
	syncs   []syncCall
	syncErr error
}

type syncCall struct {
	primary BackendDevice
	devices []string
	wait    bool
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{results: make(map[uint64]*Eager)}
}

func (f *fakeExecutor) SyncLiveValuesGraph(primary BackendDevice, devices []string, wait bool) error {
	f.syncs = append(f.syncs, syncCall{primary: primary, devices: devices, wait: wait})
	return f.syncErr
}

func (f *fakeExecutor) WrapEager(v *Eager, device Device) *Deferred {
	id := f.nextID.Add(1)
	f.results[id] = v
	return &Deferred{dev: device, id: id}
}

func (f *fakeExecutor) Materialize(v *Deferred) (*Eager, error) {
	eager, ok := f.results[v.NodeID()]
	if !ok {
		return nil, &MaterializeError{NodeID: v.NodeID(), Context: "materialize"}
	}
	return eager, nil
}

// fakeFallback records the ops it is asked to repair.
type fakeFallback struct {
	runs []string
	err  error
}

func (f *fakeFallback) Run(op *Op, eager DeviceType) error {
	f.runs = append(f.runs, op.Name)
	return f.err
}

// transitionObserver counts outermost transitions and interceptions.
type transitionObserver struct {
	BaseObserver
	enters     int
	exits      int
	syncs      int
	intercepts []bool // inMode per firing
}

func newTransitionObserver() *transitionObserver {
	return &transitionObserver{BaseObserver: NewBaseObserver("transitions")}
}

func (o *transitionObserver) OnEnter(device Device)                { o.enters++ }
func (o *transitionObserver) OnExit(device Device)                 { o.exits++ }
func (o *transitionObserver) OnSync(device BackendDevice, e error) { o.syncs++ }
func (o *transitionObserver) OnIntercept(op *Op, inMode bool) {
	o.intercepts = append(o.intercepts, inMode)
}

func intKernel(outs int, fn func(args []int) []int) Kernel {
	return func(args []*Eager) ([]*Eager, error) {
		ints := make([]int, len(args))
		for i, a := range args {
			v, err := ValueAs[int](a.Payload)
			if err != nil {
				return nil, err
			}
			ints[i] = v
		}
		results := fn(ints)
		if len(results) != outs {
			return nil, fmt.Errorf("expected %d results, got %d", outs, len(results))
		}
		eagers := make([]*Eager, len(results))
		for i, r := range results {
			eagers[i] = NewEager(args[0].Dev, r)
		}
		return eagers, nil
	}
}

func newTestKernels(t *testing.T) *KernelTable {
	t.Helper()

	kernels := NewKernelTable()
	require.NoError(t, kernels.Register("add", 1, intKernel(1, func(args []int) []int {
		sum := 0
		for _, a := range args {
			sum += a
		}
		return []int{sum}
	})))
	require.NoError(t, kernels.Register("mul", 1, intKernel(1, func(args []int) []int {
		product := 1
		for _, a := range args {
			product *= a
		}
		return []int{product}
	})))
	require.NoError(t, kernels.Register("divmod", 2, intKernel(2, func(args []int) []int {
		return []int{args[0] / args[1], args[0] % args[1]}
	})))
	return kernels
}

// newTestRuntime builds a runtime over the reference recorder and fallback.
func newTestRuntime(t *testing.T, opts ...Option) (*Runtime, *Recorder) {
	t.Helper()

	kernels := newTestKernels(t)
	backend := NewHostBackend()
	recorder := NewRecorder(backend, kernels)
	rt, err := New(backend, recorder, NewKernelFallback(kernels, recorder), opts...)
	require.NoError(t, err)
	return rt, recorder
}

// newFakeRuntime builds a runtime over fakes, for mode transition tests.
func newFakeRuntime(t *testing.T, opts ...Option) (*Runtime, *fakeExecutor, *fakeFallback) {
	t.Helper()

	executor := newFakeExecutor()
	fallback := &fakeFallback{}
	rt, err := New(NewHostBackend(), executor, fallback, opts...)
	require.NoError(t, err)
	return rt, executor, fallback
}

func requireContractPanic(t *testing.T, op string, fn func()) {
	t.Helper()

	defer func() {
		t.Helper()
		recovered := recover()
		require.NotNil(t, recovered, "expected a contract violation panic")
		cerr, ok := recovered.(*ContractError)
		require.True(t, ok, "panic value should be *ContractError, got %T", recovered)
		require.Equal(t, op, cerr.Op)
		require.NotEmpty(t, cerr.StackTrace)
	}()
	fn()
}
