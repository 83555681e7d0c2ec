package lazy

import (
	"errors"

	"go.uber.org/zap"
)

// GraphExecutor is the deferred-execution collaborator: it records work for
// later submission, lifts eager values into the deferred domain, and resolves
// deferred values back into eager ones.
type GraphExecutor interface {
	// SyncLiveValuesGraph submits all outstanding deferred work touching the
	// given device set. wait=true means submit-complete, execution-pending:
	// everything is handed to the execution substrate before the call
	// returns, with no blocking on completion.
	SyncLiveValuesGraph(primary BackendDevice, devices []string, wait bool) error

	// WrapEager lifts an eager value into the deferred domain, bound to a
	// device, with the eager payload as its already-resolved result.
	WrapEager(v *Eager, device Device) *Deferred

	// Materialize resolves a deferred value into its eager payload. It does
	// not mutate the deferred value.
	Materialize(v *Deferred) (*Eager, error)
}

// OpRecorder is implemented by executors that can serve the deferred routing
// path directly, recording dispatched operations as graph nodes.
type OpRecorder interface {
	Record(m *Mode, op *Op) error
}

// EagerFallback is the repair collaborator: it materializes every deferred
// operand of an operation, executes it eagerly on the given device type, and
// leaves the results on the stack in the operation's declared order.
type EagerFallback interface {
	Run(op *Op, eager DeviceType) error
}

// Runtime ties the dispatch registry, backend, graph executor and eager
// fallback together. It owns the process-wide handler registrations; modes
// created from it carry the per-task state.
type Runtime struct {
	backend   Backend
	executor  GraphExecutor
	fallback  EagerFallback
	registry  *Registry
	observers []Observer
	logger    *zap.Logger
	pool      *opPool
}

// Option is a modifier for runtimes
type Option func(*Runtime)

// WithLogger returns an option that sets the runtime's logger. Defensive
// warnings are logged here; the default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(rt *Runtime) {
		rt.logger = l
	}
}

// WithObserver returns an option that registers an observer on the runtime
func WithObserver(obs Observer) Option {
	return func(rt *Runtime) {
		rt.observers = append(rt.observers, obs)
	}
}

// New creates a runtime and installs the fallback handlers: the deferred
// recorder (when the executor supports recording), immediate eager
// execution, and the stale-value interceptor. Registration happens exactly
// once, here, for the life of the runtime.
func New(backend Backend, executor GraphExecutor, fallback EagerFallback, opts ...Option) (*Runtime, error) {
	if backend == nil || executor == nil || fallback == nil {
		return nil, errors.New("backend, executor and fallback are required")
	}

	rt := &Runtime{
		backend:  backend,
		executor: executor,
		fallback: fallback,
		registry: NewRegistry(),
		logger:   zap.NewNop(),
		pool:     newOpPool(),
	}

	for _, opt := range opts {
		opt(rt)
	}

	if err := rt.registry.RegisterFallback(KeyEager, rt.runEager); err != nil {
		return nil, err
	}
	if rec, ok := executor.(OpRecorder); ok {
		if err := rt.registry.RegisterFallback(KeyDeferred, rec.Record); err != nil {
			return nil, err
		}
	}
	if err := rt.registry.RegisterFallback(KeyStale, rt.interceptStale); err != nil {
		return nil, err
	}

	return rt, nil
}

// NewMode creates a fresh per-task execution context. One mode per
// goroutine; modes are not safe for concurrent use.
func (rt *Runtime) NewMode() *Mode {
	return &Mode{rt: rt}
}

// Logger returns the runtime's logger.
func (rt *Runtime) Logger() *zap.Logger {
	return rt.logger
}

func (rt *Runtime) runEager(m *Mode, op *Op) error {
	return rt.fallback.Run(op, rt.backend.EagerDeviceType())
}
