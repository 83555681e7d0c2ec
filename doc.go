// Package lazy provides a scoped execution-mode controller for runtimes that
// can execute computations either immediately (eager) or by recording them
// for deferred, batched execution.
//
// # Overview
//
// Lazy organizes the mode machinery around three core concepts:
//
//  1. Modes: per-task execution contexts tracking scope nesting and routing
//  2. Dispatch: a registry of fallback handlers keyed by routing path
//  3. Values: eager payloads and deferred graph handles flowing through ops
//
// # Basic Usage
//
// Build a runtime from a backend, a graph executor and an eager fallback:
//
//	kernels := lazy.NewKernelTable()
//	kernels.Register("add", 1, addKernel)
//
//	backend := lazy.NewHostBackend()
//	recorder := lazy.NewRecorder(backend, kernels)
//	rt, err := lazy.New(backend, recorder, lazy.NewKernelFallback(kernels, recorder))
//
// Wrap a region of code in the deferred mode. Inside the scope every
// dispatched operation routes to the deferred recorder, even on eager
// operands; on leaving the scope all recorded work is submitted:
//
//	mode := rt.NewMode()
//	dev := lazy.NewDevice("cpu")
//
//	err := mode.Scoped(dev, func() error {
//	    op := rt.AcquireOp("add", mode.PrepareForKernel(x, dev), mode.PrepareForKernel(y, dev))
//	    defer rt.ReleaseOp(op)
//	    if err := rt.Dispatch(mode, op); err != nil {
//	        return err
//	    }
//	    sum = op.Stack[0]
//	    return nil
//	})
//
// # Nesting
//
// Mode scopes nest: small mode-scoped regions compose inside larger ones,
// and only the outermost Enter/Exit toggles routing behavior. The outermost
// exit forces submission of all deferred work for the device it was given,
// without blocking on device-side completion.
//
// # Stale values
//
// A deferred value that outlives its scope stays usable. Dispatching an
// operation on it outside the mode routes to the stale-value interceptor,
// which materializes the deferred operands through the eager fallback and
// re-executes the operation eagerly. The repair is per call: the deferred
// value itself is never rewritten.
//
// # Contracts
//
// Exiting a mode that was never entered, or preparing a non-deferred value
// for a kernel outside the mode, is a programmer error: both panic with a
// *ContractError rather than returning an error. Recoverable failures, such
// as materializing a value that was never synchronized, are returned as
// ordinary errors (*MaterializeError).
//
// # Concurrency
//
// A Mode belongs to one goroutine. Any number of goroutines may hold their
// own modes against one Runtime; the executor's work queues are the only
// shared state.
package lazy
