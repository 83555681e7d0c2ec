package lazy

import (
	"go.uber.org/multierr"
)

// Mode is the per-task deferred-execution context. It owns the scope nesting
// depth and the routing flags consulted by dispatch, replacing what a
// thread-local switch would be in a thread-based runtime.
//
// A Mode must only be used by the goroutine that created it; it has no
// internal synchronization. Enter and Exit must pair in strict LIFO order,
// the same discipline as any scoped resource.
type Mode struct {
	rt *Runtime

	depth     int
	deferOps  bool // route-to-deferred
	exclusion int  // suppresses the stale-interception path while > 0
}

// Active reports whether the task is currently inside the deferred mode.
// The rest of the runtime keys behavior changes off this.
func (m *Mode) Active() bool {
	return m.deferOps
}

// Depth returns the current scope nesting depth.
func (m *Mode) Depth() int {
	return m.depth
}

// increment returns the depth prior to incrementing, so the outermost entry
// in a nesting observes 0.
func (m *Mode) increment() int {
	prior := m.depth
	m.depth++
	return prior
}

// decrement returns the new depth, so the outermost exit observes 0.
// Decrementing past zero is the caller's bug, not a recoverable state.
func (m *Mode) decrement() int {
	if m.depth == 0 {
		panic(contractViolation("Mode.Exit", "attempting to exit a deferred mode without entering"))
	}
	m.depth--
	return m.depth
}

// Enter begins (or nests) a deferred-mode scope. Nested entries are no-ops
// beyond the depth bump: mode scopes applied to small regions compose inside
// larger ones, and only the outermost boundary changes routing behavior.
func (m *Mode) Enter(device Device) {
	if m.increment() == 0 {
		m.deferOps = true
		for _, obs := range m.rt.observers {
			obs.OnEnter(device)
		}
	}
}

// Exit ends a deferred-mode scope. The outermost exit clears the deferred
// routing flag and forces submission of all deferred work recorded for the
// given device: wait=true guarantees everything is submitted before Exit
// returns, without blocking on device-side completion. Results of values
// live during the mode are then retrievable through the executor.
//
// Exit without a matching Enter panics with a *ContractError.
func (m *Mode) Exit(device Device) error {
	if m.decrement() != 0 {
		return nil
	}

	m.deferOps = false
	for _, obs := range m.rt.observers {
		obs.OnExit(device)
	}

	backendDev, err := m.rt.backend.DeviceFromGeneric(device)
	if err != nil {
		return err
	}

	err = m.rt.executor.SyncLiveValuesGraph(backendDev, []string{backendDev.String()}, true)
	for _, obs := range m.rt.observers {
		obs.OnSync(backendDev, err)
	}
	return err
}

// Scoped runs fn inside a deferred-mode scope, exiting on every path
// including panics. Errors from fn and from the exit-time sync are joined.
func (m *Mode) Scoped(device Device, fn func() error) (err error) {
	m.Enter(device)
	defer func() {
		err = multierr.Append(err, m.Exit(device))
	}()
	return fn()
}

// excludeStale suppresses the stale-interception routing path until the
// returned release function runs. Releasing twice is harmless. The
// interceptor holds an exclusion while forwarding to the eager fallback so
// the materialization calls cannot re-trigger interception.
func (m *Mode) excludeStale() func() {
	m.exclusion++
	released := false
	return func() {
		if released {
			return
		}
		released = true
		m.exclusion--
	}
}

func (m *Mode) staleExcluded() bool {
	return m.exclusion > 0
}
