package lazy

import "go.uber.org/zap"

// interceptStale is the fallback handler for the stale routing key. It makes
// deferred values that are still alive after a mode exit usable by eager
// code: the deferred operands are materialized through the eager fallback and
// the operation re-executes on the results.
//
// The operands themselves are never mutated, so a deferred value repaired
// here needs the same repair the next time it is used.
func (rt *Runtime) interceptStale(m *Mode, op *Op) error {
	if m.Active() {
		// Spurious firing: the deferred path should have claimed this op.
		// Pass it through unchanged; the target key differs from the stale
		// key, so this cannot loop.
		rt.logger.Warn("stale interceptor is a no-op inside deferred mode",
			zap.String("op", op.Name))
		for _, obs := range rt.observers {
			obs.OnIntercept(op, true)
		}
		return rt.Redispatch(m, KeyDeferred, op)
	}

	rt.logger.Warn("stale interceptor is kicking in outside deferred mode",
		zap.String("op", op.Name))
	for _, obs := range rt.observers {
		obs.OnIntercept(op, false)
	}

	// The fallback's materialization calls dispatch on deferred operands;
	// excluding the stale key keeps them from re-entering this handler.
	// Released on every path, including fallback errors.
	release := m.excludeStale()
	defer release()

	return rt.fallback.Run(op, rt.backend.EagerDeviceType())
}
