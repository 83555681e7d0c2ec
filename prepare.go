package lazy

import "go.uber.org/zap"

// PrepareForKernel makes a value visible to kernels written only against the
// deferred representation. Inside the mode, eager values are lifted into the
// deferred domain bound to deferredDevice, with the eager payload as their
// already-resolved result; already-deferred values pass through with a
// warning. Outside the mode the function is a no-op that asserts its input
// is already deferred, since it is only meaningful on the deferred kernel
// preparation path.
//
// Precondition violations panic with a *ContractError.
func (m *Mode) PrepareForKernel(v Value, deferredDevice Device) Value {
	if !m.Active() {
		if _, ok := v.(*Deferred); !ok {
			panic(contractViolation("Mode.PrepareForKernel",
				"called outside deferred mode on a non-deferred value on %s", v.Device()))
		}
		return v
	}

	if d, ok := v.(*Deferred); ok {
		m.rt.logger.Warn("PrepareForKernel skip wrap for already-deferred value",
			zap.Stringer("device", d.Device()))
		// Single-device assumption: deferred values carry no explicit index.
		if d.Device().HasIndex() {
			panic(contractViolation("Mode.PrepareForKernel",
				"deferred value carries explicit device index on %s", d.Device()))
		}
		return d
	}

	eager := v.(*Eager)
	m.rt.logger.Warn("PrepareForKernel wrapping eager value",
		zap.Stringer("from", eager.Device()),
		zap.Stringer("to", deferredDevice))
	return m.rt.executor.WrapEager(eager, deferredDevice)
}
