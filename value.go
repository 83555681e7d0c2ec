package lazy

// Value is a runtime value flowing through dispatch. It is either an Eager
// value (computed immediately) or a Deferred value (recorded into the graph
// executor, not necessarily computed yet).
type Value interface {
	Device() Device

	sealedValue()
}

// Eager is an ordinary value executing outside the deferred domain.
type Eager struct {
	Dev     Device
	Payload any
}

// NewEager creates an eager value bound to a device.
func NewEager(dev Device, payload any) *Eager {
	return &Eager{Dev: dev, Payload: payload}
}

func (e *Eager) Device() Device { return e.Dev }

func (e *Eager) sealedValue() {}

// Deferred is a value tagged as belonging to the deferred-execution domain.
// It holds only a device and a graph node handle; its payload is retrievable
// through the executor once the node has been synchronized. Deferred values
// are created by Mode.PrepareForKernel or by the deferred-path recorder,
// never by callers directly.
type Deferred struct {
	dev Device
	id  uint64
}

func (d *Deferred) Device() Device { return d.dev }

// NodeID returns the executor-assigned handle for this value.
func (d *Deferred) NodeID() uint64 { return d.id }

func (d *Deferred) sealedValue() {}

func hasDeferred(stack []Value) bool {
	for _, v := range stack {
		if _, ok := v.(*Deferred); ok {
			return true
		}
	}
	return false
}
