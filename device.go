package lazy

import "fmt"

// DeviceType identifies a class of compute device, e.g. "cpu" or "cuda".
type DeviceType string

// DeviceIndexUnset marks a device handle that carries no explicit index.
const DeviceIndexUnset = -1

// Device is the generic device handle passed around by callers. It is opaque
// to the mode machinery beyond a type/index check; the backend owns the
// canonical representation.
type Device struct {
	Type  DeviceType
	Index int
}

// NewDevice creates a device handle without an explicit index.
func NewDevice(t DeviceType) Device {
	return Device{Type: t, Index: DeviceIndexUnset}
}

// HasIndex reports whether the handle carries an explicit device index.
func (d Device) HasIndex() bool {
	return d.Index >= 0
}

func (d Device) String() string {
	if d.HasIndex() {
		return fmt.Sprintf("%s:%d", d.Type, d.Index)
	}
	return string(d.Type)
}

// BackendDevice is the backend-canonical device representation used by the
// graph executor. Its String form is the key under which deferred work is
// queued and synchronized.
type BackendDevice struct {
	Kind    string
	Ordinal int
}

func (b BackendDevice) String() string {
	return fmt.Sprintf("%s:%d", b.Kind, b.Ordinal)
}

// Backend converts generic device handles into the backend's canonical form
// and names the device type eager fallback execution should target.
type Backend interface {
	DeviceFromGeneric(Device) (BackendDevice, error)
	EagerDeviceType() DeviceType
}

// hostBackend is the reference single-host backend: every generic handle maps
// onto one ordinal per type, and eager execution targets the CPU.
type hostBackend struct{}

// NewHostBackend returns a backend for a single host device per type.
func NewHostBackend() Backend {
	return hostBackend{}
}

func (hostBackend) DeviceFromGeneric(d Device) (BackendDevice, error) {
	if d.Type == "" {
		return BackendDevice{}, fmt.Errorf("device has no type: %v", d)
	}
	ordinal := 0
	if d.HasIndex() {
		ordinal = d.Index
	}
	return BackendDevice{Kind: string(d.Type), Ordinal: ordinal}, nil
}

func (hostBackend) EagerDeviceType() DeviceType {
	return "cpu"
}
