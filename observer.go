package lazy

// Observer provides hooks into mode transitions and interception. Hooks fire
// only on outermost transitions, the points where routing behavior changes.
type Observer interface {
	// Name returns the observer's name
	Name() string

	// OnEnter fires when a task enters the deferred mode (outermost entry)
	OnEnter(device Device)

	// OnExit fires when a task leaves the deferred mode (outermost exit),
	// before the sync trigger runs
	OnExit(device Device)

	// OnSync fires after the exit-time graph sync, with its outcome
	OnSync(device BackendDevice, err error)

	// OnIntercept fires when the stale-value interceptor handles an
	// operation; inMode marks spurious firings inside the mode
	OnIntercept(op *Op, inMode bool)
}

// BaseObserver provides default implementations for Observer methods
type BaseObserver struct {
	name string
}

// NewBaseObserver creates a new base observer with the given name
func NewBaseObserver(name string) BaseObserver {
	return BaseObserver{name: name}
}

func (o *BaseObserver) Name() string {
	return o.name
}

func (o *BaseObserver) OnEnter(device Device) {
}

func (o *BaseObserver) OnExit(device Device) {
}

func (o *BaseObserver) OnSync(device BackendDevice, err error) {
}

func (o *BaseObserver) OnIntercept(op *Op, inMode bool) {
}
