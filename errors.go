package lazy

import (
	"fmt"
	"runtime/debug"
)

// ContractError reports a programmer contract violation: exiting a mode that
// was never entered, or handing a value to a path whose preconditions forbid
// its state. It is delivered by panic and is not meant to be recovered from.
type ContractError struct {
	Op         string
	Reason     string
	StackTrace []byte
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("contract violation in %s: %s", e.Op, e.Reason)
}

func contractViolation(op, format string, args ...any) *ContractError {
	return &ContractError{
		Op:         op,
		Reason:     fmt.Sprintf(format, args...),
		StackTrace: debug.Stack(),
	}
}

// MaterializeError reports a failure to resolve a deferred value into its
// eager payload. Unlike ContractError it is an ordinary recoverable error.
type MaterializeError struct {
	NodeID  uint64
	Cause   error
	Context string
}

func (e *MaterializeError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("materialize error for node %d during %s: %v", e.NodeID, e.Context, e.Cause)
	}
	return fmt.Sprintf("materialize error for node %d: %v", e.NodeID, e.Cause)
}

func (e *MaterializeError) Unwrap() error {
	return e.Cause
}

// ValueAs performs safe type assertion on an eager payload with a proper error
func ValueAs[T any](value any) (T, error) {
	if value == nil {
		var zero T
		return zero, nil
	}

	typed, ok := value.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("type assertion error: expected %T, got %T (value: %v)", zero, value, value)
	}

	return typed, nil
}
