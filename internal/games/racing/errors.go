package racing

import (
	"errors"
	"fmt"
)

var (
	// ErrControllerInvocation is matched by every controller failure.
	ErrControllerInvocation = errors.New("controller invocation failed")

	// ErrStateConsistency is matched when car, wall or entrant bookkeeping desyncs.
	ErrStateConsistency = errors.New("simulation state inconsistent")
)

// ControllerError reports which entrant's controller failed.
type ControllerError struct {
	ID  int
	Err error
}

func (e *ControllerError) Error() string {
	return fmt.Sprintf("entrant %d: %v: %v", e.ID, ErrControllerInvocation, e.Err)
}

func (e *ControllerError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrControllerInvocation) succeed.
func (e *ControllerError) Is(target error) bool {
	return target == ErrControllerInvocation
}

// StateError reports a lifecycle bug such as a duplicate or unknown identity.
type StateError struct {
	Op string
	ID int
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%v: %s (id %d)", ErrStateConsistency, e.Op, e.ID)
}

// Is makes errors.Is(err, ErrStateConsistency) succeed.
func (e *StateError) Is(target error) bool {
	return target == ErrStateConsistency
}
