package action

import (
	"errors"
	"fmt"
)

var (
	ErrConflictingEdges = errors.New("button pressed and released in the same tick")
	ErrUnmappedAction   = errors.New("action has no key mapping")
	ErrUnmappedAbility  = errors.New("ability key has no action mapping")
)

// FaultError is a contract breach between the engine and its collaborators.
// The tick that produced it is abandoned; the host decides whether to stop.
type FaultError struct {
	Err    error
	Action string
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("fatal: %v: %q", e.Err, e.Action)
}

func (e *FaultError) Unwrap() error {
	return e.Err
}

func IsFatal(err error) bool {
	var f *FaultError
	return errors.As(err, &f)
}
