package instance

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingTarget is returned when an instance is created without a target.
	ErrMissingTarget = errors.New("missing map target")
	// ErrUnknownBehavior is matched by UnknownBehaviorError.
	ErrUnknownBehavior = errors.New("unknown behavior")
)

// UnknownBehaviorError reports a behavior name with no built-in.
type UnknownBehaviorError struct {
	Name string
}

func (e *UnknownBehaviorError) Error() string {
	return fmt.Sprintf("unknown behavior %q", e.Name)
}

// Is matches ErrUnknownBehavior.
func (e *UnknownBehaviorError) Is(target error) bool { return target == ErrUnknownBehavior }
