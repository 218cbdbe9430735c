package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateInstance is returned when a target already has an instance.
	ErrDuplicateInstance = errors.New("instance already exists")
	// ErrNotFound is returned when no instance is bound to a target.
	ErrNotFound = errors.New("instance not found")
)

// DuplicateInstanceError names the target that is already taken.
type DuplicateInstanceError struct {
	Target string
}

func (e *DuplicateInstanceError) Error() string {
	return fmt.Sprintf("map instance for target %q already exists", e.Target)
}

func (e *DuplicateInstanceError) Is(target error) bool { return target == ErrDuplicateInstance }

// NotFoundError names the target that has no instance.
type NotFoundError struct {
	Target string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no map instance for target %q", e.Target)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
