package project

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalid wraps every input validation failure.
	ErrInvalid = errors.New("invalid input")

	ErrTaskNotFound       = errors.New("task not found")
	ErrDependencyNotFound = errors.New("dependency not found")
	ErrGroupNotFound      = errors.New("group not found")

	ErrSelfDependency      = errors.New("cannot create self-dependency")
	ErrDuplicateDependency = errors.New("dependency already exists")
	// ErrWouldCycle is returned, joined with the *scheduler.CycleError, when
	// a new dependency would close a cycle.
	ErrWouldCycle = errors.New("dependency would create a cycle")
)

func notFound(kind error, id string) error {
	return fmt.Errorf("%w: %s", kind, id)
}

func invalid(issue error) error {
	return fmt.Errorf("%w: %w", ErrInvalid, issue)
}
