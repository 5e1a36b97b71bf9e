package tasks

import (
	"fmt"

	"github.com/desertthunder/taskx/internal/shared"
)

// Error kinds returned by [Store] operations.
var (
	ErrValidation  = shared.ErrValidation
	ErrNotFound    = shared.ErrNotFound
	ErrPersistence = shared.ErrPersistence
	ErrLoad        = shared.ErrLoad
)

// OpError describes a failed store operation.
type OpError struct {
	Kind error  // one of ErrValidation, ErrNotFound, ErrPersistence, ErrLoad
	Op   string // operation name, e.g. "update"
	ID   string // task id, empty when the operation has none
	Err  error  // underlying cause
}

func (e *OpError) Error() string {
	subject := e.Op
	if e.ID != "" {
		subject = fmt.Sprintf("%s %s", e.Op, e.ID)
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", subject, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", subject, e.Kind, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// Is matches the error kind so callers can use errors.Is(err, ErrNotFound).
func (e *OpError) Is(target error) bool { return target == e.Kind }

func validationError(op, id string, err error) error {
	return &OpError{Kind: ErrValidation, Op: op, ID: id, Err: err}
}

func notFoundError(op, id string) error {
	return &OpError{Kind: ErrNotFound, Op: op, ID: id, Err: shared.ErrTaskNotFound}
}

func persistenceError(op, id string, err error) error {
	return &OpError{Kind: ErrPersistence, Op: op, ID: id, Err: err}
}
