package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Task store error kinds
	ErrValidation  = fmt.Errorf("validation failed")
	ErrNotFound    = fmt.Errorf("not found")
	ErrPersistence = fmt.Errorf("persistence failed")
	ErrLoad        = fmt.Errorf("load failed")

	// Storage errors
	ErrTaskNotFound       = fmt.Errorf("task not found")
	ErrCategoryNotFound   = fmt.Errorf("category not found")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrSimulatedFailure   = fmt.Errorf("simulated gateway failure")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
