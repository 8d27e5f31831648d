package guidedaac

import "errors"

// ConstructionError describes a failure to construct a GuidedAAC
// agent. Op names the construction stage that failed, and Err holds
// the original cause, which stays recoverable through errors.Unwrap,
// errors.Is, and errors.As.
type ConstructionError struct {
	Op  string
	Err error
}

// Error implements the error interface
func (e *ConstructionError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the cause of the construction failure
func (e *ConstructionError) Unwrap() error {
	return e.Err
}

// IsConstructionError returns whether err is or wraps a
// ConstructionError
func IsConstructionError(err error) bool {
	var cErr *ConstructionError
	return errors.As(err, &cErr)
}
