package records

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable indicates a backend failure on a store call.
	ErrStoreUnavailable = errors.New("records: store unavailable")
	// ErrNotFound indicates that no record exists for the requested id.
	ErrNotFound = errors.New("records: not found")
	// ErrValidation indicates that a required field is missing or malformed.
	ErrValidation = errors.New("records: validation failure")
)

// ServiceError carries a dotted operation code alongside the error kind and its cause.
type ServiceError struct {
	code string
	kind error
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

// Unwrap exposes both the error kind and the underlying cause to errors.Is and errors.As.
func (e *ServiceError) Unwrap() []error {
	unwrapped := make([]error, 0, 2)
	if e.kind != nil {
		unwrapped = append(unwrapped, e.kind)
	}
	if e.err != nil {
		unwrapped = append(unwrapped, e.err)
	}
	return unwrapped
}

// Code returns the operation code, for example records.create_symptom.query_failed.
func (e *ServiceError) Code() string {
	return e.code
}

func newServiceError(operation, reason string, kind, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, kind: kind, err: cause}
}
