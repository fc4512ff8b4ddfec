package models

import "errors"

// FieldError is a validation failure attributed to a single request field.
// Validation failures are response data, not Go errors crossing boundaries.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// InfraError marks a failure of an external collaborator (schedule store,
// cache backend). Callers may retry with backoff; the engine never caches
// such failures.
type InfraError struct {
	Op  string
	Err error
}

func (e *InfraError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *InfraError) Unwrap() error {
	return e.Err
}

func NewInfraError(op string, err error) *InfraError {
	return &InfraError{Op: op, Err: err}
}

// IsInfra reports whether err is, or wraps, an InfraError.
func IsInfra(err error) bool {
	var ie *InfraError
	return errors.As(err, &ie)
}
