package client

import (
	"errors"
	"fmt"
)

// Validation failures. The messages are the ones shown to the user.
var (
	ErrEmptyJobDescription = errors.New("Please enter job requirements.")
	ErrNoResumes           = errors.New("Please upload at least one resume.")
)

// ValidationError is returned before any network activity when the
// request is incomplete
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ApplicationError is a failure reported by the evaluation service in the
// "error" field of its response
type ApplicationError struct {
	Message    string
	StatusCode int
}

func (e *ApplicationError) Error() string {
	return e.Message
}

// TransportError covers network failures, unexpected statuses and bodies
// that are not valid JSON
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
