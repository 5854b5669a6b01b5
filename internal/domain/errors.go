package domain

import (
	"fmt"
	"strings"
)

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// FieldError describes one rejected field of a validated payload.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is a client error carrying the field level causes.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e ValidationError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "validation failed"
	}
	if len(e.Fields) == 0 {
		return msg
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return msg + ": " + strings.Join(parts, "; ")
}

// Is enables errors.Is matching on ValidationError.
func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	if ok {
		return true
	}
	_, ok = target.(*ValidationError)
	return ok
}

// ErrValidation is the sentinel error for rejected input.
var ErrValidation = ValidationError{}

// InternalError hides an unexpected failure behind a generic message.
type InternalError struct {
	Message string
	Cause   error
}

func (e InternalError) Error() string {
	return e.Message
}

func (e InternalError) Unwrap() error {
	return e.Cause
}

// Is enables errors.Is matching on InternalError.
func (e InternalError) Is(target error) bool {
	_, ok := target.(InternalError)
	if ok {
		return true
	}
	_, ok = target.(*InternalError)
	return ok
}

// ErrInternal is the sentinel error for wrapped internal failures.
var ErrInternal = InternalError{}

// ErrUnauthenticated is returned when no requester identity is attached to the request.
var ErrUnauthenticated = fmt.Errorf("unauthenticated")
