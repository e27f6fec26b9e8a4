package timesheet

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can tell user mistakes from backend faults.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuthorization Kind = "authorization"
	KindNotFound      Kind = "not_found"
	KindConflict      Kind = "conflict"
	KindPersistence   Kind = "persistence"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// PersistenceError wraps a failure reported by the data store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

var (
	ErrNothingToSubmit   = &ValidationError{Message: "no hours to submit"}
	ErrApprovedImmutable = &ValidationError{Message: "approved timesheets cannot be edited"}
	ErrReasonRequired    = &ValidationError{Field: "reason", Message: "rejection reason is required"}
	ErrNotPending        = &ConflictError{Message: "timesheet is no longer pending"}
	ErrNotAllowed        = &AuthorizationError{Message: "you are not allowed to act on this timesheet"}
	ErrAccessDenied      = &AuthorizationError{Message: "access denied"}
)

// Persistence wraps err as a PersistenceError unless it is already classified.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	if errors.As(err, &pe) || KindOf(err) != KindPersistence {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// KindOf reports the class of err. Unclassified errors count as persistence failures.
func KindOf(err error) Kind {
	var (
		ve *ValidationError
		ae *AuthorizationError
		ne *NotFoundError
		ce *ConflictError
	)
	switch {
	case errors.As(err, &ve):
		return KindValidation
	case errors.As(err, &ae):
		return KindAuthorization
	case errors.As(err, &ne):
		return KindNotFound
	case errors.As(err, &ce):
		return KindConflict
	}
	return KindPersistence
}
