package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// ConflictError reports a store-level constraint violation: a duplicate
// unique value or a broken foreign key. The transaction has already been
// rolled back when it is returned.
type ConflictError struct {
	Err        error
	Constraint string
}

func NewConflictError(err error, constraint string) error {
	return &ConflictError{Err: err, Constraint: constraint}
}

func (err ConflictError) Error() string {
	if err.Err == nil {
		return "constraint violation: " + err.Constraint
	}
	return err.Err.Error()
}

// HasDependentsError is returned by delete operations whose target is still
// referenced by other rows. The dependents are found by an explicit query
// before any delete is attempted.
type HasDependentsError struct {
	Entity     string
	Dependents string
}

func NewHasDependentsError(entity, dependents string) error {
	return &HasDependentsError{Entity: entity, Dependents: dependents}
}

func (err HasDependentsError) Error() string {
	return fmt.Sprintf("%s still has %s attached", err.Entity, err.Dependents)
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
