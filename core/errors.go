package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when a single-row lookup yields nothing.
var ErrNotFound = errors.New("not found")

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

// RemoteError is a failure reported by the table service itself (network, constraint violation, ...).
type RemoteError struct {
	Table string
	Op    string
	Err   error
}

func NewRemoteError(table, op string, err error) error {
	return &RemoteError{Table: table, Op: op, Err: err}
}

func (err RemoteError) Error() string {
	return fmt.Sprintf("%s %s: %v", err.Op, err.Table, err.Err)
}

func (err RemoteError) Unwrap() error { return err.Err }

// IsNotFound reports whether err (or its cause) is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Cause(err) == ErrNotFound
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
