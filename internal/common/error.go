// Package common defines shared constants and sentinel errors used across
// the store, service and transport layers. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Store-level errors.
	ErrNoSuchUser = errors.New("user not found")
	ErrNotFound   = errors.New("entry not found")
	ErrConstraint = errors.New("failed constraint")
	ErrConflict   = errors.New("conflicting entry")
	ErrStoreFull  = errors.New("store full")
	ErrOutOfSync  = errors.New("client request is out of sync")
	ErrInternal   = errors.New("internal error")

	// Auth errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// NoSuchUserError names the user that could not be resolved.
type NoSuchUserError struct {
	User string
}

func (e *NoSuchUserError) Error() string {
	return fmt.Sprintf("user not found `%s`", e.User)
}

func (e *NoSuchUserError) Is(target error) bool {
	return target == ErrNoSuchUser
}

// NotFoundError names the id that has no live entry.
type NotFoundError struct {
	ID uint32
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("entry not found for id `%d`", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// InvalidFieldError reports a field that failed validation. It matches
// ErrConstraint.
type InvalidFieldError struct {
	Field  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid field %s: %s", e.Field, e.Reason)
}

func (e *InvalidFieldError) Is(target error) bool {
	return target == ErrConstraint
}

// InternalError wraps an I/O, parse or database failure. It matches
// ErrInternal and unwraps to the cause.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InternalError) Is(target error) bool {
	return target == ErrInternal
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Internal wraps err as an InternalError for op. A nil err stays nil.
func Internal(op string, err error) error {
	if err == nil {
		return nil
	}
	return &InternalError{Op: op, Err: err}
}
