package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Repository errors.
var (
	ErrEmailAlreadyExists     = errors.New("email already exists")
	ErrUserNotFound           = errors.New("user not found")
	ErrCodeAlreadyExists      = errors.New("code already exists")
	ErrTokenAlreadyExists     = errors.New("token already exists")
	ErrClientNotFound         = errors.New("client not found")
	ErrAdminUserAlreadyExists = errors.New("admin user already exists")
	ErrAdminUserNotFound      = errors.New("admin user not found")
	ErrUnexpected             = errors.New("unexpected error")
)

// Workflow errors.
var (
	ErrInvalidForm            = errors.New("invalid form")
	ErrInvalidPayload         = errors.New("invalid payload")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrCodeNotFound           = errors.New("confirmation code invalid or expired")
	ErrAlreadyActivated       = errors.New("email already activated")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrEmailDelivery          = errors.New("email delivery failed")
)

// UnexpectedError keeps the driver error reachable through errors.Unwrap
// while still matching ErrUnexpected.
type UnexpectedError struct {
	Op  string
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("unexpected error in %s: %v", e.Op, e.Err)
}

func (e *UnexpectedError) Unwrap() error {
	return e.Err
}

func (e *UnexpectedError) Is(target error) bool {
	return target == ErrUnexpected
}

func Unexpected(op string, err error) error {
	return &UnexpectedError{Op: op, Err: err}
}

// ValidationError lists the rejected fields with a short reason each.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid form: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidForm
}

// EmailErrorKind classifies notifier failures.
type EmailErrorKind string

const (
	EmailTransportError EmailErrorKind = "transport"
	EmailEncodingError  EmailErrorKind = "encoding"
	EmailOtherError     EmailErrorKind = "other"
)

type EmailError struct {
	Kind EmailErrorKind
	Err  error
}

func (e *EmailError) Error() string {
	return fmt.Sprintf("email %s error: %v", e.Kind, e.Err)
}

func (e *EmailError) Unwrap() error {
	return e.Err
}

func (e *EmailError) Is(target error) bool {
	return target == ErrEmailDelivery
}
