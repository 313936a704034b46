package errors

import (
	"fmt"
)

// FetchError represents a failure retrieving a service's API descriptor.
// Transient marks failures (connection errors, timeouts, 5xx) that the
// fetcher may retry; non-transient fetch errors surface immediately.
type FetchError struct {
	Service   string
	Path      string
	Transient bool
	Err       error
}

// NewFetchError constructs a FetchError.
func NewFetchError(service, path string, transient bool, err error) error {
	return &FetchError{Service: service, Path: path, Transient: transient, Err: err}
}

func (e *FetchError) Error() string {
	if e == nil {
		return ""
	}
	kind := "fetch error"
	if e.Transient {
		kind = "transient fetch error"
	}
	if e.Path != "" {
		return fmt.Sprintf("%s for service %s at %s: %v", kind, e.Service, e.Path, e.Err)
	}
	return fmt.Sprintf("%s for service %s: %v", kind, e.Service, e.Err)
}

// Unwrap exposes the underlying error.
func (e *FetchError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// AuthError indicates the remote service rejected the request's credentials
// (401/403). Never retried.
type AuthError struct {
	Service    string
	StatusCode int
	Err        error
}

// NewAuthError constructs an AuthError.
func NewAuthError(service string, statusCode int, err error) error {
	return &AuthError{Service: service, StatusCode: statusCode, Err: err}
}

func (e *AuthError) Error() string {
	if e == nil {
		return ""
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("authentication error for service %s: status %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("authentication error for service %s: %v", e.Service, e.Err)
}

// Unwrap exposes the underlying error.
func (e *AuthError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// InvalidDescriptorError indicates every configured descriptor path was tried
// and none yielded a structurally recognizable descriptor payload.
type InvalidDescriptorError struct {
	Service string
	Paths   []string
	Err     error
}

// NewInvalidDescriptorError constructs an InvalidDescriptorError.
func NewInvalidDescriptorError(service string, paths []string, err error) error {
	return &InvalidDescriptorError{Service: service, Paths: paths, Err: err}
}

func (e *InvalidDescriptorError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("no valid descriptor for service %s after %d path(s): %v", e.Service, len(e.Paths), e.Err)
}

// Unwrap exposes the underlying error.
func (e *InvalidDescriptorError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// GenerationError represents a failure producing one artifact kind for a
// service. Sibling kinds and other services are unaffected.
type GenerationError struct {
	Service string
	Kind    string
	Err     error
}

// NewGenerationError constructs a GenerationError.
func NewGenerationError(service, kind string, err error) error {
	return &GenerationError{Service: service, Kind: kind, Err: err}
}

func (e *GenerationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("generation error for service %s kind %s: %v", e.Service, e.Kind, e.Err)
}

// Unwrap exposes the underlying error.
func (e *GenerationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NotificationError represents a failed change-event publication. Logged and
// recorded; never rolls back a checksum update.
type NotificationError struct {
	Service string
	Err     error
}

// NewNotificationError constructs a NotificationError.
func NewNotificationError(service string, err error) error {
	return &NotificationError{Service: service, Err: err}
}

func (e *NotificationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("notification error for service %s: %v", e.Service, e.Err)
}

// Unwrap exposes the underlying error.
func (e *NotificationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// StoreError represents a checksum store read or write failure. Fatal for the
// affected service's pass since the change gate depends on it.
type StoreError struct {
	Op      string
	Service string
	Err     error
}

// NewStoreError constructs a StoreError.
func NewStoreError(op, service string, err error) error {
	return &StoreError{Op: op, Service: service, Err: err}
}

func (e *StoreError) Error() string {
	if e == nil {
		return ""
	}
	if e.Service != "" {
		return fmt.Sprintf("checksum store %s failed for service %s: %v", e.Op, e.Service, e.Err)
	}
	return fmt.Sprintf("checksum store %s failed: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying error.
func (e *StoreError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ParseError represents a configuration parsing failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures configuration validation issues.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
