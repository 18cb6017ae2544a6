// Package errors provides custom error types for the aiomigrate system.
// These errors classify platform API failures, configuration problems and
// cross-platform mapping failures so callers can decide with errors.Is and
// errors.As whether to skip an object, fall back to a lookup, or abort a run.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is, As and Join are re-exported so callers only need a single errors import.
var (
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
)

// Common sentinel errors for the aiomigrate system
var (
	// ErrNotFound indicates that a requested object was not found
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates that an object with the same unique name already exists
	ErrConflict = errors.New("already exists")

	// ErrAmbiguous indicates that a lookup matched more than one object
	ErrAmbiguous = errors.New("ambiguous match")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrBadRequest indicates that the platform rejected a malformed request
	ErrBadRequest = errors.New("bad request")

	// ErrUnauthorized indicates that the API key lacks the required privileges
	ErrUnauthorized = errors.New("unauthorized")

	// ErrServerUnavailable indicates a platform-side failure (500/503)
	ErrServerUnavailable = errors.New("server unavailable")

	// ErrTransport indicates a connection level failure
	ErrTransport = errors.New("transport failure")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrUnsupported indicates a feature that the target platform cannot accept
	ErrUnsupported = errors.New("unsupported")

	// ErrUnmapped indicates a source reference without an equivalent on the target
	ErrUnmapped = errors.New("unmapped reference")
)

// conflictMarkers are the message fragments platforms embed in otherwise generic
// validation errors when a unique name is already taken.
var conflictMarkers = []string{"already exists", "must be unique"}

// IsConflictMessage reports whether a platform error message signals a
// duplicate-name conflict.
func IsConflictMessage(message string) bool {
	lower := strings.ToLower(message)
	for _, marker := range conflictMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// NotFoundError represents an error when an object is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// AmbiguousError is returned when a name lookup yields more than one object.
type AmbiguousError struct {
	Resource string
	Name     string
	Count    int
}

// Error implements the error interface
func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%s named %q is ambiguous (%d or more matches)", e.Resource, e.Name, e.Count)
}

// Is implements errors.Is support
func (e *AmbiguousError) Is(target error) bool {
	return target == ErrAmbiguous
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// APIError represents an HTTP error answered by a platform endpoint.
type APIError struct {
	Platform   string // platform label, e.g. "swp#1"
	Method     string
	Endpoint   string
	StatusCode int
	Message    string // the "message" field of the error body when present
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("API error from %s (%s %s, status %d): %s", e.Platform, e.Method, e.Endpoint, e.StatusCode, msg)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is classifies the status code into the sentinel taxonomy. Duplicate-name
// conflicts are recognized by status 409 first and by message text as a
// fallback for platforms that report them as generic validation errors.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrConflict:
		if e.StatusCode == http.StatusConflict {
			return true
		}
		return (e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity) &&
			IsConflictMessage(e.Message)
	case ErrBadRequest:
		return e.StatusCode == http.StatusBadRequest
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrInvalidInput:
		return e.StatusCode == http.StatusUnprocessableEntity
	case ErrServerUnavailable:
		return e.StatusCode >= http.StatusInternalServerError
	}
	return false
}

// NewAPIError creates a new APIError
func NewAPIError(platform string, statusCode int, message string) *APIError {
	return &APIError{
		Platform:   platform,
		StatusCode: statusCode,
		Message:    message,
	}
}

// TransportError wraps connection level failures (DNS, TLS, refused, timeouts).
type TransportError struct {
	Platform string
	Method   string
	Endpoint string
	Timeout  bool
	Err      error
}

// Error implements the error interface
func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("request %s %s to %s timed out: %v", e.Method, e.Endpoint, e.Platform, e.Err)
	}
	return fmt.Sprintf("request %s %s to %s failed: %v", e.Method, e.Endpoint, e.Platform, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *TransportError) Is(target error) bool {
	if target == ErrTransport {
		return true
	}
	return e.Timeout && target == ErrTimeout
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// MappingError is returned when a source-platform reference has no
// equivalent on the target platform.
type MappingError struct {
	Kind     string // "computer", "computer group", "policy", "smart folder", "contact"
	SourceID int
	Reason   string
}

// Error implements the error interface
func (e *MappingError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsuccessful %s match: %d (%s)", e.Kind, e.SourceID, e.Reason)
	}
	return fmt.Sprintf("unsuccessful %s match: %d", e.Kind, e.SourceID)
}

// Is implements errors.Is support
func (e *MappingError) Is(target error) bool {
	return target == ErrUnmapped
}

// NewMappingError creates a new MappingError
func NewMappingError(kind string, sourceID int, reason string) *MappingError {
	return &MappingError{Kind: kind, SourceID: sourceID, Reason: reason}
}

// UnsupportedError marks an object that cannot be migrated to the target
// platform kind. It is a skip, not a failure.
type UnsupportedError struct {
	Feature  string
	Platform string
}

// Error implements the error interface
func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s not supported on %s", e.Feature, e.Platform)
}

// Is implements errors.Is support
func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupported
}

// ResourceError represents an error during resource operations
type ResourceError struct {
	Operation string // "create", "fetch", "lookup", "load"
	Resource  string // "computer group", "smart folder", "config", ...
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// NewResourceError creates a new ResourceError
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ResourceError{
		Operation: operation,
		Resource:  resource,
		ID:        id,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when decoding platform responses
type ParseError struct {
	Format  string
	Source  string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s parse error in %s: %s", e.Format, e.Source, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict checks if an error is a duplicate-name conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsAmbiguous checks if an error is an ambiguous lookup
func IsAmbiguous(err error) bool {
	return errors.Is(err, ErrAmbiguous)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsUnauthorized checks if an error is an authorization failure
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsServerError checks if an error is a platform-side failure
func IsServerError(err error) bool {
	return errors.Is(err, ErrServerUnavailable)
}

// IsTransport checks if an error is a connection level failure
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsMapping checks if an error is a cross-platform mapping failure
func IsMapping(err error) bool {
	return errors.Is(err, ErrUnmapped)
}

// IsUnsupported checks if an error marks an unsupported feature
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupported)
}

// Helper wrapping functions for common patterns

// WrapResource wraps an error as a ResourceError
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, source string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Format: format, Source: source, Message: err.Error(), Err: err}
}
