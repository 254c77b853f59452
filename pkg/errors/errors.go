// Package errors defines common error types used throughout the Roblox API wrapper.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched by errors.Is against the typed errors below.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrGameNotFound  = errors.New("game not found")
	ErrGroupNotFound = errors.New("group not found")
	ErrAsyncHandler  = errors.New("asynchronous handlers are not supported")
	ErrLogout        = errors.New("logged out")
)

// ConfigError indicates a problem with the client configuration.
type ConfigError struct {
	// Field contains the name of the configuration field that caused the error
	Field string
	// Message contains the detailed error message
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// ValidationError reports an argument rejected before any request was sent.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("invalid argument: %s", e.Message)
}

// LoginError indicates the login request was rejected.
type LoginError struct {
	// StatusCode is the HTTP status code (if from an HTTP response)
	StatusCode int
	// Message is the first error message reported by the server
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *LoginError) Error() string {
	parts := []string{"login error"}
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status code %d", e.StatusCode))
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Err != nil {
		parts = append(parts, fmt.Sprintf("err: %v", e.Err))
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return parts[0] + ": " + strings.Join(parts[1:], ", ")
}

func (e *LoginError) Unwrap() error {
	return e.Err
}

// Resource kinds used by NotFoundError.
const (
	ResourceUser  = "user"
	ResourceGame  = "game"
	ResourceGroup = "group"
)

// NotFoundError indicates the requested user, game or group does not exist,
// or the server answered with a payload that lacks the resource's identity.
type NotFoundError struct {
	Resource string
	ID       any
	Err      error
}

func (e *NotFoundError) Error() string {
	resource := e.Resource
	if resource == "" {
		resource = "resource"
	}
	if len(resource) > 0 {
		resource = strings.ToUpper(resource[:1]) + resource[1:]
	}
	return fmt.Sprintf("%s %v does not exist", resource, e.ID)
}

// Is matches the per-resource sentinels.
func (e *NotFoundError) Is(target error) bool {
	switch target {
	case ErrUserNotFound:
		return e.Resource == ResourceUser
	case ErrGameNotFound:
		return e.Resource == ResourceGame
	case ErrGroupNotFound:
		return e.Resource == ResourceGroup
	}
	return false
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// ForbiddenError is returned when a mutating call (direct message, wall post)
// does not answer 200. Message is the server's first error message, unchanged.
type ForbiddenError struct {
	StatusCode int
	Message    string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

// ListenerError indicates an event handler registration was rejected.
type ListenerError struct {
	Event  string
	Reason string
	Err    error
}

func (e *ListenerError) Error() string {
	msg := e.Reason
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Event != "" {
		return fmt.Sprintf("listener error for %s: %s", e.Event, msg)
	}
	return fmt.Sprintf("listener error: %s", msg)
}

func (e *ListenerError) Unwrap() error {
	return e.Err
}

// LogoutError signals that a running session was shut down. It is a control
// signal rather than a failure; match it with errors.Is(err, ErrLogout).
type LogoutError struct {
	// Cause is the reason the session stopped, usually a context error
	Cause error
}

func (e *LogoutError) Error() string {
	return "Logged out."
}

func (e *LogoutError) Is(target error) bool {
	return target == ErrLogout
}

func (e *LogoutError) Unwrap() error {
	return e.Cause
}

// IdentityError indicates the client could not resolve its own account.
type IdentityError struct {
	Username string
	Err      error
}

func (e *IdentityError) Error() string {
	return fmt.Sprintf("failed to resolve identity for %q: %v", e.Username, e.Err)
}

func (e *IdentityError) Unwrap() error {
	return e.Err
}

// StateError indicates an operation was attempted when the client is not ready.
type StateError struct {
	// Operation is the name of the operation that was attempted
	Operation string
	// Message contains the detailed error message
	Message string
}

func (e *StateError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("state error during %s: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("state error: %s", e.Message)
}

// RequestError indicates a problem with making an API request.
type RequestError struct {
	// Operation is the name of the API operation that failed
	Operation string
	// URL is the URL that was being accessed
	URL string
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *RequestError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	if e.Operation != "" && e.URL != "" {
		return fmt.Sprintf("request error during %s to %s: %s", e.Operation, e.URL, msg)
	} else if e.Operation != "" {
		return fmt.Sprintf("request error during %s: %s", e.Operation, msg)
	}
	return fmt.Sprintf("request error: %s", msg)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ParseError indicates a problem parsing the API response.
type ParseError struct {
	// Operation is the name of the API operation where parsing failed
	Operation string
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *ParseError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	if e.Operation != "" {
		return fmt.Sprintf("parse error during %s: %s", e.Operation, msg)
	}
	return fmt.Sprintf("parse error: %s", msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// APIError represents a non-success response on a read path.
type APIError struct {
	// StatusCode is the HTTP status code
	StatusCode int
	// Code is the numeric error code from Roblox (if available)
	Code int
	// Message is the first error message from Roblox
	Message string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("roblox API error (status %d, code %d): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Message)
}
