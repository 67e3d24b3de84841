package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")

	// ErrMissingIdentifier marks a raw record without an id. Such records are dropped.
	ErrMissingIdentifier = errors.New("missing identifier")
	// ErrConnectionFailed marks a source that could not be reached at all.
	ErrConnectionFailed = errors.New("connection failed")
	// ErrLoadFailed is returned when every configured source was exhausted.
	ErrLoadFailed = errors.New("load failed")
	// ErrPersistenceFailed marks a local store read/write error. Never fatal.
	ErrPersistenceFailed = errors.New("persistence failed")
	// ErrActionFailed marks a like/share/bookmark failure shown as a toast.
	ErrActionFailed = errors.New("action failed")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// StatusError is a non-2xx response from the hosted store's REST surface.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("HTTP %d", e.Code)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Code, body)
}

// LoadReason classifies why a load exhausted all sources.
type LoadReason int

const (
	// ReasonNoFallback: no remote source was configured and no cached copy exists.
	ReasonNoFallback LoadReason = iota
	// ReasonNoNetwork: the remote source could not be reached and no cached copy exists.
	ReasonNoNetwork
	// ReasonServerError: the remote source answered with an error and no cached copy exists.
	ReasonServerError
)

func (r LoadReason) String() string {
	switch r {
	case ReasonNoNetwork:
		return "no_network"
	case ReasonServerError:
		return "server_error"
	default:
		return "no_fallback"
	}
}

// SourceFailure records one failed source attempt during a load.
type SourceFailure struct {
	Source string
	Err    error
}

// LoadError is returned when a load found no usable source.
type LoadError struct {
	Feed     Feed
	Reason   LoadReason
	Attempts []SourceFailure
}

func (e *LoadError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, a.Source+": "+a.Err.Error())
	}
	if len(parts) == 0 {
		return fmt.Sprintf("load %s: %s", e.Feed, e.Reason)
	}
	return fmt.Sprintf("load %s: %s (%s)", e.Feed, e.Reason, strings.Join(parts, "; "))
}

func (e *LoadError) Unwrap() error { return ErrLoadFailed }

// Message is the text shown in the error state next to the retry control.
func (e *LoadError) Message() string {
	switch e.Reason {
	case ReasonNoNetwork:
		return "Network connection failed. Please check your internet connection."
	case ReasonServerError:
		for _, a := range e.Attempts {
			var se *StatusError
			if errors.As(a.Err, &se) {
				return fmt.Sprintf("The server returned an error (HTTP %d). Please try again later.", se.Code)
			}
		}
		return "The server returned an error. Please try again later."
	default:
		return "No data source is available and there is no saved copy to show."
	}
}

// ActionError is a failed record action. Toast is shown to the visitor.
type ActionError struct {
	Action Action
	Toast  string
	Err    error
}

func (e *ActionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("action %s: %s", e.Action, e.Toast)
	}
	return fmt.Sprintf("action %s: %v", e.Action, e.Err)
}

func (e *ActionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrActionFailed}
	}
	return []error{ErrActionFailed, e.Err}
}

// NewActionError wraps err as a failed action with a toast message.
func NewActionError(action Action, toast string, err error) *ActionError {
	return &ActionError{Action: action, Toast: toast, Err: err}
}
