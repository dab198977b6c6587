package integration

import (
	"errors"
	"fmt"
	"net/url"
)

var (
	// ErrValidation marks missing or invalid user input
	ErrValidation = errors.New("integration: validation failed")
	// ErrTransport marks a network failure or timeout
	ErrTransport = errors.New("integration: transport failure")
	// ErrIntegration marks a non-2xx response from the remote service
	ErrIntegration = errors.New("integration: remote request failed")
	// ErrDispatchInProgress is returned when the same action is already loading
	ErrDispatchInProgress = errors.New("integration: dispatch already in progress")
	// ErrInvalidTransition is returned for a transition the state machine forbids
	ErrInvalidTransition = errors.New("integration: invalid status transition")
)

// DispatchError carries a user-facing message along with its kind. Kind is
// one of the sentinels above and matches with errors.Is.
type DispatchError struct {
	Kind       error
	Message    string
	StatusCode int
	Err        error
}

func (e *DispatchError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Kind != nil {
		return e.Kind.Error()
	}
	return "integration: dispatch failed"
}

func (e *DispatchError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewValidationError creates a validation failure with a user-facing message
func NewValidationError(message string) *DispatchError {
	return &DispatchError{Kind: ErrValidation, Message: message}
}

// NewHTTPStatusError creates an integration failure for a non-2xx response
func NewHTTPStatusError(statusCode int) *DispatchError {
	return &DispatchError{
		Kind:       ErrIntegration,
		StatusCode: statusCode,
		Message:    fmt.Sprintf("HTTP error! status: %d", statusCode),
	}
}

// NewTransportError wraps a network failure. The user-facing message drops
// the request URL, which may carry webhook tokens or other secrets.
func NewTransportError(err error) *DispatchError {
	msg := err.Error()
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		msg = ue.Err.Error()
	}
	return &DispatchError{Kind: ErrTransport, Message: msg, Err: err}
}

// Kind classifies err as one of the sentinel kinds, or nil when it is none
func Kind(err error) error {
	for _, k := range []error{ErrValidation, ErrDispatchInProgress, ErrIntegration, ErrTransport} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// Reason returns the user-facing message of err, or fallback when err has none
func Reason(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var de *DispatchError
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
