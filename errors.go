package sdk

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Sentinel errors for common SDK error conditions.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a resource with the same identifier is
	// already registered.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the provided input failed validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConnectionFailed indicates a backing service (Redis, etcd, or the
	// dashboard source) could not be reached.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrTimeout indicates an operation exceeded its deadline.
	ErrTimeout = errors.New("timeout")
)

// Error kinds categorize errors by their type.
const (
	// KindNotFound represents errors where a resource was not found.
	KindNotFound = "not_found"

	// KindValidation represents errors related to input validation.
	KindValidation = "validation"

	// KindConnection represents errors reaching backing services.
	KindConnection = "connection"

	// KindConfiguration represents errors related to configuration.
	KindConfiguration = "config"

	// KindTimeout represents errors related to operation timeouts.
	KindTimeout = "timeout"

	// KindInternal represents internal SDK errors.
	KindInternal = "internal"
)

// SDKError is a structured error type that wraps underlying errors with
// additional context about the operation that failed and the category of error.
//
// SDKError implements the error interface and supports error unwrapping,
// making it compatible with errors.Is() and errors.As().
//
// Example usage:
//
//	err := &SDKError{
//		Op:   "Framework.Activate",
//		Kind: KindConnection,
//		Err:  ErrConnectionFailed,
//	}
type SDKError struct {
	// Op is the operation that failed (e.g., "sdk.New", "Source.Load").
	Op string

	// Kind categorizes the error (e.g., KindNotFound, KindValidation).
	Kind string

	// Err is the underlying error that caused this error.
	Err error

	// Context provides additional context about the error (optional).
	// This can include dashboard URL paths, repair names, or other
	// debugging information.
	Context map[string]any
}

// Error implements the error interface, returning a formatted error message
// that includes the operation, kind, and underlying error.
func (e *SDKError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("sdk: %s: %s", e.Op, e.Kind)
	}

	if len(e.Context) > 0 {
		return fmt.Sprintf("sdk: %s (%s): %v [context: %+v]", e.Op, e.Kind, e.Err, e.Context)
	}

	return fmt.Sprintf("sdk: %s (%s): %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error, allowing errors.Is() and errors.As()
// to work correctly with wrapped errors.
func (e *SDKError) Unwrap() error {
	return e.Err
}

// Is implements error matching for SDKError, allowing comparison based on
// the underlying error or the SDKError itself.
func (e *SDKError) Is(target error) bool {
	if target == nil {
		return false
	}

	// Check if target is an SDKError with matching Kind
	if t, ok := target.(*SDKError); ok {
		// Match if both Op and Kind are the same, or if Kind matches and Op is empty in target
		if t.Kind != "" && e.Kind == t.Kind {
			if t.Op == "" || e.Op == t.Op {
				return true
			}
		}
	}

	// Delegate to underlying error
	return errors.Is(e.Err, target)
}

// WithContext returns a new SDKError with the provided context added.
// This is useful for adding debugging information to errors.
//
// Example:
//
//	err := NewConnectionError("Bus.Publish", ErrConnectionFailed)
//	err = err.WithContext(map[string]any{
//		"event_type": "dashboard_updated",
//		"url_path":   "energy",
//	})
func (e *SDKError) WithContext(ctx map[string]any) *SDKError {
	newErr := *e
	if newErr.Context == nil {
		newErr.Context = make(map[string]any)
	}
	for k, v := range ctx {
		newErr.Context[k] = v
	}
	return &newErr
}

// NewError creates a new SDKError with the given operation, kind, and
// underlying error. The kind-specific constructors below are shorthands
// for this.
func NewError(op, kind string, err error) *SDKError {
	return &SDKError{
		Op:   op,
		Kind: kind,
		Err:  err,
	}
}

// WrapError wraps err with an outer operation, preserving the kind when
// err is already an SDKError. Errors of unknown origin become KindInternal.
func WrapError(op string, err error) *SDKError {
	var sdkErr *SDKError
	if errors.As(err, &sdkErr) {
		return NewError(op, sdkErr.Kind, err)
	}
	return NewError(op, KindInternal, err)
}

// NewNotFoundError creates a new SDKError with KindNotFound.
func NewNotFoundError(op string, err error) *SDKError {
	return NewError(op, KindNotFound, err)
}

// NewValidationError creates a new SDKError with KindValidation.
func NewValidationError(op string, err error) *SDKError {
	return NewError(op, KindValidation, err)
}

// NewConnectionError creates a new SDKError with KindConnection.
func NewConnectionError(op string, err error) *SDKError {
	return NewError(op, KindConnection, err)
}

// NewConfigurationError creates a new SDKError with KindConfiguration.
func NewConfigurationError(op string, err error) *SDKError {
	return NewError(op, KindConfiguration, err)
}

// NewTimeoutError creates a new SDKError with KindTimeout.
func NewTimeoutError(op string, err error) *SDKError {
	return NewError(op, KindTimeout, err)
}

// NewInternalError creates a new SDKError with KindInternal.
func NewInternalError(op string, err error) *SDKError {
	return NewError(op, KindInternal, err)
}

// CloseWithLog attempts to close the provided resource and logs any error
// at warning level. This is intended for use in defer statements to ensure
// cleanup errors are not silently ignored.
//
// The name parameter should describe the resource being closed (e.g.,
// "event bus", "registry client"). If logger is nil, slog.Default() is used.
//
// Example usage:
//
//	defer sdk.CloseWithLog(bus, logger, "event bus")
//	defer sdk.CloseWithLog(states, logger, "state client")
func CloseWithLog(closer io.Closer, logger *slog.Logger, name string) {
	if closer == nil {
		return
	}

	if logger == nil {
		logger = slog.Default()
	}

	if err := closer.Close(); err != nil {
		logger.Warn("failed to close resource",
			"resource", name,
			"error", err)
	}
}
