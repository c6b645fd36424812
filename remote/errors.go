package remote

import "fmt"

// RemoteError represents an error from a remote backend operation.
// It provides structured error information including HTTP status codes,
// operation context, and the underlying error message.
type RemoteError struct {
	Operation  string // e.g., "CreateChild", "UpsertProgress"
	StatusCode int    // HTTP status code (0 if not an HTTP error)
	Message    string // Human-readable error message
	ChildID    string // Optional: affected remote child id
	Body       string // Optional: response body for debugging
	Err        error  // Optional: underlying error
}

// Error implements the error interface
func (e *RemoteError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s failed with status %d: %s", e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the underlying error for error wrapping
func (e *RemoteError) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if the error is a 404 Not Found
func (e *RemoteError) IsNotFound() bool {
	return e.StatusCode == 404
}

// IsUnauthorized returns true if the error is a 401 Unauthorized or 403 Forbidden
func (e *RemoteError) IsUnauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// IsServerError returns true if the error is a 5xx server error
func (e *RemoteError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// NewRemoteError creates a new RemoteError
func NewRemoteError(operation string, statusCode int, message string) *RemoteError {
	return &RemoteError{
		Operation:  operation,
		StatusCode: statusCode,
		Message:    message,
	}
}

// WithChildID adds the remote child id to the error for context
func (e *RemoteError) WithChildID(id string) *RemoteError {
	e.ChildID = id
	return e
}

// WithBody adds the response body to the error for debugging
func (e *RemoteError) WithBody(body string) *RemoteError {
	e.Body = body
	return e
}

// WithError wraps an underlying error
func (e *RemoteError) WithError(err error) *RemoteError {
	e.Err = err
	return e
}
