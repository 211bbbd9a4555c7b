package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a coverity-mcp error code.
type ErrorCode string

const (
	ErrConfigMissing  ErrorCode = "CONFIG_MISSING"  // fatal at startup
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrInvalidModule  ErrorCode = "INVALID_MODULE"  // 422
	ErrRemote         ErrorCode = "REMOTE"          // 502
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// maxBodyChars bounds how much of a remote error body is kept in a message.
const maxBodyChars = 512

// CovError represents a structured error with code, status, and details.
type CovError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	cause   error
}

// Error implements the error interface.
func (e *CovError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *CovError) Unwrap() error {
	return e.cause
}

// NewConfigMissing creates a fatal error naming every missing configuration key.
func NewConfigMissing(keys []string) *CovError {
	return &CovError{
		Code:    ErrConfigMissing,
		Status:  500,
		Message: fmt.Sprintf("missing required configuration: %s", strings.Join(keys, ", ")),
		Details: map[string]any{"missing": keys},
	}
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *CovError {
	return &CovError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing issue.
func NewNotFound(cid int64, stream string) *CovError {
	return &CovError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("issue not found: CID %d in stream %q", cid, stream),
		Details: map[string]any{"cid": cid, "stream": stream},
	}
}

// NewInvalidModule creates a 422 error for a capability unit that fails shape validation.
func NewInvalidModule(name, reason string) *CovError {
	return &CovError{
		Code:    ErrInvalidModule,
		Status:  422,
		Message: fmt.Sprintf("invalid module %s: %s", name, reason),
		Details: map[string]any{"module": name},
	}
}

// NewRemoteStatus creates a 502 error for a non-success response from the Coverity API.
func NewRemoteStatus(path string, status int, body string) *CovError {
	if len(body) > maxBodyChars {
		body = body[:maxBodyChars] + "..."
	}
	return &CovError{
		Code:    ErrRemote,
		Status:  502,
		Message: fmt.Sprintf("coverity API error %d on %s: %s", status, path, strings.TrimSpace(body)),
		Details: map[string]any{"path": path, "remote_status": status},
	}
}

// NewRemote wraps a transport or decode failure against the Coverity API.
func NewRemote(path string, err error) *CovError {
	return &CovError{
		Code:    ErrRemote,
		Status:  502,
		Message: fmt.Sprintf("coverity API request %s failed: %v", path, err),
		Details: map[string]any{"path": path},
		cause:   err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message stays generic; the original error is kept in Details for logging.
func NewInternal(err error) *CovError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &CovError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
		cause:   err,
	}
}

// Is checks if err (or anything it wraps) is a CovError with the given code.
func Is(err error, code ErrorCode) bool {
	var cErr *CovError
	if stderrors.As(err, &cErr) {
		return cErr.Code == code
	}
	return false
}
