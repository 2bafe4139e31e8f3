package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrEntityNotFound signals a missing entity (organisation, company or user).
	ErrEntityNotFound = errors.New("entity not found")
	// ErrInvalidCatalog signals a catalog that cannot be indexed.
	ErrInvalidCatalog = errors.New("invalid catalog")

	// ErrAuthRequired signals a backend call that needs a user but none could be asserted.
	ErrAuthRequired = errors.New("authentication required")
	// ErrBackend signals a non-success response from the backend API.
	ErrBackend = errors.New("backend error")
	// ErrBackendNotConfigured signals a missing backend base URL.
	ErrBackendNotConfigured = errors.New("backend base url is not set")
)

// BackendError wraps ErrBackend with the upstream response details.
type BackendError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *BackendError) Error() string {
	body := e.Body
	if body == "" {
		body = "no body"
	}
	return fmt.Sprintf("%s %d %s: %s", ErrBackend.Error(), e.StatusCode, e.Status, body)
}

func (e *BackendError) Unwrap() error { return ErrBackend }

// NewBackendError creates a backend error from a response status and best-effort body.
func NewBackendError(statusCode int, status, body string) error {
	return &BackendError{StatusCode: statusCode, Status: status, Body: body}
}
