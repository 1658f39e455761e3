package remote

import (
	"errors"
	"fmt"
)

// AuthError indicates that the session credential is missing, expired or
// rejected. It is returned when the API answers 401.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error: %s", e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// ForbiddenError indicates the principal is not entitled to the task
// feature (403). Callers treat it as "no access", not as a failure.
type ForbiddenError struct {
	Method string
	Path   string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("forbidden (403) on %s %s", e.Method, e.Path)
}

// IsForbidden reports whether err (or any error in its chain) is a ForbiddenError.
func IsForbidden(err error) bool {
	var forbidden *ForbiddenError
	return errors.As(err, &forbidden)
}

// StatusError is any other non-2xx response.
type StatusError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d on %s %s", e.StatusCode, e.Method, e.Path)
	}
	return fmt.Sprintf(
		"unexpected status %d on %s %s: %s",
		e.StatusCode, e.Method, e.Path, e.Message,
	)
}
