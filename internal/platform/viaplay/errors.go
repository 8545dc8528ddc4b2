package viaplay

import (
	"errors"
	"fmt"
)

// ServiceError is the application-level failure signal: the service answered
// with "success": false.
type ServiceError struct {
	Name string
}

func (e *ServiceError) Error() string {
	if e.Name == "" {
		return "viaplay: service error"
	}
	return fmt.Sprintf("viaplay: %s", e.Name)
}

// Is matches service errors by name so errors.Is(err, ErrMissingSessionCookie) works.
func (e *ServiceError) Is(target error) bool {
	t, ok := target.(*ServiceError)
	return ok && t.Name == e.Name
}

var (
	// ErrMissingSessionCookie is returned by RootPage when the user is not logged in.
	ErrMissingSessionCookie = &ServiceError{Name: "MissingSessionCookieError"}

	ErrNoStreamURL        = errors.New("viaplay: no stream url in response")
	ErrUnexpectedResponse = errors.New("viaplay: unexpected response format")
	ErrUnsupportedMethod  = errors.New("viaplay: unsupported http method")
	ErrActivationExpired  = errors.New("viaplay: activation code expired")
)

// IsServiceError reports whether err carries an application-level failure.
func IsServiceError(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}
