package errors

import (
	"errors"
	"fmt"
)

var (
	// Refresh protocol errors
	ErrNoRefreshToken    = errors.New("no refresh token")
	ErrRefreshRejected   = errors.New("refresh token rejected")
	ErrRefreshSuperseded = errors.New("refresh superseded") // tokens replaced or cleared while it ran

	// Transport errors
	ErrNetworkFailure = errors.New("network failure")

	// Session errors
	ErrUnauthorized            = errors.New("unauthorized")
	ErrEntitlementLookupFailed = errors.New("entitlement lookup failed")

	// General errors
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
