package courseapi

import (
	"fmt"
	"strings"

	"github.com/jrsteele09/fewv-learns/internal/errors"
)

const (
	MinUsernameLength = 3
	MinPasswordLength = 6
)

// ValidateRegistration applies the same rules as the registration form.
func ValidateRegistration(username, email, password string) error {
	if len(strings.TrimSpace(username)) < MinUsernameLength {
		return fmt.Errorf("%w: Username must be at least %d characters long", errors.ErrInvalidInput, MinUsernameLength)
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("%w: Please enter a valid email address", errors.ErrInvalidInput)
	}
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: Password must be at least %d characters long", errors.ErrInvalidInput, MinPasswordLength)
	}
	return nil
}

// ValidateLogin rejects empty credentials before any network call.
func ValidateLogin(username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return fmt.Errorf("%w: Username and password are required", errors.ErrInvalidInput)
	}
	return nil
}

// ValidateCheckout requires at least one course with a positive quantity.
func ValidateCheckout(items []CheckoutItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: Please select at least one course", errors.ErrInvalidInput)
	}
	for _, item := range items {
		if item.Quantity < 1 {
			return fmt.Errorf("%w: invalid quantity %d for course %d", errors.ErrInvalidInput, item.Quantity, item.ID)
		}
	}
	return nil
}

// UserMessage strips the sentinel prefix so the text can be shown in a form.
func UserMessage(err error) string {
	msg := err.Error()
	return strings.TrimPrefix(msg, errors.ErrInvalidInput.Error()+": ")
}
