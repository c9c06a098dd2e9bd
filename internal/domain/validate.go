package domain

import (
	"fmt"
	"net/mail"
	"sort"
	"strings"
)

const (
	minPasswordLength = 6
	maxPasswordLength = 128
)

// FieldErrors carries per-field validation detail so the HTTP layer can
// surface structured errors instead of a single flattened message.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	fields := make([]string, 0, len(f))
	for name := range f {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, name := range fields {
		parts = append(parts, name+": "+f[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap makes every FieldErrors match ErrInvalidInput under errors.Is.
func (f FieldErrors) Unwrap() error { return ErrInvalidInput }

// NormalizeEmail lowercases, trims and syntax-checks an email address.
func NormalizeEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return "", fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return "", fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	return trimmed, nil
}

// ValidatePassword enforces the registration/reset password policy.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("%w: password must be <= %d characters", ErrInvalidInput, maxPasswordLength)
	}
	return nil
}

// ValidateRegistration checks all registration inputs at once and reports
// every failing field, so the caller sees the full picture in one response.
func ValidateRegistration(name, email, password string) error {
	fields := FieldErrors{}
	if strings.TrimSpace(name) == "" {
		fields["name"] = "name is required"
	}
	if _, err := NormalizeEmail(email); err != nil {
		fields["email"] = "invalid email address"
	}
	if err := ValidatePassword(password); err != nil {
		fields["password"] = fmt.Sprintf("password must be between %d and %d characters", minPasswordLength, maxPasswordLength)
	}
	if len(fields) > 0 {
		return fields
	}
	return nil
}
