package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"lowercases and trims", "  Ada@Example.COM  ", "ada@example.com", false},
		{"already normal", "ada@example.com", "ada@example.com", false},
		{"empty", "", "", true},
		{"whitespace only", "   ", "", true},
		{"missing domain", "ada@", "", true},
		{"missing at sign", "ada.example.com", "", true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := NormalizeEmail(tc.in)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("expected invalid input, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	if err := ValidatePassword("secret"); err != nil {
		t.Fatalf("6-char password should pass: %v", err)
	}
	if err := ValidatePassword("short"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("5-char password should fail, got %v", err)
	}
	if err := ValidatePassword(strings.Repeat("x", 129)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("over-long password should fail, got %v", err)
	}
	if err := ValidatePassword(strings.Repeat("x", 128)); err != nil {
		t.Fatalf("128-char password should pass: %v", err)
	}
}

func TestValidateRegistrationCollectsAllFields(t *testing.T) {
	t.Parallel()

	err := ValidateRegistration("", "nope", "abc")
	var fields FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("expected field errors, got %v", err)
	}
	for _, field := range []string{"name", "email", "password"} {
		if _, ok := fields[field]; !ok {
			t.Fatalf("missing error for %q: %v", field, fields)
		}
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("field errors must match ErrInvalidInput")
	}

	if err := ValidateRegistration("Ada", "ada@example.com", "secret-pass"); err != nil {
		t.Fatalf("valid registration should pass: %v", err)
	}
}

func TestValidRole(t *testing.T) {
	t.Parallel()

	if !ValidRole("user") || !ValidRole("admin") {
		t.Fatalf("known roles should validate")
	}
	for _, raw := range []string{"", "USER", "owner", "Admin"} {
		if ValidRole(raw) {
			t.Fatalf("%q should not validate", raw)
		}
	}
}
