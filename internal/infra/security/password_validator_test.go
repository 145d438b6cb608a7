package security

import (
	"errors"
	"testing"
)

func TestDefaultPasswordValidatorSuccess(t *testing.T) {
	validator := DefaultPasswordValidator()

	if err := validator.Validate("C0mplex!Passphrase#2025"); err != nil {
		t.Fatalf("expected password to pass validation, got %v", err)
	}
}

func TestDefaultPasswordValidatorViolations(t *testing.T) {
	validator := DefaultPasswordValidator()

	assertViolation := func(password, expectedCode string) {
		t.Helper()
		err := validator.Validate(password)
		if err == nil {
			t.Fatalf("expected validation error for %s", expectedCode)
		}
		var vErr *PasswordValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected PasswordValidationError, got %T", err)
		}
		if vErr.Code != expectedCode {
			t.Fatalf("expected %s code, got %s", expectedCode, vErr.Code)
		}
	}

	assertViolation("Short1", "min_length")
	assertViolation("lowercase1only", "uppercase")
	assertViolation("UPPERCASE1ONLY", "lowercase")
	assertViolation("NoDigitsHere", "digit")
	assertViolation("Password123", "weak_password")
}

func TestCustomPasswordValidator(t *testing.T) {
	validator := NewPasswordValidator(
		MinLengthRule(4),
		RequireDigitRule(),
		RequireDifferentFrom("existing1"),
	)

	if err := validator.Validate("existing1"); err == nil {
		t.Fatalf("expected validation error when new password equals comparator")
	}

	if err := validator.Validate("diff"); err == nil {
		t.Fatalf("expected validation error for missing digit")
	}

	if err := validator.Validate("diff1"); err != nil {
		t.Fatalf("expected password to pass custom validation, got %v", err)
	}
}
