package usecase

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials indicates the provided email or password are incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountLocked indicates the account is locked after too many failed logins.
	ErrAccountLocked = errors.New("account locked due to too many failed login attempts")
	// ErrAccountNotActivated indicates the account has not completed email activation.
	ErrAccountNotActivated = errors.New("account is not activated")
	// ErrAccountAlreadyActive indicates activation was attempted on an active account.
	ErrAccountAlreadyActive = errors.New("account is already activated")
	// ErrAccountNotFound indicates no account matches the requested identifier.
	ErrAccountNotFound = errors.New("account not found")
	// ErrActivationTokenInvalid indicates the activation token is unknown.
	ErrActivationTokenInvalid = errors.New("activation token invalid")
	// ErrActivationTokenExpired indicates the activation token exists but is expired.
	ErrActivationTokenExpired = errors.New("activation token expired")
	// ErrResetTokenInvalid indicates the reset token is unknown or expired.
	ErrResetTokenInvalid = errors.New("password reset token invalid or expired")
	// ErrInvalidPhoneNumber indicates the supplied phone number is not a plausible E.164 number.
	ErrInvalidPhoneNumber = errors.New("invalid phone number format")
	// ErrPasswordPolicyViolation indicates the password does not satisfy complexity requirements.
	ErrPasswordPolicyViolation = errors.New("password does not meet complexity requirements")
	// ErrPasswordReused indicates the new password matches the current one or a recent one.
	ErrPasswordReused = errors.New("password was used recently; choose a different password")
	// ErrCurrentPasswordInvalid indicates the supplied current password did not match.
	ErrCurrentPasswordInvalid = errors.New("current password is incorrect")
	// ErrInvalidRefreshToken indicates the provided refresh token is malformed or mistyped.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrExpiredRefreshToken indicates the provided refresh token has expired.
	ErrExpiredRefreshToken = errors.New("refresh token expired")
	// ErrInvalidAccessToken indicates the provided access token is malformed or mistyped.
	ErrInvalidAccessToken = errors.New("invalid access token")
	// ErrExpiredAccessToken indicates the provided access token has expired.
	ErrExpiredAccessToken = errors.New("access token expired")
)

// FailedLoginError reports a wrong password along with the attempts left
// before the account locks. Remaining attempts are deliberately disclosed.
type FailedLoginError struct {
	Remaining int
}

// Error implements error.
func (e *FailedLoginError) Error() string {
	if e.Remaining == 1 {
		return fmt.Sprintf("%s. 1 attempt remaining", ErrInvalidCredentials)
	}
	return fmt.Sprintf("%s. %d attempts remaining", ErrInvalidCredentials, e.Remaining)
}

// Unwrap lets callers match with errors.Is(err, ErrInvalidCredentials).
func (e *FailedLoginError) Unwrap() error {
	return ErrInvalidCredentials
}
