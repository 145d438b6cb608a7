package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// AccountSummary describes a minimal view of an account returned by the API.
type AccountSummary struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	DateOfBirth string    `json:"date_of_birth"`
	Email       string    `json:"email"`
	Phone       *string   `json:"phone,omitempty"`
	IsActive    bool      `json:"is_active"`
	IsLocked    bool      `json:"is_locked"`
	CreatedAt   time.Time `json:"created_at"`
}

// RegistrationRequest defines the account registration payload.
type RegistrationRequest struct {
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	DateOfBirth string `json:"date_of_birth" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone" binding:"omitempty"`
	Password    string `json:"password" binding:"required,min=8"`
}

// RegistrationResponse contains registration results and next steps.
type RegistrationResponse struct {
	Account AccountSummary `json:"account"`
	Message string         `json:"message"`
}

// ActivationRequest holds the activation token payload.
type ActivationRequest struct {
	Token string `json:"token" binding:"required"`
}

// ActivationResponse is returned after a successful activation.
type ActivationResponse struct {
	Message string         `json:"message"`
	Account AccountSummary `json:"account"`
}

// AuthLoginRequest defines the payload for the login endpoint.
type AuthLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthLoginResponse describes the response returned for a successful login.
type AuthLoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	TokenType    string         `json:"token_type"`
	ExpiresIn    int64          `json:"expires_in"`
	Account      AccountSummary `json:"account"`
}

// TokenRefreshRequest represents the payload to refresh an access token.
type TokenRefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenRefreshResponse contains tokens issued by the refresh endpoint.
type TokenRefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// PasswordChangeRequest captures a password change request body.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// PasswordForgotRequest represents a password reset initiation payload.
type PasswordForgotRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// PasswordResetRequest captures a password reset confirmation payload.
type PasswordResetRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UnlockRequest identifies the account to unlock.
type UnlockRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// AccountListResponse wraps a paginated list of accounts.
type AccountListResponse struct {
	Accounts   []AccountSummary `json:"accounts"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadyResponse describes readiness probe results with dependency checks.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// newAccountSummary converts a domain account to a summary suitable for API responses.
func newAccountSummary(account domain.Account) AccountSummary {
	summary := AccountSummary{
		ID:          account.ID,
		FirstName:   account.FirstName,
		LastName:    account.LastName,
		DateOfBirth: account.DateOfBirth.UTC().Format("2006-01-02"),
		Email:       account.Email,
		IsActive:    account.IsActive,
		IsLocked:    account.IsLocked,
		CreatedAt:   account.CreatedAt,
	}

	if account.Phone != nil {
		phone := strings.TrimSpace(*account.Phone)
		if phone != "" {
			summary.Phone = &phone
		}
	}

	return summary
}

func newAccountSummaries(accounts []domain.Account) []AccountSummary {
	summaries := make([]AccountSummary, 0, len(accounts))
	for _, account := range accounts {
		summaries = append(summaries, newAccountSummary(account))
	}
	return summaries
}
