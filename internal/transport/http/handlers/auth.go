package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-accounts/internal/usecase"
)

// AuthHandler exposes authentication endpoints.
type AuthHandler struct {
	auth *usecase.AuthService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *usecase.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login godoc
// @Summary Authenticate an account with credentials
// @Description Validates the provided email and password, returning access and refresh tokens on success.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body AuthLoginRequest true "Login request"
// @Success 200 {object} AuthLoginResponse "Successfully authenticated"
// @Failure 400 {object} ErrorResponse "Invalid request payload"
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Failure 403 {object} ErrorResponse "Account locked or not activated"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/v1/accounts/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req AuthLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		h.respondLoginError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthLoginResponse{
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    result.Tokens.ExpiresIn,
		Account:      newAccountSummary(result.Account),
	})
}

func (h *AuthHandler) respondLoginError(c *gin.Context, err error) {
	var failedLogin *usecase.FailedLoginError
	if errors.As(err, &failedLogin) {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, failedLogin.Error()))
		return
	}

	switch {
	case errors.Is(err, usecase.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid email or password"))
	case errors.Is(err, usecase.ErrAccountLocked):
		c.JSON(http.StatusForbidden, NewErrorResponse(c, "account locked due to too many failed login attempts"))
	case errors.Is(err, usecase.ErrAccountNotActivated):
		c.JSON(http.StatusForbidden, NewErrorResponse(c, "account is not activated"))
	default:
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "authentication failed"))
	}
}

// Refresh godoc
// @Summary Refresh an access token
// @Description Issues a new access token using a valid refresh token. The refresh token itself is returned unchanged.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body TokenRefreshRequest true "Refresh request"
// @Success 200 {object} TokenRefreshResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/accounts/token/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req TokenRefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "refresh_token is required"))
		return
	}

	result, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidRefreshToken):
			c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid refresh token"))
		case errors.Is(err, usecase.ErrExpiredRefreshToken):
			c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "refresh token expired"))
		case errors.Is(err, usecase.ErrAccountLocked):
			c.JSON(http.StatusForbidden, NewErrorResponse(c, "account locked"))
		case errors.Is(err, usecase.ErrAccountNotActivated):
			c.JSON(http.StatusForbidden, NewErrorResponse(c, "account is not activated"))
		default:
			c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to refresh token"))
		}
		return
	}

	c.JSON(http.StatusOK, TokenRefreshResponse{
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    result.Tokens.ExpiresIn,
	})
}
