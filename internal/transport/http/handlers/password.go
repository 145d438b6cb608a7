package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-accounts/internal/transport/http/middleware"
	"github.com/arklim/social-platform-accounts/internal/usecase"
)

// PasswordHandler exposes password change and reset endpoints.
type PasswordHandler struct {
	passwords *usecase.PasswordService
}

// NewPasswordHandler constructs PasswordHandler.
func NewPasswordHandler(passwords *usecase.PasswordService) *PasswordHandler {
	return &PasswordHandler{passwords: passwords}
}

// Change godoc
// @Summary Change the caller's password
// @Description Verifies the current password and replaces it, rejecting recently used passwords.
// @Tags Password
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PasswordChangeRequest true "Password change request"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/accounts/password/change [post]
func (h *PasswordHandler) Change(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req PasswordChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid password change payload"))
		return
	}

	err := h.passwords.ChangePassword(c.Request.Context(), accountID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrCurrentPasswordInvalid):
			c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "current password is incorrect"))
		case errors.Is(err, usecase.ErrPasswordPolicyViolation):
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "password does not meet requirements"))
		case errors.Is(err, usecase.ErrPasswordReused):
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "password was used recently; choose a different password"))
		case errors.Is(err, usecase.ErrAccountNotFound):
			c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		default:
			c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to change password"))
		}
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password changed"})
}

// Forgot godoc
// @Summary Start a password reset
// @Description Emails a reset link when the address is registered. Always responds 202 so addresses cannot be probed.
// @Tags Password
// @Accept json
// @Produce json
// @Param request body PasswordForgotRequest true "Password reset initiation request"
// @Success 202 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/accounts/password/forgot [post]
func (h *PasswordHandler) Forgot(c *gin.Context) {
	var req PasswordForgotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid password reset payload"))
		return
	}

	if err := h.passwords.ForgotPassword(c.Request.Context(), strings.TrimSpace(req.Email)); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to start password reset"))
		return
	}

	c.JSON(http.StatusAccepted, MessageResponse{
		Message: "if the email exists, a password reset link has been sent",
	})
}

// Reset godoc
// @Summary Complete a password reset
// @Description Exchanges a valid reset token for a new password.
// @Tags Password
// @Accept json
// @Produce json
// @Param request body PasswordResetRequest true "Password reset confirmation request"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/accounts/password/reset [post]
func (h *PasswordHandler) Reset(c *gin.Context) {
	var req PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid password reset payload"))
		return
	}

	err := h.passwords.ResetPassword(c.Request.Context(), strings.TrimSpace(req.Token), req.NewPassword)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrResetTokenInvalid, Status: http.StatusBadRequest, Message: "password reset token invalid or expired"},
			{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusBadRequest, Message: "password does not meet requirements"},
			{Err: usecase.ErrPasswordReused, Status: http.StatusBadRequest, Message: "password was used recently; choose a different password"},
		}, http.StatusInternalServerError, "failed to reset password")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password reset"})
}
