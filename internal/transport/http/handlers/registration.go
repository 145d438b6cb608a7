package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-accounts/internal/repository"
	"github.com/arklim/social-platform-accounts/internal/usecase"
)

// RegistrationHandler exposes endpoints for account registration and activation.
type RegistrationHandler struct {
	registration *usecase.RegistrationService
}

func NewRegistrationHandler(registration *usecase.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registration: registration}
}

// Register godoc
// @Summary Register a new account
// @Description Creates an unactivated account and emails an activation link.
// @Tags Registration
// @Accept json
// @Produce json
// @Param request body RegistrationRequest true "Registration request"
// @Success 201 {object} RegistrationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/accounts/register [post]
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	dateOfBirth, err := time.Parse("2006-01-02", strings.TrimSpace(req.DateOfBirth))
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "date_of_birth must use YYYY-MM-DD format"))
		return
	}

	input := usecase.RegisterInput{
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		DateOfBirth: dateOfBirth,
		Email:       strings.TrimSpace(req.Email),
		Phone:       strings.TrimSpace(req.Phone),
		Password:    req.Password,
	}

	account, err := h.registration.Register(c.Request.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			c.JSON(http.StatusConflict, NewErrorResponse(c, "email already registered"))
		case errors.Is(err, repository.ErrDuplicatePhone):
			c.JSON(http.StatusConflict, NewErrorResponse(c, "phone already registered"))
		case errors.Is(err, usecase.ErrPasswordPolicyViolation):
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "password does not meet requirements"))
		case errors.Is(err, usecase.ErrInvalidPhoneNumber):
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "phone number is invalid"))
		default:
			c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to register account"))
		}
		return
	}

	c.JSON(http.StatusCreated, RegistrationResponse{
		Account: newAccountSummary(account),
		Message: "Registration successful. Please check your email to activate your account.",
	})
}

// Activate godoc
// @Summary Activate a registered account
// @Description Confirms the emailed activation token and enables the account for login.
// @Tags Registration
// @Accept json
// @Produce json
// @Param request body ActivationRequest true "Activation request"
// @Success 200 {object} ActivationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/accounts/activate [post]
func (h *RegistrationHandler) Activate(c *gin.Context) {
	var req ActivationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid activation payload"))
		return
	}

	account, err := h.registration.Activate(c.Request.Context(), strings.TrimSpace(req.Token))
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrActivationTokenInvalid):
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "activation token is invalid"))
		case errors.Is(err, usecase.ErrActivationTokenExpired):
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "activation token has expired"))
		case errors.Is(err, usecase.ErrAccountAlreadyActive):
			c.JSON(http.StatusConflict, NewErrorResponse(c, "account is already active"))
		default:
			c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to activate account"))
		}
		return
	}

	c.JSON(http.StatusOK, ActivationResponse{
		Message: "account activated",
		Account: newAccountSummary(account),
	})
}
