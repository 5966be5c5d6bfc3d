package handler

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"safebox/internal/errors"
	"safebox/internal/middleware"
	"safebox/internal/model"
	"safebox/internal/service"
)

// UserHandler bundles HTTP handlers.
type UserHandler struct {
	svc      service.UserService
	sessions service.AuthService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService, sessions service.AuthService) *UserHandler {
	return &UserHandler{svc: svc, sessions: sessions}
}

// GetOrCreateRequest identifies a user by the email the client verified.
type GetOrCreateRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Name  string `json:"name" validate:"omitempty,max=255"`
}

// UserResponse carries the user and a fresh session token.
type UserResponse struct {
	Success   bool        `json:"success"`
	Data      *model.User `json:"data"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// GetOrCreate godoc
// @Summary Get or create user by email
// @Description Returns the user owning the email, creating it on first sight, plus a session token.
// @Tags users
// @Accept json
// @Produce json
// @Param request body GetOrCreateRequest true "User identity"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/get-or-create [post]
func (h *UserHandler) GetOrCreate(c echo.Context) error {
	var req GetOrCreateRequest
	if err := c.Bind(&req); err != nil {
		return fail(fmt.Errorf("%w: %v", errors.ErrInvalidRequest, err))
	}
	req.Email = service.NormalizeEmail(req.Email)
	if err := c.Validate(&req); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Field() == "Email" {
			return fail(errors.ErrInvalidEmail)
		}
		return fail(fmt.Errorf("%w: %v", errors.ErrInvalidRequest, err))
	}

	user, _, err := h.svc.GetOrCreate(c.Request().Context(), req.Email, req.Name)
	if err != nil {
		return fail(err)
	}
	session, err := h.sessions.IssueSession(user)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, UserResponse{
		Success:   true,
		Data:      user,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	})
}

// Logout godoc
// @Summary End the current session
// @Description Revokes the bearer token. Header based identities have nothing to revoke.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Security UserIDHeader
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/logout [post]
func (h *UserHandler) Logout(c echo.Context) error {
	if err := h.sessions.Logout(c.Request().Context(), middleware.SessionClaims(c)); err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Logged out"})
}
