package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brgyhealth/bhc_api/internal/models"
	"github.com/brgyhealth/bhc_api/internal/service"
	"github.com/brgyhealth/bhc_api/internal/utils"
	"github.com/brgyhealth/bhc_api/pkg/portal"
)

// AuthHandler handles portal login and the forced-password-change sub-flow.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Portal   string `json:"portal" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates against the core backend and applies the role-portal
// gate.
// POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "portal, email, and password are required")
		return
	}

	result, err := h.auth.Login(c.Request.Context(), models.Portal(req.Portal), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrInvalidPortal):
			utils.Error(c, http.StatusBadRequest, "INVALID_PORTAL", "Unknown portal")
		case errors.Is(err, utils.ErrAccessDenied):
			utils.Error(c, http.StatusForbidden, "ACCESS_DENIED", "This account cannot sign in through the selected portal")
		case errors.Is(err, utils.ErrPasswordChange):
			utils.Error(c, http.StatusConflict, "PASSWORD_CHANGE_REQUIRED", "A password change is required before signing in")
		default:
			var apiErr *portal.APIError
			if errors.As(err, &apiErr) {
				utils.Error(c, http.StatusUnauthorized, "LOGIN_FAILED", apiErr.Message)
				return
			}
			utils.Error(c, http.StatusBadGateway, "UPSTREAM_ERROR", err.Error())
		}
		return
	}

	utils.Success(c, http.StatusOK, "Login successful", result)
}

type changePasswordRequest struct {
	Email           string `json:"email" binding:"required"`
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// ChangePassword completes a forced password change.
// POST /v1/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "email, current_password, and new_password are required")
		return
	}

	err := h.auth.CompletePasswordChange(c.Request.Context(), req.Email, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, utils.ErrWeakPassword) {
			utils.Error(c, http.StatusBadRequest, "WEAK_PASSWORD", "Password must be at least 8 characters with an uppercase letter and a symbol, and contain no spaces")
			return
		}
		var apiErr *portal.APIError
		if errors.As(err, &apiErr) {
			utils.Error(c, http.StatusBadRequest, "CHANGE_FAILED", apiErr.Message)
			return
		}
		utils.Error(c, http.StatusBadGateway, "UPSTREAM_ERROR", err.Error())
		return
	}

	utils.Success(c, http.StatusOK, "Password changed", nil)
}
