package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/brgyhealth/bhc_api/internal/models"
	"github.com/brgyhealth/bhc_api/internal/utils"
	"github.com/brgyhealth/bhc_api/pkg/portal"
)

// LoginResult is what a successful, fully-gated login yields.
type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
	Role  models.Role `json:"role"`
}

// AuthService performs portal-aware authentication against the core backend.
// The portal gate runs after the credential check: valid credentials with a
// role the declared portal does not admit are refused, and no session token
// is issued.
type AuthService struct {
	portal *portal.Client
}

// NewAuthService creates a new AuthService.
func NewAuthService(portalClient *portal.Client) *AuthService {
	return &AuthService{portal: portalClient}
}

// Login checks credentials and applies the role-portal gate.
// Accounts flagged for a forced password change are blocked with
// ErrPasswordChange until CompletePasswordChange succeeds.
func (s *AuthService) Login(ctx context.Context, declaredPortal models.Portal, email, password string) (*LoginResult, error) {
	if !declaredPortal.Valid() {
		return nil, utils.ErrInvalidPortal
	}

	user, err := s.portal.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	role := models.NormalizeRole(user.Role)
	if !declaredPortal.Allows(role) {
		log.Warn().
			Str("portal", string(declaredPortal)).
			Str("role", string(role)).
			Msg("portal gate refused login")
		return nil, utils.ErrAccessDenied
	}

	if user.RequiresPasswordChange {
		return nil, utils.ErrPasswordChange
	}

	token, err := utils.GenerateJWT(user.ID, user.Email, string(role), string(declaredPortal))
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token: token,
		User: models.User{
			ID:        user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Role:      user.Role,
		},
		Role: role,
	}, nil
}

// CompletePasswordChange finishes the forced-password-change sub-flow. The
// new password must satisfy the same complexity rule registration enforces;
// on success the caller logs in again through the normal path.
func (s *AuthService) CompletePasswordChange(ctx context.Context, email, currentPassword, newPassword string) error {
	if !ValidPassword(newPassword) {
		return utils.ErrWeakPassword
	}
	return s.portal.ChangePassword(ctx, email, currentPassword, newPassword)
}
