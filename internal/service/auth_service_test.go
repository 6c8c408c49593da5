package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brgyhealth/bhc_api/internal/models"
	"github.com/brgyhealth/bhc_api/internal/utils"
	"github.com/brgyhealth/bhc_api/pkg/portal"
)

func newTestAuthService(t *testing.T, backend http.Handler) (*AuthService, *atomic.Int64) {
	t.Helper()
	utils.SetJWTSecret("test-secret")

	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		backend.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewAuthService(portal.NewClient(srv.URL)), &requests
}

func loginBackend(role string, requiresChange bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/login" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]any{
				"id":                       7,
				"email":                    "juan@gmail.com",
				"first_name":               "Juan",
				"last_name":                "Cruz",
				"role":                     role,
				"requires_password_change": requiresChange,
			},
		})
	})
}

func TestLoginPortalGateRefusesMismatchedRole(t *testing.T) {
	// Valid patient credentials declared against the admin portal.
	svc, _ := newTestAuthService(t, loginBackend("Patient", false))

	result, err := svc.Login(context.Background(), models.PortalAdmin, "juan@gmail.com", "Password123!")
	require.ErrorIs(t, err, utils.ErrAccessDenied)
	assert.Nil(t, result, "no token may be issued on a portal mismatch")
}

func TestLoginSuccessIssuesToken(t *testing.T) {
	svc, _ := newTestAuthService(t, loginBackend("Patient", false))

	result, err := svc.Login(context.Background(), models.PortalPatient, "juan@gmail.com", "Password123!")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, models.RolePatient, result.Role)
	assert.Equal(t, "juan@gmail.com", result.User.Email)
}

func TestLoginNormalizesRoleBeforeGate(t *testing.T) {
	// The backend's spelling differs from the enum; the gate still admits it.
	svc, _ := newTestAuthService(t, loginBackend("Medical Staff", false))

	result, err := svc.Login(context.Background(), models.PortalStaff, "staff@doh.gov.ph", "Password123!")
	require.NoError(t, err)
	assert.Equal(t, models.RoleMedicalStaff, result.Role)
}

func TestLoginForcedPasswordChange(t *testing.T) {
	svc, _ := newTestAuthService(t, loginBackend("Patient", true))

	_, err := svc.Login(context.Background(), models.PortalPatient, "juan@gmail.com", "Password123!")
	require.ErrorIs(t, err, utils.ErrPasswordChange)
}

func TestLoginInvalidPortalSkipsBackend(t *testing.T) {
	svc, requests := newTestAuthService(t, loginBackend("Patient", false))

	_, err := svc.Login(context.Background(), models.Portal("clinic"), "juan@gmail.com", "Password123!")
	require.ErrorIs(t, err, utils.ErrInvalidPortal)
	assert.Zero(t, requests.Load())
}

func TestLoginBadCredentialsSurfaceServerMessage(t *testing.T) {
	svc, _ := newTestAuthService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Invalid credentials"})
	}))

	_, err := svc.Login(context.Background(), models.PortalPatient, "juan@gmail.com", "wrong")
	var apiErr *portal.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
}

func TestCompletePasswordChangeRejectsWeakPassword(t *testing.T) {
	svc, requests := newTestAuthService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	err := svc.CompletePasswordChange(context.Background(), "juan@gmail.com", "Old123!pass", "weak")
	require.ErrorIs(t, err, utils.ErrWeakPassword)
	assert.Zero(t, requests.Load(), "weak passwords are refused before any network call")
}

func TestCompletePasswordChangeSuccess(t *testing.T) {
	svc, _ := newTestAuthService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/change-password", r.URL.Path)
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "NewPassword1!", payload["new_password"])
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	}))

	err := svc.CompletePasswordChange(context.Background(), "juan@gmail.com", "Old123!pass", "NewPassword1!")
	require.NoError(t, err)
}
