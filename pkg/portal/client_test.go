package portal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginDecodesUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "juan@gmail.com", payload["email"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]any{
				"id":         42,
				"email":      "juan@gmail.com",
				"first_name": "Juan",
				"role":       "patient",
			},
		})
	}))
	defer srv.Close()

	user, err := NewClient(srv.URL).Login(context.Background(), "juan@gmail.com", "Password123!")
	require.NoError(t, err)
	assert.Equal(t, 42, user.ID)
	assert.Equal(t, "patient", user.Role)
	assert.False(t, user.RequiresPasswordChange)
}

func TestErrorBodyBecomesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Invalid credentials"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Login(context.Background(), "juan@gmail.com", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
}

func TestErrorWithoutBodyGetsGenericMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream timeout"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Login(context.Background(), "juan@gmail.com", "pw")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "server returned status 502", apiErr.Message)
}

func TestMalformedSuccessBodyCarriesExcerpt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>proxy landing page</html>"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Login(context.Background(), "juan@gmail.com", "pw")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid server response")
	assert.Contains(t, err.Error(), "<html>")
}

func TestChangePasswordSendsPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/change-password", r.URL.Path)
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "old", payload["current_password"])
		assert.Equal(t, "NewPassword1!", payload["new_password"])
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).ChangePassword(context.Background(), "juan@gmail.com", "old", "NewPassword1!")
	require.NoError(t, err)
}
