package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// LoginUser is the account record returned on a successful credential check.
type LoginUser struct {
	ID                     int    `json:"id"`
	Email                  string `json:"email"`
	FirstName              string `json:"first_name"`
	LastName               string `json:"last_name"`
	Role                   string `json:"role"`
	RequiresPasswordChange bool   `json:"requires_password_change"`
}

// LoginResponse wraps the user returned by /api/login.
type LoginResponse struct {
	User LoginUser `json:"user"`
}

// Login checks credentials against the backend.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginUser, error) {
	payload, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/login", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	var result LoginResponse
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result.User, nil
}

// ChangePassword sets a new password for an account flagged with a forced
// password change.
func (c *Client) ChangePassword(ctx context.Context, email, currentPassword, newPassword string) error {
	payload, err := json.Marshal(map[string]string{
		"email":            email,
		"current_password": currentPassword,
		"new_password":     newPassword,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/change-password", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	return decodeResponse(resp, nil)
}
