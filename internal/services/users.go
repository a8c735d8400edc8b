package services

import (
	"context"
	"net/http"

	"github.com/desertthunder/kino/internal/models"
)

// Ack is the body of endpoints that only confirm an action.
type Ack struct {
	Message string `json:"message,omitempty"`
	Token   string `json:"token,omitempty"`
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.Token, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	var token models.Token
	if err := c.doRequest(ctx, http.MethodPost, "/users/login", nil, creds, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// Register creates an account. The confirmation field is checked locally and never sent.
func (c *Client) Register(ctx context.Context, reg models.Registration) (*models.User, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	var user models.User
	if err := c.doRequest(ctx, http.MethodPost, "/users/register", nil, reg, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CurrentUser returns the session's user. Anonymous sessions fail with an
// error matching [shared.ErrNotAuthenticated].
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.doRequest(ctx, http.MethodGet, "/users/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Profile returns the extended profile of the session's user.
func (c *Client) Profile(ctx context.Context) (*models.Profile, error) {
	var profile models.Profile
	if err := c.doRequest(ctx, http.MethodGet, "/users/me/profile", nil, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdatePassword changes the session user's password.
func (c *Client) UpdatePassword(ctx context.Context, change models.PasswordChange) (*models.User, error) {
	if err := change.Validate(); err != nil {
		return nil, err
	}

	var user models.User
	if err := c.doRequest(ctx, http.MethodPut, "/users/me/password", nil, change, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ForgotPassword starts a password reset for email.
func (c *Client) ForgotPassword(ctx context.Context, email string) (*Ack, error) {
	var ack Ack
	body := map[string]string{"email": email}
	if err := c.doRequest(ctx, http.MethodPost, "/users/forgot-password", nil, body, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// ResetPassword completes a password reset.
func (c *Client) ResetPassword(ctx context.Context, reset models.PasswordReset) (*Ack, error) {
	if err := reset.Validate(); err != nil {
		return nil, err
	}

	var ack Ack
	if err := c.doRequest(ctx, http.MethodPost, "/users/reset-password", nil, reset, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}
