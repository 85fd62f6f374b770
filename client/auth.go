package client

import (
	"context"
	"io"

	"yowa/models"
)

// Login exchanges credentials for a token and identity.
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	resp, err := c.request().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&out).
		Post("/api/auth/login")
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and signs it in.
func (c *Client) Register(ctx context.Context, name, email, password string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	resp, err := c.request().
		SetContext(ctx).
		SetBody(map[string]string{"name": name, "email": email, "password": password}).
		SetResult(&out).
		Post("/api/auth/register")
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile renames the current account.
func (c *Client) UpdateProfile(ctx context.Context, name string) (*models.User, error) {
	var out models.User
	resp, err := c.request().
		SetContext(ctx).
		SetBody(map[string]string{"name": name}).
		SetResult(&out).
		Put("/api/auth/profile")
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateAvatar uploads a new avatar image. The binary itself is owned by the
// remote store; only the returned reference is kept locally.
func (c *Client) UpdateAvatar(ctx context.Context, filename string, r io.Reader) (*models.AvatarResponse, error) {
	var out models.AvatarResponse
	resp, err := c.request().
		SetContext(ctx).
		SetMultipartField("avatar", filename, "application/octet-stream", r).
		SetResult(&out).
		Put("/api/auth/profile/avatar")
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUsers returns every account. Admin only.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	resp, err := c.request().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/auth")
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return out, nil
}
