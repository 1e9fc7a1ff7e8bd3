package api

import (
	"context"

	"github.com/pizzahouse/storefront/internal/models"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type UpdateDetailsRequest struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.post(ctx, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.post(ctx, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var resp struct {
		User models.User `json:"user"`
	}
	if err := c.get(ctx, "/auth/me", &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) UpdateDetails(ctx context.Context, req UpdateDetailsRequest) (*models.User, error) {
	var resp struct {
		User models.User `json:"user"`
	}
	if err := c.put(ctx, "/auth/updatedetails", req, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) UpdatePassword(ctx context.Context, req UpdatePasswordRequest) error {
	return c.put(ctx, "/auth/updatepassword", req, nil)
}
