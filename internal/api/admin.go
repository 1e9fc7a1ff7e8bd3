package api

import (
	"context"

	"github.com/pizzahouse/storefront/internal/models"
)

// User management, admin only.

func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.get(ctx, "/admin/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) User(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := c.get(ctx, "/admin/users/"+userID, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateUser(ctx context.Context, userID string, user models.User) (*models.User, error) {
	var updated models.User
	if err := c.put(ctx, "/admin/users/"+userID, user, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	return c.delete(ctx, "/admin/users/"+userID, nil)
}

type setRoleRequest struct {
	Role models.Role `json:"role"`
}

func (c *Client) SetUserRole(ctx context.Context, userID string, role models.Role) (*models.User, error) {
	var updated models.User
	if err := c.put(ctx, "/admin/users/"+userID+"/role", setRoleRequest{Role: role}, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
