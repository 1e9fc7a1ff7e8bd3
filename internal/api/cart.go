package api

import (
	"context"

	"github.com/pizzahouse/storefront/internal/models"
)

// Cart endpoints all return the full authoritative cart. Callers replace
// their local mirror with the response rather than patching it.

func (c *Client) GetCart(ctx context.Context) (*models.Cart, error) {
	var cart models.Cart
	if err := c.get(ctx, "/cart", &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) AddCartItem(ctx context.Context, item models.CartItem) (*models.Cart, error) {
	var cart models.Cart
	if err := c.post(ctx, "/cart/items", item, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

type updateCartItemRequest struct {
	Quantity uint `json:"quantity"`
}

func (c *Client) UpdateCartItem(ctx context.Context, itemID string, quantity uint) (*models.Cart, error) {
	var cart models.Cart
	if err := c.put(ctx, "/cart/items/"+itemID, updateCartItemRequest{Quantity: quantity}, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) RemoveCartItem(ctx context.Context, itemID string) (*models.Cart, error) {
	var cart models.Cart
	if err := c.delete(ctx, "/cart/items/"+itemID, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.delete(ctx, "/cart", nil)
}

// SyncCart submits a merged cart as the new authoritative one. The server may
// reprice or drop lines; the response, not the submitted cart, is what the
// caller adopts.
func (c *Client) SyncCart(ctx context.Context, cart models.Cart) (*models.Cart, error) {
	var synced models.Cart
	if err := c.put(ctx, "/cart/sync", cart, &synced); err != nil {
		return nil, err
	}
	return &synced, nil
}
