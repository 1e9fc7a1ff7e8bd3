package api

import (
	"context"

	"github.com/pizzahouse/storefront/internal/models"
)

type CreateOrderRequest struct {
	Items         []models.CartItem    `json:"items"`
	OrderType     models.OrderType     `json:"orderType"`
	DeliveryInfo  *models.DeliveryInfo `json:"deliveryInfo,omitempty"`
	PickupInfo    *models.PickupInfo   `json:"pickupInfo,omitempty"`
	PaymentMethod string               `json:"paymentMethod"`
}

func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*models.Order, error) {
	var order models.Order
	if err := c.post(ctx, "/orders", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) MyOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := c.get(ctx, "/orders", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) Order(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	if err := c.get(ctx, "/orders/"+orderID, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) OrderTracking(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	if err := c.get(ctx, "/orders/"+orderID+"/tracking", &order); err != nil {
		return nil, err
	}
	return &order, nil
}

type updateStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error) {
	var order models.Order
	if err := c.put(ctx, "/orders/"+orderID+"/status", updateStatusRequest{Status: status}, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) CancelOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	if err := c.post(ctx, "/orders/"+orderID+"/cancel", nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) DeleteOrder(ctx context.Context, orderID string) error {
	return c.delete(ctx, "/orders/"+orderID, nil)
}

func (c *Client) AllOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := c.get(ctx, "/orders/admin/orders", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
