package api

import (
	"context"

	"github.com/pizzahouse/storefront/internal/models"
	"github.com/shopspring/decimal"
)

func (c *Client) DeliveryZones(ctx context.Context) ([]models.DeliveryZone, error) {
	var zones []models.DeliveryZone
	if err := c.get(ctx, "/delivery-zones", &zones); err != nil {
		return nil, err
	}
	return zones, nil
}

func (c *Client) ZoneTimeSlots(ctx context.Context, zoneID string, date string) ([]models.TimeSlot, error) {
	var slots []models.TimeSlot
	path := "/delivery-zones/" + zoneID + "/time-slots" + query(map[string]string{"date": date})
	if err := c.get(ctx, path, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

type availabilityRequest struct {
	Coordinates models.Coordinates `json:"coordinates"`
	OrderAmount decimal.Decimal    `json:"orderAmount"`
}

// CheckDeliveryAvailability asks the server whether the coordinates fall in a
// serviceable zone for the given order amount. The selection state stores
// only confirmed results from this call.
func (c *Client) CheckDeliveryAvailability(ctx context.Context, coords models.Coordinates, orderAmount decimal.Decimal) (*models.DeliveryAvailability, error) {
	var result models.DeliveryAvailability
	req := availabilityRequest{Coordinates: coords, OrderAmount: orderAmount}
	if err := c.post(ctx, "/delivery-zones/check-availability", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Admin zone management.

func (c *Client) CreateDeliveryZone(ctx context.Context, zone models.DeliveryZone) (*models.DeliveryZone, error) {
	var created models.DeliveryZone
	if err := c.post(ctx, "/delivery-zones", zone, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateDeliveryZone(ctx context.Context, zoneID string, zone models.DeliveryZone) (*models.DeliveryZone, error) {
	var updated models.DeliveryZone
	if err := c.put(ctx, "/delivery-zones/"+zoneID, zone, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteDeliveryZone(ctx context.Context, zoneID string) error {
	return c.delete(ctx, "/delivery-zones/"+zoneID, nil)
}

func (c *Client) UpdateTimeSlot(ctx context.Context, zoneID string, slot models.TimeSlot) (*models.TimeSlot, error) {
	var updated models.TimeSlot
	if err := c.put(ctx, "/delivery-zones/"+zoneID+"/time-slots", slot, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
