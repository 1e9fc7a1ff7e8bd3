package api

import (
	"context"

	"github.com/pizzahouse/storefront/internal/models"
)

// Printer settings live behind the admin back-office.

func (c *Client) PrinterSettings(ctx context.Context) (*models.PrinterSettings, error) {
	var settings models.PrinterSettings
	if err := c.get(ctx, "/printer-settings", &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (c *Client) UpdatePrinterSettings(ctx context.Context, settings models.PrinterSettings) (*models.PrinterSettings, error) {
	var updated models.PrinterSettings
	if err := c.put(ctx, "/printer-settings", settings, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) TestPrinter(ctx context.Context) error {
	return c.post(ctx, "/printer-settings/test", nil, nil)
}

func (c *Client) PrintOrder(ctx context.Context, receipt models.Receipt) error {
	return c.post(ctx, "/printer-settings/print-order", receipt, nil)
}

func (c *Client) PrintOrderUpdate(ctx context.Context, receipt models.Receipt) error {
	return c.post(ctx, "/printer-settings/print-update", receipt, nil)
}
