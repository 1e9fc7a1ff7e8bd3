package orders

import (
	"strings"
	"time"

	"github.com/pizzahouse/storefront/internal/models"
)

// UpdateType classifies why an order is being printed again.
type UpdateType string

const (
	UpdateNew      UpdateType = "new"
	UpdateChanged  UpdateType = "update"
	UpdateComplete UpdateType = "complete"
	UpdateCancel   UpdateType = "cancel"
)

// ShouldPrint consults the printer settings for the given update type. A
// disabled printer prints nothing.
func ShouldPrint(s models.PrinterSettings, t UpdateType) bool {
	if !s.IsEnabled {
		return false
	}
	switch t {
	case UpdateNew:
		return s.PrintOnNewOrder
	case UpdateChanged:
		return s.PrintOnOrderUpdate
	case UpdateComplete:
		return s.PrintOnOrderComplete
	case UpdateCancel:
		return s.PrintOnOrderCancel
	}
	return false
}

// FormatReceipt flattens an order into the print payload: header/footer from
// the settings, one line per item with its toppings spelled out, the totals
// breakdown and which copies to produce.
func FormatReceipt(o models.Order, customer models.User, s models.PrinterSettings) models.Receipt {
	lines := make([]models.ReceiptLine, 0, len(o.Items))
	for _, it := range o.Items {
		line := models.ReceiptLine{
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    it.UnitPrice,
		}
		if c := it.Customization; c != nil {
			names := make([]string, 0, len(c.Toppings))
			for _, t := range c.Toppings {
				names = append(names, t.Name)
			}
			line.Toppings = strings.Join(names, ", ")
			line.Instructions = c.Instructions
		}
		lines = append(lines, line)
	}

	return models.Receipt{
		Header:      s.HeaderText,
		OrderNumber: o.Number,
		Timestamp:   o.CreatedAt.Format(time.RFC1123),
		Customer: models.ReceiptCustomer{
			Name:  customer.Name,
			Phone: customer.Phone,
			Email: customer.Email,
		},
		OrderType:    o.OrderType,
		Status:       o.Status,
		Items:        lines,
		Subtotal:     o.Totals.Subtotal,
		DeliveryFee:  o.Totals.DeliveryFee,
		Tax:          o.Totals.Tax,
		Total:        o.Totals.Total,
		DeliveryInfo: o.DeliveryInfo,
		Footer:       s.FooterText,
		Copies: models.ReceiptCopies{
			Customer: s.PrintCustomerCopy,
			Kitchen:  s.PrintKitchenCopy,
			Delivery: s.PrintDeliveryCopy,
		},
	}
}

// FormatUpdateReceipt is FormatReceipt tagged with the update type.
func FormatUpdateReceipt(o models.Order, customer models.User, s models.PrinterSettings, t UpdateType) models.Receipt {
	r := FormatReceipt(o, customer, s)
	r.UpdateType = string(t)
	return r
}
