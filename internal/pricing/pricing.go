package pricing

import (
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"github.com/pizzahouse/storefront/internal/models"
	"github.com/shopspring/decimal"
)

var ErrValidation = errors.New("validation")

// UnitPrice resolves the price of one unit from the product and its
// customization: base price + size delta + crust delta + toppings + extras.
// This runs once, when the line is built; the result is carried on the line
// and never re-derived.
func UnitPrice(p models.Product, c *models.Customization) decimal.Decimal {
	price := p.BasePrice
	if c == nil {
		return price
	}
	price = price.Add(optionDelta(p.Sizes, c.Size))
	price = price.Add(optionDelta(p.Crusts, c.Crust))
	for _, t := range c.Toppings {
		price = price.Add(t.Price.Mul(decimal.NewFromInt(int64(t.Quantity))))
	}
	for _, e := range c.Extras {
		price = price.Add(e.Price.Mul(decimal.NewFromInt(int64(e.Quantity))))
	}
	return price
}

func optionDelta(options []models.PriceOption, name string) decimal.Decimal {
	if name == "" {
		return decimal.Zero
	}
	for _, o := range options {
		if o.Name == name {
			return o.Delta
		}
	}
	return decimal.Zero
}

// LineID derives the composite identity of a cart line: the product plus
// size, crust, toppings and extras. Two lines with the same identity merge
// into one; free-text instructions do not split lines. The derivation is
// order-insensitive for toppings and extras.
func LineID(productID string, c *models.Customization) string {
	if c == nil || isPlain(c) {
		return productID
	}

	parts := []string{"size=" + c.Size, "crust=" + c.Crust}
	var selections []string
	for _, t := range c.Toppings {
		selections = append(selections, fmt.Sprintf("t:%s:%d", t.ToppingID, t.Quantity))
	}
	for _, e := range c.Extras {
		selections = append(selections, fmt.Sprintf("e:%s:%d", e.ExtraID, e.Quantity))
	}
	sort.Strings(selections)
	parts = append(parts, selections...)

	h := fnv.New64a()
	h.Write([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%s-%x", productID, h.Sum64())
}

func isPlain(c *models.Customization) bool {
	return c.Size == "" && c.Crust == "" && len(c.Toppings) == 0 && len(c.Extras) == 0
}

// ResolveItem builds a fully resolved cart line from a product and its
// customization. Quantity must be at least 1 and the product purchasable.
func ResolveItem(p models.Product, c *models.Customization, quantity uint) (models.CartItem, error) {
	if quantity < 1 {
		return models.CartItem{}, fmt.Errorf("quantity must be at least 1: %w", ErrValidation)
	}
	if p.ID == "" {
		return models.CartItem{}, fmt.Errorf("product id required: %w", ErrValidation)
	}
	if !p.Available {
		return models.CartItem{}, fmt.Errorf("product %s unavailable: %w", p.ID, ErrValidation)
	}
	return models.CartItem{
		ID:            LineID(p.ID, c),
		ProductID:     p.ID,
		Name:          p.Name,
		UnitPrice:     UnitPrice(p, c),
		Quantity:      quantity,
		Customization: c,
	}, nil
}
