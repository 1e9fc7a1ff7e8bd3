package pricing

import (
	"testing"

	"github.com/pizzahouse/storefront/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testProduct() models.Product {
	return models.Product{
		ID:        "margherita",
		Name:      "Margherita",
		BasePrice: price("8.95"),
		Available: true,
		Sizes: []models.PriceOption{
			{Name: "medium", Delta: price("0")},
			{Name: "large", Delta: price("3.00")},
		},
		Crusts: []models.PriceOption{
			{Name: "classic", Delta: price("0")},
			{Name: "stuffed", Delta: price("2.50")},
		},
	}
}

func TestUnitPrice(t *testing.T) {
	t.Parallel()

	p := testProduct()

	tests := []struct {
		name string
		c    *models.Customization
		want string
	}{
		{name: "no customization", c: nil, want: "8.95"},
		{name: "size delta", c: &models.Customization{Size: "large"}, want: "11.95"},
		{name: "size and crust", c: &models.Customization{Size: "large", Crust: "stuffed"}, want: "14.45"},
		{
			name: "toppings and extras",
			c: &models.Customization{
				Size:     "medium",
				Toppings: []models.ToppingSelection{{ToppingID: "olives", Price: price("1.20"), Quantity: 2}},
				Extras:   []models.ExtraSelection{{ExtraID: "cola", Price: price("2.00"), Quantity: 1}},
			},
			want: "13.35",
		},
		{name: "unknown size ignored", c: &models.Customization{Size: "colossal"}, want: "8.95"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := UnitPrice(p, tt.c)
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestLineID_PlainProductUsesProductID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "margherita", LineID("margherita", nil))
	assert.Equal(t, "margherita", LineID("margherita", &models.Customization{}))
	// Instructions alone do not split lines.
	assert.Equal(t, "margherita", LineID("margherita", &models.Customization{Instructions: "extra hot"}))
}

func TestLineID_OrderInsensitive(t *testing.T) {
	t.Parallel()

	a := &models.Customization{
		Size:  "large",
		Crust: "classic",
		Toppings: []models.ToppingSelection{
			{ToppingID: "olives", Quantity: 1},
			{ToppingID: "ham", Quantity: 2},
		},
	}
	b := &models.Customization{
		Size:  "large",
		Crust: "classic",
		Toppings: []models.ToppingSelection{
			{ToppingID: "ham", Quantity: 2},
			{ToppingID: "olives", Quantity: 1},
		},
	}

	assert.Equal(t, LineID("margherita", a), LineID("margherita", b))
}

func TestLineID_DistinguishesCustomizations(t *testing.T) {
	t.Parallel()

	plain := LineID("margherita", nil)
	large := LineID("margherita", &models.Customization{Size: "large"})
	stuffed := LineID("margherita", &models.Customization{Size: "large", Crust: "stuffed"})

	assert.NotEqual(t, plain, large)
	assert.NotEqual(t, large, stuffed)
}

func TestResolveItem(t *testing.T) {
	t.Parallel()

	p := testProduct()

	item, err := ResolveItem(p, &models.Customization{Size: "large"}, 2)
	require.NoError(t, err)
	assert.Equal(t, "Margherita", item.Name)
	assert.Equal(t, uint(2), item.Quantity)
	assert.Equal(t, "11.95", item.UnitPrice.StringFixed(2))
	assert.Equal(t, "23.90", item.LineTotal().StringFixed(2))

	_, err = ResolveItem(p, nil, 0)
	assert.ErrorIs(t, err, ErrValidation)

	unavailable := p
	unavailable.Available = false
	_, err = ResolveItem(unavailable, nil, 1)
	assert.ErrorIs(t, err, ErrValidation)
}
