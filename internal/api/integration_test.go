package api_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/pizzahouse/storefront/internal/api"
	"github.com/pizzahouse/storefront/internal/apitest"
	"github.com/pizzahouse/storefront/internal/models"
	"github.com/pizzahouse/storefront/internal/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenStore struct {
	mu    sync.Mutex
	token string
}

func (ts *tokenStore) Token() string {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.token
}

func (ts *tokenStore) set(token string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.token = token
}

func newClient(t *testing.T, backend *apitest.Server) (*api.Client, *tokenStore) {
	t.Helper()
	ts := &tokenStore{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return api.NewClient(backend.URL, ts, 5*time.Second, log), ts
}

func signIn(t *testing.T, c *api.Client, ts *tokenStore, email, password string) models.User {
	t.Helper()
	resp, err := c.Login(context.Background(), api.LoginRequest{Email: email, Password: password})
	require.NoError(t, err)
	ts.set(resp.Token)
	return resp.User
}

func margherita() models.Product {
	return models.Product{
		ID:        "margherita",
		Name:      "Margherita",
		Category:  "pizza",
		BasePrice: decimal.RequireFromString("8.95"),
		Available: true,
		Popular:   true,
		Sizes: []models.PriceOption{
			{Name: "medium", Delta: decimal.Zero},
			{Name: "large", Delta: decimal.RequireFromString("3.00")},
		},
	}
}

func cola() models.Product {
	return models.Product{
		ID:        "cola",
		Name:      "Cola",
		Category:  "drinks",
		BasePrice: decimal.RequireFromString("2.00"),
		Available: true,
	}
}

func TestAuthEndpoints(t *testing.T) {
	t.Parallel()

	backend := apitest.New(t)
	c, ts := newClient(t, backend)
	ctx := context.Background()

	resp, err := c.Register(ctx, api.RegisterRequest{
		Name: "Ada", Email: "ada@example.com", Password: "secret1", Phone: "+3712000000",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, models.RoleCustomer, resp.User.Role)
	ts.set(resp.Token)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", me.Email)

	// Duplicate email is rejected with a message the UI can show.
	_, err = c.Register(ctx, api.RegisterRequest{
		Name: "Ada II", Email: "ada@example.com", Password: "secret1", Phone: "+3712000001",
	})
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Email already registered", apiErr.Message)

	_, err = c.Login(ctx, api.LoginRequest{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, api.ErrUnauthorized)

	updated, err := c.UpdateDetails(ctx, api.UpdateDetailsRequest{Phone: "+3712999999"})
	require.NoError(t, err)
	assert.Equal(t, "+3712999999", updated.Phone)

	require.NoError(t, c.UpdatePassword(ctx, api.UpdatePasswordRequest{
		CurrentPassword: "secret1", NewPassword: "secret2",
	}))
	signIn(t, c, ts, "ada@example.com", "secret2")
}

func TestRegisterFieldErrors(t *testing.T) {
	t.Parallel()

	backend := apitest.New(t)
	c, _ := newClient(t, backend)

	_, err := c.Register(context.Background(), api.RegisterRequest{Email: "ada@example.com"})
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Len(t, apiErr.FieldErrors, 3)
	fields := make([]string, len(apiErr.FieldErrors))
	for i, fe := range apiErr.FieldErrors {
		fields[i] = fe.Field
	}
	assert.ElementsMatch(t, []string{"name", "password", "phone"}, fields)
}

func TestCatalogEndpoints(t *testing.T) {
	t.Parallel()

	backend := apitest.New(t)
	backend.SeedProduct(t, margherita())
	backend.SeedProduct(t, cola())
	backend.SeedCategory(t, models.Category{ID: "pizza", Name: "Pizza"})
	backend.SeedTopping(t, models.Topping{ID: "olives", Name: "Olives", Price: decimal.RequireFromString("1.20")})
	backend.SeedExtra(t, models.ExtraItem{ID: "dip", Name: "Garlic dip", Price: decimal.RequireFromString("0.80"), ExtraType: "sauce"})

	c, _ := newClient(t, backend)
	ctx := context.Background()

	all, err := c.Products(ctx, api.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pizzas, err := c.Products(ctx, api.ProductFilter{Category: "pizza"})
	require.NoError(t, err)
	require.Len(t, pizzas, 1)
	assert.Equal(t, "Margherita", pizzas[0].Name)
	assert.Equal(t, "8.95", pizzas[0].BasePrice.StringFixed(2))

	found, err := c.SearchProducts(ctx, "marg")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	popular, err := c.PopularProducts(ctx)
	require.NoError(t, err)
	require.Len(t, popular, 1)
	assert.Equal(t, "margherita", popular[0].ID)

	one, err := c.Product(ctx, "cola")
	require.NoError(t, err)
	assert.Equal(t, "Cola", one.Name)

	_, err = c.Product(ctx, "ghost")
	assert.ErrorIs(t, err, api.ErrNotFound)

	cats, err := c.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 1)

	tops, err := c.Toppings(ctx)
	require.NoError(t, err)
	assert.Len(t, tops, 1)

	extras, err := c.Extras(ctx, api.ExtraFilter{ExtraType: "sauce"})
	require.NoError(t, err)
	assert.Len(t, extras, 1)
}

func TestCartEndpoints(t *testing.T) {
	t.Parallel()

	backend := apitest.New(t)
	p := backend.SeedProduct(t, margherita())
	backend.SeedUser(t, "Ada", "ada@example.com", "+3712000000", "secret1", models.RoleCustomer)

	c, ts := newClient(t, backend)
	ctx := context.Background()

	// Cart requires a session.
	_, err := c.GetCart(ctx)
	assert.ErrorIs(t, err, api.ErrUnauthorized)

	signIn(t, c, ts, "ada@example.com", "secret1")

	item, err := pricing.ResolveItem(p, &models.Customization{Size: "large"}, 1)
	require.NoError(t, err)

	cart, err := c.AddCartItem(ctx, item)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "11.95", cart.Items[0].UnitPrice.StringFixed(2))

	// Same composite identity accumulates on one line.
	cart, err = c.AddCartItem(ctx, item)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, uint(2), cart.Items[0].Quantity)

	cart, err = c.UpdateCartItem(ctx, item.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, uint(5), cart.Items[0].Quantity)

	_, err = c.UpdateCartItem(ctx, "ghost", 1)
	assert.ErrorIs(t, err, api.ErrNotFound)

	cart, err = c.RemoveCartItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	_, err = c.RemoveCartItem(ctx, item.ID)
	assert.ErrorIs(t, err, api.ErrNotFound)

	// Unavailable products are rejected at add time.
	backend.SetProductAvailability(t, p.ID, false)
	_, err = c.AddCartItem(ctx, item)
	assert.ErrorIs(t, err, api.ErrConflict)
}

func TestSyncCartRepricesAndDrops(t *testing.T) {
	t.Parallel()

	backend := apitest.New(t)
	backend.SeedProduct(t, margherita())
	discontinued := backend.SeedProduct(t, cola())
	backend.SetProductAvailability(t, discontinued.ID, false)
	backend.SeedUser(t, "Ada", "ada@example.com", "+3712000000", "secret1", models.RoleCustomer)

	c, ts := newClient(t, backend)
	ctx := context.Background()
	signIn(t, c, ts, "ada@example.com", "secret1")

	stale := models.CartItem{
		ID:        "margherita",
		ProductID: "margherita",
		Name:      "Margherita",
		UnitPrice: decimal.RequireFromString("1.00"),
		Quantity:  2,
	}
	dropped := models.CartItem{
		ID:        "cola",
		ProductID: "cola",
		Name:      "Cola",
		UnitPrice: decimal.RequireFromString("2.00"),
		Quantity:  1,
	}
	ghost := models.CartItem{
		ID:        "ghost",
		ProductID: "ghost",
		Name:      "Ghost",
		UnitPrice: decimal.RequireFromString("9.99"),
		Quantity:  1,
	}

	synced, err := c.SyncCart(ctx, models.Cart{Items: []models.CartItem{stale, dropped, ghost}})
	require.NoError(t, err)
	require.Len(t, synced.Items, 1)
	// The server repriced the stale line from the current catalog.
	assert.Equal(t, "8.95", synced.Items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, uint(2), synced.Items[0].Quantity)
}

func TestDeliveryEndpoints(t *testing.T) {
	t.Parallel()

	backend := apitest.New(t)
	zone := backend.SeedZone(t, models.DeliveryZone{
		ID:             "center",
		Name:           "Center",
		DeliveryFee:    decimal.RequireFromString("2.50"),
		MinOrderAmount: decimal.RequireFromString("10.00"),
		Active:         true,
	}, apitest.ZoneBox{MinLat: 56.90, MaxLat: 57.00, MinLng: 24.00, MaxLng: 24.20})
	backend.SeedTimeSlot(t, zone.ID, models.TimeSlot{ID: "s1", Label: "18:00-19:00", Available: true})

	c, _ := newClient(t, backend)
	ctx := context.Background()

	zones, err := c.DeliveryZones(ctx)
	require.NoError(t, err)
	require.Len(t, zones, 1)
	assert.Equal(t, "Center", zones[0].Name)

	slots, err := c.ZoneTimeSlots(ctx, zone.ID, "2025-06-01")
	require.NoError(t, err)
	assert.Len(t, slots, 1)

	inside := models.Coordinates{Lat: 56.95, Lng: 24.11}

	avail, err := c.CheckDeliveryAvailability(ctx, inside, decimal.RequireFromString("25.00"))
	require.NoError(t, err)
	assert.True(t, avail.Available)
	require.NotNil(t, avail.Zone)
	assert.Equal(t, "2.50", avail.Zone.DeliveryFee.StringFixed(2))

	below, err := c.CheckDeliveryAvailability(ctx, inside, decimal.RequireFromString("5.00"))
	require.NoError(t, err)
	assert.False(t, below.Available)
	assert.Equal(t, "below minimum order amount", below.Reason)
	assert.Nil(t, below.Zone)

	outside, err := c.CheckDeliveryAvailability(ctx, models.Coordinates{Lat: 10, Lng: 10}, decimal.RequireFromString("25.00"))
	require.NoError(t, err)
	assert.False(t, outside.Available)
	assert.Equal(t, "outside delivery area", outside.Reason)
}

func TestOrderLifecycle(t *testing.T) {
	t.Parallel()

	backend := apitest.New(t)
	p := backend.SeedProduct(t, margherita())
	backend.SeedUser(t, "Ada", "ada@example.com", "+3712000000", "secret1", models.RoleCustomer)
	backend.SeedUser(t, "Boss", "boss@example.com", "+3712000001", "secret1", models.RoleAdmin)
	backend.SeedZone(t, models.DeliveryZone{
		ID: "center", Name: "Center", DeliveryFee: decimal.RequireFromString("2.50"), Active: true,
	}, apitest.ZoneBox{MinLat: 56.90, MaxLat: 57.00, MinLng: 24.00, MaxLng: 24.20})

	c, ts := newClient(t, backend)
	ctx := context.Background()
	signIn(t, c, ts, "ada@example.com", "secret1")

	item, err := pricing.ResolveItem(p, nil, 2)
	require.NoError(t, err)
	_, err = c.AddCartItem(ctx, item)
	require.NoError(t, err)

	order, err := c.CreateOrder(ctx, api.CreateOrderRequest{
		Items:         []models.CartItem{item},
		OrderType:     models.OrderTypeDelivery,
		DeliveryInfo:  &models.DeliveryInfo{Address: "Brivibas iela 1", Zone: "center"},
		PaymentMethod: "card",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Contains(t, order.Number, "PH-")
	assert.Equal(t, "17.90", order.Totals.Subtotal.StringFixed(2))
	assert.Equal(t, "2.50", order.Totals.DeliveryFee.StringFixed(2))
	// 8% tax on the subtotal.
	assert.Equal(t, "1.43", order.Totals.Tax.StringFixed(2))
	assert.Equal(t, "21.83", order.Totals.Total.StringFixed(2))

	// Checkout consumed the server cart.
	cart, err := c.GetCart(ctx)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	mine, err := c.MyOrders(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	tracked, err := c.OrderTracking(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, tracked.Status)

	// Status changes are the back office's call.
	_, err = c.UpdateOrderStatus(ctx, order.ID, models.StatusConfirmed)
	assert.ErrorIs(t, err, api.ErrForbidden)

	admin, adminTS := newClient(t, backend)
	signIn(t, admin, adminTS, "boss@example.com", "secret1")

	all, err := admin.AllOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	for _, status := range []models.OrderStatus{
		models.StatusConfirmed, models.StatusPreparing, models.StatusReady, models.StatusDelivering,
	} {
		updated, uerr := admin.UpdateOrderStatus(ctx, order.ID, status)
		require.NoError(t, uerr)
		assert.Equal(t, status, updated.Status)
	}

	// Skipping ahead of the lifecycle is rejected.
	_, err = admin.UpdateOrderStatus(ctx, order.ID, models.StatusPending)
	assert.ErrorIs(t, err, api.ErrConflict)

	final, err := admin.UpdateOrderStatus(ctx, order.ID, models.StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, final.Status)

	// Delivered is terminal: no cancel out of it.
	_, err = admin.CancelOrder(ctx, order.ID)
	assert.ErrorIs(t, err, api.ErrConflict)
}

func TestCancelOrder(t *testing.T) {
	t.Parallel()

	backend := apitest.New(t)
	p := backend.SeedProduct(t, margherita())
	backend.SeedUser(t, "Ada", "ada@example.com", "+3712000000", "secret1", models.RoleCustomer)

	c, ts := newClient(t, backend)
	ctx := context.Background()
	signIn(t, c, ts, "ada@example.com", "secret1")

	item, err := pricing.ResolveItem(p, nil, 1)
	require.NoError(t, err)

	order, err := c.CreateOrder(ctx, api.CreateOrderRequest{
		Items:      []models.CartItem{item},
		OrderType:  models.OrderTypePickup,
		PickupInfo: &models.PickupInfo{Location: "Old Town"},
	})
	require.NoError(t, err)
	assert.True(t, order.Totals.DeliveryFee.IsZero())

	cancelled, err := c.CancelOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
}

func TestPrinterEndpoints(t *testing.T) {
	t.Parallel()

	backend := apitest.New(t)
	backend.SeedUser(t, "Boss", "boss@example.com", "+3712000001", "secret1", models.RoleAdmin)
	backend.SeedUser(t, "Ada", "ada@example.com", "+3712000000", "secret1", models.RoleCustomer)

	admin, adminTS := newClient(t, backend)
	ctx := context.Background()
	signIn(t, admin, adminTS, "boss@example.com", "secret1")

	settings, err := admin.PrinterSettings(ctx)
	require.NoError(t, err)
	assert.True(t, settings.IsEnabled)
	assert.Equal(t, "Pizza House", settings.HeaderText)

	require.NoError(t, admin.TestPrinter(ctx))
	assert.Equal(t, 1, backend.TestPrints())

	require.NoError(t, admin.PrintOrder(ctx, models.Receipt{OrderNumber: "PH-TEST1234"}))
	prints := backend.Prints()
	require.Len(t, prints, 1)
	assert.Equal(t, "PH-TEST1234", prints[0].OrderNumber)

	settings.IsEnabled = false
	_, err = admin.UpdatePrinterSettings(ctx, *settings)
	require.NoError(t, err)
	assert.ErrorIs(t, admin.TestPrinter(ctx), api.ErrConflict)

	// Customers never see the back office.
	customer, custTS := newClient(t, backend)
	signIn(t, customer, custTS, "ada@example.com", "secret1")
	_, err = customer.PrinterSettings(ctx)
	assert.ErrorIs(t, err, api.ErrForbidden)
}

func TestAdminUserManagement(t *testing.T) {
	t.Parallel()

	backend := apitest.New(t)
	backend.SeedUser(t, "Boss", "boss@example.com", "+3712000001", "secret1", models.RoleAdmin)
	ada := backend.SeedUser(t, "Ada", "ada@example.com", "+3712000000", "secret1", models.RoleCustomer)

	admin, adminTS := newClient(t, backend)
	ctx := context.Background()
	signIn(t, admin, adminTS, "boss@example.com", "secret1")

	users, err := admin.Users(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	got, err := admin.User(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)

	promoted, err := admin.SetUserRole(ctx, ada.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, promoted.Role)

	require.NoError(t, admin.DeleteUser(ctx, ada.ID))
	_, err = admin.User(ctx, ada.ID)
	assert.ErrorIs(t, err, api.ErrNotFound)
}
