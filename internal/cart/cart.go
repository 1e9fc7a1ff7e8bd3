package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pizzahouse/storefront/internal/api"
	"github.com/pizzahouse/storefront/internal/localstore"
	"github.com/pizzahouse/storefront/internal/models"
	"github.com/shopspring/decimal"
)

var ErrValidation = errors.New("validation")

// StorageKey is the well-known key the anonymous cart is persisted under.
const StorageKey = "localCart"

// Origin says which cart is authoritative right now.
type Origin int

const (
	// OriginLocal: anonymous cart, persisted client-side.
	OriginLocal Origin = iota
	// OriginRemote: server-resident cart, authoritative once a session exists.
	OriginRemote
)

func (o Origin) String() string {
	if o == OriginRemote {
		return "remote"
	}
	return "local"
}

// API is the slice of the HTTP boundary the cart consumes.
type API interface {
	GetCart(ctx context.Context) (*models.Cart, error)
	AddCartItem(ctx context.Context, item models.CartItem) (*models.Cart, error)
	UpdateCartItem(ctx context.Context, itemID string, quantity uint) (*models.Cart, error)
	RemoveCartItem(ctx context.Context, itemID string) (*models.Cart, error)
	ClearCart(ctx context.Context) error
	SyncCart(ctx context.Context, cart models.Cart) (*models.Cart, error)
}

// Manager owns the single in-memory cart. While anonymous it mutates and
// persists the local cart; once a session exists every mutation round-trips
// through the backend and the response replaces the local mirror wholesale.
// When responses race, the later-arriving one wins.
type Manager struct {
	mu    sync.Mutex
	api   API
	store *localstore.Store
	log   *slog.Logger

	origin      Origin
	items       []models.CartItem
	deliveryFee decimal.Decimal
}

// NewManager loads any persisted anonymous cart and starts in local mode.
func NewManager(a API, store *localstore.Store, log *slog.Logger) *Manager {
	m := &Manager{api: a, store: store, log: log, origin: OriginLocal}
	var saved models.Cart
	switch err := store.Get(StorageKey, &saved); {
	case err == nil:
		m.items = saved.Items
	case errors.Is(err, localstore.ErrNotFound):
	default:
		log.Warn("could not load persisted cart, starting empty", "error", err)
	}
	return m
}

// AddItem adds a fully resolved line. A line with the same composite identity
// has its quantity incremented; otherwise the line is appended.
//
// Remote-path operations never hold the mutex across the HTTP round-trip: a
// 401 fires the auth-expired hook from inside the request and that hook ends
// in SignedOut, which needs the same lock. Responses race under last-response-
// wins, so locking only to adopt is enough.
func (m *Manager) AddItem(ctx context.Context, item models.CartItem) error {
	if item.ID == "" {
		return fmt.Errorf("item id required: %w", ErrValidation)
	}
	if item.Quantity < 1 {
		return fmt.Errorf("quantity must be at least 1: %w", ErrValidation)
	}

	m.mu.Lock()
	if m.origin != OriginRemote {
		defer m.mu.Unlock()
		if i := m.indexOf(item.ID); i >= 0 {
			m.items[i].Quantity += item.Quantity
		} else {
			m.items = append(m.items, item)
		}
		return m.persistLocal()
	}
	m.mu.Unlock()

	cart, err := m.api.AddCartItem(ctx, item)
	if err != nil {
		return fmt.Errorf("add to cart: %w", err)
	}
	m.adoptRemote(cart.Items)
	return nil
}

// RemoveItem deletes the line with that identity. Absent is a no-op, not an
// error.
func (m *Manager) RemoveItem(ctx context.Context, itemID string) error {
	m.mu.Lock()
	if m.origin != OriginRemote {
		defer m.mu.Unlock()
		i := m.indexOf(itemID)
		if i < 0 {
			return nil
		}
		m.items = append(m.items[:i], m.items[i+1:]...)
		return m.persistLocal()
	}
	m.mu.Unlock()

	cart, err := m.api.RemoveCartItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("remove from cart: %w", err)
	}
	m.adoptRemote(cart.Items)
	return nil
}

// UpdateQuantity sets the line's quantity. Zero or negative means remove; the
// state layer never keeps a quantity-0 line.
func (m *Manager) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	if quantity <= 0 {
		return m.RemoveItem(ctx, itemID)
	}

	m.mu.Lock()
	if m.origin != OriginRemote {
		defer m.mu.Unlock()
		i := m.indexOf(itemID)
		if i < 0 {
			return nil
		}
		m.items[i].Quantity = uint(quantity)
		return m.persistLocal()
	}
	m.mu.Unlock()

	cart, err := m.api.UpdateCartItem(ctx, itemID, uint(quantity))
	if err != nil {
		return fmt.Errorf("update quantity: %w", err)
	}
	m.adoptRemote(cart.Items)
	return nil
}

// Clear empties the cart. In remote mode the server cart and the persisted
// mirror are cleared too.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	remote := m.origin == OriginRemote
	m.mu.Unlock()

	if remote {
		if err := m.api.ClearCart(ctx); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
	}

	m.mu.Lock()
	m.items = nil
	m.deliveryFee = decimal.Zero
	m.mu.Unlock()
	return m.store.Delete(StorageKey)
}

// MergeResult reports what the merge adopted and which submitted lines the
// server rejected.
type MergeResult struct {
	Items   []models.CartItem
	Dropped []string
}

// MergeOnSignIn runs once at the anonymous→authenticated transition. The
// remote cart is the base; local quantities add onto matching lines and
// unmatched local lines are appended. The merged list goes to the server as a
// bulk sync and the server's response, which may reprice or drop lines,
// becomes the cart. Only after a confirmed sync is the persisted anonymous
// cart erased, so a second sign-in cannot replay it.
//
// On failure the client-side merge stays in memory as a best effort, the
// persisted copy stays put, and the error tells the caller sync is
// unconfirmed.
func (m *Manager) MergeOnSignIn(ctx context.Context) (*MergeResult, error) {
	// The persisted copy, not the in-memory view, is the local side of the
	// merge: it survives until a sync is confirmed and is the thing a
	// repeated sign-in must not replay twice.
	var saved models.Cart
	if err := m.store.Get(StorageKey, &saved); err != nil && !errors.Is(err, localstore.ErrNotFound) {
		m.log.Warn("could not read persisted cart for merge", "error", err)
	}
	local := saved.Items

	m.mu.Lock()
	m.origin = OriginRemote
	m.mu.Unlock()

	remote, err := m.api.GetCart(ctx)
	if err != nil {
		return &MergeResult{Items: m.Items()}, fmt.Errorf("fetch remote cart: %w", err)
	}

	merged := mergeItems(remote.Items, local)

	synced, err := m.api.SyncCart(ctx, models.Cart{Items: merged})
	if err != nil {
		m.mu.Lock()
		m.items = merged
		best := m.snapshot()
		m.mu.Unlock()
		m.log.Warn("cart sync unconfirmed, keeping best-effort merge", "error", err)
		return &MergeResult{Items: best}, fmt.Errorf("sync cart: %w", err)
	}

	m.mu.Lock()
	m.adopt(synced.Items)
	adopted := m.snapshot()
	m.mu.Unlock()
	if err := m.store.Delete(StorageKey); err != nil {
		m.log.Warn("could not erase persisted anonymous cart", "error", err)
	}

	return &MergeResult{Items: adopted, Dropped: droppedNames(merged, synced.Items)}, nil
}

// mergeItems merges the local cart into the remote base: matching composite
// identities add quantities, unknown lines are appended in local order.
func mergeItems(base, local []models.CartItem) []models.CartItem {
	merged := make([]models.CartItem, len(base))
	copy(merged, base)

	for _, li := range local {
		found := false
		for i := range merged {
			if merged[i].ID == li.ID {
				merged[i].Quantity += li.Quantity
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, li)
		}
	}
	return merged
}

func droppedNames(submitted, adopted []models.CartItem) []string {
	kept := make(map[string]struct{}, len(adopted))
	for _, it := range adopted {
		kept[it.ID] = struct{}{}
	}
	var dropped []string
	for _, it := range submitted {
		if _, ok := kept[it.ID]; !ok {
			dropped = append(dropped, it.Name)
		}
	}
	return dropped
}

// SignedOut flips the cart back to local mode and reloads whatever anonymous
// cart is still persisted. The remote cart stays on the server untouched.
func (m *Manager) SignedOut() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.origin = OriginLocal
	m.items = nil
	var saved models.Cart
	if err := m.store.Get(StorageKey, &saved); err == nil {
		m.items = saved.Items
	}
}

// Refresh replaces the mirror with the server cart. Remote mode only.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	remote := m.origin == OriginRemote
	m.mu.Unlock()
	if !remote {
		return nil
	}

	cart, err := m.api.GetCart(ctx)
	if err != nil {
		return fmt.Errorf("fetch cart: %w", err)
	}
	m.adoptRemote(cart.Items)
	return nil
}

// SetDeliveryFee feeds the confirmed zone fee into the total.
func (m *Manager) SetDeliveryFee(fee decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deliveryFee = fee
}

// Subtotal is Σ unitPrice × quantity.
func (m *Manager) Subtotal() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return subtotal(m.items)
}

// Total is subtotal plus the delivery fee.
func (m *Manager) Total() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return subtotal(m.items).Add(m.deliveryFee)
}

// Count sums quantities across lines, for the cart badge.
func (m *Manager) Count() uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n uint
	for _, it := range m.items {
		n += it.Quantity
	}
	return n
}

func (m *Manager) Items() []models.CartItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

func (m *Manager) Origin() Origin {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.origin
}

func subtotal(items []models.CartItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

func (m *Manager) snapshot() []models.CartItem {
	out := make([]models.CartItem, len(m.items))
	copy(out, m.items)
	return out
}

func (m *Manager) indexOf(itemID string) int {
	for i := range m.items {
		if m.items[i].ID == itemID {
			return i
		}
	}
	return -1
}

func (m *Manager) adopt(items []models.CartItem) {
	m.items = items
}

// adoptRemote takes the lock and replaces the mirror with a server response.
// A response that lands after the session was torn down is discarded: the
// cart is back in local mode and must not be clobbered by a stale reply.
func (m *Manager) adoptRemote(items []models.CartItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.origin != OriginRemote {
		return
	}
	m.items = items
}

func (m *Manager) persistLocal() error {
	if err := m.store.Put(StorageKey, models.Cart{Items: m.items}); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}
