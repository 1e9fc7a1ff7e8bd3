package fulfillment

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pizzahouse/storefront/internal/models"
	"github.com/shopspring/decimal"
)

// Mode is the active fulfillment flow. Delivery and pickup are mutually
// exclusive; opening one forces the other closed.
type Mode int

const (
	ModeNone Mode = iota
	ModeDelivery
	ModePickup
)

func (m Mode) String() string {
	switch m {
	case ModeDelivery:
		return "delivery"
	case ModePickup:
		return "pickup"
	}
	return "none"
}

// DeliveryChoice is a confirmed delivery selection. The zone comes from the
// availability check; this container stores results, it does not validate
// serviceability itself.
type DeliveryChoice struct {
	Coordinates models.Coordinates
	Address     string
	Zone        models.DeliveryZone
	TimeSlot    models.TimeSlot
}

type PickupChoice struct {
	Location string
	TimeSlot models.TimeSlot
}

type Selection struct {
	mu       sync.Mutex
	mode     Mode
	delivery *DeliveryChoice
	pickup   *PickupChoice
}

func NewSelection() *Selection {
	return &Selection{}
}

func (s *Selection) OpenDelivery() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = ModeDelivery
	s.pickup = nil
}

func (s *Selection) OpenPickup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = ModePickup
	s.delivery = nil
}

func (s *Selection) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = ModeNone
	s.delivery = nil
	s.pickup = nil
}

// SetDeliveryAddress stores a zone-confirmed delivery choice and forces
// pickup closed.
func (s *Selection) SetDeliveryAddress(choice DeliveryChoice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = ModeDelivery
	s.delivery = &choice
	s.pickup = nil
}

// SetPickupLocation stores a confirmed pickup choice and forces delivery
// closed.
func (s *Selection) SetPickupLocation(choice PickupChoice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = ModePickup
	s.pickup = &choice
	s.delivery = nil
}

func (s *Selection) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Selection) Delivery() *DeliveryChoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.delivery == nil {
		return nil
	}
	c := *s.delivery
	return &c
}

func (s *Selection) Pickup() *PickupChoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pickup == nil {
		return nil
	}
	c := *s.pickup
	return &c
}

// DeliveryFee is the confirmed zone's fee, zero for pickup or no selection.
func (s *Selection) DeliveryFee() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == ModeDelivery && s.delivery != nil {
		return s.delivery.Zone.DeliveryFee
	}
	return decimal.Zero
}

// Geolocation permission flow.

var (
	// ErrPermissionDenied: the user refused the one-shot location request.
	ErrPermissionDenied = errors.New("location permission denied")
	// ErrUnavailable: no position could be produced.
	ErrUnavailable = errors.New("location unavailable")
)

// Locator produces the device position once, on explicit user action.
type Locator interface {
	Locate(ctx context.Context) (models.Coordinates, error)
}

// LocationOutcome says how address entry should proceed: with coordinates, or
// manually. Denial is never retried automatically.
type LocationOutcome struct {
	Coordinates *models.Coordinates
	ManualEntry bool
	Err         error
}

// RequestLocation runs the one-shot permission flow: granted uses the
// coordinates, denied or unavailable or timed out falls back to manual
// address entry.
func RequestLocation(ctx context.Context, locator Locator, timeout time.Duration) LocationOutcome {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	coords, err := locator.Locate(ctx)
	if err != nil {
		return LocationOutcome{ManualEntry: true, Err: err}
	}
	return LocationOutcome{Coordinates: &coords}
}
