package orders

import (
	"errors"
	"fmt"

	"github.com/pizzahouse/storefront/internal/models"
)

var ErrBadTransition = errors.New("invalid status transition")

// transitions holds the forward edges of the order lifecycle. Delivered and
// cancelled are terminal: nothing moves out of them from the client.
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPending:    {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed:  {models.StatusPreparing, models.StatusCancelled},
	models.StatusPreparing:  {models.StatusReady, models.StatusCancelled},
	models.StatusReady:      {models.StatusDelivering, models.StatusDelivered},
	models.StatusDelivering: {models.StatusDelivered},
	models.StatusDelivered:  nil,
	models.StatusCancelled:  nil,
}

func IsTerminal(s models.OrderStatus) bool {
	return s == models.StatusDelivered || s == models.StatusCancelled
}

// NextStatuses lists the transitions the admin screen may offer for an order
// in the given state.
func NextStatuses(s models.OrderStatus) []models.OrderStatus {
	next := transitions[s]
	out := make([]models.OrderStatus, len(next))
	copy(out, next)
	return out
}

func CanTransition(from, to models.OrderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Validate rejects transitions the lifecycle does not allow, including any
// move out of a terminal state.
func Validate(from, to models.OrderStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%s -> %s: %w", from, to, ErrBadTransition)
	}
	return nil
}
