package orders

import (
	"testing"

	"github.com/pizzahouse/storefront/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestValidateTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from models.OrderStatus
		to   models.OrderStatus
		ok   bool
	}{
		{models.StatusPending, models.StatusConfirmed, true},
		{models.StatusPending, models.StatusCancelled, true},
		{models.StatusPending, models.StatusReady, false},
		{models.StatusConfirmed, models.StatusPreparing, true},
		{models.StatusConfirmed, models.StatusDelivered, false},
		{models.StatusPreparing, models.StatusReady, true},
		{models.StatusPreparing, models.StatusConfirmed, false},
		{models.StatusReady, models.StatusDelivering, true},
		{models.StatusReady, models.StatusDelivered, true},
		{models.StatusDelivering, models.StatusDelivered, true},
		{models.StatusDelivering, models.StatusCancelled, false},
		{models.StatusDelivered, models.StatusPending, false},
		{models.StatusCancelled, models.StatusConfirmed, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.from)+" to "+string(tt.to), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.ok, CanTransition(tt.from, tt.to))
			err := Validate(tt.from, tt.to)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrBadTransition)
			}
		})
	}
}

func TestTerminalStates(t *testing.T) {
	t.Parallel()

	assert.True(t, IsTerminal(models.StatusDelivered))
	assert.True(t, IsTerminal(models.StatusCancelled))
	assert.False(t, IsTerminal(models.StatusPending))
	assert.False(t, IsTerminal(models.StatusDelivering))

	assert.Empty(t, NextStatuses(models.StatusDelivered))
	assert.Empty(t, NextStatuses(models.StatusCancelled))
}

func TestNextStatuses(t *testing.T) {
	t.Parallel()

	next := NextStatuses(models.StatusPending)
	assert.Equal(t, []models.OrderStatus{models.StatusConfirmed, models.StatusCancelled}, next)

	// Callers get a copy, not the table itself.
	next[0] = models.StatusDelivered
	assert.Equal(t, []models.OrderStatus{models.StatusConfirmed, models.StatusCancelled}, NextStatuses(models.StatusPending))
}
