package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCartTotals(t *testing.T) {
	cart := &Cart{
		Items: []CartItem{
			{ProductID: "p1", UnitPrice: 2.5, Quantity: 2},
			{ProductID: "p2", UnitPrice: 7.99, Quantity: 1},
		},
	}

	assert.InDelta(t, 12.99, cart.Total(), 1e-9)
	assert.Equal(t, 3, cart.ItemCount())
}

func TestCartTotals_Empty(t *testing.T) {
	cart := &Cart{}

	assert.InDelta(t, 0, cart.Total(), 1e-9)
	assert.Equal(t, 0, cart.ItemCount())
}

func TestCartLine(t *testing.T) {
	cart := &Cart{
		Items: []CartItem{
			{ProductID: "p1"},
			{ProductID: "p2"},
		},
	}

	assert.Equal(t, 0, cart.Line("p1"))
	assert.Equal(t, 1, cart.Line("p2"))
	assert.Equal(t, -1, cart.Line("p3"))
}

func TestIdentityKey(t *testing.T) {
	assert.Equal(t, "42", Identity{UserID: "42"}.Key())
	assert.Equal(t, "guest:dev-1", Identity{DeviceID: "dev-1"}.Key())

	assert.True(t, Identity{DeviceID: "dev-1"}.IsGuest())
	assert.False(t, Identity{UserID: "42", DeviceID: "dev-1"}.IsGuest())
	assert.True(t, Identity{}.IsZero())
}
