package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{OrderStatusNew, OrderStatusProcessing, OrderStatusSent, OrderStatusDone} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, OrderStatus("cancelled").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestBadgeValid(t *testing.T) {
	assert.True(t, BadgeNone.Valid())
	assert.True(t, BadgeSale.Valid())
	assert.False(t, BadgeType("hot").Valid())
}
