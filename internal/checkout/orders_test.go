package checkout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
)

func placeSample(t *testing.T, e *env) *models.Order {
	t.Helper()
	ctx := context.Background()
	c := e.cart(t, "s1")
	require.NoError(t, c.Add(ctx, e.speaker, 2, false))
	require.NoError(t, c.Add(ctx, e.amp, 1, false))
	order, err := e.asm.PlaceOrder(ctx, c, newAddress(), e.user.ID)
	require.NoError(t, err)
	return order
}

func TestRecalcTotal_IgnoresTamperedTotal(t *testing.T) {
	e := newEnv(t, nil)
	order := placeSample(t, e)

	require.NoError(t, e.db.Model(&models.Order{}).Where("id = ?", order.ID).UpdateColumn("total", 1).Error)

	total, err := e.asm.RecalcTotal(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2*1500+4200), total)
	assertTotalMatchesItems(t, e.db, order.ID)
}

func TestRecalcTotal_OnlyTouchesTotal(t *testing.T) {
	e := newEnv(t, nil)
	order := placeSample(t, e)

	require.NoError(t, e.db.Model(&models.Order{}).Where("id = ?", order.ID).UpdateColumn("whatsapp_number", "+254799999999").Error)
	_, err := e.asm.RecalcTotal(context.Background(), order.ID)
	require.NoError(t, err)

	var got models.Order
	require.NoError(t, e.db.First(&got, order.ID).Error)
	assert.Equal(t, "+254799999999", got.WhatsAppNumber)
}

func TestRecalcTotal_NotFound(t *testing.T) {
	e := newEnv(t, nil)
	_, err := e.asm.RecalcTotal(context.Background(), 42)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateItemQty(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	order := placeSample(t, e)

	var item models.OrderItem
	require.NoError(t, e.db.Where("order_id = ? AND product_id = ?", order.ID, e.amp.ID).First(&item).Error)

	total, err := e.asm.UpdateItemQty(ctx, order.ID, item.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(2*1500+3*4200), total)
	assertTotalMatchesItems(t, e.db, order.ID)

	_, err = e.asm.UpdateItemQty(ctx, order.ID, item.ID, 0)
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = e.asm.UpdateItemQty(ctx, order.ID, item.ID, cart.MaxLineQuantity+1)
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = e.asm.UpdateItemQty(ctx, order.ID+1, item.ID, 2)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetStatus(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	order := placeSample(t, e)

	require.NoError(t, e.asm.SetStatus(ctx, order.ID, domain.OrderStatusSent))
	var got models.Order
	require.NoError(t, e.db.First(&got, order.ID).Error)
	assert.Equal(t, domain.OrderStatusSent, got.Status)

	require.ErrorIs(t, e.asm.SetStatus(ctx, order.ID, "lost"), domain.ErrValidation)
	require.ErrorIs(t, e.asm.SetStatus(ctx, 999, domain.OrderStatusDone), domain.ErrNotFound)

	evs := e.events.Events(events.TopicOrder)
	require.Len(t, evs, 2)
	assert.Equal(t, "order_status_changed", evs[1].Payload["type"])
}

func TestDeleteOrder_RemovesItems(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	order := placeSample(t, e)

	require.NoError(t, e.asm.DeleteOrder(ctx, order.ID))
	assert.Zero(t, countRows(t, e.db, &models.Order{}))
	assert.Zero(t, countRows(t, e.db, &models.OrderItem{}))

	require.ErrorIs(t, e.asm.DeleteOrder(ctx, order.ID), domain.ErrNotFound)
}
