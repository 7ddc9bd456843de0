package checkout

import (
	"context"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
)

// RecalcTotal recomputes the order total from its items and persists only
// the total column.
func (a *Assembler) RecalcTotal(ctx context.Context, orderID uint) (int64, error) {
	var total int64
	err := a.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		total, err = recalcTotal(tx, orderID)
		return err
	})
	return total, err
}

func recalcTotal(tx *gorm.DB, orderID uint) (int64, error) {
	var count int64
	if err := tx.Model(&models.Order{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if count == 0 {
		return 0, fmt.Errorf("%w: order %d", domain.ErrNotFound, orderID)
	}

	var total int64
	if err := tx.Model(&models.OrderItem{}).
		Where("order_id = ?", orderID).
		Select("COALESCE(SUM(qty * price_each), 0)").
		Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("%w: sum items: %v", domain.ErrPersistence, err)
	}

	if err := tx.Model(&models.Order{ID: orderID}).UpdateColumn("total", total).Error; err != nil {
		return 0, fmt.Errorf("%w: update total: %v", domain.ErrPersistence, err)
	}
	return total, nil
}

func (a *Assembler) SetStatus(ctx context.Context, orderID uint, status domain.OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}

	res := a.DB.WithContext(ctx).Model(&models.Order{ID: orderID}).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: order %d", domain.ErrNotFound, orderID)
	}

	a.publish(ctx, strconv.FormatUint(uint64(orderID), 10), map[string]any{
		"type":    "order_status_changed",
		"orderID": orderID,
		"status":  status,
	})
	return nil
}

// UpdateItemQty changes one item's quantity and refreshes the order total.
func (a *Assembler) UpdateItemQty(ctx context.Context, orderID, itemID uint, qty int) (int64, error) {
	if qty <= 0 || qty > cart.MaxLineQuantity {
		return 0, fmt.Errorf("%w: qty must be between 1 and %d", domain.ErrValidation, cart.MaxLineQuantity)
	}

	var total int64
	err := a.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.OrderItem{}).
			Where("id = ? AND order_id = ?", itemID, orderID).
			UpdateColumn("qty", qty)
		if res.Error != nil {
			return fmt.Errorf("%w: %v", domain.ErrPersistence, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: item %d in order %d", domain.ErrNotFound, itemID, orderID)
		}

		var err error
		total, err = recalcTotal(tx, orderID)
		return err
	})
	return total, err
}

// DeleteOrder removes the order together with its items.
func (a *Assembler) DeleteOrder(ctx context.Context, orderID uint) error {
	return a.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
		}
		res := tx.Delete(&models.Order{}, orderID)
		if res.Error != nil {
			return fmt.Errorf("%w: %v", domain.ErrPersistence, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: order %d", domain.ErrNotFound, orderID)
		}
		return nil
	})
}
