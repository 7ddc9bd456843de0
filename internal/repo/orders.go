package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

// ListOrders returns orders newest first; a nil userID lists every order.
func (r *GormRepo) ListOrders(ctx context.Context, userID *uint, offset, limit int) (int64, []models.Order, error) {
	query := func() *gorm.DB {
		q := r.DB.WithContext(ctx).Model(&models.Order{})
		if userID != nil {
			q = q.Where("user_id = ?", *userID)
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var orders []models.Order
	if err := query().Preload("Items").Preload("Address").
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).
		Preload("Items").Preload("Items.Product").Preload("Address").
		First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}
