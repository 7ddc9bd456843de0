package migration

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/domain"
)

type Record struct {
	ID    uint
	Value string
}

type RecordStore interface {
	// List returns every row of collection whose field is set, ordered by id.
	List(ctx context.Context, collection, field string) ([]Record, error)
	// UpdateField writes one column of one row and nothing else.
	UpdateField(ctx context.Context, collection string, id uint, field, value string) error
}

// mediaColumns is the set of table/column pairs GormStore may touch.
var mediaColumns = map[string]map[string]bool{
	"products":       {"main_image": true},
	"categories":     {"image": true},
	"product_images": {"image": true},
	"testimonials":   {"avatar": true},
}

type GormStore struct {
	DB *gorm.DB
}

func checkColumn(collection, field string) error {
	if !mediaColumns[collection][field] {
		return fmt.Errorf("%w: %s.%s is not a media column", domain.ErrValidation, collection, field)
	}
	return nil
}

func (s *GormStore) List(ctx context.Context, collection, field string) ([]Record, error) {
	if err := checkColumn(collection, field); err != nil {
		return nil, err
	}

	var rows []struct {
		ID    uint
		Value string
	}
	col := clause.Column{Name: field}
	if err := s.DB.WithContext(ctx).
		Table(collection).
		Select("id, ? AS value", col).
		Where("? IS NOT NULL AND ? <> ''", col, col).
		Order("id ASC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", domain.ErrPersistence, collection, err)
	}

	out := make([]Record, len(rows))
	for i, r := range rows {
		out[i] = Record{ID: r.ID, Value: r.Value}
	}
	return out, nil
}

func (s *GormStore) UpdateField(ctx context.Context, collection string, id uint, field, value string) error {
	if err := checkColumn(collection, field); err != nil {
		return err
	}
	res := s.DB.WithContext(ctx).Table(collection).Where("id = ?", id).UpdateColumn(field, value)
	if res.Error != nil {
		return fmt.Errorf("%w: update %s %d: %v", domain.ErrPersistence, collection, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s %d", domain.ErrNotFound, collection, id)
	}
	return nil
}
