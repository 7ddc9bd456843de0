package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) ListTestimonials(ctx context.Context, limit int) ([]models.Testimonial, error) {
	q := r.DB.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []models.Testimonial
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) CreateTestimonial(ctx context.Context, t *models.Testimonial) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

// Subscribe stores email once. created is false when it was already there.
func (r *GormRepo) Subscribe(ctx context.Context, email string) (sub *models.NewsletterSubscription, created bool, err error) {
	email = strings.ToLower(strings.TrimSpace(email))
	s := models.NewsletterSubscription{Email: email}
	res := r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&s)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 1 {
		return &s, true, nil
	}
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&s).Error; err != nil {
		return nil, false, err
	}
	return &s, false, nil
}

func (r *GormRepo) CreateContactMessage(ctx context.Context, m *models.ContactMessage) error {
	return r.DB.WithContext(ctx).Create(m).Error
}

// SiteConfig returns the single config row or built-in defaults.
func (r *GormRepo) SiteConfig(ctx context.Context) (models.SiteConfig, error) {
	var cfg models.SiteConfig
	err := r.DB.WithContext(ctx).Order("id ASC").First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultSiteConfig(), nil
	}
	if err != nil {
		return models.SiteConfig{}, err
	}
	return cfg, nil
}

func (r *GormRepo) SaveSiteConfig(ctx context.Context, cfg *models.SiteConfig) error {
	var existing models.SiteConfig
	err := r.DB.WithContext(ctx).Order("id ASC").First(&existing).Error
	switch {
	case err == nil:
		cfg.ID = existing.ID
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}
	return r.DB.WithContext(ctx).Save(cfg).Error
}
