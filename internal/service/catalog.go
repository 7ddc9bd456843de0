package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/media"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const galleryFolder = "products/gallery"

type Searcher interface {
	IndexProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
	Search(ctx context.Context, query, categorySlug string, from, size int) (int64, []uint, error)
}

type MediaStore interface {
	Put(ctx context.Context, r io.Reader, folder, name string) (media.Uploaded, error)
	Delete(ctx context.Context, url string) error
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Search Searcher
	Media  MediaStore
	Events events.Publisher

	// DefaultWhatsApp applies while no site config row has been saved.
	DefaultWhatsApp string
}

func productKey(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.Repo.ListCategories(ctx)
}

func (s *CatalogService) GetCategory(ctx context.Context, slug string) (*models.Category, error) {
	cat, err := s.Repo.GetCategoryBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, "category "+slug)
	}
	return cat, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, req transport.CategoryRequest) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	cat, created, err := s.Repo.GetOrCreateCategory(ctx, name)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, fmt.Errorf("%w: category %q exists", domain.ErrConflict, name)
	}
	if req.Image != "" {
		cat.Image = req.Image
		if err := s.Repo.UpdateCategory(ctx, cat); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, slug string, req transport.CategoryRequest) (*models.Category, error) {
	cat, err := s.GetCategory(ctx, slug)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		cat.Name = name
	}
	if req.Image != "" {
		cat.Image = req.Image
	}
	if err := s.Repo.UpdateCategory(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

// DeleteCategory refuses to drop a category that still has products.
func (s *CatalogService) DeleteCategory(ctx context.Context, slug string) error {
	cat, err := s.GetCategory(ctx, slug)
	if err != nil {
		return err
	}
	n, err := s.Repo.CountProductsInCategory(ctx, cat.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: category has %d products", domain.ErrConflict, n)
	}
	return notFound(s.Repo.DeleteCategory(ctx, slug), "category "+slug)
}

func (s *CatalogService) ListProducts(ctx context.Context, f repo.ProductFilter, offset, limit int) (int64, []models.Product, error) {
	return s.Repo.ListProducts(ctx, f, offset, limit)
}

func (s *CatalogService) GetProduct(ctx context.Context, slug string) (*models.Product, error) {
	p, err := s.Repo.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, "product "+slug)
	}
	return p, nil
}

// WhatsAppFor returns the product's own number or the site-wide one.
func (s *CatalogService) WhatsAppFor(ctx context.Context, p *models.Product) string {
	if p.WhatsAppNumber != "" {
		return p.WhatsAppNumber
	}
	cfg, err := s.Repo.SiteConfig(ctx)
	switch {
	case err == nil && cfg.ID != 0 && cfg.WhatsAppNumber != "":
		return cfg.WhatsAppNumber
	case s.DefaultWhatsApp != "":
		return s.DefaultWhatsApp
	}
	return models.DefaultWhatsApp
}

func validateProduct(p *models.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative", domain.ErrValidation)
	}
	if p.OldPrice != nil && *p.OldPrice < 0 {
		return fmt.Errorf("%w: old_price cannot be negative", domain.ErrValidation)
	}
	if p.Stock < 0 || p.Watts < 0 {
		return fmt.Errorf("%w: stock and watts cannot be negative", domain.ErrValidation)
	}
	if !p.BadgeType.Valid() {
		return fmt.Errorf("%w: unknown badge %q", domain.ErrValidation, p.BadgeType)
	}
	return nil
}

func (s *CatalogService) categoryFor(ctx context.Context, slug string) (*models.Category, error) {
	if slug == "" {
		return nil, fmt.Errorf("%w: category is required", domain.ErrValidation)
	}
	cat, err := s.Repo.GetCategoryBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown category %q", domain.ErrValidation, slug)
		}
		return nil, err
	}
	return cat, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	p := models.Product{
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		Price:          req.Price,
		OldPrice:       req.OldPrice,
		Watts:          req.Watts,
		MainImage:      req.MainImage,
		Featured:       req.Featured,
		Stock:          req.Stock,
		BadgeType:      req.BadgeType,
		WhatsAppNumber: req.WhatsAppNumber,
	}
	if err := validateProduct(&p); err != nil {
		return nil, err
	}
	cat, err := s.categoryFor(ctx, req.CategorySlug)
	if err != nil {
		return nil, err
	}
	p.CategoryID = cat.ID

	if err := s.Repo.CreateProduct(ctx, &p); err != nil {
		return nil, err
	}
	p.Category = cat

	s.index(ctx, p)
	publish(ctx, s.Events, events.TopicProduct, productKey(p.ID), map[string]any{
		"type":      "product_created",
		"productID": p.ID,
		"name":      p.Name,
		"price":     p.Price,
	})
	return &p, nil
}

func (s *CatalogService) PatchProduct(ctx context.Context, slug string, req transport.PatchProductRequest) (*models.Product, error) {
	p, err := s.GetProduct(ctx, slug)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.OldPrice != nil {
		p.OldPrice = req.OldPrice
	}
	if req.Watts != nil {
		p.Watts = *req.Watts
	}
	if req.MainImage != nil {
		p.MainImage = *req.MainImage
	}
	if req.Featured != nil {
		p.Featured = *req.Featured
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.BadgeType != nil {
		p.BadgeType = *req.BadgeType
	}
	if req.WhatsAppNumber != nil {
		p.WhatsAppNumber = *req.WhatsAppNumber
	}
	if req.CategorySlug != nil {
		cat, err := s.categoryFor(ctx, *req.CategorySlug)
		if err != nil {
			return nil, err
		}
		p.CategoryID = cat.ID
		p.Category = cat
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	if err := s.Repo.SaveProduct(ctx, p); err != nil {
		return nil, err
	}

	s.index(ctx, *p)
	publish(ctx, s.Events, events.TopicProduct, productKey(p.ID), map[string]any{
		"type":      "product_updated",
		"productID": p.ID,
		"name":      p.Name,
		"price":     p.Price,
	})
	return p, nil
}

// DeleteProduct refuses products that appear on an order, since order
// items keep a reference to them.
func (s *CatalogService) DeleteProduct(ctx context.Context, slug string) error {
	p, err := s.GetProduct(ctx, slug)
	if err != nil {
		return err
	}
	ordered, err := s.Repo.ProductOrdered(ctx, p.ID)
	if err != nil {
		return err
	}
	if ordered {
		return fmt.Errorf("%w: product %q is referenced by orders", domain.ErrConflict, slug)
	}
	if err := s.Repo.DeleteProduct(ctx, p.ID); err != nil {
		return notFound(err, "product "+slug)
	}

	if s.Search != nil {
		if err := s.Search.DeleteProduct(ctx, p.ID); err != nil {
			logging.FromContext(ctx).Warn("search_delete_failed", "product_id", p.ID, "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicProduct, productKey(p.ID), map[string]any{
		"type":      "product_deleted",
		"productID": p.ID,
	})
	return nil
}

func (s *CatalogService) index(ctx context.Context, p models.Product) {
	if s.Search == nil {
		return
	}
	if err := s.Search.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "product_id", p.ID, "error", err)
	}
}

// SearchProducts asks the search index first and falls back to a database
// LIKE query when no index is configured or the index is unavailable.
func (s *CatalogService) SearchProducts(ctx context.Context, query, categorySlug string, offset, limit int) (int64, []models.Product, error) {
	if s.Search != nil {
		total, ids, err := s.Search.Search(ctx, query, categorySlug, offset, limit)
		if err == nil {
			items, err := s.Repo.ProductsByIDs(ctx, ids)
			if err != nil {
				return 0, nil, err
			}
			return total, orderByIDs(items, ids), nil
		}
		logging.FromContext(ctx).Warn("search_fallback", "reason", "index unavailable", "error", err)
	}
	f := repo.ProductFilter{Search: query, CategorySlug: categorySlug}
	return s.Repo.ListProducts(ctx, f, offset, limit)
}

func orderByIDs(items []models.Product, ids []uint) []models.Product {
	byID := make(map[uint]models.Product, len(items))
	for _, p := range items {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(items))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

func (s *CatalogService) ListReviews(ctx context.Context, slug string) ([]models.Review, error) {
	p, err := s.GetProduct(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.Repo.ListReviews(ctx, p.ID)
}

func (s *CatalogService) CreateReview(ctx context.Context, slug string, userID uint, req transport.ReviewRequest) (*models.Review, error) {
	p, err := s.GetProduct(ctx, slug)
	if err != nil {
		return nil, err
	}
	rating := req.Rating
	if rating == 0 {
		rating = 5
	}
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrValidation)
	}
	rv := models.Review{ProductID: p.ID, UserID: &userID, Rating: rating, Text: strings.TrimSpace(req.Text)}
	if err := s.Repo.CreateReview(ctx, &rv); err != nil {
		return nil, err
	}
	return &rv, nil
}

// AddImage uploads r to the media store and attaches it to the gallery.
func (s *CatalogService) AddImage(ctx context.Context, slug string, r io.Reader, filename string) (*models.ProductImage, error) {
	if s.Media == nil {
		return nil, fmt.Errorf("%w: media store not configured", domain.ErrMediaUpload)
	}
	p, err := s.GetProduct(ctx, slug)
	if err != nil {
		return nil, err
	}
	up, err := s.Media.Put(ctx, r, galleryFolder, filename)
	if err != nil {
		return nil, err
	}
	img := models.ProductImage{ProductID: p.ID, Image: up.SecureURL}
	if err := s.Repo.AddProductImage(ctx, &img); err != nil {
		return nil, err
	}
	return &img, nil
}

func (s *CatalogService) DeleteImage(ctx context.Context, slug string, imageID uint) error {
	p, err := s.GetProduct(ctx, slug)
	if err != nil {
		return err
	}
	img, err := s.Repo.DeleteProductImage(ctx, p.ID, imageID)
	if err != nil {
		return notFound(err, "image")
	}
	if s.Media != nil {
		if err := s.Media.Delete(ctx, img.Image); err != nil {
			logging.FromContext(ctx).Warn("media_delete_failed", "image", img.Image, "error", err)
		}
	}
	return nil
}
