package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

type ProductFilter struct {
	CategorySlug string
	Search       string
	PriceMin     *int64
	PriceMax     *int64
	WattsMin     *int
	FeaturedOnly bool
	Ordering     string
}

var productOrderings = map[string]string{
	"price":       "products.price ASC",
	"-price":      "products.price DESC",
	"watts":       "products.watts ASC",
	"-watts":      "products.watts DESC",
	"created_at":  "products.created_at ASC",
	"-created_at": "products.created_at DESC",
}

const defaultProductOrder = "products.created_at DESC"

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := r.DB.WithContext(ctx).Order("name ASC").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *GormRepo) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var cat models.Category
	if err := r.DB.WithContext(ctx).Where("slug = ?", slug).First(&cat).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}

func (r *GormRepo) CreateCategory(ctx context.Context, cat *models.Category) error {
	return r.DB.WithContext(ctx).Create(cat).Error
}

// GetOrCreateCategory returns the category named name, creating it when absent.
func (r *GormRepo) GetOrCreateCategory(ctx context.Context, name string) (*models.Category, bool, error) {
	var cat models.Category
	err := r.DB.WithContext(ctx).Where("name = ?", name).First(&cat).Error
	if err == nil {
		return &cat, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	cat = models.Category{Name: name}
	if err := r.DB.WithContext(ctx).Create(&cat).Error; err != nil {
		return nil, false, err
	}
	return &cat, true, nil
}

func (r *GormRepo) UpdateCategory(ctx context.Context, cat *models.Category) error {
	return r.DB.WithContext(ctx).Save(cat).Error
}

func (r *GormRepo) DeleteCategory(ctx context.Context, slug string) error {
	res := r.DB.WithContext(ctx).Where("slug = ?", slug).Delete(&models.Category{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) CountProductsInCategory(ctx context.Context, categoryID uint) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Product{}).Where("category_id = ?", categoryID).Count(&n).Error
	return n, err
}

func (r *GormRepo) productQuery(ctx context.Context, f ProductFilter) *gorm.DB {
	q := r.DB.WithContext(ctx).Model(&models.Product{}).
		Joins("LEFT JOIN categories ON categories.id = products.category_id")

	if f.CategorySlug != "" {
		q = q.Where("categories.slug = ?", f.CategorySlug)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ? OR LOWER(categories.name) LIKE ?)", like, like, like)
	}
	if f.PriceMin != nil {
		q = q.Where("products.price >= ?", *f.PriceMin)
	}
	if f.PriceMax != nil {
		q = q.Where("products.price <= ?", *f.PriceMax)
	}
	if f.WattsMin != nil {
		q = q.Where("products.watts >= ?", *f.WattsMin)
	}
	if f.FeaturedOnly {
		q = q.Where("products.featured = ?", true)
	}
	return q
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter, offset, limit int) (int64, []models.Product, error) {
	var total int64
	if err := r.productQuery(ctx, f).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	order, ok := productOrderings[f.Ordering]
	if !ok {
		order = defaultProductOrder
	}

	var items []models.Product
	if err := r.productQuery(ctx, f).
		Select("products.*").
		Preload("Category").
		Preload("Images").
		Order(order).
		Order("products.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).Preload("Category").Preload("Images").First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).Preload("Category").Preload("Images").Where("slug = ?", slug).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ProductsByIDs loads the given products in one query; missing ids are skipped.
func (r *GormRepo) ProductsByIDs(ctx context.Context, ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Omit("Category", "Images").Create(p).Error
}

func (r *GormRepo) SaveProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Omit("Category", "Images").Save(p).Error
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *GormRepo) ProductOrdered(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.OrderItem{}).Where("product_id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *GormRepo) AddProductImage(ctx context.Context, img *models.ProductImage) error {
	return r.DB.WithContext(ctx).Create(img).Error
}

func (r *GormRepo) DeleteProductImage(ctx context.Context, productID, imageID uint) (*models.ProductImage, error) {
	var img models.ProductImage
	if err := r.DB.WithContext(ctx).Where("id = ? AND product_id = ?", imageID, productID).First(&img).Error; err != nil {
		return nil, err
	}
	if err := r.DB.WithContext(ctx).Delete(&img).Error; err != nil {
		return nil, err
	}
	return &img, nil
}
