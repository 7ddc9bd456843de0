package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

// productView adds the resolved WhatsApp number to a product.
type productView struct {
	*models.Product
	WhatsApp string `json:"whatsapp"`
	OnSale   bool   `json:"on_sale"`
}

func (h *CatalogHTTP) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_categories")

	cats, err := h.Svc.ListCategories(ctx)
	if err != nil {
		return fail(l, "list_categories", err)
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *CatalogHTTP) GetCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_category")

	cat, err := h.Svc.GetCategory(ctx, c.Param("slug"))
	if err != nil {
		return fail(l, "get_category", err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CatalogHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_category")

	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_category", "invalid body", err)
	}
	cat, err := h.Svc.CreateCategory(ctx, req)
	if err != nil {
		return fail(l, "create_category", err)
	}
	l.Info("create_category_success", "slug", cat.Slug)
	return c.JSON(http.StatusCreated, cat)
}

func (h *CatalogHTTP) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.update_category")

	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_category", "invalid body", err)
	}
	cat, err := h.Svc.UpdateCategory(ctx, c.Param("slug"), req)
	if err != nil {
		return fail(l, "update_category", err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CatalogHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_category")

	if err := h.Svc.DeleteCategory(ctx, c.Param("slug")); err != nil {
		return fail(l, "delete_category", err)
	}
	l.Info("delete_category_success")
	return c.NoContent(http.StatusNoContent)
}

func optInt64(s string) *int64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func optInt(s string) *int {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}

func filterFrom(c echo.Context) repo.ProductFilter {
	return repo.ProductFilter{
		CategorySlug: c.QueryParam("category"),
		PriceMin:     optInt64(c.QueryParam("price_min")),
		PriceMax:     optInt64(c.QueryParam("price_max")),
		WattsMin:     optInt(c.QueryParam("watts_min")),
		Ordering:     c.QueryParam("ordering"),
	}
}

func (h *CatalogHTTP) listProducts(c echo.Context, op string, f repo.ProductFilter) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog."+op)

	page, offset, limit := pageParams(c)
	total, items, err := h.Svc.ListProducts(ctx, f, offset, limit)
	if err != nil {
		return fail(l, op, err)
	}
	l.Info(op+"_success", "total", total)
	return c.JSON(http.StatusOK, paged(items, page, offset, limit, total))
}

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	return h.listProducts(c, "list_products", filterFrom(c))
}

func (h *CatalogHTTP) Featured(c echo.Context) error {
	f := filterFrom(c)
	f.FeaturedOnly = true
	return h.listProducts(c, "featured_products", f)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_product")

	p, err := h.Svc.GetProduct(ctx, c.Param("slug"))
	if err != nil {
		return fail(l, "get_product", err)
	}
	return c.JSON(http.StatusOK, productView{Product: p, WhatsApp: h.Svc.WhatsAppFor(ctx, p), OnSale: p.OnSale()})
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search")

	page, offset, limit := pageParams(c)
	total, items, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), c.QueryParam("category"), offset, limit)
	if err != nil {
		return fail(l, "search", err)
	}
	l.Info("search_success", "total", total)
	return c.JSON(http.StatusOK, paged(items, page, offset, limit, total))
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_product")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_product", "invalid body", err)
	}
	p, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		return fail(l, "create_product", err)
	}
	l.Info("create_product_success", "product_id", p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.patch_product")

	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "patch_product", "invalid body", err)
	}
	p, err := h.Svc.PatchProduct(ctx, c.Param("slug"), req)
	if err != nil {
		return fail(l, "patch_product", err)
	}
	l.Info("patch_product_success", "product_id", p.ID)
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_product")

	if err := h.Svc.DeleteProduct(ctx, c.Param("slug")); err != nil {
		return fail(l, "delete_product", err)
	}
	l.Info("delete_product_success")
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) ListReviews(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_reviews")

	reviews, err := h.Svc.ListReviews(ctx, c.Param("slug"))
	if err != nil {
		return fail(l, "list_reviews", err)
	}
	return c.JSON(http.StatusOK, reviews)
}

func (h *CatalogHTTP) CreateReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_review")

	uid, err := userID(c)
	if err != nil {
		return fail(l, "create_review", err)
	}
	var req transport.ReviewRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_review", "invalid body", err)
	}
	rv, err := h.Svc.CreateReview(ctx, c.Param("slug"), uid, req)
	if err != nil {
		return fail(l, "create_review", err)
	}
	return c.JSON(http.StatusCreated, rv)
}

func (h *CatalogHTTP) UploadImage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.upload_image")

	fh, err := c.FormFile("image")
	if err != nil {
		return badRequest(l, "upload_image", "image file is required", err)
	}
	f, err := fh.Open()
	if err != nil {
		return badRequest(l, "upload_image", "cannot read image", err)
	}
	defer f.Close()

	img, err := h.Svc.AddImage(ctx, c.Param("slug"), f, fh.Filename)
	if err != nil {
		return fail(l, "upload_image", err)
	}
	l.Info("upload_image_success", "image", img.Image)
	return c.JSON(http.StatusCreated, img)
}

func (h *CatalogHTTP) DeleteImage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_image")

	id, err := idParam(c, "image_id")
	if err != nil {
		return badRequest(l, "delete_image", err.Error(), err)
	}
	if err := h.Svc.DeleteImage(ctx, c.Param("slug"), id); err != nil {
		return fail(l, "delete_image", err)
	}
	return c.NoContent(http.StatusNoContent)
}
