package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/Skotchmaster/storefront/internal/session"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
)

type Deps struct {
	Catalog  *CatalogHTTP
	Cart     *CartHTTP
	Checkout *CheckoutHTTP
	Orders   *OrderHTTP
	Auth     *AuthHTTP
	Account  *AccountHTTP
	Content  *ContentHTTP

	JWTSecret  []byte
	Refresher  middleware.Refresher
	Sessions   session.Store
	SessionTTL time.Duration

	// CSRF enables double-submit protection on /api/v1 when set.
	CSRF *csrf.Config

	CheckoutRatePerMin int
	Ready              func(ctx context.Context) error
}

// CSRFSkipPaths are the endpoints a client may call before it holds a token.
var CSRFSkipPaths = []string{
	"/api/v1/auth/login",
	"/api/v1/auth/register",
	"/api/v1/auth/refresh",
	"/api/v1/auth/password/reset",
	"/api/v1/auth/password/reset/confirm",
}

func checkoutLimiter(perMin int) echo.MiddlewareFunc {
	if perMin <= 0 {
		perMin = 10
	}
	store := echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perMin) / 60),
		Burst:     perMin,
		ExpiresIn: 3 * time.Minute,
	})
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many checkout attempts")
		},
	})
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
			}
		}
		return c.NoContent(http.StatusOK)
	})

	authMW := middleware.NewAutoRefreshMiddleware(d.JWTSecret, d.Refresher)

	api := e.Group("/api/v1", session.Middleware(d.Sessions, d.SessionTTL))
	if d.CSRF != nil {
		api.Use(csrf.Middleware(*d.CSRF))
	}

	api.POST("/auth/register", d.Auth.Register)
	api.POST("/auth/login", d.Auth.Login)
	api.POST("/auth/refresh", d.Auth.Refresh)
	api.POST("/auth/logout", d.Auth.Logout)
	api.POST("/auth/password/change", d.Auth.ChangePassword, authMW.RequireAuth)
	api.POST("/auth/password/reset", d.Auth.ResetPassword)
	api.POST("/auth/password/reset/confirm", d.Auth.ConfirmResetPassword)
	api.GET("/me", d.Auth.Me, authMW.RequireAuth)

	api.GET("/categories", d.Catalog.ListCategories)
	api.GET("/categories/:slug", d.Catalog.GetCategory)
	api.GET("/products", d.Catalog.ListProducts)
	api.GET("/products/featured", d.Catalog.Featured)
	api.GET("/products/search", d.Catalog.SearchProducts)
	api.GET("/products/:slug", d.Catalog.GetProduct)
	api.GET("/products/:slug/reviews", d.Catalog.ListReviews)
	api.POST("/products/:slug/reviews", d.Catalog.CreateReview, authMW.RequireAuth)

	api.GET("/cart", d.Cart.GetCart)
	api.POST("/cart/items", d.Cart.AddItem)
	api.DELETE("/cart/items/:product_id", d.Cart.RemoveItem)
	api.DELETE("/cart", d.Cart.ClearCart)

	api.POST("/checkout", d.Checkout.Checkout, authMW.RequireAuth, checkoutLimiter(d.CheckoutRatePerMin))

	api.GET("/addresses", d.Account.ListAddresses, authMW.RequireAuth)
	api.POST("/addresses", d.Account.CreateAddress, authMW.RequireAuth)
	api.DELETE("/addresses/:id", d.Account.DeleteAddress, authMW.RequireAuth)
	api.GET("/orders", d.Orders.ListOrders, authMW.RequireAuth)
	api.GET("/orders/:id", d.Orders.GetOrder, authMW.RequireAuth)

	api.GET("/testimonials", d.Content.ListTestimonials)
	api.POST("/testimonials", d.Content.CreateTestimonial)
	api.POST("/newsletter", d.Content.Subscribe)
	api.POST("/contact", d.Content.Contact)
	api.GET("/site-config", d.Content.SiteConfig)

	admin := api.Group("/admin", authMW.RequireAdmin)
	admin.POST("/categories", d.Catalog.CreateCategory)
	admin.PATCH("/categories/:slug", d.Catalog.UpdateCategory)
	admin.DELETE("/categories/:slug", d.Catalog.DeleteCategory)
	admin.POST("/products", d.Catalog.CreateProduct)
	admin.PATCH("/products/:slug", d.Catalog.PatchProduct)
	admin.DELETE("/products/:slug", d.Catalog.DeleteProduct)
	admin.POST("/products/:slug/images", d.Catalog.UploadImage)
	admin.DELETE("/products/:slug/images/:image_id", d.Catalog.DeleteImage)
	admin.PATCH("/orders/:id/status", d.Orders.SetStatus)
	admin.PATCH("/orders/:id/items/:item_id", d.Orders.UpdateItemQty)
	admin.DELETE("/orders/:id", d.Orders.DeleteOrder)
	admin.PATCH("/site-config", d.Content.UpdateSiteConfig)
}
