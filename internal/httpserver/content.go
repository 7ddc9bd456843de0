package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type ContentHTTP struct {
	Svc *service.ContentService
}

func (h *ContentHTTP) ListTestimonials(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "content.list_testimonials")

	list, err := h.Svc.Testimonials(ctx)
	if err != nil {
		return fail(l, "list_testimonials", err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *ContentHTTP) CreateTestimonial(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "content.create_testimonial")

	var req transport.TestimonialRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_testimonial", "invalid body", err)
	}
	t, err := h.Svc.CreateTestimonial(ctx, req)
	if err != nil {
		return fail(l, "create_testimonial", err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *ContentHTTP) Subscribe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "content.subscribe")

	var req transport.NewsletterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "subscribe", "invalid body", err)
	}
	created, err := h.Svc.Subscribe(ctx, req)
	if err != nil {
		return fail(l, "subscribe", err)
	}
	if !created {
		return c.JSON(http.StatusOK, echo.Map{"message": "already subscribed"})
	}
	l.Info("subscribe_success")
	return c.JSON(http.StatusCreated, echo.Map{"message": "subscribed"})
}

func (h *ContentHTTP) Contact(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "content.contact")

	var req transport.ContactRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "contact", "invalid body", err)
	}
	m, err := h.Svc.Contact(ctx, req)
	if err != nil {
		return fail(l, "contact", err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *ContentHTTP) SiteConfig(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "content.site_config")

	cfg, err := h.Svc.SiteConfig(ctx)
	if err != nil {
		return fail(l, "site_config", err)
	}
	return c.JSON(http.StatusOK, cfg)
}

func (h *ContentHTTP) UpdateSiteConfig(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "content.update_site_config")

	var req transport.SiteConfigRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_site_config", "invalid body", err)
	}
	cfg, err := h.Svc.UpdateSiteConfig(ctx, req)
	if err != nil {
		return fail(l, "update_site_config", err)
	}
	return c.JSON(http.StatusOK, cfg)
}
