package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CartHTTP struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

func (h *CartHTTP) publish(c echo.Context, event map[string]any) {
	if h.Events == nil {
		return
	}
	sess, _ := session.FromContext(c)
	key := ""
	if sess != nil {
		key = sess.ID()
	}
	if err := h.Events.PublishEvent(c.Request().Context(), events.TopicCart, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Warn("publish_event_failed", "topic", events.TopicCart, "error", err)
	}
}

func (h *CartHTTP) render(c echo.Context, crt *cart.Cart) error {
	ctx := c.Request().Context()
	items, err := crt.Items(ctx)
	if err != nil {
		return err
	}
	if items == nil {
		items = []cart.Item{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":       items,
		"total_count": crt.TotalCount(),
		"total_price": cart.Sum(items),
	})
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "cart.get")

	crt, err := loadCart(c, h.Repo)
	if err != nil {
		return fail(l, "get_cart", err)
	}
	if err := h.render(c, crt); err != nil {
		return fail(l, "get_cart", err)
	}
	return nil
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	var req transport.CartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "add_to_cart", "invalid body", err)
	}
	if req.ProductID == 0 {
		return badRequest(l, "add_to_cart", "product_id required", nil)
	}
	if req.Quantity == 0 && !req.Override {
		req.Quantity = 1
	}
	if req.Quantity > cart.MaxLineQuantity {
		return badRequest(l, "add_to_cart", "quantity too large", nil)
	}

	product, err := h.Repo.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("add_to_cart_error", "status", 404, "reason", "product not found", "product_id", req.ProductID)
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return fail(l, "add_to_cart", err)
	}

	crt, err := loadCart(c, h.Repo)
	if err != nil {
		return fail(l, "add_to_cart", err)
	}
	if err := crt.Add(ctx, *product, req.Quantity, req.Override); err != nil {
		return fail(l, "add_to_cart", err)
	}

	h.publish(c, map[string]any{
		"type":      "cart_item_added",
		"productID": product.ID,
		"quantity":  req.Quantity,
		"override":  req.Override,
	})
	l.Info("add_to_cart_success", "product_id", product.ID)
	if err := h.render(c, crt); err != nil {
		return fail(l, "add_to_cart", err)
	}
	return nil
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	id, err := idParam(c, "product_id")
	if err != nil {
		return badRequest(l, "remove_from_cart", err.Error(), err)
	}
	crt, err := loadCart(c, h.Repo)
	if err != nil {
		return fail(l, "remove_from_cart", err)
	}
	if err := crt.Remove(ctx, id); err != nil {
		return fail(l, "remove_from_cart", err)
	}

	h.publish(c, map[string]any{"type": "cart_item_removed", "productID": id})
	if err := h.render(c, crt); err != nil {
		return fail(l, "remove_from_cart", err)
	}
	return nil
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	crt, err := loadCart(c, h.Repo)
	if err != nil {
		return fail(l, "clear_cart", err)
	}
	if err := crt.Clear(ctx); err != nil {
		return fail(l, "clear_cart", err)
	}
	h.publish(c, map[string]any{"type": "cart_cleared"})
	return c.NoContent(http.StatusNoContent)
}
