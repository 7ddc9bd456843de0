package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	uid, err := userID(c)
	if err != nil {
		return fail(l, "list_orders", err)
	}
	page, offset, limit := pageParams(c)
	total, orders, err := h.Svc.List(ctx, uid, isStaff(c), offset, limit)
	if err != nil {
		return fail(l, "list_orders", err)
	}
	return c.JSON(http.StatusOK, paged(orders, page, offset, limit, total))
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	uid, err := userID(c)
	if err != nil {
		return fail(l, "get_order", err)
	}
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(l, "get_order", err.Error(), err)
	}
	order, err := h.Svc.Get(ctx, id, uid, isStaff(c))
	if err != nil {
		return fail(l, "get_order", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) SetStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.set_status")

	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(l, "set_status", err.Error(), err)
	}
	var req transport.OrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "set_status", "invalid body", err)
	}
	order, err := h.Svc.SetStatus(ctx, id, req.Status)
	if err != nil {
		return fail(l, "set_status", err)
	}
	l.Info("set_status_success", "order_id", id, "status", req.Status)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) UpdateItemQty(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_item")

	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(l, "update_item", err.Error(), err)
	}
	itemID, err := idParam(c, "item_id")
	if err != nil {
		return badRequest(l, "update_item", err.Error(), err)
	}
	var req transport.OrderItemQtyRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_item", "invalid body", err)
	}
	order, err := h.Svc.UpdateItemQty(ctx, id, itemID, req.Qty)
	if err != nil {
		return fail(l, "update_item", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.delete")

	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(l, "delete_order", err.Error(), err)
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return fail(l, "delete_order", err)
	}
	l.Info("delete_order_success", "order_id", id)
	return c.NoContent(http.StatusNoContent)
}
