package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type AccountHTTP struct {
	Svc *service.AccountService
}

func (h *AccountHTTP) ListAddresses(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.list_addresses")

	uid, err := userID(c)
	if err != nil {
		return fail(l, "list_addresses", err)
	}
	list, err := h.Svc.Addresses(ctx, uid)
	if err != nil {
		return fail(l, "list_addresses", err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *AccountHTTP) CreateAddress(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.create_address")

	uid, err := userID(c)
	if err != nil {
		return fail(l, "create_address", err)
	}
	var req transport.AddressRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_address", "invalid body", err)
	}
	a, err := h.Svc.CreateAddress(ctx, uid, req)
	if err != nil {
		return fail(l, "create_address", err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *AccountHTTP) DeleteAddress(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.delete_address")

	uid, err := userID(c)
	if err != nil {
		return fail(l, "delete_address", err)
	}
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(l, "delete_address", err.Error(), err)
	}
	if err := h.Svc.DeleteAddress(ctx, uid, id); err != nil {
		return fail(l, "delete_address", err)
	}
	return c.NoContent(http.StatusNoContent)
}
