package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/checkout"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const HeaderIdempotencyKey = "Idempotency-Key"

type CheckoutHTTP struct {
	Assembler *checkout.Assembler
	Catalog   cart.Catalog
}

func (h *CheckoutHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.place_order")

	uid, err := userID(c)
	if err != nil {
		return fail(l, "checkout", err)
	}

	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "checkout", "invalid body", err)
	}

	crt, err := loadCart(c, h.Catalog)
	if err != nil {
		return fail(l, "checkout", err)
	}

	order, err := h.Assembler.PlaceOrder(ctx, crt, checkout.PlaceOrderRequest{
		Address: checkout.AddressInput{
			AddressID: req.AddressID,
			FullName:  req.FullName,
			Phone:     req.Phone,
			Line1:     req.Line1,
			Line2:     req.Line2,
			City:      req.City,
			Notes:     req.Notes,
		},
		WhatsAppNumber: strings.TrimSpace(req.WhatsAppNumber),
		IdempotencyKey: strings.TrimSpace(c.Request().Header.Get(HeaderIdempotencyKey)),
	}, uid)
	if err != nil {
		return fail(l, "checkout", err)
	}

	l.Info("checkout_success", "order_id", order.ID, "total", order.Total)
	return c.JSON(http.StatusCreated, order)
}
