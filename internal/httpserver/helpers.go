package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/pkg/tokens"
	"github.com/Skotchmaster/storefront/pkg/util"
)

var errUnauthorized = errors.New("unauthorized")

func userID(c echo.Context) (uint, error) {
	s, ok := c.Get("user_id").(string)
	if !ok || s == "" {
		return 0, errUnauthorized
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errUnauthorized
	}
	return uint(id), nil
}

func isStaff(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == tokens.RoleAdmin
}

func idParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New(name + " is not a positive integer")
	}
	return uint(id), nil
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrEmptyCart):
		return http.StatusBadRequest, "cart is empty"
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, errUnauthorized):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrDuplicateOrder):
		return http.StatusConflict, "order already placed for this idempotency key"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrMediaUpload):
		return http.StatusBadGateway, "media upload failed"
	}
	return http.StatusInternalServerError, "internal error"
}

// fail logs err under op and converts it into an HTTP error.
func fail(l *slog.Logger, op string, err error) error {
	code, msg := statusFor(err)
	if code >= http.StatusInternalServerError {
		l.Error(op+"_error", "status", code, "reason", msg, "error", err)
	} else {
		l.Warn(op+"_error", "status", code, "reason", msg, "error", err)
	}
	return echo.NewHTTPError(code, msg)
}

func badRequest(l *slog.Logger, op, reason string, err error) error {
	l.Warn(op+"_error", "status", http.StatusBadRequest, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, reason)
}

func pageParams(c echo.Context) (page, offset, limit int) {
	page = util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit = util.Calculate(page, size)
	if page < 1 {
		page = 1
	}
	return page, offset, limit
}

func paged(data any, page, offset, limit int, total int64) echo.Map {
	return echo.Map{
		"data": data,
		"meta": util.Meta(page, offset, limit, total),
	}
}

func loadCart(c echo.Context, catalog cart.Catalog) (*cart.Cart, error) {
	sess, ok := session.FromContext(c)
	if !ok {
		return nil, errors.New("no session attached")
	}
	return cart.Load(c.Request().Context(), sess, catalog)
}
