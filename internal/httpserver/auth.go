package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func setAuthCookies(c echo.Context, pair *tokens.Pair) {
	c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, pair.AccessToken, "/", pair.AccessExp))
	c.SetCookie(tokens.CreateCookie(tokens.RefreshCookie, pair.RefreshToken, "/", pair.RefreshExp))
}

func clearAuthCookies(c echo.Context) {
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
	c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, "/"))
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "register", "invalid body", err)
	}
	u, err := h.Svc.Register(ctx, req)
	if err != nil {
		return fail(l, "register", err)
	}
	l.Info("register_success", "user_id", u.ID)
	return c.JSON(http.StatusCreated, u)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "login", "invalid body", err)
	}
	pair, err := h.Svc.Login(ctx, req.Login, req.Password)
	if err != nil {
		return fail(l, "login", err)
	}
	setAuthCookies(c, pair)
	l.Info("login_successful")
	return c.JSON(http.StatusOK, echo.Map{"is_admin": pair.IsAdmin})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	ck, err := c.Cookie(tokens.RefreshCookie)
	if err != nil || ck.Value == "" {
		l.Warn("refresh_error", "status", 401, "reason", "refresh token missing")
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
	}
	pair, err := h.Svc.Refresh(ctx, ck.Value)
	if err != nil {
		clearAuthCookies(c)
		return fail(l, "refresh", err)
	}
	setAuthCookies(c, pair)
	return c.JSON(http.StatusOK, echo.Map{"is_admin": pair.IsAdmin})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	if ck, err := c.Cookie(tokens.RefreshCookie); err == nil {
		if err := h.Svc.Logout(ctx, ck.Value); err != nil {
			clearAuthCookies(c)
			return fail(l, "logout", err)
		}
	}
	clearAuthCookies(c)
	l.Info("successful_logout")
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.me")

	uid, err := userID(c)
	if err != nil {
		return fail(l, "me", err)
	}
	u, err := h.Svc.Me(ctx, uid)
	if err != nil {
		return fail(l, "me", err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *AuthHTTP) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.change_password")

	uid, err := userID(c)
	if err != nil {
		return fail(l, "change_password", err)
	}
	var req transport.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "change_password", "invalid body", err)
	}
	pair, err := h.Svc.ChangePassword(ctx, uid, req)
	if err != nil {
		return fail(l, "change_password", err)
	}
	setAuthCookies(c, pair)
	l.Info("password_changed", "user_id", uid)
	return c.JSON(http.StatusOK, echo.Map{"message": "password changed"})
}

func (h *AuthHTTP) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.reset_password")

	var req transport.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "reset_password", "invalid body", err)
	}
	if err := h.Svc.RequestPasswordReset(ctx, req.Email); err != nil {
		return fail(l, "reset_password", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "if the account exists, a reset link has been sent"})
}

func (h *AuthHTTP) ConfirmResetPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.reset_password_confirm")

	var req transport.ResetPasswordConfirmRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "reset_password_confirm", "invalid body", err)
	}
	if err := h.Svc.ConfirmPasswordReset(ctx, req); err != nil {
		return fail(l, "reset_password_confirm", err)
	}
	clearAuthCookies(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "password has been reset"})
}
