package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(cfg Config) *echo.Echo {
	e := echo.New()
	e.Use(Middleware(cfg))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/form", ok)
	e.POST("/submit", ok)
	e.POST("/login", ok)
	return e
}

func TestGetIssuesToken(t *testing.T) {
	e := newServer(DefaultConfig())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/form", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	token := rec.Header().Get("X-CSRF-Token")
	require.NotEmpty(t, token)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, token, cookies[0].Value)
}

func TestPostRequiresMatchingToken(t *testing.T) {
	e := newServer(DefaultConfig())

	post := func(header string) int {
		req := httptest.NewRequest(http.MethodPost, "/submit", nil)
		req.Host = "shop.test"
		req.Header.Set("Origin", "http://shop.test")
		req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "abc"})
		if header != "" {
			req.Header.Set("X-CSRF-Token", header)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, post("abc"))
	assert.Equal(t, http.StatusForbidden, post("abd"))
	assert.Equal(t, http.StatusForbidden, post(""))
}

func TestForeignOriginRejected(t *testing.T) {
	e := newServer(DefaultConfig())
	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.Host = "shop.test"
	req.Header.Set("Origin", "http://evil.test")
	req.Header.Set("X-CSRF-Token", "abc")
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "abc"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSkipPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SkipPaths = []string{"/login"}
	e := newServer(cfg)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
