package session

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CookieName = "sessionid"
	contextKey = "session"
)

// Middleware attaches a Session to every request, issuing a new
// sessionid cookie when the client has none or sends garbage.
func Middleware(store Store, ttl time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ""
			if ck, err := c.Cookie(CookieName); err == nil {
				if _, perr := uuid.Parse(ck.Value); perr == nil {
					id = ck.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
			}

			c.SetCookie(&http.Cookie{
				Name:     CookieName,
				Value:    id,
				Path:     "/",
				Expires:  time.Now().Add(ttl),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			c.Set(contextKey, store.Session(id))
			return next(c)
		}
	}
}

func FromContext(c echo.Context) (Session, bool) {
	s, ok := c.Get(contextKey).(Session)
	return s, ok
}
