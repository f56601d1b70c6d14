package middleware // package middleware contains reusable HTTP middleware functions

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/news-cms/internal/utils"
)

// Context keys under which the authenticated identity is stored.  Handlers
// read them back via c.Get().
const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
	CtxRole   = "role"
)

// JWTAuth returns an Echo middleware that authenticates a request from the
// access_token cookie.  The token's signature and expiry are verified with
// the issuer's access secret; on success the subject id, email and role are
// attached to the request context.  Missing or invalid tokens are rejected
// with 401 and a single generic message, so callers learn nothing about
// which check failed.  This middleware must run before RequireRole on every
// protected route.
func JWTAuth(issuer *utils.Issuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(utils.AccessCookie)
			if err != nil || cookie.Value == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			claims, err := issuer.VerifyAccess(cookie.Value)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxEmail, claims.Email)
			c.Set(CtxRole, claims.Role)
			return next(c)
		}
	}
}
