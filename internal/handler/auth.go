package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/news-cms/internal/middleware"
	"github.com/iliyamo/news-cms/internal/model"
	"github.com/iliyamo/news-cms/internal/service"
	"github.com/iliyamo/news-cms/internal/utils"
)

// dbTimeout bounds every datastore round-trip made from a handler.
const dbTimeout = 5 * time.Second

// AuthHandler exposes the session endpoints.  The service does the work;
// the handler owns transport: request binding and the cookie pair.
type AuthHandler struct {
	Svc     *service.AuthService
	Cookies *utils.CookieWriter
}

func NewAuthHandler(svc *service.AuthService, cookies *utils.CookieWriter) *AuthHandler {
	return &AuthHandler{Svc: svc, Cookies: cookies}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResp struct {
	User model.PublicUser `json:"user"`
}

// Register handles POST /v1/auth/register: creates a USER account and opens
// its session in one step.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	if req.Email == "" || req.Password == "" || req.FullName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, password and fullName are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, pair, err := h.Svc.Register(ctx, req.Email, req.Password, req.FullName)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}
	h.Cookies.SetPair(c, pair)
	return c.JSON(http.StatusCreated, authResp{User: u.Public()})
}

// Login handles POST /v1/auth/login.  Unknown email and wrong password
// produce the same response.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, pair, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	h.Cookies.SetPair(c, pair)
	return c.JSON(http.StatusOK, authResp{User: u.Public()})
}

// Refresh handles POST /v1/auth/refresh: exchanges the refresh cookie for a
// new pair, rotating the stored token.  Every failure mode is a 401.
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(utils.RefreshCookie)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, pair, err := h.Svc.Refresh(ctx, cookie.Value)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefresh) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}
	h.Cookies.SetPair(c, pair)
	return c.JSON(http.StatusOK, authResp{User: u.Public()})
}

// Logout handles POST /v1/auth/logout (protected).  Clears the stored
// session and both cookies; repeating it is harmless.
func (h *AuthHandler) Logout(c echo.Context) error {
	uid, ok := c.Get(middleware.CtxUserID).(uint64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Svc.Logout(ctx, uid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	h.Cookies.Clear(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}
