package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/news-cms/internal/utils"
)

func testIssuer() *utils.Issuer {
	return &utils.Issuer{
		AccessSecret:  "mw-access-secret",
		RefreshSecret: "mw-refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}
}

func request(cookie *http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/protected", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestJWTAuth_MissingCookie(t *testing.T) {
	c, rec := request(nil)
	err := JWTAuth(testIssuer())(okHandler)(c)
	if err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuth_InvalidToken(t *testing.T) {
	c, rec := request(&http.Cookie{Name: utils.AccessCookie, Value: "garbage"})
	if err := JWTAuth(testIssuer())(okHandler)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
	iss := testIssuer()
	expired := *iss
	expired.AccessTTL = -time.Minute
	pair, err := expired.IssuePair(3, "late@example.com", "USER")
	if err != nil {
		t.Fatalf("IssuePair() error = %v", err)
	}

	c, rec := request(&http.Cookie{Name: utils.AccessCookie, Value: pair.AccessToken})
	if err := JWTAuth(iss)(okHandler)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expired access token: status = %d, want 401", rec.Code)
	}
}

func TestJWTAuth_AttachesIdentity(t *testing.T) {
	iss := testIssuer()
	pair, err := iss.IssuePair(9, "editor@example.com", "ADMIN")
	if err != nil {
		t.Fatalf("IssuePair() error = %v", err)
	}

	c, rec := request(&http.Cookie{Name: utils.AccessCookie, Value: pair.AccessToken})
	called := false
	handler := func(c echo.Context) error {
		called = true
		if got := c.Get(CtxUserID); got != uint64(9) {
			t.Errorf("user_id in context = %v, want 9", got)
		}
		if got := c.Get(CtxEmail); got != "editor@example.com" {
			t.Errorf("email in context = %v", got)
		}
		if got := c.Get(CtxRole); got != "ADMIN" {
			t.Errorf("role in context = %v", got)
		}
		return c.NoContent(http.StatusOK)
	}
	if err := JWTAuth(iss)(handler)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if !called {
		t.Fatal("next handler was not called for a valid token")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		role     any
		required []string
		want     int
	}{
		{"admin on admin route", "ADMIN", []string{"ADMIN"}, http.StatusOK},
		{"user on admin route", "USER", []string{"ADMIN"}, http.StatusForbidden},
		{"user on shared route", "USER", []string{"ADMIN", "USER"}, http.StatusOK},
		{"missing role", nil, []string{"ADMIN"}, http.StatusForbidden},
		{"no roles required", nil, nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := request(nil)
			if tt.role != nil {
				c.Set(CtxRole, tt.role)
			}
			if err := RequireRole(tt.required...)(okHandler)(c); err != nil {
				t.Fatalf("middleware returned error: %v", err)
			}
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

// The guard chain rejects anonymous callers at the authentication step;
// the role guard never runs.
func TestGuardChain_AuthBeforeRole(t *testing.T) {
	c, rec := request(nil)
	roleRan := false
	spy := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roleRan = true
			return RequireRole("ADMIN")(next)(c)
		}
	}
	chain := JWTAuth(testIssuer())(spy(okHandler))
	if err := chain(c); err != nil {
		t.Fatalf("chain returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if roleRan {
		t.Error("role guard must not run for an unauthenticated request")
	}
}
