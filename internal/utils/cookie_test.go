package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestParseMaxAge(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"15m", 900_000},
		{"1m", 60_000},
		{"12h", 43_200_000},
		{"7d", 604_800_000},
		{"1d", 86_400_000},
		{"", 60_000},
		{"15", 60_000},
		{"m15", 60_000},
		{"15s", 60_000},
		{"fifteen minutes", 60_000},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseMaxAge(tt.in); got != tt.want {
				t.Errorf("ParseMaxAge(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func newTestContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	res := &http.Response{Header: rec.Header()}
	for _, ck := range res.Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func TestCookieWriter_SetPair(t *testing.T) {
	w := NewCookieWriter("", true, "strict", "15m", "7d")
	c, rec := newTestContext()

	w.SetPair(c, TokenPair{AccessToken: "acc.jwt", RefreshToken: "ref.jwt"})

	access := cookieByName(rec, AccessCookie)
	if access == nil {
		t.Fatal("access_token cookie not set")
	}
	if access.Value != "acc.jwt" || access.Path != "/" || !access.HttpOnly || !access.Secure {
		t.Errorf("access cookie attributes wrong: %+v", access)
	}
	if access.MaxAge != 900 {
		t.Errorf("access MaxAge = %d s, want 900", access.MaxAge)
	}

	refresh := cookieByName(rec, RefreshCookie)
	if refresh == nil {
		t.Fatal("refresh_token cookie not set")
	}
	if refresh.Value != "ref.jwt" || refresh.Path != "/" {
		t.Errorf("refresh cookie attributes wrong: %+v", refresh)
	}
	if refresh.MaxAge != 604_800 {
		t.Errorf("refresh MaxAge = %d s, want 604800", refresh.MaxAge)
	}
}

func TestCookieWriter_SameSiteFallback(t *testing.T) {
	w := NewCookieWriter("", false, "bogus", "15m", "7d")
	if w.SameSite != http.SameSiteLaxMode {
		t.Errorf("SameSite = %v, want lax fallback", w.SameSite)
	}
}

func TestCookieWriter_Clear(t *testing.T) {
	w := NewCookieWriter("", false, "lax", "15m", "7d")
	c, rec := newTestContext()

	w.Clear(c)

	access := cookieByName(rec, AccessCookie)
	if access == nil || access.MaxAge >= 0 || access.Value != "" {
		t.Errorf("access cookie not expired: %+v", access)
	}
	refresh := cookieByName(rec, RefreshCookie)
	if refresh == nil || refresh.MaxAge >= 0 {
		t.Fatalf("refresh cookie not expired: %+v", refresh)
	}
	// Cleared refresh cookie is scoped down to the refresh endpoint.
	if refresh.Path != RefreshPath {
		t.Errorf("cleared refresh cookie Path = %q, want %q", refresh.Path, RefreshPath)
	}
}
