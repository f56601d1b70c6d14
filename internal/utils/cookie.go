package utils

import (
	"net/http"
	"regexp"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Cookie names under which the token pair travels.  Both cookies are
// HttpOnly so scripts can never read them.
const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
)

// RefreshPath is the only route the refresh cookie is re-scoped to when it
// gets cleared on logout.
const RefreshPath = "/v1/auth/refresh"

// fallbackMaxAgeMS applies when a TTL string cannot be parsed.  One minute,
// kept deliberately short so a misconfigured TTL fails loudly in testing
// instead of minting week-long cookies.
const fallbackMaxAgeMS = 60_000

var durationRe = regexp.MustCompile(`^(\d+)([mhd])$`)

// ParseMaxAge converts a "\d+[mhd]" duration string ("15m", "12h", "7d")
// into milliseconds.  Unparseable input returns the 60000 ms fallback.
func ParseMaxAge(s string) int64 {
	m := durationRe.FindStringSubmatch(s)
	if m == nil {
		return fallbackMaxAgeMS
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return fallbackMaxAgeMS
	}
	switch m[2] {
	case "m":
		return n * 60_000
	case "h":
		return n * 3_600_000
	case "d":
		return n * 86_400_000
	}
	return fallbackMaxAgeMS
}

// CookieWriter writes and clears the auth cookie pair with the configured
// security attributes.  It only ever carries signed tokens: plaintext
// passwords and token hashes must never reach a Set-Cookie header.
type CookieWriter struct {
	Domain        string
	Secure        bool
	SameSite      http.SameSite
	AccessMaxAge  int64 // milliseconds
	RefreshMaxAge int64 // milliseconds
}

// NewCookieWriter builds a CookieWriter.  sameSite accepts strict|lax|none;
// anything else falls back to lax.  TTL strings use the ParseMaxAge format.
func NewCookieWriter(domain string, secure bool, sameSite, accessTTL, refreshTTL string) *CookieWriter {
	mode := http.SameSiteLaxMode
	switch sameSite {
	case "strict":
		mode = http.SameSiteStrictMode
	case "none":
		mode = http.SameSiteNoneMode
	}
	return &CookieWriter{
		Domain:        domain,
		Secure:        secure,
		SameSite:      mode,
		AccessMaxAge:  ParseMaxAge(accessTTL),
		RefreshMaxAge: ParseMaxAge(refreshTTL),
	}
}

// SetPair writes both token cookies on the response, scoped to the whole
// site.
func (w *CookieWriter) SetPair(c echo.Context, pair TokenPair) {
	c.SetCookie(w.build(AccessCookie, pair.AccessToken, "/", int(w.AccessMaxAge/1000)))
	c.SetCookie(w.build(RefreshCookie, pair.RefreshToken, "/", int(w.RefreshMaxAge/1000)))
}

// Clear expires both cookies.  The refresh cookie is cleared under the
// refresh endpoint's path so browsers that still hold a site-wide copy stop
// sending it anywhere else.
func (w *CookieWriter) Clear(c echo.Context) {
	c.SetCookie(w.build(AccessCookie, "", "/", -1))
	c.SetCookie(w.build(RefreshCookie, "", RefreshPath, -1))
}

func (w *CookieWriter) build(name, value, path string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Domain:   w.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   w.Secure,
		SameSite: w.SameSite,
	}
}
