package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strings"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Token TTLs are kept as their raw duration
// strings ("15m", "7d"); the auth layer parses them so that the same value
// drives both the JWT expiry claim and the cookie max-age.
type Config struct {
	Env           string // application environment (e.g. "dev", "prod")
	Port          string // HTTP port to listen on
	BaseURL       string // public base URL used to build uploaded image links
	DBUser        string // database username
	DBPass        string // database password (optional)
	DBHost        string // database host address
	DBPort        string // database port number
	DBName        string // database name
	AccessSecret  string // secret used to sign access tokens
	RefreshSecret string // secret used to sign refresh tokens
	AccessTTL     string // access token lifetime, e.g. "15m"
	RefreshTTL    string // refresh token lifetime, e.g. "7d"
	CookieDomain  string // Domain attribute for auth cookies (empty = host-only)
	CookieSecure  bool   // Secure attribute for auth cookies
	CookieSame    string // SameSite attribute: strict | lax | none
	UploadDir     string // directory where uploaded images are stored
	UploadMaxSize int64  // maximum accepted upload size in bytes
	UploadMIME    string // comma-separated list of accepted MIME types
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Access and refresh
// secrets must differ: reusing one key for both purposes would let a
// refresh token pass access-token verification.
func Load() Config {
	cfg := Config{
		Env:           envStr("APP_ENV", "dev"),
		Port:          envStr("APP_PORT", "9000"),
		BaseURL:       envStr("BASE_URL", "http://localhost:9000"),
		DBUser:        must("DB_USER"),
		DBPass:        os.Getenv("DB_PASS"), // empty allowed
		DBHost:        must("DB_HOST"),
		DBPort:        must("DB_PORT"),
		DBName:        must("DB_NAME"),
		AccessSecret:  must("JWT_ACCESS_SECRET"),
		RefreshSecret: must("JWT_REFRESH_SECRET"),
		AccessTTL:     envStr("JWT_ACCESS_EXPIRES_IN", "15m"),
		RefreshTTL:    envStr("JWT_REFRESH_EXPIRES_IN", "7d"),
		CookieDomain:  os.Getenv("COOKIE_DOMAIN"),
		CookieSecure:  envBool("COOKIE_SECURE", false),
		CookieSame:    strings.ToLower(envStr("COOKIE_SAMESITE", "lax")),
		UploadDir:     envStr("UPLOAD_DIR", "uploads"),
		UploadMaxSize: int64(envInt("UPLOAD_MAX_SIZE", 10*1024*1024)),
		UploadMIME:    envStr("UPLOAD_ALLOWED_MIME_TYPES", "image/jpeg,image/png,image/webp"),
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		log.Fatalf("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must be distinct")
	}
	switch cfg.CookieSame {
	case "strict", "lax", "none":
	default:
		log.Fatalf("invalid COOKIE_SAMESITE: %q (want strict|lax|none)", cfg.CookieSame)
	}
	return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
