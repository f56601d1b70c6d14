package utils

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a token has a bad signature, a wrong
// signing method or malformed claims.
var ErrInvalidToken = errors.New("invalid token")

// ErrTokenExpired is returned when a token's exp claim is in the past.
var ErrTokenExpired = errors.New("token expired")

// TokenPair is an access/refresh token pair minted together from the same
// payload.  Both are HS256 JWTs; they differ only in signing secret and TTL.
// Neither token is ever persisted in plaintext.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Claims is the authenticated identity carried inside both tokens.
type Claims struct {
	UserID uint64
	Email  string
	Role   string
}

// Issuer signs and verifies token pairs.  Access and refresh secrets are
// independent and must never be swapped: a token signed for one purpose has
// to fail verification for the other.
type Issuer struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// NewIssuer builds an Issuer from raw secrets and TTL strings in the
// "\d+[mhd]" format used by the environment ("15m", "7d").
func NewIssuer(accessSecret, refreshSecret, accessTTL, refreshTTL string) *Issuer {
	return &Issuer{
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
		AccessTTL:     time.Duration(ParseMaxAge(accessTTL)) * time.Millisecond,
		RefreshTTL:    time.Duration(ParseMaxAge(refreshTTL)) * time.Millisecond,
	}
}

// IssuePair signs both tokens of a pair from one payload.  The claims carry
// subject (sub), email, role, issued-at (iat) and expiration (exp).
func (i *Issuer) IssuePair(userID uint64, email, role string) (TokenPair, error) {
	access, err := sign(i.AccessSecret, userID, email, role, i.AccessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := sign(i.RefreshSecret, userID, email, role, i.RefreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess checks an access token's signature and expiry.
func (i *Issuer) VerifyAccess(token string) (Claims, error) {
	return verify(token, i.AccessSecret)
}

// VerifyRefresh checks a refresh token's signature and expiry.
func (i *Issuer) VerifyRefresh(token string) (Claims, error) {
	return verify(token, i.RefreshSecret)
}

func sign(secret string, userID uint64, email, role string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  role,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// verify parses and validates a token.  Expiry IS enforced here, for access
// tokens too: an expired access token is rejected, not merely flagged.
func verify(token, secret string) (Claims, error) {
	tok, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrInvalidToken
	}
	if !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	out := Claims{}
	switch sub := mc["sub"].(type) {
	case float64:
		out.UserID = uint64(sub)
	case string:
		n, err := strconv.ParseUint(sub, 10, 64)
		if err != nil {
			return Claims{}, ErrInvalidToken
		}
		out.UserID = n
	default:
		return Claims{}, ErrInvalidToken
	}
	out.Email, _ = mc["email"].(string)
	if out.Role, ok = mc["role"].(string); !ok || out.Role == "" {
		return Claims{}, ErrInvalidToken
	}
	return out, nil
}
