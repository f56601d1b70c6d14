package utils

import (
	"errors"
	"testing"
	"time"
)

func testIssuer() *Issuer {
	return &Issuer{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}
}

func TestIssuePair_ClaimsRoundTrip(t *testing.T) {
	iss := testIssuer()

	pair, err := iss.IssuePair(42, "admin@example.com", "ADMIN")
	if err != nil {
		t.Fatalf("IssuePair() error = %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("both tokens of a pair must be minted")
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Fatal("access and refresh tokens must differ")
	}

	for name, verify := range map[string]func(string) (Claims, error){
		"access":  func(tok string) (Claims, error) { return iss.VerifyAccess(tok) },
		"refresh": func(tok string) (Claims, error) { return iss.VerifyRefresh(tok) },
	} {
		tok := pair.AccessToken
		if name == "refresh" {
			tok = pair.RefreshToken
		}
		claims, err := verify(tok)
		if err != nil {
			t.Fatalf("%s verify error = %v", name, err)
		}
		if claims.UserID != 42 || claims.Email != "admin@example.com" || claims.Role != "ADMIN" {
			t.Errorf("%s claims = %+v, want sub=42 email=admin@example.com role=ADMIN", name, claims)
		}
	}
}

func TestVerify_SecretsAreNotInterchangeable(t *testing.T) {
	iss := testIssuer()
	pair, err := iss.IssuePair(1, "u@example.com", "USER")
	if err != nil {
		t.Fatalf("IssuePair() error = %v", err)
	}

	if _, err := iss.VerifyAccess(pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("refresh token must not pass access verification, got %v", err)
	}
	if _, err := iss.VerifyRefresh(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("access token must not pass refresh verification, got %v", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	iss := testIssuer()
	for _, tok := range []string{"", "not.a.jwt", "aaaa.bbbb.cccc"} {
		if _, err := iss.VerifyAccess(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("VerifyAccess(%q) = %v, want ErrInvalidToken", tok, err)
		}
	}
}

func TestVerify_Expired(t *testing.T) {
	iss := testIssuer()
	iss.AccessTTL = -time.Minute // already expired at mint time

	pair, err := iss.IssuePair(7, "u@example.com", "USER")
	if err != nil {
		t.Fatalf("IssuePair() error = %v", err)
	}
	if _, err := iss.VerifyAccess(pair.AccessToken); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expired access token: got %v, want ErrTokenExpired", err)
	}
	// The refresh token of the same pair keeps its own TTL and still works.
	if _, err := iss.VerifyRefresh(pair.RefreshToken); err != nil {
		t.Errorf("refresh token should still verify, got %v", err)
	}
}

func TestNewIssuer_ParsesTTLStrings(t *testing.T) {
	iss := NewIssuer("a", "r", "15m", "7d")
	if iss.AccessTTL != 15*time.Minute {
		t.Errorf("AccessTTL = %v, want 15m", iss.AccessTTL)
	}
	if iss.RefreshTTL != 7*24*time.Hour {
		t.Errorf("RefreshTTL = %v, want 168h", iss.RefreshTTL)
	}
}
