package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenMaker_RoundTrip(t *testing.T) {
	tm := NewTokenMaker("test-secret")

	tok, err := tm.New("catalogctl", time.Hour)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	c, err := tm.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Subject != "catalogctl" || c.Scope != WriteScope {
		t.Fatalf("claims=%+v", c)
	}
}

func TestTokenMaker_Rejects(t *testing.T) {
	tm := NewTokenMaker("test-secret")

	other, _ := NewTokenMaker("other-secret").New("x", time.Hour)
	if _, err := tm.Parse(other); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("foreign secret: err=%v", err)
	}

	expired, _ := tm.New("x", -time.Minute)
	if _, err := tm.Parse(expired); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired: err=%v", err)
	}

	noScope := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "productdesk-catalog",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	s, _ := noScope.SignedString([]byte("test-secret"))
	if _, err := tm.Parse(s); !errors.Is(err, ErrScope) {
		t.Fatalf("no scope: err=%v", err)
	}

	if _, err := tm.Parse("garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage: err=%v", err)
	}
}
