package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const WriteScope = "catalog:write"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrScope        = errors.New("token lacks write scope")
)

// TokenMaker issues and checks HS256 tokens that allow catalog writes.
type TokenMaker struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewTokenMaker(secret string) *TokenMaker {
	return &TokenMaker{
		secret: []byte(secret),
		issuer: "productdesk-catalog",
		now:    time.Now,
	}
}

type Claims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

func (t *TokenMaker) New(subject string, ttl time.Duration) (string, error) {
	now := t.now()

	claims := Claims{
		Scope: WriteScope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *TokenMaker) Parse(tokenStr string) (Claims, error) {
	var c Claims

	token, err := jwt.ParseWithClaims(tokenStr, &c, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || token == nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	if c.Scope != WriteScope {
		return Claims{}, ErrScope
	}

	return c, nil
}
