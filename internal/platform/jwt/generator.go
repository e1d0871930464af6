// Package jwtmw issues and verifies API tokens and provides the Gin authentication middleware.
package jwtmw

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedClaims is returned when a correctly signed token lacks a usable subject or ID.
var ErrMalformedClaims = errors.New("token claims are malformed")

// Generator signs and parses HS256 tokens.
// The subject carries the user ID and the "jti" claim carries the session ID.
type Generator struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewGenerator creates a new JWT generator with the provided secret and expiration duration.
func NewGenerator(secret string, expiration time.Duration) *Generator {
	return &Generator{
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
}

// GenerateToken creates a signed token and returns it together with its expiry.
func (g *Generator) GenerateToken(userID uint, tokenID string) (string, time.Time, error) {
	now := g.now()
	expiresAt := now.Add(g.expiration)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		ID:        tokenID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseToken verifies the signature and expiry and returns the user ID and token ID.
// Only HMAC-SHA256 is accepted; "none" and asymmetric algorithms are rejected.
func (g *Generator) ParseToken(tokenStr string) (uint, string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return g.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		return 0, "", err
	}

	sub, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || sub == 0 || claims.ID == "" {
		return 0, "", ErrMalformedClaims
	}
	return uint(sub), claims.ID, nil
}
