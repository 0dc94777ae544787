package main

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var errBadTTL = errors.New("token lifetime must be positive")

func claimsFor(subject, audience, issuer string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	c := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		Issuer:    issuer,
	}
	if audience != "" {
		c.Audience = jwt.ClaimStrings{audience}
	}
	return c
}

func signToken(secret []byte, claims jwt.RegisteredClaims) (string, error) {
	if !claims.ExpiresAt.After(claims.IssuedAt.Time) {
		return "", errBadTTL
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
