// Package auth implements identity resolution and session tokens for the
// ClubHub API: local credentials, OAuth providers, signed bearer tokens, and
// member code assignment.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the session token payload. Subject carries the stringified user
// id; Email is included so handlers can display the caller without a lookup.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

var ErrInvalidToken = errors.New("invalid or expired token")

// GenerateToken signs a session token for the given user. There is no
// revocation — logout is client-side token discard.
func GenerateToken(secret string, userID string, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "clubhub",
		},
		Email: email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// VerifyToken parses and validates a session token, rejecting anything not
// signed with our HMAC key. Returns ErrInvalidToken for every failure mode
// (bad signature, expired, malformed) — callers only need the distinction
// between "no token" and "bad token", and the former is theirs to detect.
func VerifyToken(secret, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
