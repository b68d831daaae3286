package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const BearerPrefix = "Bearer "

// BearerAuthEngine validates JWT bearer tokens signed with a shared HMAC
// secret and derives role authorities from the token's claims.
type BearerAuthEngine struct {
	secret []byte
}

// NewBearerAuthEngine creates a BearerAuthEngine verifying tokens against
// the given secret.
func NewBearerAuthEngine(secret []byte) *BearerAuthEngine {
	return &BearerAuthEngine{secret: secret}
}

// AuthenticateRequest checks the Authorization header for a valid bearer
// token. A missing or malformed header yields (nil, nil); a present but
// invalid token yields an error.
func (e *BearerAuthEngine) AuthenticateRequest(ctx context.Context, rq *http.Request) (*Identity, error) {
	header := rq.Header.Get("Authorization")
	if !strings.HasPrefix(header, BearerPrefix) {
		return nil, nil
	}

	raw := strings.TrimSpace(header[len(BearerPrefix):])

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", token.Method.Alg())
		}
		return e.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse bearer token: %w", err)
	}

	subject, _ := claims.GetSubject()

	return &Identity{
		Subject:     subject,
		Authorities: Authorities(claims),
	}, nil
}
