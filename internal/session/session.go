// Package session derives the session identity from the ambient auth token.
// The token is issued and verified server-side; the client only reads the
// claims it needs to label outbound traffic and render the current user.
package session

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated user bound to the connection. Immutable for
// the lifetime of a connection; supplied once at connect time.
type Identity struct {
	UserID string
	Name   string
	Avatar string
}

type tokenClaims struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	jwt.RegisteredClaims
}

// FromToken extracts the identity claims from a session token without
// verifying the signature. Verification happens server-side on connect; a
// forged token yields a connection the server refuses to deliver events on.
func FromToken(token string) (Identity, error) {
	parser := jwt.NewParser()
	claims := &tokenClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return Identity{}, fmt.Errorf("failed to parse session token: %w", err)
	}
	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("session token has no subject claim")
	}
	return Identity{
		UserID: claims.Subject,
		Name:   claims.Name,
		Avatar: claims.Avatar,
	}, nil
}
