package apiclient

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the subset of access-token claims the client displays.
type TokenClaims struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
}

// InspectToken decodes a JWT access token without verifying its signature.
// Expiry is still discovered reactively through 401s; this is for display.
func InspectToken(token string) (TokenClaims, bool) {
	if token == "" {
		return TokenClaims{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenClaims{}, false
	}
	var out TokenClaims
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, true
}
