package twin

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer mints and verifies HS256 access tokens. Each token carries the
// issuer generation; bumping the generation invalidates every earlier token.
type TokenIssuer struct {
	mu     sync.RWMutex
	secret []byte
	ttl    time.Duration
	gen    int64
}

// NewTokenIssuer creates an issuer with a random secret.
func NewTokenIssuer(ttl time.Duration) (*TokenIssuer, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &TokenIssuer{secret: secret, ttl: ttl}, nil
}

// Issue returns a signed access token for user.
func (i *TokenIssuer) Issue(user User) (string, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(i.ttl).Unix(),
		"gen":   i.gen,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks a token and returns its subject.
func (i *TokenIssuer) Verify(raw string) (string, error) {
	i.mu.RLock()
	secret, gen := i.secret, i.gen
	i.mu.RUnlock()

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if got, ok := claims["gen"].(float64); !ok || int64(got) != gen {
		return "", errors.New("token revoked")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.New("token missing subject")
	}
	return sub, nil
}

// ExpireAll invalidates every token issued so far.
func (i *TokenIssuer) ExpireAll() {
	i.mu.Lock()
	i.gen++
	i.mu.Unlock()
}
