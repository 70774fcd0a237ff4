package apiclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/five82/booth/internal/credstore"
)

// RefreshPath is the auth service endpoint that mints new access tokens.
const RefreshPath = "/auth/refresh-token"

// TokenRefresher calls the auth service refresh endpoint on its own
// unauthenticated client, so the refresh call never enters the 401 path.
type TokenRefresher struct {
	client *Client
}

var _ Refresher = (*TokenRefresher)(nil)

// NewTokenRefresher builds a refresher for the auth service at authBaseURL.
// Any WithAuthenticator option is ignored.
func NewTokenRefresher(authBaseURL string, opts ...Option) (*TokenRefresher, error) {
	o := options{timeout: defaultTimeout, userAgent: defaultUserAgent}
	for _, opt := range opts {
		opt(&o)
	}
	o.auth = nil
	client, err := build(authBaseURL, o)
	if err != nil {
		return nil, err
	}
	return &TokenRefresher{client: client}, nil
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Refresh posts the refresh token and returns the new credential pair.
func (r *TokenRefresher) Refresh(ctx context.Context, refreshToken string) (credstore.Credential, error) {
	if r == nil || r.client == nil {
		return credstore.Credential{}, fmt.Errorf("refresher is nil")
	}
	resp, err := r.client.Post(ctx, RefreshPath, refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return credstore.Credential{}, fmt.Errorf("refresh token: %w", err)
	}
	var payload refreshResponse
	if err := resp.Decode(&payload); err != nil {
		return credstore.Credential{}, fmt.Errorf("refresh token: %w", err)
	}
	access := strings.TrimSpace(payload.AccessToken)
	if access == "" {
		return credstore.Credential{}, fmt.Errorf("refresh token: response missing accessToken")
	}
	return credstore.Credential{
		AccessToken:  access,
		RefreshToken: strings.TrimSpace(payload.RefreshToken),
	}, nil
}
