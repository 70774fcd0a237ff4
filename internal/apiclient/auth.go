package apiclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/five82/booth/internal/credstore"
)

// Refresher exchanges a refresh token for new credentials. The returned
// RefreshToken may be empty when the service does not rotate it.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (credstore.Credential, error)
}

type ctxKey int

const (
	retriedKey ctxKey = iota
	skipRefreshKey
)

// WithoutRefresh marks requests made with ctx so a 401 is returned to the
// caller as-is instead of triggering a token refresh.
func WithoutRefresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipRefreshKey, true)
}

func refreshDisabled(ctx context.Context) bool {
	skip, _ := ctx.Value(skipRefreshKey).(bool)
	retried, _ := ctx.Value(retriedKey).(bool)
	return skip || retried
}

// Authenticator owns the bearer token lifecycle shared by every client built
// with it: token injection, the refresh-and-replay protocol, and the session
// expiry signal. One Authenticator should be shared process-wide.
type Authenticator struct {
	creds     credstore.Store
	refresher Refresher
	logger    *slog.Logger
	group     singleflight.Group

	mu        sync.RWMutex
	onExpired func()
}

// NewAuthenticator wires a credential store to a refresher.
func NewAuthenticator(creds credstore.Store, refresher Refresher, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Authenticator{creds: creds, refresher: refresher, logger: logger}
}

// OnSessionExpired registers fn to run once per failed refresh, after the
// credential store has been cleared. It replaces any earlier hook.
func (a *Authenticator) OnSessionExpired(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onExpired = fn
}

// Credentials exposes the underlying store.
func (a *Authenticator) Credentials() credstore.Store {
	return a.creds
}

// BearerToken sets Authorization: Bearer <token> when an access token is
// stored. It never fails a request.
func (a *Authenticator) BearerToken() Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			if token, ok := a.creds.AccessToken(); ok {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			return next.Do(req)
		})
	}
}

// RefreshOnUnauthorized handles a 401 by refreshing the access token and
// replaying the request exactly once. A 401 on the replay is returned as-is.
// When the refresh call fails, or an access token was sent with no refresh
// token stored, the credential store is cleared, the expiry hook fires and a
// *SessionExpiredError is returned.
func (a *Authenticator) RefreshOnUnauthorized() Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.Do(req)
			if err != nil || resp.StatusCode != http.StatusUnauthorized {
				return resp, err
			}
			ctx := req.Context()
			if refreshDisabled(ctx) {
				return resp, nil
			}
			if _, ok := a.creds.RefreshToken(); !ok && bearerToken(req.Header) == "" {
				return resp, nil
			}
			if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
				a.logger.Warn("cannot replay request with unbuffered body", "method", req.Method, "path", req.URL.Path)
				return resp, nil
			}

			token, err := a.freshToken(ctx, bearerToken(req.Header))
			discard(resp)
			if err != nil {
				return nil, err
			}

			retry := req.Clone(context.WithValue(ctx, retriedKey, true))
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, fmt.Errorf("rewind request body: %w", err)
				}
				retry.Body = body
			}
			retry.Header.Set("Authorization", "Bearer "+token)
			a.logger.Debug("replaying request after refresh", "method", req.Method, "path", req.URL.Path)
			return next.Do(retry)
		})
	}
}

// freshToken returns an access token newer than sent. If another request has
// already replaced sent in the store the stored token is reused, otherwise a
// single shared refresh is performed.
func (a *Authenticator) freshToken(ctx context.Context, sent string) (string, error) {
	if current, ok := a.creds.AccessToken(); ok && current != sent {
		return current, nil
	}
	v, err, shared := a.group.Do("refresh", func() (any, error) {
		if current, ok := a.creds.AccessToken(); ok && current != sent {
			return current, nil
		}
		return a.refresh(context.WithoutCancel(ctx))
	})
	if shared {
		a.logger.Debug("joined in-flight token refresh")
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (a *Authenticator) refresh(ctx context.Context) (string, error) {
	refreshToken, ok := a.creds.RefreshToken()
	if !ok {
		return "", a.expire(errors.New("no refresh token"))
	}
	if a.refresher == nil {
		return "", a.expire(errors.New("no refresher configured"))
	}
	cred, err := a.refresher.Refresh(ctx, refreshToken)
	if err == nil && strings.TrimSpace(cred.AccessToken) == "" {
		err = errors.New("refresh response missing access token")
	}
	if err != nil {
		return "", a.expire(err)
	}

	if cred.RefreshToken != "" {
		err = a.creds.Save(cred)
	} else {
		err = a.creds.SetAccessToken(cred.AccessToken)
	}
	if err != nil {
		a.logger.Warn("persist refreshed credentials", "error", err)
	}
	a.logger.Info("access token refreshed")
	return cred.AccessToken, nil
}

func (a *Authenticator) expire(cause error) error {
	a.logger.Warn("token refresh failed, clearing credentials", "error", cause)
	if err := a.creds.Clear(); err != nil {
		a.logger.Error("clear credentials", "error", err)
	}
	a.mu.RLock()
	hook := a.onExpired
	a.mu.RUnlock()
	if hook != nil {
		hook()
	}
	return &SessionExpiredError{Err: cause}
}

func bearerToken(h http.Header) string {
	value := h.Get("Authorization")
	if len(value) > 7 && strings.EqualFold(value[:7], "bearer ") {
		return strings.TrimSpace(value[7:])
	}
	return ""
}

func discard(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
