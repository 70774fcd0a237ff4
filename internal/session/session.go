// Package session drives login, signup, logout and session expiry.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/five82/booth/internal/apiclient"
	"github.com/five82/booth/internal/credstore"
	"github.com/five82/booth/internal/market"
	"github.com/five82/booth/internal/state"
)

// AuthService is the subset of market.AuthAPI the controller needs.
type AuthService interface {
	Login(ctx context.Context, creds market.Credentials) (market.AuthResponse, error)
	Signup(ctx context.Context, req market.SignupRequest) (market.AuthResponse, error)
}

// Controller applies session transitions to the store.
type Controller struct {
	api    AuthService
	store  *state.Store
	creds  credstore.Store
	logger *slog.Logger
}

// New builds a Controller.
func New(api AuthService, store *state.Store, creds credstore.Store, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		api:    api,
		store:  store,
		creds:  creds,
		logger: logger.With("component", "session"),
	}
}

// Login authenticates and, on success, persists both tokens. On failure the
// session error is set and the credential store is left untouched.
func (c *Controller) Login(ctx context.Context, creds market.Credentials) error {
	creds.Email = strings.TrimSpace(creds.Email)
	c.store.UpdateSession(state.Session.Pending)

	if err := market.Validate(creds); err != nil {
		return c.reject("login", err)
	}
	resp, err := c.api.Login(ctx, creds)
	if err != nil {
		return c.reject("login", err)
	}
	return c.fulfil("login", resp)
}

// Signup registers an account. Tokens are persisted only when the response
// carries them.
func (c *Controller) Signup(ctx context.Context, req market.SignupRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	c.store.UpdateSession(state.Session.Pending)

	if err := market.Validate(req); err != nil {
		return c.reject("signup", err)
	}
	resp, err := c.api.Signup(ctx, req)
	if err != nil {
		return c.reject("signup", err)
	}
	return c.fulfil("signup", resp)
}

// Logout clears the in-memory session, all studio state and the credential
// store.
func (c *Controller) Logout() error {
	c.store.Reset()
	c.store.UpdateSession(func(s state.Session) state.Session {
		s.Error = ""
		return s
	})
	if err := c.creds.Clear(); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	c.logger.Info("logged out")
	return nil
}

// Expire handles a failed token refresh. The credential store has already
// been cleared by the client.
func (c *Controller) Expire() {
	c.store.Reset()
	c.store.UpdateSession(func(s state.Session) state.Session {
		return s.Rejected(apiclient.Message(apiclient.ErrSessionExpired))
	})
	c.logger.Warn("session expired")
}

func (c *Controller) reject(op string, err error) error {
	msg := apiclient.Message(err)
	c.store.UpdateSession(func(s state.Session) state.Session { return s.Rejected(msg) })
	c.logger.Info(op+" failed", "error", err)
	return err
}

func (c *Controller) fulfil(op string, resp market.AuthResponse) error {
	if resp.AccessToken != "" {
		cred := credstore.Credential{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}
		if err := c.creds.Save(cred); err != nil {
			c.logger.Warn("persist credentials", "error", err)
		}
	}
	c.store.UpdateSession(func(s state.Session) state.Session { return s.Fulfilled(resp) })
	attrs := []any{"op", op}
	if resp.User != nil {
		attrs = append(attrs, "user", resp.User.Email)
	}
	c.logger.Info("authenticated", attrs...)
	return nil
}
