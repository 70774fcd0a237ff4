package market

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/five82/booth/internal/apiclient"
)

// Service endpoints.
const (
	LoginPath        = "/api/users/login"
	SignupPath       = "/api/users/signup"
	ListStudiosPath  = "/api/studios/getStudios"
	GetStudioPath    = "/api/studios/getStudio/"
	CreateStudioPath = "/api/studios/createStudio"
	UpdateStudioPath = "/api/studios/updateStudio/"
	DeleteStudioPath = "/api/studios/deleteStudio/"
)

// AuthAPI calls the auth service.
type AuthAPI struct {
	client *apiclient.Client
}

// NewAuthAPI wraps a client bound to the auth service.
func NewAuthAPI(client *apiclient.Client) *AuthAPI {
	return &AuthAPI{client: client}
}

// Login exchanges credentials for a user and token pair. A rejected login is
// never routed through the refresh protocol.
func (a *AuthAPI) Login(ctx context.Context, creds Credentials) (AuthResponse, error) {
	if a == nil || a.client == nil {
		return AuthResponse{}, fmt.Errorf("auth api is nil")
	}
	resp, err := a.client.Post(apiclient.WithoutRefresh(ctx), LoginPath, creds)
	if err != nil {
		return AuthResponse{}, fmt.Errorf("login: %w", err)
	}
	var payload AuthResponse
	if err := resp.Decode(&payload); err != nil {
		return AuthResponse{}, fmt.Errorf("login: %w", err)
	}
	return payload, nil
}

// Signup registers a new account. The response may carry no tokens.
func (a *AuthAPI) Signup(ctx context.Context, req SignupRequest) (AuthResponse, error) {
	if a == nil || a.client == nil {
		return AuthResponse{}, fmt.Errorf("auth api is nil")
	}
	resp, err := a.client.Post(apiclient.WithoutRefresh(ctx), SignupPath, req)
	if err != nil {
		return AuthResponse{}, fmt.Errorf("signup: %w", err)
	}
	var payload AuthResponse
	if len(strings.TrimSpace(string(resp.Body))) == 0 {
		return payload, nil
	}
	if err := resp.Decode(&payload); err != nil {
		return AuthResponse{}, fmt.Errorf("signup: %w", err)
	}
	return payload, nil
}

// StudioAPI calls the studio service.
type StudioAPI struct {
	client *apiclient.Client
}

// NewStudioAPI wraps a client bound to the studio service.
func NewStudioAPI(client *apiclient.Client) *StudioAPI {
	return &StudioAPI{client: client}
}

// List fetches studios matching filters.
func (s *StudioAPI) List(ctx context.Context, filters StudioFilters) ([]Studio, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("studio api is nil")
	}
	resp, err := s.client.Get(ctx, ListStudiosPath, filters.Values())
	if err != nil {
		return nil, fmt.Errorf("list studios: %w", err)
	}
	var payload studioListResponse
	if err := resp.Decode(&payload); err != nil {
		return nil, fmt.Errorf("list studios: %w", err)
	}
	if payload.Studios == nil {
		payload.Studios = []Studio{}
	}
	return payload.Studios, nil
}

// Get fetches one studio.
func (s *StudioAPI) Get(ctx context.Context, id string) (Studio, error) {
	if s == nil || s.client == nil {
		return Studio{}, fmt.Errorf("studio api is nil")
	}
	if strings.TrimSpace(id) == "" {
		return Studio{}, fmt.Errorf("studio id required")
	}
	resp, err := s.client.Get(ctx, GetStudioPath+url.PathEscape(id), nil)
	if err != nil {
		return Studio{}, fmt.Errorf("get studio %s: %w", id, err)
	}
	var payload Studio
	if err := resp.Decode(&payload); err != nil {
		return Studio{}, fmt.Errorf("get studio %s: %w", id, err)
	}
	return payload, nil
}

// Create submits a new studio and returns the stored record.
func (s *StudioAPI) Create(ctx context.Context, input StudioInput) (Studio, error) {
	if s == nil || s.client == nil {
		return Studio{}, fmt.Errorf("studio api is nil")
	}
	resp, err := s.client.Post(ctx, CreateStudioPath, input)
	if err != nil {
		return Studio{}, fmt.Errorf("create studio: %w", err)
	}
	var payload Studio
	if err := resp.Decode(&payload); err != nil {
		return Studio{}, fmt.Errorf("create studio: %w", err)
	}
	return payload, nil
}

// Update replaces the editable fields of a studio.
func (s *StudioAPI) Update(ctx context.Context, id string, input StudioInput) (Studio, error) {
	if s == nil || s.client == nil {
		return Studio{}, fmt.Errorf("studio api is nil")
	}
	if strings.TrimSpace(id) == "" {
		return Studio{}, fmt.Errorf("studio id required")
	}
	resp, err := s.client.Put(ctx, UpdateStudioPath+url.PathEscape(id), input)
	if err != nil {
		return Studio{}, fmt.Errorf("update studio %s: %w", id, err)
	}
	var payload Studio
	if err := resp.Decode(&payload); err != nil {
		return Studio{}, fmt.Errorf("update studio %s: %w", id, err)
	}
	return payload, nil
}

// Delete removes a studio. The response body is ignored.
func (s *StudioAPI) Delete(ctx context.Context, id string) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("studio api is nil")
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("studio id required")
	}
	if _, err := s.client.Delete(ctx, DeleteStudioPath+url.PathEscape(id)); err != nil {
		return fmt.Errorf("delete studio %s: %w", id, err)
	}
	return nil
}
