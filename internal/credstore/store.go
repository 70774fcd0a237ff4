// Package credstore persists the bearer credentials shared by every API client.
//
// The store is loaded once at startup, mutated when a login succeeds or an
// access token is refreshed, and cleared on logout or when a refresh fails.
// Implementations are safe for concurrent use.
package credstore

import (
	"sync"
)

// Fixed key names used by the file format.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
)

// Credential is the bearer token pair issued by the auth service.
type Credential struct {
	AccessToken  string `toml:"accessToken"`
	RefreshToken string `toml:"refreshToken"`
}

// Empty reports whether neither token is set.
func (c Credential) Empty() bool {
	return c.AccessToken == "" && c.RefreshToken == ""
}

// Store is the credential store contract used by apiclient and session.
type Store interface {
	AccessToken() (string, bool)
	RefreshToken() (string, bool)
	Credential() Credential
	SetAccessToken(token string) error
	Save(cred Credential) error
	Clear() error
}

// Ensure implementations satisfy Store at compile time.
var (
	_ Store = (*Memory)(nil)
	_ Store = (*File)(nil)
)

// Memory is a process-local Store. The zero value is ready to use.
type Memory struct {
	mu   sync.RWMutex
	cred Credential
}

// NewMemory returns a Memory store seeded with cred.
func NewMemory(cred Credential) *Memory {
	return &Memory{cred: cred}
}

func (m *Memory) AccessToken() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cred.AccessToken, m.cred.AccessToken != ""
}

func (m *Memory) RefreshToken() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cred.RefreshToken, m.cred.RefreshToken != ""
}

func (m *Memory) Credential() Credential {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cred
}

func (m *Memory) SetAccessToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred.AccessToken = token
	return nil
}

func (m *Memory) Save(cred Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = cred
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = Credential{}
	return nil
}
