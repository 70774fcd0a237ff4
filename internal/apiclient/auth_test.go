package apiclient

import (
	"context"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/booth/internal/credstore"
)

// tokenServer accepts a single valid access token and refreshes it to
// "fresh" when the refresh token matches.
type tokenServer struct {
	mu           sync.Mutex
	valid        string
	refreshToken string
	refreshes    atomic.Int32
	refreshDelay time.Duration
	rejectAll    bool
	bodies       []string
}

func (s *tokenServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+RefreshPath, func(w http.ResponseWriter, r *http.Request) {
		s.refreshes.Add(1)
		if s.refreshDelay > 0 {
			time.Sleep(s.refreshDelay)
		}
		var body refreshRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		s.mu.Lock()
		defer s.mu.Unlock()
		if body.RefreshToken != s.refreshToken {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"invalid refresh token"}`))
			return
		}
		s.valid = "fresh"
		_ = json.NewEncoder(w).Encode(refreshResponse{AccessToken: "fresh"})
	})
	mux.HandleFunc("/studios", func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			var buf bytes.Buffer
			_, _ = buf.ReadFrom(r.Body)
			s.mu.Lock()
			s.bodies = append(s.bodies, buf.String())
			s.mu.Unlock()
		}
		s.mu.Lock()
		ok := !s.rejectAll && r.Header.Get("Authorization") == "Bearer "+s.valid
		s.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"token expired"}`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})
	return mux
}

func newAuthClient(t *testing.T, ts *tokenServer, creds credstore.Store) (*Client, *Authenticator) {
	t.Helper()
	server := httptest.NewServer(ts.handler())
	t.Cleanup(server.Close)

	refresher, err := NewTokenRefresher(server.URL)
	require.NoError(t, err)
	auth := NewAuthenticator(creds, refresher, nil)
	c, err := New(server.URL, WithAuthenticator(auth))
	require.NoError(t, err)
	return c, auth
}

func TestAuth_AttachesBearerToken(t *testing.T) {
	ts := &tokenServer{valid: "good"}
	c, _ := newAuthClient(t, ts, credstore.NewMemory(credstore.Credential{AccessToken: "good", RefreshToken: "r1"}))

	_, err := c.Get(context.Background(), "/studios", nil)
	require.NoError(t, err)
	assert.Zero(t, ts.refreshes.Load())
}

func TestAuth_RefreshesOnceAndReplays(t *testing.T) {
	ts := &tokenServer{valid: "other", refreshToken: "r1"}
	creds := credstore.NewMemory(credstore.Credential{AccessToken: "stale", RefreshToken: "r1"})
	c, _ := newAuthClient(t, ts, creds)

	resp, err := c.Post(context.Background(), "/studios", map[string]string{"name": "Loft"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, ts.refreshes.Load())

	token, _ := creds.AccessToken()
	assert.Equal(t, "fresh", token)
	refresh, _ := creds.RefreshToken()
	assert.Equal(t, "r1", refresh)

	require.Len(t, ts.bodies, 2)
	assert.Equal(t, ts.bodies[0], ts.bodies[1], "replay must resend the original body")
}

func TestAuth_ReplayThatFailsIsNotRefreshedAgain(t *testing.T) {
	ts := &tokenServer{refreshToken: "r1", rejectAll: true}
	creds := credstore.NewMemory(credstore.Credential{AccessToken: "stale", RefreshToken: "r1"})
	c, _ := newAuthClient(t, ts, creds)

	_, err := c.Get(context.Background(), "/studios", nil)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.EqualValues(t, 1, ts.refreshes.Load())
}

func TestAuth_RefreshFailureClearsAndSignalsOnce(t *testing.T) {
	ts := &tokenServer{valid: "other", refreshToken: "expected"}
	creds := credstore.NewMemory(credstore.Credential{AccessToken: "stale", RefreshToken: "revoked"})
	c, auth := newAuthClient(t, ts, creds)

	var expired atomic.Int32
	auth.OnSessionExpired(func() { expired.Add(1) })

	_, err := c.Get(context.Background(), "/studios", nil)
	require.ErrorIs(t, err, ErrSessionExpired)
	var sessionErr *SessionExpiredError
	require.ErrorAs(t, err, &sessionErr)

	assert.True(t, creds.Credential().Empty())
	assert.EqualValues(t, 1, expired.Load())

	// With the store cleared a later 401 surfaces unchanged.
	_, err = c.Get(context.Background(), "/studios", nil)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.EqualValues(t, 1, expired.Load())
	assert.EqualValues(t, 1, ts.refreshes.Load())
}

func TestAuth_ConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	ts := &tokenServer{valid: "other", refreshToken: "r1", refreshDelay: 50 * time.Millisecond}
	creds := credstore.NewMemory(credstore.Credential{AccessToken: "stale", RefreshToken: "r1"})
	c, _ := newAuthClient(t, ts, creds)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Get(context.Background(), "/studios", nil)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.EqualValues(t, 1, ts.refreshes.Load())
}

func TestAuth_MissingRefreshTokenExpiresSession(t *testing.T) {
	ts := &tokenServer{valid: "other"}
	creds := credstore.NewMemory(credstore.Credential{AccessToken: "dead"})
	c, auth := newAuthClient(t, ts, creds)

	var expired atomic.Int32
	auth.OnSessionExpired(func() { expired.Add(1) })

	_, err := c.Get(context.Background(), "/studios", nil)
	require.ErrorIs(t, err, ErrSessionExpired)
	assert.Zero(t, ts.refreshes.Load())
	assert.True(t, creds.Credential().Empty())
	assert.EqualValues(t, 1, expired.Load())

	// Nothing is sent once the store is empty, so the 401 surfaces unchanged.
	_, err = c.Get(context.Background(), "/studios", nil)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Equal(t, "token expired", Message(err))
	assert.EqualValues(t, 1, expired.Load())
}

func TestAuth_GuestUnauthorizedSurfaces401(t *testing.T) {
	ts := &tokenServer{valid: "other"}
	creds := credstore.NewMemory(credstore.Credential{})
	c, auth := newAuthClient(t, ts, creds)

	var expired atomic.Int32
	auth.OnSessionExpired(func() { expired.Add(1) })

	_, err := c.Get(context.Background(), "/studios", nil)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Zero(t, ts.refreshes.Load())
	assert.Zero(t, expired.Load())
}

func TestAuth_WithoutRefreshSkipsProtocol(t *testing.T) {
	ts := &tokenServer{valid: "other", refreshToken: "r1"}
	creds := credstore.NewMemory(credstore.Credential{AccessToken: "stale", RefreshToken: "r1"})
	c, _ := newAuthClient(t, ts, creds)

	_, err := c.Get(WithoutRefresh(context.Background()), "/studios", nil)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Zero(t, ts.refreshes.Load())
	assert.Equal(t, credstore.Credential{AccessToken: "stale", RefreshToken: "r1"}, creds.Credential())
}

func TestAuth_StoresRotatedRefreshToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(refreshResponse{AccessToken: "a2", RefreshToken: "r2"})
	}))
	t.Cleanup(server.Close)

	refresher, err := NewTokenRefresher(server.URL)
	require.NoError(t, err)
	creds := credstore.NewMemory(credstore.Credential{AccessToken: "a1", RefreshToken: "r1"})
	auth := NewAuthenticator(creds, refresher, nil)

	token, err := auth.freshToken(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "a2", token)
	assert.Equal(t, credstore.Credential{AccessToken: "a2", RefreshToken: "r2"}, creds.Credential())
}

func TestAuth_ReusesTokenReplacedByAnotherRequest(t *testing.T) {
	creds := credstore.NewMemory(credstore.Credential{AccessToken: "newer", RefreshToken: "r1"})
	auth := NewAuthenticator(creds, nil, nil)

	token, err := auth.freshToken(context.Background(), "older")
	require.NoError(t, err)
	assert.Equal(t, "newer", token)
}

func TestInspectToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "u1",
		"email": "asha@example.com",
		"exp":   exp.Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	claims, ok := InspectToken(signed)
	require.True(t, ok)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "asha@example.com", claims.Email)
	assert.True(t, claims.ExpiresAt.Equal(exp))

	_, ok = InspectToken("not-a-jwt")
	assert.False(t, ok)
}
