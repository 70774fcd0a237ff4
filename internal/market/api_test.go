package market

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/booth/internal/apiclient"
)

func newStudioAPI(t *testing.T, h http.Handler) *StudioAPI {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	client, err := apiclient.New(server.URL)
	require.NoError(t, err)
	return NewStudioAPI(client)
}

func TestStudioAPI_ListSendsOnlySetFilters(t *testing.T) {
	var gotQuery url.Values
	api := newStudioAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, ListStudiosPath, r.URL.Path)
		gotQuery = r.URL.Query()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"studios": []Studio{{ID: "s1", Name: "Loft", Location: "Bangalore"}},
		})
	}))

	studios, err := api.List(context.Background(), StudioFilters{Location: " Bangalore "})
	require.NoError(t, err)
	require.Len(t, studios, 1)
	assert.Equal(t, "s1", studios[0].ID)
	assert.Equal(t, url.Values{"location": {"Bangalore"}}, gotQuery)
}

func TestStudioAPI_ListEmptyIsNonNil(t *testing.T) {
	api := newStudioAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	studios, err := api.List(context.Background(), StudioFilters{})
	require.NoError(t, err)
	assert.NotNil(t, studios)
	assert.Empty(t, studios)
}

func TestStudioAPI_CRUDPaths(t *testing.T) {
	var calls []string
	api := newStudioAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch r.Method {
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(Studio{ID: "s1", Name: "Loft"})
		default:
			var in StudioInput
			_ = json.NewDecoder(r.Body).Decode(&in)
			_ = json.NewEncoder(w).Encode(Studio{ID: "s1", Name: in.Name})
		}
	}))
	ctx := context.Background()

	got, err := api.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Loft", got.Name)

	created, err := api.Create(ctx, StudioInput{Name: "New"})
	require.NoError(t, err)
	assert.Equal(t, "New", created.Name)

	updated, err := api.Update(ctx, "s1", StudioInput{Name: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	require.NoError(t, api.Delete(ctx, "s1"))

	assert.Equal(t, []string{
		"GET /api/studios/getStudio/s1",
		"POST /api/studios/createStudio",
		"PUT /api/studios/updateStudio/s1",
		"DELETE /api/studios/deleteStudio/s1",
	}, calls)

	_, err = api.Get(ctx, "  ")
	assert.Error(t, err)
}

func TestAuthAPI_LoginErrorKeepsStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
	}))
	t.Cleanup(server.Close)
	client, err := apiclient.New(server.URL)
	require.NoError(t, err)

	_, err = NewAuthAPI(client).Login(context.Background(), Credentials{Email: "a@b.c", Password: "x"})
	assert.True(t, apiclient.IsStatus(err, http.StatusUnauthorized))
	assert.Equal(t, "Invalid credentials", apiclient.Message(err))
}

func TestAuthAPI_SignupAllowsEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(server.Close)
	client, err := apiclient.New(server.URL)
	require.NoError(t, err)

	resp, err := NewAuthAPI(client).Signup(context.Background(), SignupRequest{Name: "A", Email: "a@b.c", Password: "secret"})
	require.NoError(t, err)
	assert.Nil(t, resp.User)
	assert.Empty(t, resp.AccessToken)
}
