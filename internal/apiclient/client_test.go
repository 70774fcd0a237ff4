package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBaseURL(t *testing.T) {
	_, err := parseBaseURL("  ")
	require.Error(t, err)

	u, err := parseBaseURL("localhost:5000")
	require.NoError(t, err)
	assert.Equal(t, "http", u.Scheme)
	assert.Equal(t, "localhost:5000", u.Host)

	u, err = parseBaseURL("https://api.example.com/v1/?x=1#frag")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/v1", u.String())

	_, err = parseBaseURL("http://")
	require.Error(t, err)
}

func TestClient_ResolveJoinsBasePathAndQuery(t *testing.T) {
	c, err := New("http://localhost:5001/api")
	require.NoError(t, err)

	u := c.resolve("studios", url.Values{"location": {"Bangalore"}})
	assert.Equal(t, "http://localhost:5001/api/studios?location=Bangalore", u.String())

	u = c.resolve("/studios/s1", nil)
	assert.Equal(t, "http://localhost:5001/api/studios/s1", u.String())
}

func TestClient_SendsJSONAndHeaders(t *testing.T) {
	t.Parallel()

	var (
		gotMethod  string
		gotBody    map[string]string
		gotAgent   string
		gotReqID   string
		gotContent string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAgent = r.Header.Get("User-Agent")
		gotReqID = r.Header.Get(HeaderRequestID)
		gotContent = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(server.Close)

	c, err := New(server.URL, WithUserAgent("booth-test"))
	require.NoError(t, err)

	resp, err := c.Post(context.Background(), "/things", map[string]string{"name": "A"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, resp.Decode(&out))
	assert.True(t, out.OK)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "A", gotBody["name"])
	assert.Equal(t, "booth-test", gotAgent)
	assert.NotEmpty(t, gotReqID)
	assert.Equal(t, "application/json", gotContent)
}

func TestClient_StatusErrorsAreTyped(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Studio not found"}`))
		case "/boom":
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	t.Cleanup(server.Close)

	c, err := New(server.URL)
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "/missing", nil)
	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
	assert.Equal(t, "Studio not found", Message(err))
	assert.True(t, IsStatus(err, http.StatusNotFound))

	_, err = c.Get(context.Background(), "/boom", nil)
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
	assert.Equal(t, "request failed with status code 500", Message(err))
}

func TestClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := server.URL
	server.Close()

	c, err := New(addr)
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "/studios", nil)
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Contains(t, Message(err), "network error")
}

func TestValidationFromStatus(t *testing.T) {
	err := &HTTPStatusError{
		Method: http.MethodPost,
		Path:   "/studios",
		Code:   http.StatusBadRequest,
		Body:   []byte(`{"message":"Validation failed","errors":{"name":"Name is required","pricePerHour":{"message":"must be positive"}}}`),
	}
	v, ok := ValidationFromStatus(err)
	require.True(t, ok)
	assert.Equal(t, "Name is required", v.Field("name"))
	assert.Equal(t, "must be positive", v.Field("pricePerHour"))
	assert.Equal(t, "Validation failed", v.Message)

	_, ok = ValidationFromStatus(&HTTPStatusError{Code: http.StatusBadRequest, Body: []byte(`{"message":"bad"}`)})
	assert.False(t, ok)

	_, ok = ValidationFromStatus(&HTTPStatusError{Code: http.StatusConflict, Body: err.Body})
	assert.False(t, ok)

	_, ok = ValidationFromStatus(errors.New("plain"))
	assert.False(t, ok)
}

func TestMessage_SessionExpired(t *testing.T) {
	err := &SessionExpiredError{Err: errors.New("refresh rejected")}
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, "session expired, please log in again", Message(err))
	assert.Equal(t, "", Message(nil))
}

func TestChain_OrderAndNil(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next Doer) Doer {
			return DoerFunc(func(req *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.Do(req)
			})
		}
	}
	base := DoerFunc(func(*http.Request) (*http.Response, error) {
		order = append(order, "base")
		return &http.Response{StatusCode: http.StatusNoContent, Body: http.NoBody}, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := Chain(base, mark("a"), nil, mark("b")).Do(req)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "base"}, order)
}
