package apiclient

import (
	"net/http"

	"github.com/google/uuid"
)

// HeaderRequestID carries the per-request correlation id.
const HeaderRequestID = "X-Request-ID"

// Doer sends a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DoerFunc adapts a function to the Doer interface.
type DoerFunc func(req *http.Request) (*http.Response, error)

// Do calls f(req).
func (f DoerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Middleware decorates a Doer with cross-cutting request handling.
type Middleware func(next Doer) Doer

// Chain wraps base with mws. The first middleware is the outermost, so it sees
// the request first and the response last.
func Chain(base Doer, mws ...Middleware) Doer {
	d := base
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] == nil {
			continue
		}
		d = mws[i](d)
	}
	return d
}

// RequestID stamps each outgoing request with a fresh X-Request-ID unless the
// caller already set one. A replayed request keeps the id of the original.
func RequestID() Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(HeaderRequestID) == "" {
				req.Header.Set(HeaderRequestID, uuid.NewString())
			}
			return next.Do(req)
		})
	}
}

// UserAgent sets the User-Agent header.
func UserAgent(agent string) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			if agent != "" {
				req.Header.Set("User-Agent", agent)
			}
			return next.Do(req)
		})
	}
}
