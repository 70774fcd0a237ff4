package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
)

const (
	defaultUserAgent = "booth/0.1"
	defaultTimeout   = 10 * time.Second
)

// Client sends JSON requests to one remote service.
type Client struct {
	baseURL *url.URL
	doer    Doer
	logger  *slog.Logger
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into dest.
func (r *Response) Decode(dest any) error {
	if r == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return fmt.Errorf("decode response: empty body")
	}
	if err := json.Unmarshal(r.Body, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type options struct {
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	logger     *slog.Logger
	auth       *Authenticator
	middleware []Middleware
}

// Option configures a Client.
type Option func(*options)

// WithHTTPClient replaces the underlying *http.Client. WithTimeout is ignored
// when this is set.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTimeout sets the per-attempt timeout of the default *http.Client.
// Zero disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(agent string) Option {
	return func(o *options) { o.userAgent = agent }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithAuthenticator enables bearer injection and the 401 refresh protocol.
func WithAuthenticator(a *Authenticator) Option {
	return func(o *options) { o.auth = a }
}

// WithMiddleware appends extra middleware between the request id stage and
// the authentication stages.
func WithMiddleware(mws ...Middleware) Option {
	return func(o *options) { o.middleware = append(o.middleware, mws...) }
}

// New builds a Client bound to baseURL. The middleware chain, outermost first,
// is: request id, user agent, extra middleware, refresh on 401, bearer token,
// transport.
func New(baseURL string, opts ...Option) (*Client, error) {
	o := options{timeout: defaultTimeout, userAgent: defaultUserAgent}
	for _, opt := range opts {
		opt(&o)
	}
	return build(baseURL, o)
}

func build(baseURL string, o options) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.timeout}
	}
	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	mws := []Middleware{RequestID(), UserAgent(o.userAgent)}
	mws = append(mws, o.middleware...)
	if o.auth != nil {
		mws = append(mws, o.auth.RefreshOnUnauthorized(), o.auth.BearerToken())
	}

	return &Client{
		baseURL: base,
		doer:    Chain(httpClient, mws...),
		logger:  logger.With("service", base.Host),
	}, nil
}

// BaseURL returns the service root this client is bound to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Get issues a GET with optional query parameters.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, query, nil)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, nil, body)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, nil, body)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do sends a request and reads the full response. Status codes >= 400 are
// returned as *HTTPStatusError, transport failures as *NetworkError, and a
// failed token refresh as *SessionExpiredError.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (*Response, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	reqURL := c.resolve(path, query)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.doer.Do(req)
	if err != nil {
		if errors.Is(err, ErrSessionExpired) {
			return nil, err
		}
		c.logger.Debug("request failed", "method", method, "path", path, "error", fmt.Sprintf("%+v", pkgerrors.WithStack(err)))
		return nil, &NetworkError{Method: method, URL: reqURL.Redacted(), Err: pkgerrors.WithStack(err)}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Method: method, URL: reqURL.Redacted(), Err: pkgerrors.Wrap(err, "read response")}
	}

	c.logger.Debug("request complete",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", req.Header.Get(HeaderRequestID),
		"elapsed", time.Since(start))

	if resp.StatusCode >= 400 {
		switch {
		case resp.StatusCode == http.StatusNotFound:
			c.logger.Warn("resource not found", "method", method, "path", path)
		case resp.StatusCode >= 500:
			c.logger.Error("server error", "method", method, "path", path, "status", resp.StatusCode)
		}
		return nil, &HTTPStatusError{Method: method, Path: path, Code: resp.StatusCode, Body: data}
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header.Clone(), Body: data}, nil
}

func (c *Client) resolve(path string, query url.Values) *url.URL {
	u := *c.baseURL
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u.Path = strings.TrimRight(c.baseURL.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return &u
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("base url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
