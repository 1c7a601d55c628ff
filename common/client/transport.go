// Package client talks to the event API on behalf of the dashboard and the
// CLI. Client is the generic transport; SourcesService and EventsService are
// thin, project-scoped specializations of it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hookline/hookline/common/logging"
	"github.com/hookline/hookline/common/middleware"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "hookline/0.1"
)

// RequestOptions describes one call to the event API.
type RequestOptions struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
}

// Requester is the transport capability the gateways are built on.
type Requester interface {
	Request(ctx context.Context, opts RequestOptions) (*Envelope, error)
}

// Client is the HTTP implementation of Requester.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	tokens     TokenSource
	userAgent  string
	logger     *logging.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout. It applies to a copy of any
// client passed through WithHTTPClient, whatever the option order.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func WithLogger(l *logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient returns a transport rooted at baseURL, e.g. "https://api.example.com/api/v1".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  DefaultUserAgent,
		logger:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request issues exactly one HTTP call and returns the decoded envelope.
// Every failure is a *RequestError. There is no retry.
func (c *Client) Request(ctx context.Context, opts RequestOptions) (*Envelope, error) {
	if opts.Method == "" {
		opts.Method = http.MethodGet
	}

	start := time.Now()
	env, err := c.do(ctx, opts)
	elapsed := time.Since(start)

	code := 0
	var reqErr *RequestError
	switch {
	case env != nil:
		code = env.StatusCode
	case errors.As(err, &reqErr):
		code = reqErr.StatusCode
	}
	observe(opts.Method, code, elapsed)

	c.logger.DebugContext(ctx, "event api request",
		logging.Method(opts.Method),
		logging.Path(opts.Path),
		logging.Status(code),
		logging.Duration(elapsed.Milliseconds()),
		logging.Error(err),
	)

	return env, err
}

func (c *Client) do(ctx context.Context, opts RequestOptions) (*Envelope, error) {
	target := c.baseURL + opts.Path
	if len(opts.Query) > 0 {
		target += "?" + opts.Query.Encode()
	}

	fail := func(status int, body []byte, err error) *RequestError {
		return &RequestError{Method: opts.Method, URL: target, StatusCode: status, Body: body, Err: err}
	}

	var bodyReader io.Reader
	if opts.Body != nil {
		payload, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fail(0, nil, fmt.Errorf("failed to marshal request body: %w", err))
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, target, bodyReader)
	if err != nil {
		return nil, fail(0, nil, err)
	}

	req.Header.Set("Accept", "application/json")
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.tokens != nil {
		if token := c.tokens(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if reqID := middleware.GetRequestID(ctx); reqID != "" {
		req.Header.Set(middleware.RequestIDHeader, reqID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fail(0, nil, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fail(resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reqErr := fail(resp.StatusCode, raw, nil)
		var env Envelope
		if err := json.Unmarshal(raw, &env); err == nil {
			env.StatusCode = resp.StatusCode
			env.Raw = raw
			reqErr.Envelope = &env
		}
		return nil, reqErr
	}

	var env Envelope
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fail(resp.StatusCode, raw, ErrMalformedResponse)
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fail(resp.StatusCode, raw, fmt.Errorf("%w: %v", ErrMalformedResponse, err))
	}
	env.StatusCode = resp.StatusCode
	env.Raw = raw

	return &env, nil
}
