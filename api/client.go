package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// Client is the authenticated HTTP client for the console API. All entity
// resources share one Client and therefore one tag cache, which is what
// lets a mutation on one screen invalidate the list on another.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  *tokenProvider
	cache   *TagCache
	logger  *slog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the structured logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(baseURL string, tokens oauth2.TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		tokens:  &tokenProvider{source: tokens},
		cache:   NewTagCache(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cache exposes the shared tag cache.
func (c *Client) Cache() *TagCache {
	return c.cache
}

// tokenProvider caches the current access token so every request does not
// hit the token source, and supports forced invalidation after a 401.
type tokenProvider struct {
	mu     sync.Mutex
	source oauth2.TokenSource
	token  *oauth2.Token
}

func (p *tokenProvider) get() (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token.Valid() {
		return p.token, nil
	}
	tok, err := p.source.Token()
	if err != nil {
		return nil, fmt.Errorf("fetch access token: %w", err)
	}
	p.token = tok
	return tok, nil
}

func (p *tokenProvider) invalidate() {
	p.mu.Lock()
	p.token = nil
	p.mu.Unlock()
}

// requestSpec is a replayable request description. The body factory returns
// a fresh reader on every call so the refresh-retry can resend it.
type requestSpec struct {
	method string
	path   string
	query  string
	header http.Header
	body   func() (io.Reader, string, error)
}

// do sends the request and decodes the envelope's data field into out. On a
// 401 the cached token is dropped and the request is retried exactly once
// with a freshly fetched token; a second 401 surfaces as the final error.
func (c *Client) do(ctx context.Context, spec requestSpec, out any) error {
	resp, err := c.send(ctx, spec)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		c.tokens.invalidate()
		resp, err = c.send(ctx, spec)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()
	return decodeEnvelope(resp, out)
}

func (c *Client) send(ctx context.Context, spec requestSpec) (*http.Response, error) {
	var body io.Reader
	contentType := ""
	if spec.body != nil {
		var err error
		body, contentType, err = spec.body()
		if err != nil {
			return nil, err
		}
	}

	u := c.baseURL + spec.path
	if spec.query != "" {
		u += "?" + spec.query
	}
	req, err := http.NewRequestWithContext(ctx, spec.method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for key, values := range spec.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	tok, err := c.tokens.get()
	if err != nil {
		return nil, err
	}
	tok.SetAuthHeader(req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "console api request failed",
			slog.String("method", spec.method),
			slog.String("path", spec.path),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%s %s: %w", spec.method, spec.path, err)
	}
	c.logger.DebugContext(ctx, "console api request",
		slog.String("method", spec.method),
		slog.String("path", spec.path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)
	return resp, nil
}

// envelope mirrors the API's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *ErrorDetail    `json:"error,omitempty"`
}

func decodeEnvelope(resp *http.Response, out any) error {
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Success && env.Error != nil {
		apiErr := &APIError{Status: resp.StatusCode, Message: env.Message}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Details = env.Error.Details
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}
